package hxsearch

// Status is the lifecycle stage of a paginated search.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	}
	return "unknown"
}

// PageState is the state a controller exposes to rendering. Q is the search
// data type and R the result record type.
type PageState[Q, R any] struct {
	Query       Q
	Page        int
	Results     []R
	Status      Status
	ErrorDetail string
}

// clone copies the results slice so callers can't alias controller state.
func (s PageState[Q, R]) clone() PageState[Q, R] {
	if s.Results != nil {
		s.Results = append([]R(nil), s.Results...)
	}
	return s
}
