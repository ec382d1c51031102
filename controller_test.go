package hxsearch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type gwasQuery struct {
	Query string `qs:"query"`
}

type record struct {
	ID string `json:"id"`
}

type outcome[Q, R any] struct {
	state PageState[Q, R]
	err   error
}

const wait = 2 * time.Second

func records(ids ...string) []record {
	out := make([]record, len(ids))
	for i, id := range ids {
		out[i] = record{ID: id}
	}
	return out
}

func goSubmit[Q, R any](c *PaginatedSearch[Q, R], q Q) <-chan outcome[Q, R] {
	ch := make(chan outcome[Q, R], 1)
	go func() {
		s, err := c.Submit(context.Background(), q)
		ch <- outcome[Q, R]{s, err}
	}()
	return ch
}

func goChangePage[Q, R any](c *PaginatedSearch[Q, R], n int) <-chan outcome[Q, R] {
	ch := make(chan outcome[Q, R], 1)
	go func() {
		s, err := c.ChangePage(context.Background(), n)
		ch <- outcome[Q, R]{s, err}
	}()
	return ch
}

func receive[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(wait):
		t.Fatal("timed out waiting for search to settle")
	}
	var zero T
	return zero
}

func TestSubmit_IncompleteQueryIsNoop(t *testing.T) {
	stub := NewStubSearch(func(gwasQuery, int) ([]record, error) { return records("x"), nil })
	loc := NewURLLocation("/gwas?trait=height")
	c := NewPaginatedSearch(loc, []string{"query"}, stub.Func())

	before := c.State()
	state, err := c.Submit(context.Background(), gwasQuery{})

	assert.ErrorIs(t, err, ErrIncompleteQuery)
	assert.Equal(t, before, state)
	assert.Equal(t, StatusIdle, state.Status)
	assert.Empty(t, stub.Calls())
	assert.Equal(t, "/gwas?trait=height", loc.URL())
}

func TestSubmit_SearchesPageOneAndSyncsURL(t *testing.T) {
	stub := NewStubSearch(func(q gwasQuery, page int) ([]record, error) {
		return records("GWAS.1", "GWAS.2"), nil
	})
	loc := NewURLLocation("/gwas")
	c := NewPaginatedSearch(loc, []string{"query"}, stub.Func())

	state, err := c.Submit(context.Background(), gwasQuery{Query: "pod"})
	require.NoError(t, err)

	calls := stub.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, gwasQuery{Query: "pod"}, calls[0].Query)
	assert.Equal(t, 1, calls[0].Page)
	assert.NotEqual(t, uuid.Nil, calls[0].Options.ID)

	assert.Equal(t, StatusSuccess, state.Status)
	assert.Equal(t, 1, state.Page)
	assert.Equal(t, records("GWAS.1", "GWAS.2"), state.Results)
	assert.Equal(t, "/gwas?query=pod&page=1", loc.URL())

	// The location alone reconstructs the submitted query and page.
	var q gwasQuery
	value, _ := loc.GetParameter("query")
	require.NoError(t, DecodeFields(map[string]string{"query": value}, &q))
	assert.True(t, SameQuery(gwasQuery{Query: "pod"}, q))
	page, _ := loc.GetParameter(PageParam)
	assert.Equal(t, "1", page)
}

func TestSubmit_ResetsPage(t *testing.T) {
	stub := NewStubSearch(func(gwasQuery, int) ([]record, error) { return records("a"), nil })
	loc := NewURLLocation("/gwas")
	c := NewPaginatedSearch(loc, []string{"query"}, stub.Func())

	_, err := c.Submit(context.Background(), gwasQuery{Query: "pod"})
	require.NoError(t, err)
	_, err = c.ChangePage(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, "/gwas?query=pod&page=4", loc.URL())

	state, err := c.Submit(context.Background(), gwasQuery{Query: "seed"})
	require.NoError(t, err)
	assert.Equal(t, 1, state.Page)
	assert.Equal(t, "/gwas?query=seed&page=1", loc.URL())
}

func TestSubmit_BrowserURLAppliesOnlyWhenSearching(t *testing.T) {
	stub := NewStubSearch(func(gwasQuery, int) ([]record, error) { return records("a"), nil })
	loc := NewURLLocation("/gwas?query=pod&page=2")
	c := NewPaginatedSearch(loc, []string{"query"}, stub.Func())
	ctx := WithBrowserURL(context.Background(), "/gwas?page=1&trait=height")

	_, err := c.Submit(ctx, gwasQuery{})
	assert.ErrorIs(t, err, ErrIncompleteQuery)
	assert.Equal(t, "/gwas?query=pod&page=2", loc.URL())

	_, err = c.Submit(ctx, gwasQuery{Query: "seed"})
	require.NoError(t, err)
	assert.Equal(t, "/gwas?page=1&trait=height&query=seed", loc.URL())
}

func TestSubmit_FailureSetsError(t *testing.T) {
	fail := true
	stub := NewStubSearch(func(gwasQuery, int) ([]record, error) {
		if fail {
			return nil, errors.New("upstream unavailable")
		}
		return records("a"), nil
	})
	c := NewPaginatedSearch(NewURLLocation("/"), []string{"query"}, stub.Func())

	state, err := c.Submit(context.Background(), gwasQuery{Query: "pod"})
	require.Error(t, err)
	assert.True(t, IsSearchFailure(err))
	assert.Equal(t, StatusError, state.Status)
	assert.Equal(t, "upstream unavailable", state.ErrorDetail)
	assert.Nil(t, state.Results)

	// No automatic retry.
	assert.Len(t, stub.Calls(), 1)

	fail = false
	state, err = c.Submit(context.Background(), gwasQuery{Query: "pod"})
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, state.Status)
	assert.Empty(t, state.ErrorDetail)
}

func TestSubmit_EmptyResultsIsSuccess(t *testing.T) {
	stub := NewStubSearch(func(gwasQuery, int) ([]record, error) { return []record{}, nil })
	c := NewPaginatedSearch(NewURLLocation("/"), []string{"query"}, stub.Func())

	state, err := c.Submit(context.Background(), gwasQuery{Query: "nothing"})
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, state.Status)
	assert.Empty(t, state.Results)
}

func TestSubmit_PanicBecomesFailure(t *testing.T) {
	search := func(context.Context, gwasQuery, int, SearchOptions) ([]record, error) {
		panic("nil map")
	}
	c := NewPaginatedSearch(NewURLLocation("/"), nil, search)

	state, err := c.Submit(context.Background(), gwasQuery{Query: "pod"})
	assert.True(t, IsSearchFailure(err))
	assert.Equal(t, StatusError, state.Status)
	assert.Contains(t, state.ErrorDetail, "nil map")
}

func TestSubmit_NoSearchFunction(t *testing.T) {
	loc := NewURLLocation("/gwas")
	c := NewPaginatedSearch[gwasQuery, record](loc, []string{"query"}, nil)

	state, err := c.Submit(context.Background(), gwasQuery{Query: "pod"})
	assert.ErrorIs(t, err, ErrNoSearchFunction)
	assert.Equal(t, StatusIdle, state.Status)
	assert.Equal(t, "/gwas", loc.URL())

	stub := NewStubSearch(func(gwasQuery, int) ([]record, error) { return records("a"), nil })
	c.SetSearchFunction(stub.Func())
	_, err = c.Submit(context.Background(), gwasQuery{Query: "pod"})
	assert.NoError(t, err)
}

func TestChangePage_InvalidPage(t *testing.T) {
	stub := NewStubSearch(func(gwasQuery, int) ([]record, error) { return nil, nil })
	c := NewPaginatedSearch(NewURLLocation("/"), nil, stub.Func())

	for _, n := range []int{0, -1} {
		_, err := c.ChangePage(context.Background(), n)
		assert.ErrorIs(t, err, ErrInvalidPage)
	}
	assert.Empty(t, stub.Calls())
}

func TestChangePage_WithoutQueryIsNoop(t *testing.T) {
	stub := NewStubSearch(func(gwasQuery, int) ([]record, error) { return nil, nil })
	c := NewPaginatedSearch(NewURLLocation("/"), []string{"query"}, stub.Func())

	_, err := c.ChangePage(context.Background(), 2)
	assert.ErrorIs(t, err, ErrIncompleteQuery)
	assert.Empty(t, stub.Calls())
}

func TestChangePage_UpdatesOnlyPage(t *testing.T) {
	stub := NewStubSearch(func(gwasQuery, int) ([]record, error) { return records("a"), nil })
	loc := NewURLLocation("/gwas")
	c := NewPaginatedSearch(loc, []string{"query"}, stub.Func())

	_, err := c.Submit(context.Background(), gwasQuery{Query: "pod"})
	require.NoError(t, err)

	// Something else rewrites the query parameter; a page turn must not
	// touch it.
	loc.SetParameters(map[string]string{"query": "other"})

	state, err := c.ChangePage(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 2, state.Page)
	assert.Equal(t, gwasQuery{Query: "pod"}, stub.Calls()[1].Query)
	assert.Equal(t, "/gwas?query=other&page=2", loc.URL())
}

func TestChangePage_OnlyLatestApplied(t *testing.T) {
	stub := NewBlockingStubSearch[gwasQuery, record]()
	loc := NewURLLocation("/gwas")
	c := NewPaginatedSearch(loc, []string{"query"}, stub.Func())

	first := goSubmit(c, gwasQuery{Query: "pod"})
	call1 := stub.Next(wait)
	require.NotNil(t, call1)
	call1.Resolve(records("p1"))
	require.NoError(t, receive(t, first).err)

	second := goChangePage(c, 2)
	call2 := stub.Next(wait)
	require.NotNil(t, call2)

	third := goChangePage(c, 3)
	call3 := stub.Next(wait)
	require.NotNil(t, call3)

	// The superseded call was told to stop.
	assert.ErrorIs(t, call2.Ctx.Err(), context.Canceled)
	assert.NoError(t, call3.Ctx.Err())

	// Settle out of order: newest first, stale one late.
	call3.Resolve(records("p3"))
	latest := receive(t, third)
	require.NoError(t, latest.err)
	assert.Equal(t, records("p3"), latest.state.Results)

	call2.Resolve(records("p2"))
	stale := receive(t, second)
	assert.ErrorIs(t, stale.err, ErrSuperseded)

	state := c.State()
	assert.Equal(t, 3, state.Page)
	assert.Equal(t, StatusSuccess, state.Status)
	assert.Equal(t, records("p3"), state.Results)
	assert.Equal(t, "/gwas?query=pod&page=3", loc.URL())
}

func TestSubmit_StaleFailureIgnored(t *testing.T) {
	stub := NewBlockingStubSearch[gwasQuery, record]()
	c := NewPaginatedSearch(NewURLLocation("/"), []string{"query"}, stub.Func())

	older := goSubmit(c, gwasQuery{Query: "pod"})
	call1 := stub.Next(wait)
	require.NotNil(t, call1)

	newer := goSubmit(c, gwasQuery{Query: "seed"})
	call2 := stub.Next(wait)
	require.NotNil(t, call2)

	call1.Reject(errors.New("aborted"))
	assert.ErrorIs(t, receive(t, older).err, ErrSuperseded)
	assert.Equal(t, StatusLoading, c.State().Status)

	call2.Resolve(records("s1"))
	require.NoError(t, receive(t, newer).err)

	state := c.State()
	assert.Equal(t, StatusSuccess, state.Status)
	assert.Equal(t, gwasQuery{Query: "seed"}, state.Query)
	assert.Empty(t, state.ErrorDetail)
}

func TestSubmit_CallerCancel(t *testing.T) {
	stub := NewBlockingStubSearch[gwasQuery, record]()
	stub.HonorCancel = true
	c := NewPaginatedSearch(NewURLLocation("/"), nil, stub.Func())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := c.Submit(ctx, gwasQuery{Query: "pod"})
		done <- err
	}()
	require.NotNil(t, stub.Next(wait))

	cancel()
	assert.ErrorIs(t, receive(t, done), ErrCanceled)
	assert.Equal(t, StatusLoading, c.State().Status)
}

func TestClose_CancelsInFlight(t *testing.T) {
	stub := NewBlockingStubSearch[gwasQuery, record]()
	stub.HonorCancel = true
	c := NewPaginatedSearch(NewURLLocation("/"), []string{"query"}, stub.Func())

	pending := goSubmit(c, gwasQuery{Query: "pod"})
	call := stub.Next(wait)
	require.NotNil(t, call)

	c.Close()
	assert.ErrorIs(t, receive(t, pending).err, ErrCanceled)
	assert.ErrorIs(t, call.Ctx.Err(), context.Canceled)

	_, err := c.Submit(context.Background(), gwasQuery{Query: "pod"})
	assert.ErrorIs(t, err, ErrClosed)
	c.Close()
}

func TestAttach_MissingRequiredParam(t *testing.T) {
	stub := NewStubSearch(func(gwasQuery, int) ([]record, error) { return nil, nil })
	loc := NewURLLocation("/gwas?page=2")
	c := NewPaginatedSearch(loc, []string{"query"}, stub.Func())

	started, err := c.Attach(context.Background())
	require.NoError(t, err)
	assert.False(t, started)
	assert.Empty(t, stub.Calls())
	assert.Equal(t, StatusIdle, c.State().Status)
}

func TestAttach_UsesLocation(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		wantPage int
		wantURL  string
	}{
		{"with page", "/gwas?query=pod&page=3", 3, "/gwas?query=pod&page=3"},
		{"without page", "/gwas?query=pod", 1, "/gwas?query=pod&page=1"},
		{"malformed page", "/gwas?query=pod&page=abc", 1, "/gwas?query=pod&page=1"},
		{"zero page", "/gwas?query=pod&page=0", 1, "/gwas?query=pod&page=1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := NewStubSearch(func(gwasQuery, int) ([]record, error) { return records("a"), nil })
			loc := NewURLLocation(tt.url)
			c := NewPaginatedSearch(loc, []string{"query"}, stub.Func())

			started, err := c.Attach(context.Background())
			require.NoError(t, err)
			assert.True(t, started)

			calls := stub.Calls()
			require.Len(t, calls, 1)
			assert.Equal(t, gwasQuery{Query: "pod"}, calls[0].Query)
			assert.Equal(t, tt.wantPage, calls[0].Page)
			assert.Equal(t, tt.wantURL, loc.URL())
		})
	}
}

func TestAttach_NoRequiredParams(t *testing.T) {
	stub := NewStubSearch(func(struct{}, int) ([]record, error) { return records("legumemine"), nil })
	loc := NewURLLocation("/mines")
	c := NewPaginatedSearch(loc, nil, stub.Func())

	started, err := c.Attach(context.Background())
	require.NoError(t, err)
	assert.True(t, started)

	calls := stub.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, 1, calls[0].Page)
	assert.Equal(t, StatusSuccess, c.State().Status)
	assert.Equal(t, "/mines?page=1", loc.URL())
}

func TestState_IsACopy(t *testing.T) {
	stub := NewStubSearch(func(gwasQuery, int) ([]record, error) { return records("a", "b"), nil })
	c := NewPaginatedSearch(NewURLLocation("/"), nil, stub.Func())

	_, err := c.Submit(context.Background(), gwasQuery{Query: "pod"})
	require.NoError(t, err)

	state := c.State()
	state.Results[0].ID = "mutated"
	assert.Equal(t, "a", c.State().Results[0].ID)
}
