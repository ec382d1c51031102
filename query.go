package hxsearch

import (
	"fmt"
	"maps"
	"slices"

	"github.com/go-viper/mapstructure/v2"
)

// Struct tags read by the field codec.
const (
	// QueryTag names the query-string parameter a search data field maps
	// to: `qs:"query"`.
	QueryTag = "qs"

	// ResultTag names the attribute a result field is displayed under. It
	// is the json tag so records decoded from an API keep their wire names.
	ResultTag = "json"
)

// EncodeFields flattens a search query into its query-string parameters.
// q is a struct with qs tags or a map[string]string; nil encodes to an empty
// map.
func EncodeFields(q any) (map[string]string, error) {
	return flatten(q, QueryTag)
}

// DecodeFields fills the query pointed to by dst from parameters, converting
// strings to the field types where needed. Parameters the query does not
// declare are ignored.
func DecodeFields(params map[string]string, dst any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          QueryTag,
		WeaklyTypedInput: true,
		Result:           dst,
	})
	if err != nil {
		return fmt.Errorf("hxsearch: query decoder: %w", err)
	}
	if err := dec.Decode(params); err != nil {
		return fmt.Errorf("hxsearch: decode query: %w", err)
	}
	return nil
}

// FieldNames returns the sorted parameter names a query type declares.
func FieldNames(q any) []string {
	fields, err := EncodeFields(q)
	if err != nil {
		return nil
	}
	return slices.Sorted(maps.Keys(fields))
}

// SameQuery reports whether two queries encode to the same parameters.
func SameQuery(a, b any) bool {
	fa, err := EncodeFields(a)
	if err != nil {
		return false
	}
	fb, err := EncodeFields(b)
	if err != nil {
		return false
	}
	return maps.Equal(fa, fb)
}

// ResultFields flattens a result record into display strings keyed by
// attribute name. The record is only read.
func ResultFields(r any) (map[string]string, error) {
	return flatten(r, ResultTag)
}

func flatten(v any, tag string) (map[string]string, error) {
	out := make(map[string]string)
	if v == nil {
		return out, nil
	}
	if m, ok := v.(map[string]string); ok {
		maps.Copy(out, m)
		return out, nil
	}

	var raw map[string]any
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: tag,
		Result:  &raw,
	})
	if err != nil {
		return nil, fmt.Errorf("hxsearch: %s decoder: %w", tag, err)
	}
	if err := dec.Decode(v); err != nil {
		return nil, fmt.Errorf("hxsearch: flatten %T: %w", v, err)
	}
	for k, val := range raw {
		out[k] = display(val)
	}
	return out, nil
}

func display(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case fmt.Stringer:
		return s.String()
	}
	return fmt.Sprint(v)
}
