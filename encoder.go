package hxsearch

import "github.com/pthm/hxsearch/lib/encoding"

// Encoder signs element props carried in URLs and hx-vals.
type Encoder = encoding.Encoder

// Encodable is implemented by prop types that flatten themselves to a map.
type Encodable = encoding.Encodable

// Decodable is implemented by prop types that rebuild themselves from a map.
type Decodable = encoding.Decodable

// NewEncoder creates an encoder with the given signing key.
func NewEncoder(key []byte) (*Encoder, error) {
	return encoding.NewEncoder(key)
}
