// Package encoding signs the small prop payloads that element routes carry
// in their URLs (instance ID, requested page).
//
// Payloads are msgpack maps, base64url encoded and followed by a truncated
// HMAC-SHA256 tag: "<payload>.<tag>". They are visible to the browser but
// cannot be altered without the registry key.
package encoding

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// Sentinel errors returned by Decode.
var (
	ErrInvalidFormat    = errors.New("encoding: invalid payload format")
	ErrSignatureInvalid = errors.New("encoding: signature verification failed")
)

// tagSize is the number of HMAC bytes kept in the encoded form.
const tagSize = 16

// Encodable is implemented by prop types that flatten themselves to a map.
type Encodable interface {
	HXEncode() map[string]any
}

// Decodable is implemented by prop types that rebuild themselves from a map.
type Decodable interface {
	HXDecode(map[string]any) error
}

// Encoder signs and verifies prop payloads with a shared key.
type Encoder struct {
	key []byte
}

// NewEncoder creates an encoder. Keys shorter than 32 bytes are stretched
// with SHA-256; an empty key is rejected.
func NewEncoder(key []byte) (*Encoder, error) {
	if len(key) == 0 {
		return nil, errors.New("encoding: empty key")
	}
	if len(key) < 32 {
		h := sha256.Sum256(key)
		key = h[:]
	}
	return &Encoder{key: key}, nil
}

// Encode packs v and returns the signed string form.
func (e *Encoder) Encode(v Encodable) (string, error) {
	packed, err := msgpack.Marshal(v.HXEncode())
	if err != nil {
		return "", fmt.Errorf("encoding: marshal props: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(packed) + "." + e.tag(packed), nil
}

// Decode verifies encoded and unpacks it into v.
func (e *Encoder) Decode(encoded string, v Decodable) error {
	body, sig, ok := strings.Cut(encoded, ".")
	if !ok || body == "" || sig == "" {
		return ErrInvalidFormat
	}

	packed, err := base64.RawURLEncoding.DecodeString(body)
	if err != nil {
		return ErrInvalidFormat
	}
	if !hmac.Equal([]byte(sig), []byte(e.tag(packed))) {
		return ErrSignatureInvalid
	}

	var data map[string]any
	if err := msgpack.Unmarshal(packed, &data); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	return v.HXDecode(data)
}

func (e *Encoder) tag(data []byte) string {
	mac := hmac.New(sha256.New, e.key)
	mac.Write(data)
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil)[:tagSize])
}
