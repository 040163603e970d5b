package codec

import (
	"bytes"
	"encoding/base64"
	"encoding/gob"
	"errors"
	"fmt"
)

// ErrCodec is the sentinel wrapped by every encode or decode failure.
// Callers decide whether a failed attribute is fatal (corrupt row) or
// recoverable (skip the attribute).
var ErrCodec = errors.New("attribute codec failure")

// Codec converts attribute values to and from their stored string form.
// Decode of Encode(v) must reproduce a value observably equal to v for any
// serializable input. The empty string is the canonical encoding of nil and
// decodes to nil without error.
//
// Implementations must be safe for concurrent use.
type Codec interface {
	Encode(value any) (string, error)
	Decode(encoded string) (any, error)
}

// Register records a concrete type with the underlying gob machinery so the
// [Gob] codec can carry it through an interface value.
func Register(value any) {
	gob.Register(value)
}

// Gob is the default codec: gob serialization wrapped in standard base64.
type Gob struct{}

// Encode serializes value. A nil value encodes to the empty string.
func (Gob) Encode(value any) (string, error) {
	if value == nil {
		return "", nil
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&value); err != nil {
		return "", fmt.Errorf("%w: encode: %v", ErrCodec, err)
	}

	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// Decode reverses [Gob.Encode]. The empty string decodes to nil, nil.
// Malformed or truncated input wraps [ErrCodec].
func (Gob) Decode(encoded string) (any, error) {
	if encoded == "" {
		return nil, nil
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: decode base64: %v", ErrCodec, err)
	}

	var value any
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&value); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrCodec, err)
	}

	return value, nil
}
