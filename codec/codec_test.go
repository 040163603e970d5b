package codec

import (
	"encoding/base64"
	"errors"
	"reflect"
	"testing"
)

type profile struct {
	Name  string
	Roles []string
}

func init() {
	Register(profile{})
	Register(map[string]string{})
}

func TestGobRoundTrip(t *testing.T) {
	cases := []struct {
		name  string
		value any
	}{
		{"string", "hello"},
		{"empty string", ""},
		{"int", 42},
		{"negative int", -7},
		{"bool", true},
		{"float", 3.5},
		{"registered struct", profile{Name: "alice", Roles: []string{"admin", "ops"}}},
		{"registered map", map[string]string{"theme": "dark"}},
	}

	var c Gob
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			encoded, err := c.Encode(tc.value)
			if err != nil {
				t.Fatalf("encode: %v", err)
			}
			if encoded == "" {
				t.Fatal("non-nil value must not encode to the empty string")
			}

			decoded, err := c.Decode(encoded)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if !reflect.DeepEqual(decoded, tc.value) {
				t.Fatalf("round trip: got %#v want %#v", decoded, tc.value)
			}
		})
	}
}

func TestGobNilValue(t *testing.T) {
	var c Gob

	encoded, err := c.Encode(nil)
	if err != nil {
		t.Fatalf("encode nil: %v", err)
	}
	if encoded != "" {
		t.Fatalf("nil must encode to the empty string, got %q", encoded)
	}

	decoded, err := c.Decode("")
	if err != nil || decoded != nil {
		t.Fatalf("decode empty: got (%v, %v)", decoded, err)
	}
}

func TestGobDecodeMalformedBase64(t *testing.T) {
	var c Gob

	if _, err := c.Decode("%%% not base64 %%%"); !errors.Is(err, ErrCodec) {
		t.Fatalf("expected ErrCodec, got %v", err)
	}
}

func TestGobDecodeTruncatedPayload(t *testing.T) {
	var c Gob

	encoded, err := c.Encode("a reasonably long payload so truncation bites")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		t.Fatalf("decode base64: %v", err)
	}

	truncated := base64.StdEncoding.EncodeToString(raw[:len(raw)/2])
	if _, err := c.Decode(truncated); !errors.Is(err, ErrCodec) {
		t.Fatalf("expected ErrCodec, got %v", err)
	}
}

func TestGobDecodeGarbageBytes(t *testing.T) {
	var c Gob

	garbage := base64.StdEncoding.EncodeToString([]byte{0xff, 0x00, 0x13, 0x37})
	if _, err := c.Decode(garbage); !errors.Is(err, ErrCodec) {
		t.Fatalf("expected ErrCodec, got %v", err)
	}
}
