// Package codec is the deterministic, self-describing binary encoding used
// for every wire message in this module (spec.md §6 "Codec"). It wraps
// fxamacker/cbor/v2 in canonical (deterministic) mode so that two
// encodings of equal values are byte-identical on every platform, which
// the commitment scheme (pkg/commitment) and the transcript (pkg/hash)
// both depend on.
package codec

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	opts := cbor.CanonicalEncOptions()
	var err error
	encMode, err = opts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("codec: failed to build canonical encoder: %v", err))
	}
	decMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("codec: failed to build decoder: %v", err))
	}
}

// Encode returns the canonical CBOR encoding of val.
func Encode(val interface{}) ([]byte, error) {
	return encMode.Marshal(val)
}

// Decode parses data into val, which must be a pointer.
func Decode(data []byte, val interface{}) error {
	return decMode.Unmarshal(data, val)
}

// EncodeWithTag prepends an uninterpreted tag to the canonical encoding of
// val, so that routing bytes can precede an opaque payload (spec.md §4.1
// "A header serializes as channel-tag ‖ waitpoint"). The runtime does not
// call it: it prepends Header.Encode to the payload itself.
func EncodeWithTag(tag []byte, val interface{}) ([]byte, error) {
	body, err := Encode(val)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(tag)+len(body))
	out = append(out, tag...)
	out = append(out, body...)
	return out, nil
}
