package dwallet

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// encMode uses the CBOR core deterministic encoding, so that every validator
// derives the same bytes (and therefore the same digests) from the same value.
var encMode = func() cbor.EncMode {
	mode, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("could not create deterministic cbor encoding mode: %v", err))
	}
	return mode
}()

var decMode = func() cbor.DecMode {
	mode, err := cbor.DecOptions{
		DupMapKey: cbor.DupMapKeyEnforcedAPF,
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("could not create cbor decoding mode: %v", err))
	}
	return mode
}()

// Encode encodes the given value with the deterministic CBOR encoding.
func Encode(v interface{}) ([]byte, error) {
	b, err := encMode.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("could not encode %T: %w", v, err)
	}
	return b, nil
}

// Decode decodes CBOR data into v.
func Decode(data []byte, v interface{}) error {
	err := decMode.Unmarshal(data, v)
	if err != nil {
		return fmt.Errorf("could not decode %T: %w", v, err)
	}
	return nil
}
