package bank

import (
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
)

// encMode writes Core Deterministic CBOR: the same bank always produces
// identical bytes.
var encMode cbor.EncMode

// decMode ignores unknown fields so newer minor additions still load.
var decMode cbor.DecMode

func init() {
	var err error

	encOptions := cbor.CoreDetEncOptions()
	encOptions.Time = cbor.TimeRFC3339
	encMode, err = encOptions.EncMode()
	if err != nil {
		panic("bank: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		MaxArrayElements: 1 << 17,
	}.DecMode()
	if err != nil {
		panic("bank: CBOR decoder initialization failed: " + err.Error())
	}
}

// Encode writes b to w as a bank file.
func Encode(w io.Writer, b *Bank) error {
	out := *b
	if out.Version == 0 {
		out.Version = FormatVersion
	}
	if err := encMode.NewEncoder(w).Encode(&out); err != nil {
		return fmt.Errorf("encoding bank %s: %w", b.ID, err)
	}
	return nil
}

// Marshal returns the bank file bytes for b.
func Marshal(b *Bank) ([]byte, error) {
	out := *b
	if out.Version == 0 {
		out.Version = FormatVersion
	}
	data, err := encMode.Marshal(&out)
	if err != nil {
		return nil, fmt.Errorf("encoding bank %s: %w", b.ID, err)
	}
	return data, nil
}

// Decode reads one bank file from r and validates it.
func Decode(r io.Reader) (*Bank, error) {
	var b Bank
	if err := decMode.NewDecoder(r).Decode(&b); err != nil {
		return nil, fmt.Errorf("%w: decoding: %w", ErrInvalidBank, err)
	}
	if b.Version < 1 || b.Version > FormatVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, b.Version)
	}
	if err := Validate(&b); err != nil {
		return nil, err
	}
	return &b, nil
}
