package bank

import "errors"

// Domain errors for the bank package.
//
//	if errors.Is(err, bank.ErrNotFound) {
//	    // handle not found case
//	}
var (
	// ErrNotFound is returned when a bank ID does not exist.
	ErrNotFound = errors.New("bank: not found")

	// ErrExists is returned when saving a bank whose ID is already stored.
	ErrExists = errors.New("bank: already exists")

	// ErrInvalidName is returned when a bank name is empty or too long.
	ErrInvalidName = errors.New("bank: invalid name")

	// ErrInvalidBank is returned when a bank's sounds are inconsistent,
	// e.g. a link pointing outside the bank.
	ErrInvalidBank = errors.New("bank: invalid")

	// ErrUnsupportedVersion is returned when decoding a bank file written
	// by a newer format.
	ErrUnsupportedVersion = errors.New("bank: unsupported file version")
)
