package bank

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/fontsound-core/internal/fontsound"
)

// FormatVersion is the bank file version written by Encode.
const FormatVersion = 1

// MaxNameLength bounds bank names.
const MaxNameLength = 100

// idPrefix marks bank identifiers.
const idPrefix = "bnk-"

// Bank is a named snapshot of every fontsound on a device.
//
// Sounds keep the handles they had on the source device; Restore maps
// them (and the links between them) onto freshly generated handles.
type Bank struct {
	Version   int                  `json:"version" cbor:"0,keyasint"`
	ID        string               `json:"id" cbor:"1,keyasint"`
	Name      string               `json:"name" cbor:"2,keyasint"`
	Device    string               `json:"device" cbor:"3,keyasint"`
	CreatedAt time.Time            `json:"created_at" cbor:"4,keyasint"`
	Sounds    []fontsound.Snapshot `json:"sounds" cbor:"5,keyasint"`
}

// Summary is the listing form of a bank.
type Summary struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Device     string    `json:"device"`
	SoundCount int       `json:"sound_count"`
	CreatedAt  time.Time `json:"created_at"`
}

// Summary returns the listing form of b.
func (b *Bank) Summary() Summary {
	return Summary{
		ID:         b.ID,
		Name:       b.Name,
		Device:     b.Device,
		SoundCount: len(b.Sounds),
		CreatedAt:  b.CreatedAt,
	}
}

// NewID returns a fresh bank identifier.
func NewID() string {
	return idPrefix + uuid.NewString()
}

// ValidateName checks a bank name.
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidName)
	}
	if len(name) > MaxNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidName, MaxNameLength)
	}
	return nil
}

// Validate checks that b can be restored: its name is valid, source
// handles are unique and non-zero, and every link points inside the bank.
func Validate(b *Bank) error {
	if err := ValidateName(b.Name); err != nil {
		return err
	}
	seen := make(map[uint32]bool, len(b.Sounds))
	for _, s := range b.Sounds {
		if s.ID == 0 {
			return fmt.Errorf("%w: sound with zero handle", ErrInvalidBank)
		}
		if seen[s.ID] {
			return fmt.Errorf("%w: duplicate sound %d", ErrInvalidBank, s.ID)
		}
		seen[s.ID] = true
	}
	for _, s := range b.Sounds {
		if s.LinkID != 0 && !seen[s.LinkID] {
			return fmt.Errorf("%w: sound %d links to %d outside the bank", ErrInvalidBank, s.ID, s.LinkID)
		}
	}
	_, err := linkOrder(b.Sounds)
	return err
}
