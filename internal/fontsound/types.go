package fontsound

import (
	"fmt"
	"strings"
)

// Param identifies a fontsound attribute in the get/set protocol.
type Param int32

// Parameter tags.
const (
	ParamSampleStart Param = iota + 1
	ParamSampleEnd
	ParamLoopStart
	ParamLoopEnd
	ParamSampleRate
	ParamPitchKey
	ParamPitchCorrection
	ParamSampleType
	ParamKeyRange
	ParamVelocityRange
	ParamLink
)

// AllParams returns every recognised parameter tag in declaration order.
func AllParams() []Param {
	return []Param{
		ParamSampleStart,
		ParamSampleEnd,
		ParamLoopStart,
		ParamLoopEnd,
		ParamSampleRate,
		ParamPitchKey,
		ParamPitchCorrection,
		ParamSampleType,
		ParamKeyRange,
		ParamVelocityRange,
		ParamLink,
	}
}

// String returns the wire name of the parameter, e.g. "key_range".
func (p Param) String() string {
	if spec, ok := paramTable[p]; ok {
		return spec.name
	}
	return fmt.Sprintf("param(%d)", int32(p))
}

// Arity returns how many values the parameter carries (1 or 2),
// or 0 for an unrecognised tag.
func (p Param) Arity() int {
	if spec, ok := paramTable[p]; ok {
		return spec.arity
	}
	return 0
}

// IsRange reports whether the parameter is a paired {min,max} value.
func (p Param) IsRange() bool {
	return p.Arity() == 2
}

// ParseParam resolves a wire name to its tag.
// Returns ErrInvalidEnum if the name is unknown.
func ParseParam(name string) (Param, error) {
	if p, ok := paramsByName[strings.ToLower(strings.TrimSpace(name))]; ok {
		return p, nil
	}
	return 0, fmt.Errorf("%w: unknown parameter %q", ErrInvalidEnum, name)
}

// SampleType is the encoding of the external waveform a fontsound points into.
type SampleType int32

// Sample types.
const (
	SampleTypeMono SampleType = iota + 1
	SampleTypeRight
	SampleTypeLeft
	SampleTypeLinked
)

// Domain limits shared by validators and defaults.
const (
	// MaxMIDIValue is the upper bound of key and velocity values.
	MaxMIDIValue = 127

	// PitchKeyUnspecified makes the fontsound track the played key.
	PitchKeyUnspecified = 255

	// maxPitchCorrection bounds the cent correction exclusively on both sides.
	maxPitchCorrection = 100

	// DefaultSampleRate is used when a device is created without one.
	DefaultSampleRate = 44100

	// defaultPitchKey is middle C.
	defaultPitchKey = 60
)

// Range is a {min,max} pair. No ordering between the components is enforced.
type Range struct {
	Min int32 `json:"min" cbor:"1,keyasint"`
	Max int32 `json:"max" cbor:"2,keyasint"`
}

// Snapshot is a value copy of a fontsound's attributes at one instant.
// It is safe to retain and share.
type Snapshot struct {
	ID              uint32     `json:"id" cbor:"1,keyasint"`
	RefCount        int32      `json:"ref_count" cbor:"2,keyasint"`
	Start           int32      `json:"sample_start" cbor:"3,keyasint"`
	End             int32      `json:"sample_end" cbor:"4,keyasint"`
	LoopStart       int32      `json:"loop_start" cbor:"5,keyasint"`
	LoopEnd         int32      `json:"loop_end" cbor:"6,keyasint"`
	SampleRate      int32      `json:"sample_rate" cbor:"7,keyasint"`
	PitchKey        int32      `json:"pitch_key" cbor:"8,keyasint"`
	PitchCorrection int32      `json:"pitch_correction" cbor:"9,keyasint"`
	SampleType      SampleType `json:"sample_type" cbor:"10,keyasint"`
	KeyRange        Range      `json:"key_range" cbor:"11,keyasint"`
	VelocityRange   Range      `json:"velocity_range" cbor:"12,keyasint"`
	LinkID          uint32     `json:"link,omitempty" cbor:"13,keyasint,omitempty"`
}

// Values returns the snapshot's value for p in the same layout GetIntv writes.
// Returns nil for an unrecognised tag.
func (s Snapshot) Values(p Param) []int32 {
	switch p {
	case ParamSampleStart:
		return []int32{s.Start}
	case ParamSampleEnd:
		return []int32{s.End}
	case ParamLoopStart:
		return []int32{s.LoopStart}
	case ParamLoopEnd:
		return []int32{s.LoopEnd}
	case ParamSampleRate:
		return []int32{s.SampleRate}
	case ParamPitchKey:
		return []int32{s.PitchKey}
	case ParamPitchCorrection:
		return []int32{s.PitchCorrection}
	case ParamSampleType:
		return []int32{int32(s.SampleType)}
	case ParamKeyRange:
		return []int32{s.KeyRange.Min, s.KeyRange.Max}
	case ParamVelocityRange:
		return []int32{s.VelocityRange.Min, s.VelocityRange.Max}
	case ParamLink:
		return []int32{int32(s.LinkID)} //nolint:gosec // handles fit in int32
	default:
		return nil
	}
}

// Stats summarises a device's fontsound population.
type Stats struct {
	Live             int `json:"live"`
	Referenced       int `json:"referenced"`
	Linked           int `json:"linked"`
	IdentifiersInUse int `json:"identifiers_in_use"`
}
