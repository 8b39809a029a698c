package fontsound

import "fmt"

// paramSpec binds a parameter tag to its validation and accessors.
//
// check validates the incoming values without touching the object.
// store writes already-validated values; it receives the device so the
// link parameter can resolve its target. load writes the current
// values into out, which is at least arity long.
type paramSpec struct {
	name  string
	arity int
	check func(v []int32) error
	store func(d *Device, s *Fontsound, v []int32) error
	load  func(s *Fontsound, out []int32)
}

// paramTable is the single dispatch point for every tag.
var paramTable = map[Param]paramSpec{
	ParamSampleStart: {
		name:  "sample_start",
		arity: 1,
		check: anyValue,
		store: func(_ *Device, s *Fontsound, v []int32) error { s.start = v[0]; return nil },
		load:  func(s *Fontsound, out []int32) { out[0] = s.start },
	},
	ParamSampleEnd: {
		name:  "sample_end",
		arity: 1,
		check: anyValue,
		store: func(_ *Device, s *Fontsound, v []int32) error { s.end = v[0]; return nil },
		load:  func(s *Fontsound, out []int32) { out[0] = s.end },
	},
	ParamLoopStart: {
		name:  "loop_start",
		arity: 1,
		check: anyValue,
		store: func(_ *Device, s *Fontsound, v []int32) error { s.loopStart = v[0]; return nil },
		load:  func(s *Fontsound, out []int32) { out[0] = s.loopStart },
	},
	ParamLoopEnd: {
		name:  "loop_end",
		arity: 1,
		check: anyValue,
		store: func(_ *Device, s *Fontsound, v []int32) error { s.loopEnd = v[0]; return nil },
		load:  func(s *Fontsound, out []int32) { out[0] = s.loopEnd },
	},
	ParamSampleRate: {
		name:  "sample_rate",
		arity: 1,
		check: checkSampleRate,
		store: func(_ *Device, s *Fontsound, v []int32) error { s.sampleRate = v[0]; return nil },
		load:  func(s *Fontsound, out []int32) { out[0] = s.sampleRate },
	},
	ParamPitchKey: {
		name:  "pitch_key",
		arity: 1,
		check: checkPitchKey,
		store: func(_ *Device, s *Fontsound, v []int32) error { s.pitchKey = v[0]; return nil },
		load:  func(s *Fontsound, out []int32) { out[0] = s.pitchKey },
	},
	ParamPitchCorrection: {
		name:  "pitch_correction",
		arity: 1,
		check: checkPitchCorrection,
		store: func(_ *Device, s *Fontsound, v []int32) error { s.pitchCorrection = v[0]; return nil },
		load:  func(s *Fontsound, out []int32) { out[0] = s.pitchCorrection },
	},
	ParamSampleType: {
		name:  "sample_type",
		arity: 1,
		check: checkSampleType,
		store: func(_ *Device, s *Fontsound, v []int32) error { s.sampleType = SampleType(v[0]); return nil },
		load:  func(s *Fontsound, out []int32) { out[0] = int32(s.sampleType) },
	},
	ParamKeyRange: {
		name:  "key_range",
		arity: 2,
		check: checkMIDIRange,
		store: func(_ *Device, s *Fontsound, v []int32) error {
			s.minKey, s.maxKey = v[0], v[1]
			return nil
		},
		load: func(s *Fontsound, out []int32) { out[0], out[1] = s.minKey, s.maxKey },
	},
	ParamVelocityRange: {
		name:  "velocity_range",
		arity: 2,
		check: checkMIDIRange,
		store: func(_ *Device, s *Fontsound, v []int32) error {
			s.minVelocity, s.maxVelocity = v[0], v[1]
			return nil
		},
		load: func(s *Fontsound, out []int32) { out[0], out[1] = s.minVelocity, s.maxVelocity },
	},
	ParamLink: {
		name:  "link",
		arity: 1,
		check: anyValue,
		store: storeLink,
		load: func(s *Fontsound, out []int32) {
			out[0] = 0
			if l := s.link.Load(); l != nil {
				out[0] = int32(l.id) //nolint:gosec // handles fit in int32
			}
		},
	},
}

// paramsByName is the reverse index of paramTable names.
var paramsByName map[string]Param

func init() {
	paramsByName = make(map[string]Param, len(paramTable))
	for p, spec := range paramTable {
		paramsByName[spec.name] = p
	}
}

// lookupParam returns the spec for p if its arity matches want.
// Any mismatch is reported as ErrInvalidEnum.
func lookupParam(p Param, want int) (paramSpec, error) {
	spec, ok := paramTable[p]
	if !ok || spec.arity != want {
		return paramSpec{}, fmt.Errorf("%w: parameter %s", ErrInvalidEnum, p)
	}
	return spec, nil
}

func anyValue([]int32) error { return nil }

func checkSampleRate(v []int32) error {
	if v[0] <= 0 {
		return fmt.Errorf("%w: sample rate %d must be positive", ErrInvalidValue, v[0])
	}
	return nil
}

func checkPitchKey(v []int32) error {
	if (v[0] < 0 || v[0] > MaxMIDIValue) && v[0] != PitchKeyUnspecified {
		return fmt.Errorf("%w: pitch key %d not in [0,%d] or %d", ErrInvalidValue, v[0], MaxMIDIValue, PitchKeyUnspecified)
	}
	return nil
}

func checkPitchCorrection(v []int32) error {
	if v[0] <= -maxPitchCorrection || v[0] >= maxPitchCorrection {
		return fmt.Errorf("%w: pitch correction %d not in (-%d,%d)", ErrInvalidValue, v[0], maxPitchCorrection, maxPitchCorrection)
	}
	return nil
}

func checkSampleType(v []int32) error {
	if v[0] < int32(SampleTypeMono) || v[0] > int32(SampleTypeLinked) {
		return fmt.Errorf("%w: sample type %d not in [%d,%d]", ErrInvalidValue, v[0], SampleTypeMono, SampleTypeLinked)
	}
	return nil
}

func checkMIDIRange(v []int32) error {
	for _, x := range v[:2] {
		if x < 0 || x > MaxMIDIValue {
			return fmt.Errorf("%w: range {%d,%d} not within [0,%d]", ErrInvalidValue, v[0], v[1], MaxMIDIValue)
		}
	}
	return nil
}

// storeLink resolves v[0] (0 clears) and swaps the link.
func storeLink(d *Device, s *Fontsound, v []int32) error {
	var target *Fontsound
	if v[0] != 0 {
		target = d.table.Lookup(uint32(v[0])) //nolint:gosec // handles fit in int32
		if target == nil {
			return fmt.Errorf("%w: link target %d does not exist", ErrInvalidValue, v[0])
		}
	}
	s.swapLink(target)
	return nil
}
