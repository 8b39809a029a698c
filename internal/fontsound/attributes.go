package fontsound

import "fmt"

// mutable resolves id to a fontsound that may currently be written.
func (d *Device) mutable(id uint32) (*Fontsound, error) {
	s := d.table.Lookup(id)
	if s == nil {
		return nil, fmt.Errorf("%w: fontsound %d", ErrInvalidName, id)
	}
	if n := s.RefCount(); n != 0 {
		return nil, fmt.Errorf("%w: fontsound %d is in use (%d references)", ErrInvalidOperation, id, n)
	}
	return s, nil
}

// SetInt sets a scalar attribute of id.
//
// Fails with ErrInvalidName for an unknown handle, ErrInvalidOperation
// while the fontsound is referenced, ErrInvalidEnum for a tag that is not
// scalar, and ErrInvalidValue when v is outside the tag's domain. A
// rejected value leaves the attribute unchanged.
//
// For ParamLink, v is the target handle or 0 to clear the link.
//
// The reference-count check is not atomic with the write; callers must
// not Acquire the same fontsound concurrently.
func (d *Device) SetInt(id uint32, p Param, v int32) error {
	s, err := d.mutable(id)
	if err != nil {
		return d.fail(err)
	}
	spec, err := lookupParam(p, 1)
	if err != nil {
		return d.fail(err)
	}
	return d.apply(s, p, spec, []int32{v})
}

// SetInt2 sets a paired attribute (ParamKeyRange, ParamVelocityRange) of id.
// Gating and failures are as for SetInt.
func (d *Device) SetInt2(id uint32, p Param, v1, v2 int32) error {
	s, err := d.mutable(id)
	if err != nil {
		return d.fail(err)
	}
	spec, err := lookupParam(p, 2)
	if err != nil {
		return d.fail(err)
	}
	return d.apply(s, p, spec, []int32{v1, v2})
}

// SetIntv forwards to SetInt2 for range tags and to SetInt for scalar
// tags. For an unrecognised tag the handle is still resolved and the
// reference count checked before ErrInvalidEnum is reported. A values
// slice shorter than the tag's arity fails with ErrInvalidValue.
func (d *Device) SetIntv(id uint32, p Param, values []int32) error {
	spec, ok := paramTable[p]
	if !ok {
		if _, err := d.mutable(id); err != nil {
			return d.fail(err)
		}
		return d.fail(fmt.Errorf("%w: parameter %s", ErrInvalidEnum, p))
	}
	if len(values) < spec.arity {
		return d.fail(fmt.Errorf("%w: %s needs %d values, got %d", ErrInvalidValue, p, spec.arity, len(values)))
	}
	if p.IsRange() {
		return d.SetInt2(id, p, values[0], values[1])
	}
	return d.SetInt(id, p, values[0])
}

// GetIntv writes the current value of p into out: two values for range
// tags, one otherwise. Reads are permitted regardless of the reference
// count. ParamLink reads the target handle, or 0.
func (d *Device) GetIntv(id uint32, p Param, out []int32) error {
	s := d.table.Lookup(id)
	if s == nil {
		return d.fail(fmt.Errorf("%w: fontsound %d", ErrInvalidName, id))
	}
	spec, ok := paramTable[p]
	if !ok {
		return d.fail(fmt.Errorf("%w: parameter %s", ErrInvalidEnum, p))
	}
	if len(out) < spec.arity {
		return d.fail(fmt.Errorf("%w: %s writes %d values, buffer holds %d", ErrInvalidValue, p, spec.arity, len(out)))
	}
	spec.load(s, out)
	return nil
}

// Get is GetIntv with a freshly allocated result.
func (d *Device) Get(id uint32, p Param) ([]int32, error) {
	out := make([]int32, max(p.Arity(), 1))
	if err := d.GetIntv(id, p, out); err != nil {
		return nil, err
	}
	return out[:p.Arity()], nil
}

// apply validates and stores v, then emits the matching event.
func (d *Device) apply(s *Fontsound, p Param, spec paramSpec, v []int32) error {
	if err := spec.check(v); err != nil {
		return d.fail(err)
	}

	var previous uint32
	if p == ParamLink {
		if l := s.Link(); l != nil {
			previous = l.id
		}
	}
	if err := spec.store(d, s, v); err != nil {
		return d.fail(err)
	}

	if p == ParamLink {
		d.emit(Event{Kind: EventLinked, ID: s.id, Param: spec.name, Target: uint32(v[0]), Previous: previous}) //nolint:gosec // handle
		return nil
	}
	d.emit(Event{Kind: EventParamSet, ID: s.id, Param: spec.name, Values: append([]int32(nil), v...)})
	return nil
}
