package fontsound

import "fmt"

// genPrealloc bounds the handle slice capacity reserved up front by Gen.
const genPrealloc = 64

// Gen creates n fontsounds and returns their handles.
//
// Objects are created one at a time. If any allocation, identifier or
// table step fails, every fontsound created earlier in the same call is
// destroyed again and the originating error is returned with no handles.
// n < 0 fails with ErrInvalidValue before anything is allocated.
func (d *Device) Gen(n int) ([]uint32, error) {
	if n < 0 {
		return nil, d.fail(fmt.Errorf("%w: negative count %d", ErrInvalidValue, n))
	}

	ids, err := d.create(n)
	if err != nil {
		d.logger.Warn("fontsound creation rolled back",
			"device", d.name, "requested", n, "error", err)
		return nil, d.fail(err)
	}

	for _, id := range ids {
		d.emit(Event{Kind: EventCreated, ID: id})
	}
	if n > 0 {
		d.logger.Debug("fontsounds created", "device", d.name, "count", n)
	}
	return ids, nil
}

// create runs the allocation loop of Gen under the batch lock. The handle
// slice grows with the objects actually created, not with n.
func (d *Device) create(n int) ([]uint32, error) {
	d.batchMu.Lock()
	defer d.batchMu.Unlock()

	ids := make([]uint32, 0, min(n, genPrealloc))
	for range n {
		s, err := d.newFontsound()
		if err != nil {
			d.rollback(ids)
			return nil, err
		}
		ids = append(ids, s.id)
	}
	return ids, nil
}

// newFontsound constructs one object and registers it.
func (d *Device) newFontsound() (*Fontsound, error) {
	s := &Fontsound{}
	s.construct(d.sampleRate)

	id, err := d.ids.Allocate()
	if err != nil {
		s.destruct()
		return nil, err
	}
	s.id = id

	if err := d.table.Insert(id, s); err != nil {
		d.ids.Release(id)
		s.destruct()
		return nil, err
	}
	return s, nil
}

// rollback destroys the fontsounds of a failed Gen call, newest first.
func (d *Device) rollback(ids []uint32) {
	for i := len(ids) - 1; i >= 0; i-- {
		if s := d.table.Remove(ids[i]); s != nil {
			d.destroy(s)
		}
	}
}

// Delete destroys every fontsound in ids.
//
// All handles are validated before anything is destroyed: an unknown
// handle fails with ErrInvalidName and a referenced fontsound fails with
// ErrInvalidOperation, and in both cases nothing is deleted. A handle
// listed twice is deleted once.
func (d *Device) Delete(ids []uint32) error {
	deleted, err := d.remove(ids)
	if err != nil {
		return d.fail(err)
	}

	for _, id := range deleted {
		d.emit(Event{Kind: EventDeleted, ID: id})
	}
	if len(deleted) > 0 {
		d.logger.Debug("fontsounds deleted", "device", d.name, "count", len(deleted))
	}
	return nil
}

// remove validates and destroys ids under the batch lock.
func (d *Device) remove(ids []uint32) ([]uint32, error) {
	d.batchMu.Lock()
	defer d.batchMu.Unlock()

	for _, id := range ids {
		s := d.table.Lookup(id)
		if s == nil {
			return nil, fmt.Errorf("%w: fontsound %d", ErrInvalidName, id)
		}
		if n := s.RefCount(); n != 0 {
			return nil, fmt.Errorf("%w: fontsound %d has %d references", ErrInvalidOperation, id, n)
		}
	}

	deleted := make([]uint32, 0, len(ids))
	for _, id := range ids {
		s := d.table.Remove(id)
		if s == nil {
			continue
		}
		d.destroy(s)
		deleted = append(deleted, id)
	}
	return deleted, nil
}

// DeleteN deletes the first n handles of ids, matching the counted form of
// the batch API. n < 0 or n > len(ids) fails with ErrInvalidValue.
func (d *Device) DeleteN(n int, ids []uint32) error {
	if n < 0 {
		return d.fail(fmt.Errorf("%w: negative count %d", ErrInvalidValue, n))
	}
	if n > len(ids) {
		return d.fail(fmt.Errorf("%w: count %d exceeds %d handles", ErrInvalidValue, n, len(ids)))
	}
	return d.Delete(ids[:n])
}

// Exists reports whether id names a live fontsound on this device.
func (d *Device) Exists(id uint32) bool {
	return d.table.Lookup(id) != nil
}
