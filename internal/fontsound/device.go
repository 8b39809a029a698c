package fontsound

import (
	"fmt"
	"sync"
)

// Options configures a Device. The zero value is usable.
type Options struct {
	// Name identifies the device in logs and events. Default: "default".
	Name string

	// SampleRate is the sample rate given to newly created fontsounds.
	// Default: DefaultSampleRate.
	SampleRate int32

	// MaxFontsounds bounds the reference allocator and table when they are
	// not supplied. 0 uses DefaultMaxIdentifiers.
	MaxFontsounds int

	// Allocator overrides the identifier allocator.
	Allocator IdentifierAllocator

	// Table overrides the handle table.
	Table Table
}

// Device owns one table of fontsounds and the identifier space for it.
//
// Handle resolution goes through the table, which carries its own locking.
// Batch creation, batch deletion and teardown additionally serialise on
// batchMu so a delete's validation phase cannot interleave with another
// batch's removals.
//
// All public methods are thread-safe. Attribute writes still rely on the
// caller not activating the fontsound concurrently (see SetInt).
type Device struct {
	name       string
	sampleRate int32
	ids        IdentifierAllocator
	table      Table
	batchMu    sync.Mutex
	errs       errorLatch
	logger     Logger
	observer   Observer
}

// NewDevice creates an empty device.
// Returns ErrInvalidValue if opts.SampleRate is negative.
func NewDevice(opts Options) (*Device, error) {
	if opts.SampleRate < 0 {
		return nil, fmt.Errorf("%w: sample rate %d must be positive", ErrInvalidValue, opts.SampleRate)
	}
	if opts.SampleRate == 0 {
		opts.SampleRate = DefaultSampleRate
	}
	if opts.Name == "" {
		opts.Name = "default"
	}
	if opts.Allocator == nil {
		opts.Allocator = NewThunkAllocator(opts.MaxFontsounds)
	}
	if opts.Table == nil {
		opts.Table = NewUIntMap(opts.MaxFontsounds)
	}

	return &Device{
		name:       opts.Name,
		sampleRate: opts.SampleRate,
		ids:        opts.Allocator,
		table:      opts.Table,
		logger:     noopLogger{},
		observer:   noopObserver{},
	}, nil
}

// SetLogger sets the logger for the device.
func (d *Device) SetLogger(logger Logger) {
	d.logger = logger
}

// SetObserver sets the event observer. Use Observers to attach several.
// It should be called before the device is shared between goroutines.
func (d *Device) SetObserver(observer Observer) {
	if observer == nil {
		observer = noopObserver{}
	}
	d.observer = observer
}

// Name returns the device name.
func (d *Device) Name() string {
	return d.name
}

// GetError returns the first error raised since the previous call and
// clears it, mirroring a context's pending-error register.
func (d *Device) GetError() ErrorCode {
	return d.errs.take()
}

// fail latches err and returns it.
func (d *Device) fail(err error) error {
	return d.errs.set(err)
}

func (d *Device) emit(ev Event) {
	ev.Device = d.name
	d.observer.OnEvent(ev)
}

// Lookup returns the live fontsound for id, or nil.
// The result is intended for consumers that read attributes and manage
// the reference count via IncRef/DecRef.
func (d *Device) Lookup(id uint32) *Fontsound {
	return d.table.Lookup(id)
}

// Acquire adds a consumer reference to id and returns the new count.
// While referenced, the fontsound cannot be modified or deleted.
func (d *Device) Acquire(id uint32) (int32, error) {
	s := d.table.Lookup(id)
	if s == nil {
		return 0, d.fail(fmt.Errorf("%w: fontsound %d", ErrInvalidName, id))
	}
	return s.IncRef(), nil
}

// Release drops a consumer reference from id and returns the new count.
// Returns ErrInvalidOperation if id holds no references.
func (d *Device) Release(id uint32) (int32, error) {
	s := d.table.Lookup(id)
	if s == nil {
		return 0, d.fail(fmt.Errorf("%w: fontsound %d", ErrInvalidName, id))
	}
	for {
		cur := s.ref.Load()
		if cur <= 0 {
			return 0, d.fail(fmt.Errorf("%w: fontsound %d is not referenced", ErrInvalidOperation, id))
		}
		if s.ref.CompareAndSwap(cur, cur-1) {
			return cur - 1, nil
		}
	}
}

// Snapshot returns a copy of the attributes of id.
func (d *Device) Snapshot(id uint32) (Snapshot, error) {
	s := d.table.Lookup(id)
	if s == nil {
		return Snapshot{}, d.fail(fmt.Errorf("%w: fontsound %d", ErrInvalidName, id))
	}
	return s.Snapshot(), nil
}

// Snapshots returns a copy of every live fontsound in table order.
func (d *Device) Snapshots() []Snapshot {
	out := make([]Snapshot, 0, d.table.Len())
	d.table.Range(func(s *Fontsound) bool {
		out = append(out, s.Snapshot())
		return true
	})
	return out
}

// Stats returns current population statistics.
func (d *Device) Stats() Stats {
	var st Stats
	d.table.Range(func(s *Fontsound) bool {
		st.Live++
		if s.RefCount() > 0 {
			st.Referenced++
		}
		if s.Link() != nil {
			st.Linked++
		}
		return true
	})
	st.IdentifiersInUse = d.ids.InUse()
	return st
}

// destroy releases the storage and identifier of a fontsound that has
// already been removed from the table.
func (d *Device) destroy(s *Fontsound) {
	id := s.id
	s.destruct()
	d.ids.Release(id)
}

// Close destroys every fontsound on the device regardless of reference
// counts and leaves the table empty. It never fails; the device can be
// reused afterwards.
func (d *Device) Close() {
	d.batchMu.Lock()
	defer d.batchMu.Unlock()

	all := d.table.Drain()

	// Drop every link first so no count is decremented on a cleared object.
	for _, s := range all {
		s.swapLink(nil)
	}
	for _, s := range all {
		d.destroy(s)
	}

	if len(all) > 0 {
		d.logger.Info("fontsounds released", "device", d.name, "count", len(all))
	}
	d.emit(Event{Kind: EventTeardown, Count: len(all)})
}
