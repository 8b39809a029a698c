// Package fontsound provides the fontsound registry of a sound-bank device.
//
// A fontsound is a small metadata record describing one sampled-instrument
// zone: the sample and loop frame ranges within an external waveform, the
// sample rate, the pitch key and correction, the sample encoding and the key
// and velocity ranges that select it. Fontsounds may link to one other
// fontsound. The synthesis engine that consumes them lives elsewhere.
//
// # Architecture
//
//	┌──────────────────────────────────────────────────────────────────┐
//	│                             Device                               │
//	│                                                                  │
//	│  ┌──────────────────┐   ┌──────────────────┐   ┌──────────────┐  │
//	│  │    Lifecycle     │   │    Attributes    │   │  Param table │  │
//	│  │  (lifecycle.go)  │   │ (attributes.go)  │──▶│  (params.go) │  │
//	│  │ • Gen / Delete   │   │ • SetInt/SetInt2 │   │ • validators │  │
//	│  │ • rollback       │   │ • SetIntv/GetIntv│   │ • accessors  │  │
//	│  └────────┬─────────┘   └────────┬─────────┘   └──────────────┘  │
//	│           │                      │                               │
//	│           ▼                      ▼                               │
//	│  ┌──────────────────┐   ┌──────────────────┐                     │
//	│  │ IdentifierAlloc. │   │      Table       │                     │
//	│  │  (allocator.go)  │   │    (table.go)    │                     │
//	│  └──────────────────┘   └──────────────────┘                     │
//	└──────────────────────────────────────────────────────────────────┘
//
// # Reference counting
//
// A fontsound's reference count is raised by consumers (Acquire, IncRef)
// and by other fontsounds linking to it. While it is non-zero the
// fontsound rejects every attribute write, including its own link, with
// ErrInvalidOperation, and cannot be deleted. Link changes retain the new
// target before the atomic exchange and release the old one after it.
// Cycles are not detected.
//
// # Usage
//
//	dev, err := fontsound.NewDevice(fontsound.Options{Name: "synth0"})
//	if err != nil {
//	    return err
//	}
//	defer dev.Close()
//
//	ids, err := dev.Gen(2)
//	if err != nil {
//	    return err
//	}
//	_ = dev.SetInt(ids[0], fontsound.ParamSampleRate, 22050)
//	_ = dev.SetInt2(ids[0], fontsound.ParamKeyRange, 36, 72)
//	_ = dev.SetInt(ids[0], fontsound.ParamLink, int32(ids[1]))
//
// # Errors
//
// Every method returns a wrapped sentinel (ErrInvalidName, ErrInvalidValue,
// ErrInvalidOperation, ErrInvalidEnum, ErrOutOfMemory). The device also
// latches the first failure for GetError.
//
// # Thread Safety
//
// Device methods are safe for concurrent use. The table and allocator
// carry their own locks; only the link field is written while other
// goroutines may be reading it.
package fontsound
