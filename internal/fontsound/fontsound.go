package fontsound

import "sync/atomic"

// Fontsound describes one sampled-instrument zone: which frames of an
// external waveform to play, how to pitch them, and which keys and
// velocities select it.
//
// The plain attribute fields are only written while the reference count
// is zero. Once a consumer holds a reference the object is read-only,
// except for link, which is always accessed atomically.
type Fontsound struct {
	id  uint32
	ref atomic.Int32

	start     int32
	end       int32
	loopStart int32
	loopEnd   int32

	sampleRate      int32
	pitchKey        int32
	pitchCorrection int32
	sampleType      SampleType

	minKey      int32
	maxKey      int32
	minVelocity int32
	maxVelocity int32

	link atomic.Pointer[Fontsound]
}

// construct resets every attribute to its default.
func (s *Fontsound) construct(sampleRate int32) {
	s.id = 0
	s.ref.Store(0)
	s.start, s.end = 0, 0
	s.loopStart, s.loopEnd = 0, 0
	s.sampleRate = sampleRate
	s.pitchKey = defaultPitchKey
	s.pitchCorrection = 0
	s.sampleType = SampleTypeMono
	s.minKey, s.maxKey = 0, MaxMIDIValue
	s.minVelocity, s.maxVelocity = 0, MaxMIDIValue
	s.link.Store(nil)
}

// destruct drops the outgoing link and clears the object.
func (s *Fontsound) destruct() {
	if old := s.link.Swap(nil); old != nil {
		old.DecRef()
	}
	s.id = 0
	s.ref.Store(0)
	s.start, s.end = 0, 0
	s.loopStart, s.loopEnd = 0, 0
	s.sampleRate, s.pitchKey, s.pitchCorrection = 0, 0, 0
	s.sampleType = 0
	s.minKey, s.maxKey = 0, 0
	s.minVelocity, s.maxVelocity = 0, 0
}

// ID returns the handle assigned at creation.
func (s *Fontsound) ID() uint32 {
	return s.id
}

// RefCount returns the number of external holders.
func (s *Fontsound) RefCount() int32 {
	return s.ref.Load()
}

// IncRef marks the fontsound as in use by one more consumer and returns the new count.
func (s *Fontsound) IncRef() int32 {
	return s.ref.Add(1)
}

// DecRef drops one consumer reference and returns the new count.
func (s *Fontsound) DecRef() int32 {
	return s.ref.Add(-1)
}

// Link returns the linked fontsound, or nil.
func (s *Fontsound) Link() *Fontsound {
	return s.link.Load()
}

// swapLink points the link at target (nil clears it). The new target is
// retained before the exchange and the previous one released after it,
// so a target can never be observed through the link with a zero count.
func (s *Fontsound) swapLink(target *Fontsound) {
	if target != nil {
		target.IncRef()
	}
	if old := s.link.Swap(target); old != nil {
		old.DecRef()
	}
}

// Snapshot copies the current attributes.
func (s *Fontsound) Snapshot() Snapshot {
	snap := Snapshot{
		ID:              s.id,
		RefCount:        s.ref.Load(),
		Start:           s.start,
		End:             s.end,
		LoopStart:       s.loopStart,
		LoopEnd:         s.loopEnd,
		SampleRate:      s.sampleRate,
		PitchKey:        s.pitchKey,
		PitchCorrection: s.pitchCorrection,
		SampleType:      s.sampleType,
		KeyRange:        Range{Min: s.minKey, Max: s.maxKey},
		VelocityRange:   Range{Min: s.minVelocity, Max: s.maxVelocity},
	}
	if l := s.link.Load(); l != nil {
		snap.LinkID = l.id
	}
	return snap
}
