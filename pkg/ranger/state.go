package ranger

import (
	"sync"
	"sync/atomic"
	"time"
)

// Unit is the distance unit readings are taken in.
type Unit uint32

const (
	// Centimeters is the power-on unit.
	Centimeters Unit = iota
	// Inches is selected by the I command.
	Inches
)

// String returns the suffix used on the serial line.
func (u Unit) String() string {
	if u == Inches {
		return "In"
	}
	return "cm"
}

// Other returns the opposite unit.
func (u Unit) Other() Unit {
	if u == Inches {
		return Centimeters
	}
	return Inches
}

// State holds the flags shared between interrupt handlers and the
// measuring task. Single flags are atomics; the per-unit maximum is guarded
// by mu.
type State struct {
	paused    atomic.Bool
	frozen    atomic.Bool
	unit      atomic.Uint32
	holdUntil atomic.Int64

	mu  sync.Mutex
	max [2]uint16
}

// Snapshot is a consistent copy of State.
type Snapshot struct {
	Paused  bool
	Frozen  bool
	Holding bool
	Unit    Unit
	MaxCM   uint16
	MaxIn   uint16
}

// TogglePause flips the pause flag and returns the new value.
func (s *State) TogglePause() bool { return toggle(&s.paused) }

// ToggleFreeze flips the display freeze flag and returns the new value.
func (s *State) ToggleFreeze() bool { return toggle(&s.frozen) }

// ToggleUnit switches between centimeters and inches.
func (s *State) ToggleUnit() Unit {
	for {
		old := s.unit.Load()
		next := uint32(Unit(old).Other())
		if s.unit.CompareAndSwap(old, next) {
			return Unit(next)
		}
	}
}

// Paused reports whether measuring is paused.
func (s *State) Paused() bool { return s.paused.Load() }

// Frozen reports whether the display keeps its value.
func (s *State) Frozen() bool { return s.frozen.Load() }

// Unit is the unit readings are taken in.
func (s *State) Unit() Unit { return Unit(s.unit.Load()) }

// Hold keeps the display on its current value until t.
func (s *State) Hold(t time.Time) { s.holdUntil.Store(t.UnixNano()) }

// Holding reports whether a hold is active at now.
func (s *State) Holding(now time.Time) bool {
	return now.UnixNano() < s.holdUntil.Load()
}

// Record updates the maximum seen for unit and returns it.
func (s *State) Record(unit Unit, v uint16) uint16 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v > s.max[unit&1] {
		s.max[unit&1] = v
	}
	return s.max[unit&1]
}

// Max returns the maximum seen for unit.
func (s *State) Max(unit Unit) uint16 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.max[unit&1]
}

// Snapshot copies the state at now.
func (s *State) Snapshot(now time.Time) Snapshot {
	s.mu.Lock()
	maxCM, maxIn := s.max[Centimeters], s.max[Inches]
	s.mu.Unlock()
	return Snapshot{
		Paused:  s.Paused(),
		Frozen:  s.Frozen(),
		Holding: s.Holding(now),
		Unit:    s.Unit(),
		MaxCM:   maxCM,
		MaxIn:   maxIn,
	}
}

func toggle(b *atomic.Bool) bool {
	for {
		old := b.Load()
		if b.CompareAndSwap(old, !old) {
			return !old
		}
	}
}
