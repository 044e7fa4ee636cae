package sim

import (
	"sync"
	"time"

	"github.com/chewxy/math32"
	"github.com/itohio/esplab/pkg/config"
)

const cmPerInch = 2.54

// Sensor simulates an ultrasonic ranger looking at a target that swings
// back and forth.
type Sensor struct {
	cfg   config.MockConfig
	start time.Time
	now   func() time.Time

	mu       sync.Mutex
	override bool
	fixed    float32
	reads    int
}

// NewSensor creates a sensor. A nil cfg uses the default mock settings.
func NewSensor(cfg *config.MockConfig) *Sensor {
	if cfg == nil {
		cfg = &config.Default().Mock
	}
	now := time.Now
	return &Sensor{cfg: *cfg, start: now(), now: now}
}

// SetDistance pins the target at cm until ClearDistance.
func (s *Sensor) SetDistance(cm float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.override = true
	s.fixed = cm
}

// ClearDistance returns to the swinging target.
func (s *Sensor) ClearDistance() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.override = false
}

// Reads is the number of measurements taken.
func (s *Sensor) Reads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads
}

// Distance returns the current target distance in centimeters.
func (s *Sensor) Distance() float32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.distanceLocked()
}

func (s *Sensor) distanceLocked() float32 {
	if s.override {
		return s.fixed
	}
	t := float32(s.now().Sub(s.start).Seconds())
	period := float32(s.cfg.WavePeriod.Seconds())
	d := s.cfg.BaseCM
	if period > 0 {
		d += s.cfg.AmplitudeCM * math32.Sin(2*math32.Pi*t/period)
	}
	// Deterministic jitter, two incommensurate tones.
	d += s.cfg.NoiseCM * 0.5 * (math32.Sin(t*37.1) + math32.Cos(t*53.3))
	if d < 0 {
		d = 0
	}
	return d
}

// ReadCentimeters implements hal.DistanceSensor.
func (s *Sensor) ReadCentimeters() (uint16, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	return uint16(math32.Round(s.distanceLocked())), nil
}

// ReadInches implements hal.DistanceSensor. Like the HC-SR04 driver it
// truncates to whole inches.
func (s *Sensor) ReadInches() (uint16, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	return uint16(s.distanceLocked() / cmPerInch), nil
}
