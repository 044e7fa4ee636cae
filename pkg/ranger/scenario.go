package ranger

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/itohio/esplab/pkg/leds"
)

// ErrOptions is returned by Options.Validate.
var ErrOptions = errors.New("invalid ranger options")

// Options select the behaviour of one exercise variant.
type Options struct {
	Bands     leds.Bands
	Period    time.Duration // initial sampling period
	Step      time.Duration // F/S adjustment
	MinPeriod time.Duration // F never goes below this
	Hold      time.Duration // how long M keeps the maximum on the LCD
	TrackMax  bool          // keep a per-unit maximum, enables M
	Stream    bool          // send every reading over serial
	Commands  bool          // accept serial commands
}

// DefaultOptions are the timings used by the exercises.
func DefaultOptions() Options {
	return Options{
		Bands:     leds.DefaultBands,
		Period:    time.Second,
		Step:      100 * time.Millisecond,
		MinPeriod: 100 * time.Millisecond,
		Hold:      5 * time.Second,
	}
}

// Validate checks the option values.
func (o Options) Validate() error {
	if err := o.Bands.Validate(); err != nil {
		return err
	}
	if o.Period <= 0 {
		return fmt.Errorf("%w: period %v", ErrOptions, o.Period)
	}
	if o.Commands && (o.Step <= 0 || o.MinPeriod <= 0) {
		return fmt.Errorf("%w: step %v, min period %v", ErrOptions, o.Step, o.MinPeriod)
	}
	return nil
}

// Scenario names one of the distance exercise variants. They differ in
// fixed logic and are kept apart rather than merged.
type Scenario int

const (
	// ScenarioPolled measures on a fixed delay and polls the switches.
	ScenarioPolled Scenario = iota
	// ScenarioInterrupt measures on timer wakes and reacts to switch
	// interrupts. Centimeters only, no serial.
	ScenarioInterrupt
	// ScenarioSerial adds serial streaming, units, maximum tracking and the
	// single byte command set.
	ScenarioSerial
)

var scenarioNames = map[Scenario]string{
	ScenarioPolled:    "polled",
	ScenarioInterrupt: "interrupt",
	ScenarioSerial:    "serial",
}

func (s Scenario) String() string {
	if name, ok := scenarioNames[s]; ok {
		return name
	}
	return fmt.Sprintf("scenario(%d)", int(s))
}

// ParseScenario parses a scenario name.
func ParseScenario(name string) (Scenario, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for s, n := range scenarioNames {
		if n == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown scenario %q", name)
}

// Options returns DefaultOptions with the scenario's features enabled.
func (s Scenario) Options() Options {
	o := DefaultOptions()
	if s == ScenarioSerial {
		o.TrackMax = true
		o.Stream = true
		o.Commands = true
	}
	return o
}

// Timed reports whether the scenario is driven by a timer wake.
func (s Scenario) Timed() bool { return s != ScenarioPolled }
