package config

import (
	"fmt"
	"os"
	"time"

	"github.com/itohio/esplab/pkg/bcd"
	"github.com/itohio/esplab/pkg/leds"
	"github.com/itohio/esplab/pkg/ranger"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Serial  SerialConfig  `yaml:"serial"`
	Ranger  RangerConfig  `yaml:"ranger"`
	Display DisplayConfig `yaml:"display"`
	Analog  AnalogConfig  `yaml:"analog"`
	Mock    MockConfig    `yaml:"mock"`
	Panel   PanelConfig   `yaml:"panel"`
}

// SerialConfig contains serial port configuration.
type SerialConfig struct {
	Port     string `yaml:"port"`
	BaudRate int    `yaml:"baud_rate"`
}

// RangerConfig configures the distance exercise.
type RangerConfig struct {
	Scenario  string        `yaml:"scenario"` // polled, interrupt or serial
	Period    time.Duration `yaml:"period"`
	Step      time.Duration `yaml:"step"`
	MinPeriod time.Duration `yaml:"min_period"`
	Hold      time.Duration `yaml:"hold"`
	Bands     []uint16      `yaml:"bands"`
	// PollPeriod is how often the polled scenario reads the switches.
	PollPeriod time.Duration `yaml:"poll_period"`
}

// DisplayConfig configures the BCD display.
type DisplayConfig struct {
	Digits  int           `yaml:"digits"`
	Hold    time.Duration `yaml:"hold"`    // enable strobe width, 0 = back to back
	Refresh time.Duration `yaml:"refresh"` // multiplex refresh period
}

// AnalogConfig configures the ADC/DAC exercises.
type AnalogConfig struct {
	SamplerRateHz uint32 `yaml:"sampler_rate_hz"`
	ADCRateHz     uint32 `yaml:"adc_rate_hz"`
	DACRateHz     uint32 `yaml:"dac_rate_hz"`
	Prefix        string `yaml:"prefix"`
}

// MockConfig contains simulated sensor parameters.
type MockConfig struct {
	BaseCM      float32       `yaml:"base_cm"`      // mean distance (cm)
	AmplitudeCM float32       `yaml:"amplitude_cm"` // swing around the mean (cm)
	NoiseCM     float32       `yaml:"noise_cm"`     // noise level (cm)
	WavePeriod  time.Duration `yaml:"wave_period"`  // time for one swing
}

// PanelConfig configures the front panel application.
type PanelConfig struct {
	TracePoints int           `yaml:"trace_points"`
	Window      time.Duration `yaml:"window"`
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	return &Config{
		Serial: SerialConfig{
			Port:     "/dev/ttyUSB0",
			BaudRate: 9600,
		},
		Ranger: RangerConfig{
			Scenario:   ranger.ScenarioSerial.String(),
			Period:     time.Second,
			Step:       100 * time.Millisecond,
			MinPeriod:  100 * time.Millisecond,
			Hold:       5 * time.Second,
			Bands:      []uint16{10, 20, 30},
			PollPeriod: 30 * time.Millisecond,
		},
		Display: DisplayConfig{
			Digits:  3,
			Hold:    0,
			Refresh: 5 * time.Millisecond,
		},
		Analog: AnalogConfig{
			SamplerRateHz: 500,
			ADCRateHz:     25,
			DACRateHz:     50,
			Prefix:        ">adcCH1:",
		},
		Mock: MockConfig{
			BaseCM:      30,
			AmplitudeCM: 25,
			NoiseCM:     0.5,
			WavePeriod:  20 * time.Second,
		},
		Panel: PanelConfig{
			TracePoints: 500,
			Window:      time.Minute,
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ensureDefaults()

	if _, err := cfg.Ranger.Options(); err != nil {
		return nil, fmt.Errorf("invalid ranger config: %w", err)
	}
	if cfg.Display.Digits < 1 || cfg.Display.Digits > bcd.MaxDigits {
		return nil, fmt.Errorf("invalid display config: %w: %d digits, want 1..%d", bcd.ErrPinMap, cfg.Display.Digits, bcd.MaxDigits)
	}

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Options turns the ranger section into ranger options for its scenario.
func (r RangerConfig) Options() (ranger.Options, error) {
	s, err := ranger.ParseScenario(r.Scenario)
	if err != nil {
		return ranger.Options{}, err
	}
	o := s.Options()
	o.Period = r.Period
	o.Step = r.Step
	o.MinPeriod = r.MinPeriod
	o.Hold = r.Hold
	o.Bands = append(leds.Bands(nil), r.Bands...)
	if err := o.Validate(); err != nil {
		return ranger.Options{}, err
	}
	return o, nil
}

// ScenarioValue returns the parsed scenario, falling back to serial.
func (r RangerConfig) ScenarioValue() ranger.Scenario {
	s, err := ranger.ParseScenario(r.Scenario)
	if err != nil {
		return ranger.ScenarioSerial
	}
	return s
}

// ensureDefaults ensures that all required fields have default values if missing.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Serial.Port == "" {
		c.Serial.Port = def.Serial.Port
	}
	if c.Serial.BaudRate == 0 {
		c.Serial.BaudRate = def.Serial.BaudRate
	}

	if c.Ranger.Scenario == "" {
		c.Ranger.Scenario = def.Ranger.Scenario
	}
	if c.Ranger.Period == 0 {
		c.Ranger.Period = def.Ranger.Period
	}
	if c.Ranger.Step == 0 {
		c.Ranger.Step = def.Ranger.Step
	}
	if c.Ranger.MinPeriod == 0 {
		c.Ranger.MinPeriod = def.Ranger.MinPeriod
	}
	if c.Ranger.Hold == 0 {
		c.Ranger.Hold = def.Ranger.Hold
	}
	if len(c.Ranger.Bands) == 0 {
		c.Ranger.Bands = def.Ranger.Bands
	}
	if c.Ranger.PollPeriod == 0 {
		c.Ranger.PollPeriod = def.Ranger.PollPeriod
	}

	if c.Display.Digits == 0 {
		c.Display.Digits = def.Display.Digits
	}
	if c.Display.Refresh == 0 {
		c.Display.Refresh = def.Display.Refresh
	}

	if c.Analog.SamplerRateHz == 0 {
		c.Analog.SamplerRateHz = def.Analog.SamplerRateHz
	}
	if c.Analog.ADCRateHz == 0 {
		c.Analog.ADCRateHz = def.Analog.ADCRateHz
	}
	if c.Analog.DACRateHz == 0 {
		c.Analog.DACRateHz = def.Analog.DACRateHz
	}

	if c.Mock.WavePeriod == 0 {
		c.Mock.WavePeriod = def.Mock.WavePeriod
	}

	if c.Panel.TracePoints == 0 {
		c.Panel.TracePoints = def.Panel.TracePoints
	}
	if c.Panel.Window == 0 {
		c.Panel.Window = def.Panel.Window
	}
}
