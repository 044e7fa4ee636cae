package config

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/itohio/esplab/pkg/bcd"
	"github.com/itohio/esplab/pkg/leds"
	"github.com/itohio/esplab/pkg/ranger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.NotNil(t, cfg)
	assert.Equal(t, "/dev/ttyUSB0", cfg.Serial.Port)
	assert.Equal(t, 9600, cfg.Serial.BaudRate)
	assert.Equal(t, "serial", cfg.Ranger.Scenario)
	assert.Equal(t, time.Second, cfg.Ranger.Period)
	assert.Equal(t, 100*time.Millisecond, cfg.Ranger.Step)
	assert.Equal(t, 5*time.Second, cfg.Ranger.Hold)
	assert.Equal(t, []uint16{10, 20, 30}, cfg.Ranger.Bands)
	assert.Equal(t, 3, cfg.Display.Digits)
	assert.Equal(t, uint32(25), cfg.Analog.ADCRateHz)
	assert.Equal(t, uint32(50), cfg.Analog.DACRateHz)
	assert.Equal(t, ">adcCH1:", cfg.Analog.Prefix)
}

func TestLoad_FileNotExists(t *testing.T) {
	cfg, err := Load("nonexistent.yaml")
	require.NoError(t, err)
	assert.NotNil(t, cfg)
	assert.Equal(t, "/dev/ttyUSB0", cfg.Serial.Port)
}

func TestLoad_ValidYAML(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	yamlContent := `
serial:
  port: "/dev/ttyACM0"
  baud_rate: 115200

ranger:
  scenario: interrupt
  period: 500ms
  step: 50ms
  hold: 2s
  bands: [5, 15, 25]

display:
  digits: 2
  hold: 1ms

analog:
  adc_rate_hz: 100
  prefix: ">ch:"

mock:
  base_cm: 40
  amplitude_cm: 10
  wave_period: 5s
`

	_, err = tmpfile.WriteString(yamlContent)
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	require.NoError(t, err)

	assert.Equal(t, "/dev/ttyACM0", cfg.Serial.Port)
	assert.Equal(t, 115200, cfg.Serial.BaudRate)
	assert.Equal(t, "interrupt", cfg.Ranger.Scenario)
	assert.Equal(t, 500*time.Millisecond, cfg.Ranger.Period)
	assert.Equal(t, 50*time.Millisecond, cfg.Ranger.Step)
	assert.Equal(t, 2*time.Second, cfg.Ranger.Hold)
	assert.Equal(t, []uint16{5, 15, 25}, cfg.Ranger.Bands)
	assert.Equal(t, 2, cfg.Display.Digits)
	assert.Equal(t, time.Millisecond, cfg.Display.Hold)
	assert.Equal(t, uint32(100), cfg.Analog.ADCRateHz)
	assert.Equal(t, ">ch:", cfg.Analog.Prefix)
	assert.Equal(t, float32(40), cfg.Mock.BaseCM)
	assert.Equal(t, 5*time.Second, cfg.Mock.WavePeriod)

	// Missing fields fall back to defaults.
	assert.Equal(t, 100*time.Millisecond, cfg.Ranger.MinPeriod)
	assert.Equal(t, uint32(50), cfg.Analog.DACRateHz)
	assert.Equal(t, 5*time.Millisecond, cfg.Display.Refresh)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ranger: [unclosed"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_InvalidRanger(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "unknown scenario", yaml: "ranger:\n  scenario: bogus\n"},
		{name: "descending bands", yaml: "ranger:\n  bands: [30, 20, 10]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "cfg.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoad_InvalidDisplay(t *testing.T) {
	for _, digits := range []int{-1, 4} {
		path := filepath.Join(t.TempDir(), "cfg.yaml")
		data := []byte("display:\n  digits: " + strconv.Itoa(digits) + "\n")
		require.NoError(t, os.WriteFile(path, data, 0644))
		_, err := Load(path)
		assert.ErrorIs(t, err, bcd.ErrPinMap, "digits %d", digits)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")

	cfg := Default()
	cfg.Serial.Port = "COM7"
	cfg.Ranger.Scenario = "polled"
	cfg.Ranger.Period = 250 * time.Millisecond
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestRangerConfig_Options(t *testing.T) {
	cfg := Default()

	opts, err := cfg.Ranger.Options()
	require.NoError(t, err)
	assert.True(t, opts.Commands)
	assert.True(t, opts.TrackMax)
	assert.Equal(t, leds.Bands{10, 20, 30}, opts.Bands)
	assert.Equal(t, time.Second, opts.Period)

	cfg.Ranger.Scenario = "interrupt"
	opts, err = cfg.Ranger.Options()
	require.NoError(t, err)
	assert.False(t, opts.Stream)
	assert.Equal(t, ranger.ScenarioInterrupt, cfg.Ranger.ScenarioValue())

	cfg.Ranger.Scenario = "nope"
	_, err = cfg.Ranger.Options()
	assert.Error(t, err)
	assert.Equal(t, ranger.ScenarioSerial, cfg.Ranger.ScenarioValue())
}
