package sim

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/itohio/esplab/pkg/bcd"
	"github.com/itohio/esplab/pkg/config"
	"github.com/itohio/esplab/pkg/ranger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestNewPins(t *testing.T) {
	pins := NewPins("LED", 3)
	require.Len(t, pins, 3)
	assert.Equal(t, "LED1", pins[0].N)
	assert.Equal(t, "LED3", pins[2].N)

	require.NoError(t, pins[1].Out(gpio.High))
	assert.Equal(t, []bool{false, true, false}, Levels(pins))
}

func TestLatchedDisplay(t *testing.T) {
	d, err := NewLatchedDisplay(3, 0)
	require.NoError(t, err)

	require.NoError(t, d.Write(354))
	assert.Equal(t, []uint8{3, 5, 4}, d.Shown())
	assert.Equal(t, uint32(354), d.Value())

	require.NoError(t, d.Write(7))
	assert.Equal(t, []uint8{0, 0, 7}, d.Shown())
	assert.Equal(t, uint64(2), d.Writes())
}

func TestLatchedDisplay_PartialRender(t *testing.T) {
	d, err := NewLatchedDisplay(3, 0)
	require.NoError(t, err)
	require.NoError(t, d.Write(999))

	// Only the first position is strobed, the others keep their latch.
	require.NoError(t, d.RenderDigits(5, 1))
	assert.Equal(t, []uint8{5, 9, 9}, d.Shown())
}

func TestLatchedDisplay_Invalid(t *testing.T) {
	_, err := NewLatchedDisplay(0, 0)
	assert.Error(t, err)
	_, err = NewLatchedDisplay(4, 0)
	assert.Error(t, err)
	_, err = NewLatchedDisplay(-1, 0)
	assert.ErrorIs(t, err, bcd.ErrPinMap)
}

func TestSensor(t *testing.T) {
	s := NewSensor(nil)
	s.SetDistance(100)

	cm, err := s.ReadCentimeters()
	require.NoError(t, err)
	assert.Equal(t, uint16(100), cm)

	in, err := s.ReadInches()
	require.NoError(t, err)
	assert.Equal(t, uint16(39), in)
	assert.Equal(t, 2, s.Reads())
}

func TestSensor_Wave(t *testing.T) {
	cfg := config.MockConfig{BaseCM: 50, AmplitudeCM: 20, WavePeriod: 4 * time.Second}
	s := NewSensor(&cfg)
	now := s.start
	s.now = func() time.Time { return now }

	assert.InDelta(t, 50, s.Distance(), 0.01)
	now = s.start.Add(time.Second)
	assert.InDelta(t, 70, s.Distance(), 0.01)
	now = s.start.Add(3 * time.Second)
	assert.InDelta(t, 30, s.Distance(), 0.01)

	s.SetDistance(12)
	assert.InDelta(t, 12, s.Distance(), 0.001)
	s.ClearDistance()
	assert.InDelta(t, 30, s.Distance(), 0.01)
}

func TestSensor_NeverNegative(t *testing.T) {
	cfg := config.MockConfig{BaseCM: 5, AmplitudeCM: 20, WavePeriod: 4 * time.Second}
	s := NewSensor(&cfg)
	s.now = func() time.Time { return s.start.Add(3 * time.Second) }
	assert.Equal(t, float32(0), s.Distance())
}

func TestLoopback(t *testing.T) {
	l := NewLoopback(3300)
	require.NoError(t, l.Write(255))
	mv, err := l.ReadMillivolts()
	require.NoError(t, err)
	assert.Equal(t, uint16(3300), mv)

	require.NoError(t, l.Write(0))
	mv, err = l.ReadMillivolts()
	require.NoError(t, err)
	assert.Equal(t, uint16(0), mv)
	assert.Equal(t, uint64(2), l.Writes())
	assert.Equal(t, uint8(0), l.Sample())
}

func TestSineADC(t *testing.T) {
	a := NewSineADC(3300, 4*time.Second)
	now := a.start
	a.now = func() time.Time { return now }

	mv, err := a.ReadMillivolts()
	require.NoError(t, err)
	assert.Equal(t, uint16(1650), mv)

	now = a.start.Add(time.Second)
	mv, err = a.ReadMillivolts()
	require.NoError(t, err)
	assert.Equal(t, uint16(3300), mv)
}

func testConfig(scenario string) *config.Config {
	cfg := config.Default()
	cfg.Ranger.Scenario = scenario
	cfg.Ranger.Period = 10 * time.Millisecond
	cfg.Ranger.MinPeriod = 5 * time.Millisecond
	cfg.Ranger.Step = 5 * time.Millisecond
	cfg.Ranger.PollPeriod = 2 * time.Millisecond
	return cfg
}

func TestBoard_Serial(t *testing.T) {
	out := &syncBuffer{}
	b, err := NewBoard(testConfig("serial"), out)
	require.NoError(t, err)
	b.Sensor.SetDistance(25)

	require.NoError(t, b.Start(context.Background()))
	defer b.Stop()
	assert.ErrorIs(t, b.Start(context.Background()), ErrRunning)

	assert.Eventually(t, func() bool {
		return b.Snapshot().Display == 25
	}, time.Second, 5*time.Millisecond)
	assert.Contains(t, out.String(), "25 cm\r\n")

	st := b.Snapshot()
	assert.Equal(t, []bool{true, true, false}, st.LEDs)
	assert.Equal(t, uint16(25), st.Last)
	assert.Equal(t, uint16(25), st.MaxCM)
	assert.Positive(t, st.Runs)

	b.Command('I')
	assert.Eventually(t, func() bool {
		return b.Snapshot().Display == 9
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, ranger.Inches, b.Snapshot().Unit)

	b.Command('S')
	assert.Equal(t, 15*time.Millisecond, b.Snapshot().Period)
}

func TestBoard_InterruptSwitches(t *testing.T) {
	b, err := NewBoard(testConfig("interrupt"), nil)
	require.NoError(t, err)
	b.Sensor.SetDistance(12)

	require.NoError(t, b.Start(context.Background()))
	defer b.Stop()

	assert.Eventually(t, func() bool {
		return b.Snapshot().Display == 12
	}, time.Second, 5*time.Millisecond)

	b.Press(ranger.SW2)
	assert.True(t, b.Snapshot().Frozen)
	b.Sensor.SetDistance(40)
	assert.Eventually(t, func() bool {
		return b.Snapshot().Last == 40
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, uint32(12), b.Snapshot().Display)

	b.Press(ranger.SW1)
	assert.True(t, b.Snapshot().Paused)

	// Commands are not part of this scenario.
	b.Command('O')
	assert.True(t, b.Snapshot().Paused)
}

func TestBoard_PolledSwitches(t *testing.T) {
	b, err := NewBoard(testConfig("polled"), nil)
	require.NoError(t, err)
	b.Sensor.SetDistance(33)

	require.NoError(t, b.Start(context.Background()))
	defer b.Stop()

	assert.Eventually(t, func() bool {
		return b.Snapshot().Display == 33
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []bool{true, true, true}, b.Snapshot().LEDs)

	b.Press(ranger.SW1)
	assert.Eventually(t, func() bool {
		return b.Snapshot().Paused
	}, time.Second, time.Millisecond)
}

func TestBoard_GracefulShutdown(t *testing.T) {
	b, err := NewBoard(testConfig("serial"), &syncBuffer{})
	require.NoError(t, err)
	require.NoError(t, b.Start(context.Background()))
	assert.True(t, b.Running())

	done := make(chan struct{})
	go func() {
		b.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("board did not stop")
	}
	assert.False(t, b.Running())

	// Restart after stop.
	require.NoError(t, b.Start(context.Background()))
	b.Stop()
}

func TestNewBoard_Invalid(t *testing.T) {
	cfg := config.Default()
	cfg.Ranger.Scenario = "nope"
	_, err := NewBoard(cfg, nil)
	assert.Error(t, err)

	cfg = config.Default()
	cfg.Display.Digits = 5
	_, err = NewBoard(cfg, nil)
	assert.Error(t, err)

	cfg = config.Default()
	cfg.Display.Digits = -1
	_, err = NewBoard(cfg, nil)
	assert.ErrorIs(t, err, bcd.ErrPinMap)

	// Serial scenario needs somewhere to write.
	_, err = NewBoard(config.Default(), nil)
	assert.ErrorIs(t, err, ranger.ErrMissing)
}
