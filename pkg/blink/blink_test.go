package blink

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/itohio/esplab/pkg/hal"
	"github.com/itohio/esplab/pkg/leds"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
)

type trace struct {
	mu  sync.Mutex
	log []string
}

func (tr *trace) bank(n int) *leds.Bank {
	lines := make([]hal.Line, n)
	for i := range lines {
		name := string(rune('A' + i))
		lines[i] = hal.LineFunc(func(l gpio.Level) error {
			tr.mu.Lock()
			defer tr.mu.Unlock()
			if l {
				tr.log = append(tr.log, name+"+")
			} else {
				tr.log = append(tr.log, name+"-")
			}
			return nil
		})
	}
	return leds.NewBank(lines...)
}

func (tr *trace) entries() []string {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return append([]string(nil), tr.log...)
}

func TestApply_OnOff(t *testing.T) {
	tr := &trace{}
	bank := tr.bank(3)

	require.NoError(t, Apply(context.Background(), bank, Command{Mode: On, LED: 2}))
	require.NoError(t, Apply(context.Background(), bank, Command{Mode: Off, LED: 2}))
	assert.Equal(t, []string{"C+", "C-"}, tr.entries())

	assert.ErrorIs(t, Apply(context.Background(), bank, Command{Mode: On, LED: 5}), leds.ErrNoLED)
	assert.Error(t, Apply(context.Background(), bank, Command{Mode: Mode(9)}))
}

func TestApply_Toggle(t *testing.T) {
	tr := &trace{}
	bank := tr.bank(1)

	cmd := Command{Mode: Toggle, LED: 0, Cycles: 3, Period: time.Millisecond}
	require.NoError(t, Apply(context.Background(), bank, cmd))
	assert.Equal(t, []string{"A+", "A-", "A+", "A-", "A+", "A-"}, tr.entries())
	assert.False(t, bank.State(0), "an even number of toggles ends where it started")
}

func TestApply_ToggleCancelled(t *testing.T) {
	tr := &trace{}
	bank := tr.bank(1)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Millisecond)
	defer cancel()
	err := Apply(ctx, bank, Command{Mode: Toggle, Cycles: 100, Period: 10 * time.Millisecond})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, len(tr.entries()), 200)
}

func TestRunSequence_Once(t *testing.T) {
	tr := &trace{}
	bank := tr.bank(3)

	steps := []Step{{LED: 2, For: time.Millisecond}, {LED: 1}, {LED: 0, For: time.Millisecond}}
	require.NoError(t, RunSequence(context.Background(), bank, steps, false))
	assert.Equal(t, []string{"C+", "C-", "B+", "B-", "A+", "A-"}, tr.entries())
}

func TestRunSequence_LoopStopsOnCancel(t *testing.T) {
	tr := &trace{}
	bank := tr.bank(3)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- RunSequence(ctx, bank, []Step{{LED: 0, For: time.Millisecond}}, true)
	}()

	require.Eventually(t, func() bool { return len(tr.entries()) >= 6 }, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("RunSequence did not return after cancel")
	}
	assert.False(t, bank.State(0), "LED is left off")
}

func TestTrafficLight(t *testing.T) {
	var total time.Duration
	for _, s := range TrafficLight {
		assert.GreaterOrEqual(t, s.LED, 0)
		assert.Less(t, s.LED, 3)
		total += s.For
	}
	assert.Equal(t, 7*time.Second, total)
}
