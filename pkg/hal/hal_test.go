package hal

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

func TestLineFunc(t *testing.T) {
	var got []gpio.Level
	l := LineFunc(func(level gpio.Level) error {
		got = append(got, level)
		return nil
	})
	require.NoError(t, l.Out(gpio.High))
	require.NoError(t, l.Out(gpio.Low))
	assert.Equal(t, []gpio.Level{gpio.High, gpio.Low}, got)

	boom := errors.New("boom")
	assert.ErrorIs(t, LineFunc(func(gpio.Level) error { return boom }).Out(gpio.High), boom)
}

func TestLines(t *testing.T) {
	a := &gpiotest.Pin{N: "A"}
	b := &gpiotest.Pin{N: "B"}
	lines := Lines(a, b)
	require.Len(t, lines, 2)

	require.NoError(t, lines[1].Out(gpio.High))
	assert.Equal(t, gpio.Low, a.Read())
	assert.Equal(t, gpio.High, b.Read())
}
