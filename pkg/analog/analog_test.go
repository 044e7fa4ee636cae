package analog

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeADC struct {
	values []uint16
	err    error
	n      int
}

func (a *fakeADC) ReadMillivolts() (uint16, error) {
	if a.err != nil {
		return 0, a.err
	}
	v := a.values[a.n%len(a.values)]
	a.n++
	return v, nil
}

type fakeDAC struct {
	written []uint8
}

func (d *fakeDAC) Write(s uint8) error {
	d.written = append(d.written, s)
	return nil
}

func TestSampler_Lines(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		values []uint16
		want   string
	}{
		{name: "bare", values: []uint16{0, 1650, 3300}, want: "0\r\n1650\r\n3300\r\n"},
		{name: "plotter prefix", prefix: ">adcCH1:", values: []uint16{12, 3}, want: ">adcCH1:12\r\n>adcCH1:3\r\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			s := NewSampler(&fakeADC{values: tt.values}, &out, tt.prefix)
			for range tt.values {
				require.NoError(t, s.Sample(context.Background()))
			}
			assert.Equal(t, tt.want, out.String())
			assert.Equal(t, tt.values[len(tt.values)-1], s.Last())
		})
	}
}

func TestSampler_Error(t *testing.T) {
	var out bytes.Buffer
	adcErr := errors.New("adc busy")
	s := NewSampler(&fakeADC{err: adcErr}, &out, "")

	assert.ErrorIs(t, s.Sample(context.Background()), adcErr)
	assert.Zero(t, out.Len())
}

func TestPlayer_Wraps(t *testing.T) {
	dac := &fakeDAC{}
	p, err := NewPlayer(dac, []uint8{1, 2, 3})
	require.NoError(t, err)

	for i := 0; i < 7; i++ {
		require.NoError(t, p.Step(context.Background()))
	}
	assert.Equal(t, []uint8{1, 2, 3, 1, 2, 3, 1}, dac.written)
	assert.Equal(t, 1, p.Index())
}

func TestPlayer_ECG(t *testing.T) {
	dac := &fakeDAC{}
	p, err := NewPlayer(dac, ECG)
	require.NoError(t, err)

	for range ECG {
		require.NoError(t, p.Step(context.Background()))
	}
	assert.Equal(t, ECG, dac.written)
	assert.Equal(t, 0, p.Index())
	assert.Contains(t, ECG, uint8(252), "R peak present")
}

func TestNewPlayer_Empty(t *testing.T) {
	_, err := NewPlayer(&fakeDAC{}, nil)
	assert.ErrorIs(t, err, ErrEmptyWave)
}
