// Package analog holds the ADC sampling and DAC playback work units.
package analog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/itohio/esplab/pkg/hal"
)

// Default sampling rates of the exercises.
const (
	SamplerRateHz = 500 // single channel streaming exercise
	ADCRateHz     = 25  // acquisition while playing back
	DACRateHz     = 50  // playback
)

// ErrEmptyWave is returned for a player without samples.
var ErrEmptyWave = errors.New("empty waveform")

// Sampler reads one ADC value per call and writes it as a text line.
type Sampler struct {
	adc    hal.ADC
	out    io.Writer
	prefix string
	buf    []byte
	last   uint16
	mu     sync.Mutex
}

// NewSampler writes "<prefix><mV>\r\n" lines to out. prefix may be empty;
// ">name:" makes the stream readable by serial plotters.
func NewSampler(adc hal.ADC, out io.Writer, prefix string) *Sampler {
	return &Sampler{adc: adc, out: out, prefix: prefix, buf: make([]byte, 0, 32)}
}

// Sample is the work unit.
func (s *Sampler) Sample(ctx context.Context) error {
	v, err := s.adc.ReadMillivolts()
	if err != nil {
		return fmt.Errorf("adc: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = v
	s.buf = append(s.buf[:0], s.prefix...)
	s.buf = strconv.AppendUint(s.buf, uint64(v), 10)
	s.buf = append(s.buf, "\r\n"...)
	if _, err := s.out.Write(s.buf); err != nil {
		return fmt.Errorf("serial: %w", err)
	}
	return nil
}

// Last returns the most recent sample.
func (s *Sampler) Last() uint16 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Player writes a waveform to a DAC one sample per call, wrapping around.
type Player struct {
	dac  hal.DAC
	wave []uint8

	mu  sync.Mutex
	idx int
}

// NewPlayer plays wave on dac.
func NewPlayer(dac hal.DAC, wave []uint8) (*Player, error) {
	if len(wave) == 0 {
		return nil, ErrEmptyWave
	}
	return &Player{dac: dac, wave: wave}, nil
}

// Step is the work unit.
func (p *Player) Step(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.dac.Write(p.wave[p.idx]); err != nil {
		return fmt.Errorf("dac: %w", err)
	}
	p.idx = (p.idx + 1) % len(p.wave)
	return nil
}

// Index returns the position of the next sample.
func (p *Player) Index() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.idx
}
