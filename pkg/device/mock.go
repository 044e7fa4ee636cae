package device

import (
	"context"
	"io"
	"sync"

	"github.com/itohio/esplab/pkg/config"
	"github.com/itohio/esplab/pkg/sim"
)

// Mock runs the distance exercise on a simulated board in process. Its
// serial output is parsed exactly like a real port.
type Mock struct {
	cfg *config.Config

	board     *sim.Board
	readings  chan Reading
	mu        sync.RWMutex
	cancel    context.CancelFunc
	pw        *io.PipeWriter
	done      chan struct{}
	connected bool
	closed    bool
}

// NewMock creates a mocked device. A nil cfg uses the defaults.
func NewMock(cfg *config.Config) *Mock {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Mock{
		cfg:      cfg,
		readings: make(chan Reading, DefaultBufferSize),
	}
}

// Connect powers up the simulated board.
func (m *Mock) Connect() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch {
	case m.closed:
		return ErrClosed
	case m.connected:
		return ErrConnected
	}

	pr, pw := io.Pipe()
	board, err := sim.NewBoard(m.cfg, pw)
	if err != nil {
		pw.Close()
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	if err := board.Start(ctx); err != nil {
		cancel()
		pw.Close()
		return err
	}

	m.board = board
	m.cancel = cancel
	m.pw = pw
	m.done = make(chan struct{})
	m.connected = true

	go func() {
		defer close(m.done)
		scanReadings(ctx, pr, m.readings)
		// Keep draining so a board write in flight can finish.
		_, _ = io.Copy(io.Discard, pr)
	}()

	return nil
}

// Close stops the board and closes the readings channel.
func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected {
		return nil
	}

	m.cancel()
	m.board.Stop()
	m.pw.Close()
	<-m.done

	m.connected = false
	m.closed = true
	close(m.readings)
	return nil
}

// Readings returns the channel of parsed readings.
func (m *Mock) Readings() <-chan Reading {
	return m.readings
}

// Send delivers a command byte to the board.
func (m *Mock) Send(cmd byte) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.connected {
		return ErrNotConnected
	}
	m.board.Command(cmd)
	return nil
}

// Press presses one of the board switches.
func (m *Mock) Press(sw uint8) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.connected {
		return ErrNotConnected
	}
	m.board.Press(sw)
	return nil
}

// Status reads the simulated board. ok is false while disconnected.
func (m *Mock) Status() (sim.Status, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.connected {
		return sim.Status{}, false
	}
	return m.board.Snapshot(), true
}

// IsConnected returns whether the device is currently connected.
func (m *Mock) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connected
}
