package device

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"

	"go.bug.st/serial"
)

const (
	// DefaultBaudRate is the UART speed of the exercises.
	DefaultBaudRate = 9600
	// DefaultBufferSize is the default size for the readings channel buffer.
	DefaultBufferSize = 100
)

var (
	ErrConnected    = errors.New("already connected")
	ErrNotConnected = errors.New("not connected")
	ErrClosed       = errors.New("device closed")
)

// Port represents a serial port.
type Port struct {
	Name        string
	Description string
}

// Serial is a board attached to a serial port.
type Serial struct {
	port     string
	baudRate int

	// open is replaced in tests.
	open func(port string, mode *serial.Mode) (io.ReadWriteCloser, error)

	conn      io.ReadWriteCloser
	readings  chan Reading
	mu        sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
	connected bool
	closed    bool
}

// New creates a serial device. Zero baudRate or bufSize select the defaults.
func New(port string, baudRate int, bufSize int) *Serial {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	if bufSize == 0 {
		bufSize = DefaultBufferSize
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Serial{
		port:     port,
		baudRate: baudRate,
		open:     openPort,
		readings: make(chan Reading, bufSize),
		ctx:      ctx,
		cancel:   cancel,
	}
}

func openPort(port string, mode *serial.Mode) (io.ReadWriteCloser, error) {
	return serial.Open(port, mode)
}

// Ports returns a list of available serial ports.
func Ports() ([]Port, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}

	result := make([]Port, 0, len(ports))
	for _, name := range ports {
		result = append(result, Port{Name: name, Description: name})
	}
	return result, nil
}

// Connect opens the port and starts reading lines.
func (d *Serial) Connect() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch {
	case d.closed:
		return ErrClosed
	case d.connected:
		return ErrConnected
	}

	conn, err := d.open(d.port, &serial.Mode{BaudRate: d.baudRate})
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", d.port, err)
	}

	d.conn = conn
	d.connected = true
	d.done = make(chan struct{})

	go func() {
		defer close(d.done)
		scanReadings(d.ctx, conn, d.readings)
	}()

	return nil
}

// Close closes the port and the readings channel. A closed device cannot
// be reconnected.
func (d *Serial) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.connected {
		return nil
	}

	d.cancel()
	if err := d.conn.Close(); err != nil {
		log.Printf("Error closing serial port: %v", err)
	}
	<-d.done

	d.conn = nil
	d.connected = false
	d.closed = true
	close(d.readings)
	return nil
}

// Readings returns the channel of parsed readings.
func (d *Serial) Readings() <-chan Reading {
	return d.readings
}

// Send writes one command byte.
func (d *Serial) Send(cmd byte) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if !d.connected {
		return ErrNotConnected
	}
	if _, err := d.conn.Write([]byte{cmd}); err != nil {
		return fmt.Errorf("failed to send command %q: %w", cmd, err)
	}
	return nil
}

// IsConnected returns whether the device is currently connected.
func (d *Serial) IsConnected() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.connected
}

// scanReadings parses lines from r into out until r fails or ctx is done.
// A full channel drops the reading.
func scanReadings(ctx context.Context, r io.Reader, out chan<- Reading) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		line := scanner.Text()
		if len(line) == 0 || line == "\r" {
			continue
		}

		reading, err := ParseLine(line)
		if err != nil {
			log.Printf("Failed to parse line '%s': %v", line, err)
			continue
		}

		select {
		case out <- reading:
		case <-ctx.Done():
			return
		default:
			log.Printf("Readings channel full, dropping reading")
		}
	}
	if err := scanner.Err(); err != nil && ctx.Err() == nil && !errors.Is(err, io.ErrClosedPipe) {
		log.Printf("Error reading from serial port: %v", err)
	}
}
