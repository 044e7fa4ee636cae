// Package hal defines the peripheral contracts the exercises are written
// against. Boards implement them on top of TinyGo's machine package; the
// simulator in pkg/sim implements them on periph.io test pins.
package hal

import (
	"periph.io/x/conn/v3/gpio"
)

// Line is a single digital output (LED, BCD code line, digit enable).
// Any periph.io gpio.PinOut satisfies it.
type Line interface {
	Out(l gpio.Level) error
}

// DistanceSensor is an ultrasonic trigger/echo ranger.
type DistanceSensor interface {
	ReadCentimeters() (uint16, error)
	ReadInches() (uint16, error)
}

// LCD shows a non-negative integer.
type LCD interface {
	Write(value uint16) error
}

// ADC returns one sample in millivolts.
type ADC interface {
	ReadMillivolts() (uint16, error)
}

// DAC writes one output sample.
type DAC interface {
	Write(sample uint8) error
}

// LineFunc adapts a plain function to Line.
type LineFunc func(l gpio.Level) error

// Out calls f(l).
func (f LineFunc) Out(l gpio.Level) error { return f(l) }

// Lines converts a slice of any Line implementation into []Line.
func Lines[T Line](pins ...T) []Line {
	out := make([]Line, len(pins))
	for i, p := range pins {
		out[i] = p
	}
	return out
}
