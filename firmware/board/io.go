//go:build tinygo

package board

import (
	"context"
	"time"

	"machine"

	"github.com/itohio/esplab/pkg/bcd"
	"github.com/itohio/esplab/pkg/hal"
	"github.com/itohio/esplab/pkg/leds"
	"github.com/itohio/esplab/pkg/ranger"
	"periph.io/x/conn/v3/gpio"
	"tinygo.org/x/drivers/hcsr04"
)

// Line drives a machine pin as a hal.Line.
type Line machine.Pin

// Out implements hal.Line.
func (l Line) Out(level gpio.Level) error {
	machine.Pin(l).Set(bool(level))
	return nil
}

// Outputs configures pins as outputs, driven low.
func Outputs(pins ...machine.Pin) []hal.Line {
	lines := make([]hal.Line, len(pins))
	for i, p := range pins {
		p.Configure(machine.PinConfig{Mode: machine.PinOutput})
		p.Low()
		lines[i] = Line(p)
	}
	return lines
}

// LEDs returns the threshold LED bank.
func LEDs() *leds.Bank {
	return leds.NewBank(Outputs(LEDPins...)...)
}

// Display returns the three digit BCD display.
func Display() (*bcd.Display, error) {
	return bcd.NewDisplay(Outputs(BCDPins...), Outputs(DigitPins...), 0)
}

// Ranger is the HC-SR04 as a hal.DistanceSensor.
type Ranger struct {
	dev hcsr04.Device
}

// NewRanger configures the trigger and echo pins.
func NewRanger() *Ranger {
	dev := hcsr04.New(PIN_TRIGGER, PIN_ECHO)
	dev.Configure()
	return &Ranger{dev: dev}
}

// ReadCentimeters implements hal.DistanceSensor.
func (r *Ranger) ReadCentimeters() (uint16, error) {
	return uint16(r.dev.ReadDistance() / 10), nil
}

// ReadInches implements hal.DistanceSensor.
func (r *Ranger) ReadInches() (uint16, error) {
	return uint16(r.dev.ReadDistance() * 10 / 254), nil
}

// ADC reads one channel in millivolts.
type ADC struct {
	adc machine.ADC
}

// NewADC configures pin as an analog input.
func NewADC(pin machine.Pin) *ADC {
	a := machine.ADC{Pin: pin}
	a.Configure(machine.ADCConfig{Reference: ADC_REFERENCE_MV})
	return &ADC{adc: a}
}

// ReadMillivolts implements hal.ADC. Get returns a 16 bit scaled sample.
func (a *ADC) ReadMillivolts() (uint16, error) {
	return uint16(uint32(a.adc.Get()) * ADC_REFERENCE_MV / 0xffff), nil
}

// PWM is the part of a TinyGo PWM peripheral the DAC needs.
type PWM interface {
	Configure(config machine.PWMConfig) error
	Channel(pin machine.Pin) (uint8, error)
	Top() uint32
	Set(channel uint8, value uint32)
}

// DAC emulates an 8 bit DAC with PWM and an external low pass filter.
type DAC struct {
	pwm PWM
	ch  uint8
}

// NewDAC starts pwm on pin.
func NewDAC(pwm PWM, pin machine.Pin) (*DAC, error) {
	if err := pwm.Configure(machine.PWMConfig{Period: uint64(20 * time.Microsecond)}); err != nil {
		return nil, err
	}
	ch, err := pwm.Channel(pin)
	if err != nil {
		return nil, err
	}
	return &DAC{pwm: pwm, ch: ch}, nil
}

// Write implements hal.DAC.
func (d *DAC) Write(sample uint8) error {
	d.pwm.Set(d.ch, d.pwm.Top()*uint32(sample)/255)
	return nil
}

// Serial is the console UART.
var Serial = machine.Serial

// ConfigureSerial sets up the console UART.
func ConfigureSerial() {
	Serial.Configure(machine.UARTConfig{BaudRate: UART_BAUD_RATE})
}

// PollSerial hands every received byte to handle until ctx is done. The
// UART driver buffers from its interrupt, so polling only drains it.
func PollSerial(ctx context.Context, period time.Duration, handle func(byte)) {
	for ctx.Err() == nil {
		for Serial.Buffered() > 0 {
			b, err := Serial.ReadByte()
			if err != nil {
				break
			}
			handle(b)
		}
		time.Sleep(period)
	}
}

// OnPress calls fn from the pin interrupt on every rising edge of pin.
func OnPress(pin machine.Pin, fn func()) error {
	pin.Configure(machine.PinConfig{Mode: machine.PinInputPulldown})
	return pin.SetInterrupt(machine.PinRising, func(machine.Pin) { fn() })
}

// Switches reads both switches as ranger switch bits.
func Switches() uint8 {
	var sw uint8
	if PIN_SW1.Get() {
		sw |= ranger.SW1
	}
	if PIN_SW2.Get() {
		sw |= ranger.SW2
	}
	return sw
}

// ConfigureSwitches sets the switch pins as inputs.
func ConfigureSwitches() {
	PIN_SW1.Configure(machine.PinConfig{Mode: machine.PinInputPulldown})
	PIN_SW2.Configure(machine.PinConfig{Mode: machine.PinInputPulldown})
}
