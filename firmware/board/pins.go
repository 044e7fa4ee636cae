//go:build tinygo

// Package board binds the exercise packages to the ESP32 edu board through
// TinyGo's machine package.
package board

import "machine"

const (
	// Ultrasonic ranger
	PIN_TRIGGER = machine.Pin(3)
	PIN_ECHO    = machine.Pin(2)

	// Threshold LEDs, lowest band first
	PIN_LED1 = machine.Pin(11)
	PIN_LED2 = machine.Pin(10)
	PIN_LED3 = machine.Pin(5)

	// Switches, active high
	PIN_SW1 = machine.Pin(4)
	PIN_SW2 = machine.Pin(15)

	// BCD code lines, bit 0 first
	PIN_BCD0 = machine.Pin(20)
	PIN_BCD1 = machine.Pin(21)
	PIN_BCD2 = machine.Pin(22)
	PIN_BCD3 = machine.Pin(23)

	// Digit enables, most significant digit first
	PIN_DIGIT_HUNDREDS = machine.Pin(9)
	PIN_DIGIT_TENS     = machine.Pin(18)
	PIN_DIGIT_UNITS    = machine.Pin(19)

	// Analog
	PIN_ADC_CH1 = machine.Pin(1)
	PIN_DAC_OUT = machine.Pin(0) // PWM into an RC low pass

	ADC_REFERENCE_MV = 3300
	UART_BAUD_RATE   = 9600
)

// LEDPins are the threshold LEDs.
var LEDPins = []machine.Pin{PIN_LED1, PIN_LED2, PIN_LED3}

// BCDPins are the display code lines.
var BCDPins = []machine.Pin{PIN_BCD0, PIN_BCD1, PIN_BCD2, PIN_BCD3}

// DigitPins are the display enables.
var DigitPins = []machine.Pin{PIN_DIGIT_HUNDREDS, PIN_DIGIT_TENS, PIN_DIGIT_UNITS}
