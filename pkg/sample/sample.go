// Package sample turns parsed board readings into a time series for the
// front panel trace.
package sample

import (
	"log"
	"time"

	"github.com/itohio/esplab/pkg/device"
)

const cmPerInch = 2.54

// Sample is a reading in plotting units: centimeters for distances,
// millivolts for analog channels.
type Sample struct {
	Timestamp time.Time
	Value     float64
	Unit      string
	Max       bool
	Channel   string
	Raw       device.Reading // as received, before unit conversion
}

// Converter turns a reading channel into a sample channel.
type Converter func(in <-chan device.Reading) <-chan Sample

// NewConverter creates a converter. The output closes when in closes.
func NewConverter(bufSize int) Converter {
	if bufSize <= 0 {
		bufSize = 100
	}

	return func(in <-chan device.Reading) <-chan Sample {
		out := make(chan Sample, bufSize)

		go func() {
			defer close(out)

			for r := range in {
				select {
				case out <- Convert(r):
				case <-time.After(time.Second):
					log.Printf("Converter output channel full, dropping sample")
				}
			}
		}()

		return out
	}
}

// Convert normalizes one reading. Inches become centimeters.
func Convert(r device.Reading) Sample {
	s := Sample{
		Timestamp: r.Timestamp,
		Value:     float64(r.Value),
		Unit:      r.Unit,
		Max:       r.Max,
		Channel:   r.Channel,
		Raw:       r,
	}
	if r.Unit == device.UnitIn {
		s.Value *= cmPerInch
		s.Unit = device.UnitCM
	}
	return s
}
