package device

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrLine is returned for lines that are not readings.
var ErrLine = errors.New("not a reading")

// Units reported by the board.
const (
	UnitCM = "cm"
	UnitIn = "In"
	UnitMV = "mV"
)

// Reading is one line received from the board.
type Reading struct {
	Timestamp time.Time
	Value     uint16
	Unit      string // cm, In, mV or empty for a bare number
	Max       bool   // reply to the M command
	Channel   string // plotter channel name of ">name:value" lines
}

// ParseLine parses one line sent by the board. Accepted forms:
//
//	354 cm
//	12 In
//	80 MAX cm
//	>adcCH1:1650
//	1650
func ParseLine(line string) (Reading, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Reading{}, fmt.Errorf("%w: empty line", ErrLine)
	}
	now := time.Now()

	if strings.HasPrefix(line, ">") {
		name, value, ok := strings.Cut(line[1:], ":")
		if !ok || name == "" {
			return Reading{}, fmt.Errorf("%w: %q", ErrLine, line)
		}
		v, err := parseValue(value)
		if err != nil {
			return Reading{}, err
		}
		return Reading{Timestamp: now, Value: v, Unit: UnitMV, Channel: name}, nil
	}

	fields := strings.Fields(line)
	r := Reading{Timestamp: now}
	switch len(fields) {
	case 1:
	case 2:
		r.Unit = fields[1]
	case 3:
		if fields[1] != "MAX" {
			return Reading{}, fmt.Errorf("%w: %q", ErrLine, line)
		}
		r.Max = true
		r.Unit = fields[2]
	default:
		return Reading{}, fmt.Errorf("%w: %q", ErrLine, line)
	}
	if r.Unit != "" && r.Unit != UnitCM && r.Unit != UnitIn {
		return Reading{}, fmt.Errorf("%w: unit %q", ErrLine, r.Unit)
	}

	v, err := parseValue(fields[0])
	if err != nil {
		return Reading{}, err
	}
	r.Value = v
	return r, nil
}

func parseValue(s string) (uint16, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 16)
	if err != nil {
		return 0, fmt.Errorf("%w: value: %w", ErrLine, err)
	}
	return uint16(v), nil
}
