package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    Reading
		wantErr bool
	}{
		{
			name: "centimeters",
			line: "354 cm\r\n",
			want: Reading{Value: 354, Unit: UnitCM},
		},
		{
			name: "inches",
			line: "12 In",
			want: Reading{Value: 12, Unit: UnitIn},
		},
		{
			name: "maximum",
			line: "80 MAX cm",
			want: Reading{Value: 80, Unit: UnitCM, Max: true},
		},
		{
			name: "maximum in inches",
			line: "31 MAX In",
			want: Reading{Value: 31, Unit: UnitIn, Max: true},
		},
		{
			name: "plotter channel",
			line: ">adcCH1:1650",
			want: Reading{Value: 1650, Unit: UnitMV, Channel: "adcCH1"},
		},
		{
			name: "bare number",
			line: "  42 ",
			want: Reading{Value: 42},
		},
		{
			name:    "empty",
			line:    "\r\n",
			wantErr: true,
		},
		{
			name:    "unknown unit",
			line:    "12 ft",
			wantErr: true,
		},
		{
			name:    "bad max keyword",
			line:    "80 MIN cm",
			wantErr: true,
		},
		{
			name:    "too many fields",
			line:    "80 MAX cm now",
			wantErr: true,
		},
		{
			name:    "non-numeric value",
			line:    "abc cm",
			wantErr: true,
		},
		{
			name:    "value out of range",
			line:    "70000 cm",
			wantErr: true,
		},
		{
			name:    "channel without value",
			line:    ">adcCH1",
			wantErr: true,
		},
		{
			name:    "channel without name",
			line:    ">:12",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLine(tt.line)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrLine)
				return
			}
			require.NoError(t, err)
			assert.False(t, got.Timestamp.IsZero())
			got.Timestamp = tt.want.Timestamp
			assert.Equal(t, tt.want, got)
		})
	}
}
