package greenops

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		name string
		n    int64
		want string
	}{
		{name: "small number no separators", n: 123, want: "123"},
		{name: "four digits with separator", n: 1234, want: "1,234"},
		{name: "millions", n: 1234567, want: "1,234,567"},
		{name: "zero", n: 0, want: "0"},
		{name: "negative number", n: -1234, want: "-1,234"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatNumber(tt.n))
		})
	}
}

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		name      string
		f         float64
		precision int
		want      string
	}{
		{name: "two decimals", f: 1234.567, precision: 2, want: "1,234.57"},
		{name: "half rounds away from zero", f: 0.5, precision: 0, want: "1"},
		{name: "no fraction", f: 1234567.891, precision: 0, want: "1,234,568"},
		{name: "negative", f: -1234.5, precision: 1, want: "-1,234.5"},
		{name: "negative below one", f: -0.5, precision: 1, want: "-0.5"},
		{name: "negative zero after rounding", f: -0.001, precision: 2, want: "0.00"},
		{name: "negative precision treated as zero", f: 12.4, precision: -1, want: "12"},
		{name: "NaN", f: math.NaN(), precision: 2, want: "N/A"},
		{name: "infinity", f: math.Inf(1), precision: 2, want: "N/A"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatFloat(tt.f, tt.precision))
		})
	}
}

func TestFormatLarge(t *testing.T) {
	assert.Equal(t, "~1.5 billion", FormatLarge(1_500_000_000))
	assert.Equal(t, "~2.5 million", FormatLarge(2_500_000))
	assert.Equal(t, "999", FormatLarge(999.4))
}
