package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRound(t *testing.T) {
	tests := []struct {
		name   string
		x      float64
		places int32
		want   float64
	}{
		{"one sixth percent", 1000.0 / 6000.0 * 100, 2, 16.67},
		{"half away from zero", 2.675, 2, 2.68},
		{"negative half", -5.45, 1, -5.5},
		{"already rounded", 12.5, 2, 12.5},
		{"one decimal", 33.333333, 1, 33.3},
		{"zero", 0, 2, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Round(tt.x, tt.places); got != tt.want {
				t.Errorf("Round(%v, %d) = %v, want %v", tt.x, tt.places, got, tt.want)
			}
		})
	}
}

func TestSum(t *testing.T) {
	assert.Equal(t, 0.3, Sum(0.1, 0.2))
	assert.Equal(t, 0.0, Sum())
}

func TestNum(t *testing.T) {
	assert.Equal(t, "99.5", Num(99.5))
	assert.Equal(t, "25", Num(25))
	assert.Equal(t, "0.25", Num(0.25))
}

func TestDollars(t *testing.T) {
	assert.Equal(t, "$1,234.50", Dollars(1234.5, 2))
	assert.Equal(t, "$1,235", Dollars(1234.6, 0))
	assert.Equal(t, "$0.00", Dollars(0, 2))
	assert.Equal(t, "$999", Dollars(999, 0))
}
