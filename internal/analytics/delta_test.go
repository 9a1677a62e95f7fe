package analytics

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestDelta(t *testing.T) {
	tests := []struct {
		name     string
		current  string
		previous string
		want     string
	}{
		{"growth", "150", "100", "50"},
		{"decline", "50", "100", "-50"},
		{"flat", "100", "100", "0"},
		{"from zero with activity", "42", "0", "100"},
		{"both empty", "0", "0", "0"},
		{"to zero", "0", "80", "-100"},
		{"fractional", "9", "8", "12.5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cur := decimal.RequireFromString(tt.current)
			prev := decimal.RequireFromString(tt.previous)
			want := decimal.RequireFromString(tt.want)
			assert.True(t, Delta(cur, prev).Equal(want),
				"Delta(%s, %s) = %s, want %s", tt.current, tt.previous, Delta(cur, prev), tt.want)
		})
	}
}
