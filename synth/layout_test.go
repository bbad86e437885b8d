package synth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLayout(t *testing.T) {
	tests := []struct {
		params, constants int
	}{
		{0, 0}, {1, 0}, {0, 1}, {2, 1}, {17, 33},
	}
	for _, tt := range tests {
		l := NewLayout(tt.params, tt.constants)
		assert.Equal(t, l, NewLayout(tt.params, tt.constants), "layout should depend only on the counts")
		regions := []struct{ start, end int }{
			{l.Controls, l.Controls + tt.params*controlSize},
			{l.Rates, l.Rates + tt.params*controlRateSize},
			{l.Mapping, l.Mapping + tt.params*controlRefSize},
			{l.Wires, l.Wires + tt.constants*wireSize},
		}
		for i := 1; i < len(regions); i++ {
			assert.LessOrEqual(t, regions[i-1].end, regions[i].start, "regions %d and %d overlap", i-1, i)
		}
		assert.Equal(t, regions[len(regions)-1].end, l.Size)
		b := newControlBlock(l)
		assert.Len(t, b.controls, tt.params)
		assert.Len(t, b.controlRates, tt.params)
		assert.Len(t, b.controlMap, tt.params)
		assert.Len(t, b.wires, tt.constants)
	}
}
