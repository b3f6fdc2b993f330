package production

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTotalUnits(t *testing.T) {
	tests := []struct {
		name   string
		units  []int64
		want   int64
		wantOK bool
	}{
		{name: "sums entries", units: []int64{500, 300}, want: 800, wantOK: true},
		{name: "largest exact sum", units: []int64{math.MaxInt64 - 1, 1}, want: math.MaxInt64, wantOK: true},
		{name: "wrap is rejected", units: []int64{math.MaxInt64, math.MaxInt64, 3}},
		{name: "non positive entry", units: []int64{5, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ws := make([]WorkerOutput, len(tt.units))
			for i, u := range tt.units {
				ws[i] = WorkerOutput{WorkerID: int64(i + 1), Units: u}
			}
			got, ok := TotalUnits(ws)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
