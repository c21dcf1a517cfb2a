package supersaw

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSnapRoundsToGrid(t *testing.T) {
	// 120 BPM: a sixteenth is 0.125 s
	assert.InDelta(t, 0.125, SnapSixteenth.Snap(0.13, 120), 1e-9)
	assert.InDelta(t, 0.25, SnapSixteenth.Snap(0.19, 120), 1e-9)
	assert.InDelta(t, 2.0, SnapBar.Snap(1.1, 120), 1e-9)
}

func TestSnapNonePassesThrough(t *testing.T) {
	assert.Equal(t, 0.1234, SnapNone.Snap(0.1234, 120))
	assert.Equal(t, 0.0, SnapNone.Division(120))
}

func TestSnapTripletDivisions(t *testing.T) {
	assert.InDelta(t, 0.5/3, SnapEighthTriplet.Division(120), 1e-9)
	assert.InDelta(t, 1.0/3, SnapQuarterTriplet.Division(120), 1e-9)
}
