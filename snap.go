package supersaw

import "math"

// SnapMode is the grid the editor snaps to, in fractions of a bar.
type SnapMode int

const (
	SnapNone SnapMode = iota
	SnapBar
	SnapHalf
	SnapQuarter
	SnapEighth
	SnapSixteenth
	SnapThirtySecond
	SnapQuarterTriplet
	SnapEighthTriplet
	SnapSixteenthTriplet
)

func (m SnapMode) String() string {
	switch m {
	case SnapNone:
		return "off"
	case SnapBar:
		return "1 bar"
	case SnapHalf:
		return "1/2"
	case SnapQuarter:
		return "1/4"
	case SnapEighth:
		return "1/8"
	case SnapSixteenth:
		return "1/16"
	case SnapThirtySecond:
		return "1/32"
	case SnapQuarterTriplet:
		return "1/4T"
	case SnapEighthTriplet:
		return "1/8T"
	case SnapSixteenthTriplet:
		return "1/16T"
	}
	return "off"
}

// Division returns the snap spacing in seconds at the given tempo, assuming
// a four beat bar. SnapNone returns 0.
func (m SnapMode) Division(bpm float64) float64 {
	beat := 60 / bpm
	switch m {
	case SnapBar:
		return beat * 4
	case SnapHalf:
		return beat * 2
	case SnapQuarter:
		return beat
	case SnapEighth:
		return beat / 2
	case SnapSixteenth:
		return beat / 4
	case SnapThirtySecond:
		return beat / 8
	case SnapQuarterTriplet:
		return beat * 2 / 3
	case SnapEighthTriplet:
		return beat / 3
	case SnapSixteenthTriplet:
		return beat / 6
	}
	return 0
}

// Snap rounds the time to the nearest grid instant. SnapNone returns the
// time unchanged.
func (m SnapMode) Snap(time, bpm float64) float64 {
	div := m.Division(bpm)
	if div <= 0 {
		return time
	}
	return math.Round(time/div) * div
}
