package supersaw

import (
	"fmt"
	"math"
	"sort"
)

// CurveType selects how an automation lane interpolates between two points.
// The curve of a segment is the curve stored on its left point.
type CurveType int

const (
	CurveLinear CurveType = iota
	CurveStep
	CurveExponential
	CurveLogarithmic
	CurveBezier
)

func (c CurveType) String() string {
	switch c {
	case CurveLinear:
		return "linear"
	case CurveStep:
		return "step"
	case CurveExponential:
		return "exponential"
	case CurveLogarithmic:
		return "logarithmic"
	case CurveBezier:
		return "bezier"
	}
	return fmt.Sprintf("curve(%d)", int(c))
}

// ParameterKind identifies what an automation lane drives.
type ParameterKind int

const (
	ParamCC ParameterKind = iota
	ParamVelocity
	ParamPitchBend
	ParamVolume
	ParamPan
	ParamPlugin
)

// Parameter is an automation target. Controller is used by ParamCC;
// PluginID, ParamID and Name by ParamPlugin.
type Parameter struct {
	Kind       ParameterKind `yaml:"kind"`
	Controller uint8         `yaml:"controller,omitempty"`
	PluginID   string        `yaml:"pluginid,omitempty"`
	ParamID    uint32        `yaml:"paramid,omitempty"`
	Name       string        `yaml:"name,omitempty"`
}

// Range returns the minimum, maximum, and default value of the parameter.
func (p Parameter) Range() (min, max, def float64) {
	switch p.Kind {
	case ParamCC:
		return 0, 127, 64
	case ParamVelocity:
		return 0, 127, 80
	case ParamPitchBend:
		return -8192, 8191, 0
	case ParamVolume:
		return 0, 1, 0.8
	case ParamPan:
		return -1, 1, 0
	case ParamPlugin:
		return 0, 1, 0.5
	}
	return 0, 1, 0
}

// DisplayName returns a human readable name for the parameter.
func (p Parameter) DisplayName() string {
	switch p.Kind {
	case ParamCC:
		if name, ok := ccNames[p.Controller]; ok {
			return name
		}
		return fmt.Sprintf("CC %d", p.Controller)
	case ParamVelocity:
		return "Velocity"
	case ParamPitchBend:
		return "Pitch Bend"
	case ParamVolume:
		return "Volume"
	case ParamPan:
		return "Pan"
	case ParamPlugin:
		if p.Name != "" {
			return p.Name
		}
		return fmt.Sprintf("Param %d", p.ParamID)
	}
	return "Unknown"
}

var ccNames = map[uint8]string{
	1:   "Mod Wheel",
	2:   "Breath",
	4:   "Foot Pedal",
	5:   "Portamento Time",
	7:   "Volume",
	10:  "Pan",
	11:  "Expression",
	64:  "Sustain Pedal",
	65:  "Portamento",
	71:  "Resonance",
	74:  "Cutoff",
	91:  "Reverb",
	93:  "Chorus",
	120: "All Sound Off",
	123: "All Notes Off",
}

// CCName returns the conventional name for a control change number, or
// "CC <n>" when there is none.
func CCName(controller uint8) string {
	return Parameter{Kind: ParamCC, Controller: controller}.DisplayName()
}

// AutomationPoint is one breakpoint of a lane. Tension only affects
// CurveBezier, setting how far the control points sit along the segment.
type AutomationPoint struct {
	ID      string    `yaml:"id"`
	Time    float64   `yaml:"time"`
	Value   float64   `yaml:"value"`
	Curve   CurveType `yaml:"curve"`
	Tension float64   `yaml:"tension"`
}

// AutomationLane is a sorted breakpoint function over time for one parameter.
// Points are kept ordered by time and values clamped to the parameter range
// at every mutation.
type AutomationLane struct {
	ID        string            `yaml:"id"`
	Parameter Parameter         `yaml:"parameter"`
	Points    []AutomationPoint `yaml:"points"`
	Min       float64           `yaml:"min"`
	Max       float64           `yaml:"max"`
	Default   float64           `yaml:"default"`
	Enabled   bool              `yaml:"enabled"`
	Visible   bool              `yaml:"visible"`
	Height    float64           `yaml:"height"`
}

// NewAutomationLane returns an empty, enabled lane for the parameter, with
// the parameter's natural range.
func NewAutomationLane(id string, param Parameter) *AutomationLane {
	min, max, def := param.Range()
	return &AutomationLane{
		ID:        id,
		Parameter: param,
		Min:       min,
		Max:       max,
		Default:   def,
		Enabled:   true,
		Visible:   true,
		Height:    80,
	}
}

// Copy returns a deep clone of the lane.
func (l *AutomationLane) Copy() *AutomationLane {
	c := *l
	c.Points = append([]AutomationPoint(nil), l.Points...)
	return &c
}

func (l *AutomationLane) clamp(v float64) float64 {
	return math.Min(l.Max, math.Max(l.Min, v))
}

func (l *AutomationLane) sortPoints() {
	sort.SliceStable(l.Points, func(i, j int) bool { return l.Points[i].Time < l.Points[j].Time })
}

// AddPoint inserts a linear point with neutral tension and returns it.
func (l *AutomationLane) AddPoint(id string, time, value float64) AutomationPoint {
	p := AutomationPoint{
		ID:      id,
		Time:    math.Max(0, time),
		Value:   l.clamp(value),
		Curve:   CurveLinear,
		Tension: 0.5,
	}
	l.Points = append(l.Points, p)
	l.sortPoints()
	return p
}

// UpdatePoint rewrites the time and/or value of a point; nil leaves a field
// unchanged. Unknown ids are ignored.
func (l *AutomationLane) UpdatePoint(id string, time, value *float64) {
	for i := range l.Points {
		if l.Points[i].ID != id {
			continue
		}
		if time != nil {
			l.Points[i].Time = math.Max(0, *time)
		}
		if value != nil {
			l.Points[i].Value = l.clamp(*value)
		}
		l.sortPoints()
		return
	}
}

// SetPointCurve sets the curve and tension of a point. Unknown ids are
// ignored.
func (l *AutomationLane) SetPointCurve(id string, curve CurveType, tension float64) {
	for i := range l.Points {
		if l.Points[i].ID == id {
			l.Points[i].Curve = curve
			l.Points[i].Tension = tension
			return
		}
	}
}

// RemovePoint deletes a point. Unknown ids are ignored.
func (l *AutomationLane) RemovePoint(id string) {
	for i := range l.Points {
		if l.Points[i].ID == id {
			l.Points = append(l.Points[:i], l.Points[i+1:]...)
			return
		}
	}
}

// ClearRange deletes every point with start <= Time <= end.
func (l *AutomationLane) ClearRange(start, end float64) {
	kept := l.Points[:0]
	for _, p := range l.Points {
		if p.Time < start || p.Time > end {
			kept = append(kept, p)
		}
	}
	l.Points = kept
}

// PointsInRange returns the points with start <= Time <= end.
func (l *AutomationLane) PointsInRange(start, end float64) []AutomationPoint {
	var out []AutomationPoint
	for _, p := range l.Points {
		if p.Time >= start && p.Time <= end {
			out = append(out, p)
		}
	}
	return out
}

// ValueAt evaluates the lane at the given time. An empty lane yields the
// default; before the first point the first point's value holds, after the
// last point the last point's.
func (l *AutomationLane) ValueAt(time float64) float64 {
	if len(l.Points) == 0 {
		return l.Default
	}
	if time <= l.Points[0].Time {
		return l.Points[0].Value
	}
	last := l.Points[len(l.Points)-1]
	if time >= last.Time {
		return last.Value
	}
	i := sort.Search(len(l.Points), func(i int) bool { return l.Points[i].Time > time }) - 1
	a, b := l.Points[i], l.Points[i+1]
	if b.Time == a.Time {
		return b.Value
	}
	t := (time - a.Time) / (b.Time - a.Time)
	return a.Value + (b.Value-a.Value)*shape(a.Curve, a.Tension, t)
}

// shape maps the linear progress t in [0,1] through the segment's curve.
func shape(curve CurveType, tension, t float64) float64 {
	switch curve {
	case CurveStep:
		return 0
	case CurveExponential:
		return t * t
	case CurveLogarithmic:
		return math.Sqrt(t)
	case CurveBezier:
		// Cubic bezier with both control points pulled towards the
		// endpoints by tension.
		t2 := t * t
		mt := 1 - t
		return 3*mt*mt*t*tension + 3*mt*t2*(1-tension) + t2*t
	}
	return t
}
