package supersaw

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	yaml2 "gopkg.in/yaml.v2"
	"gopkg.in/yaml.v3"
)

// TrackType tells what kind of content a track holds.
type TrackType string

const (
	TrackMIDI     TrackType = "midi"
	TrackDrumRack TrackType = "drumrack"
	TrackAudio    TrackType = "audio"
)

// DrumPad maps one pad of a drum rack track to a key.
type DrumPad struct {
	Key    uint8  `yaml:"key" json:"key"`
	Name   string `yaml:"name" json:"name"`
	Sample string `yaml:"sample,omitempty" json:"sample,omitempty"`
}

// Track is one lane of the project. Channel and DeviceName apply to MIDI
// tracks, Pads to drum rack tracks.
type Track struct {
	ID         string            `yaml:"id" json:"id"`
	Name       string            `yaml:"name" json:"name"`
	Type       TrackType         `yaml:"type" json:"type"`
	Channel    uint8             `yaml:"channel" json:"channel"`
	DeviceName string            `yaml:"devicename,omitempty" json:"devicename,omitempty"`
	Pads       []DrumPad         `yaml:"pads,omitempty" json:"pads,omitempty"`
	Color      string            `yaml:"color,omitempty" json:"color,omitempty"`
	Muted      bool              `yaml:"muted" json:"muted"`
	Solo       bool              `yaml:"solo" json:"solo"`
	Armed      bool              `yaml:"armed" json:"armed"`
	Clips      []*Clip           `yaml:"clips" json:"clips"`
	Automation []*AutomationLane `yaml:"automation,omitempty" json:"automation,omitempty"`
}

// Copy returns a deep clone of the track.
func (t *Track) Copy() *Track {
	c := *t
	c.Pads = append([]DrumPad(nil), t.Pads...)
	c.Clips = make([]*Clip, len(t.Clips))
	for i, cl := range t.Clips {
		c.Clips[i] = cl.Copy()
	}
	c.Automation = make([]*AutomationLane, len(t.Automation))
	for i, l := range t.Automation {
		c.Automation[i] = l.Copy()
	}
	return &c
}

// Clip returns the clip with the given id.
func (t *Track) Clip(id string) (*Clip, bool) {
	for _, c := range t.Clips {
		if c.ID == id {
			return c, true
		}
	}
	return nil, false
}

// Lane returns the automation lane with the given id.
func (t *Track) Lane(id string) (*AutomationLane, bool) {
	for _, l := range t.Automation {
		if l.ID == id {
			return l, true
		}
	}
	return nil, false
}

// ClipType tells what a clip plays.
type ClipType string

const (
	ClipMIDI  ClipType = "midi"
	ClipAudio ClipType = "audio"
)

// Clip is a placed region on a track. StartTime and Duration are in seconds
// on the project timeline. Events holds the MIDI content of a ClipMIDI clip,
// with times relative to the clip start; FilePath points at the source file
// of a ClipAudio clip, stored relative to the project file.
type Clip struct {
	ID        string   `yaml:"id" json:"id"`
	Name      string   `yaml:"name" json:"name"`
	Type      ClipType `yaml:"type" json:"type"`
	StartTime float64  `yaml:"starttime" json:"starttime"`
	Duration  float64  `yaml:"duration" json:"duration"`
	FilePath  string   `yaml:"filepath,omitempty" json:"filepath,omitempty"`

	Events *EventStore `yaml:"-" json:"-"`
}

// Copy returns a deep clone of the clip.
func (c *Clip) Copy() *Clip {
	cc := *c
	if c.Events != nil {
		cc.Events = c.Events.Copy()
	}
	return &cc
}

// EndTime returns the time the clip ends on the project timeline.
func (c *Clip) EndTime() float64 { return c.StartTime + c.Duration }

// Project is the whole document: global tempo and resolution plus the
// tracks.
type Project struct {
	Name   string   `yaml:"name" json:"name"`
	BPM    float64  `yaml:"bpm" json:"bpm"`
	PPQ    uint16   `yaml:"ppq" json:"ppq"`
	Tracks []*Track `yaml:"tracks" json:"tracks"`
}

// NewProject returns an empty project at 120 BPM.
func NewProject(name string) *Project {
	return &Project{Name: name, BPM: 120, PPQ: DefaultPPQ}
}

// Copy returns a deep clone of the project.
func (p *Project) Copy() *Project {
	c := *p
	c.Tracks = make([]*Track, len(p.Tracks))
	for i, t := range p.Tracks {
		c.Tracks[i] = t.Copy()
	}
	return &c
}

// Track returns the track with the given id.
func (p *Project) Track(id string) (*Track, bool) {
	for _, t := range p.Tracks {
		if t.ID == id {
			return t, true
		}
	}
	return nil, false
}

// TicksPerSecond returns the current timeline resolution in ticks.
func (p *Project) TicksPerSecond() float64 {
	return p.BPM / 60 * float64(p.PPQ)
}

// BeatsToSeconds converts a beat count to seconds at the project tempo.
func (p *Project) BeatsToSeconds(beats float64) float64 { return beats * 60 / p.BPM }

// SecondsToBeats converts seconds to beats at the project tempo.
func (p *Project) SecondsToBeats(secs float64) float64 { return secs * p.BPM / 60 }

// EventsInRange collects the events of every audible MIDI clip overlapping
// [start, end) on the project timeline, shifted by their clip's start, in
// time order. Muted tracks are skipped, and when any track is soloed only
// soloed tracks play.
func (p *Project) EventsInRange(start, end float64) []Event {
	anySolo := false
	for _, t := range p.Tracks {
		if t.Solo {
			anySolo = true
			break
		}
	}
	var out []Event
	for _, t := range p.Tracks {
		if t.Muted || (anySolo && !t.Solo) {
			continue
		}
		for _, c := range t.Clips {
			if c.Type != ClipMIDI || c.Events == nil {
				continue
			}
			if c.StartTime >= end || c.EndTime() <= start {
				continue
			}
			for _, e := range c.Events.EventsInRange(start-c.StartTime, end-c.StartTime) {
				e.Time += c.StartTime
				out = append(out, e)
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time < out[j].Time })
	return out
}

// Duration returns the end time of the last clip, in seconds.
func (p *Project) Duration() float64 {
	var end float64
	for _, t := range p.Tracks {
		for _, c := range t.Clips {
			if c.EndTime() > end {
				end = c.EndTime()
			}
		}
	}
	return end
}

// ReadProject parses a project from disk, trying json first and yaml as a
// fallback. MIDI clip contents are loaded from their .mid files next to the
// project file.
func ReadProject(path string) (*Project, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var p Project
	if errJSON := json.Unmarshal(b, &p); errJSON != nil {
		if errYaml := yaml2.UnmarshalStrict(b, &p); errYaml != nil {
			return nil, fmt.Errorf("parsing %s: %v / %v", path, errYaml, errJSON)
		}
	}
	dir := filepath.Dir(path)
	for _, t := range p.Tracks {
		for _, c := range t.Clips {
			if c.Type != ClipMIDI || c.FilePath == "" {
				continue
			}
			store, err := LoadSMF(filepath.Join(dir, c.FilePath))
			if err != nil {
				return nil, fmt.Errorf("clip %s: %w", c.ID, err)
			}
			c.Events = store
		}
	}
	return &p, nil
}

// WriteProject saves the project, as json if the path has a .json extension
// and as yaml otherwise. MIDI clip contents go to .mid files next to the
// project file, named after the clip id, and the clip records the relative
// path.
func WriteProject(p *Project, path string) error {
	dir := filepath.Dir(path)
	for _, t := range p.Tracks {
		for _, c := range t.Clips {
			if c.Type != ClipMIDI || c.Events == nil {
				continue
			}
			name := c.FilePath
			if name == "" {
				name = c.ID + ".mid"
			}
			if err := c.Events.SaveSMF(filepath.Join(dir, name)); err != nil {
				return fmt.Errorf("clip %s: %w", c.ID, err)
			}
			c.FilePath = name
		}
	}
	var contents []byte
	var err error
	if filepath.Ext(path) == ".json" {
		contents, err = json.Marshal(p)
	} else {
		contents, err = yaml.Marshal(p)
	}
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", path, err)
	}
	return os.WriteFile(path, contents, 0644)
}
