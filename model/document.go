package model

// Document is the in-memory representation of one MIDI file, as exposed
// by the smf codec: per-instrument note/controller lists plus the global
// tempo, meter, key and marker timelines. All times are absolute ticks.
type Document struct {
	TicksPerBeat   int
	MaxTick        int64
	Instruments    []*Instrument
	TempoChanges   []TempoChange
	TimeSignatures []TimeSignature
	KeySignatures  []KeySignature
	Markers        []Marker
}

type Instrument struct {
	Name           string
	Program        uint8
	Channel        uint8
	IsDrum         bool
	Notes          []Note
	ControlChanges []ControlChange
	PitchBends     []PitchBend
	Pedals         []Pedal
}

type Note struct {
	Pitch    uint8
	Velocity uint8
	Start    int64
	End      int64
}

type ControlChange struct {
	Controller uint8
	Value      uint8
	Time       int64
}

type PitchBend struct {
	Value int16
	Time  int64
}

// Pedal is a sustain interval derived from CC64 press/release pairs.
type Pedal struct {
	Start int64
	End   int64
}

type TempoChange struct {
	BPM  float64
	Time int64
}

type TimeSignature struct {
	Numerator   int
	Denominator int
	Time        int64
}

// KeySignature carries the textual key name ("Bb", "Bbm", "A minor"...).
type KeySignature struct {
	Name string
	Time int64
}

type Marker struct {
	Text string
	Time int64
}

// HasNotes reports whether any instrument carries at least one note.
func (d *Document) HasNotes() bool {
	for _, inst := range d.Instruments {
		if len(inst.Notes) > 0 {
			return true
		}
	}
	return false
}
