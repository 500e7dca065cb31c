package midi

import (
	"strings"

	"gitlab.com/gomidi/midi/v2/smf"
)

var sharpNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}
var flatNames = [12]string{"C", "Db", "D", "Eb", "E", "F", "Gb", "G", "Ab", "A", "Bb", "B"}

// accidentals on the circle of fifths, by canonical key name. Minor keys
// carry the trailing "m" the annotation data uses.
var keyAccidentals = map[string]struct {
	num  uint8
	flat bool
}{
	"C": {0, false}, "G": {1, false}, "D": {2, false}, "A": {3, false},
	"E": {4, false}, "B": {5, false}, "F#": {6, false}, "C#": {7, false},
	"F": {1, true}, "Bb": {2, true}, "Eb": {3, true}, "Ab": {4, true},
	"Db": {5, true}, "Gb": {6, true}, "Cb": {7, true},

	"Am": {0, false}, "Em": {1, false}, "Bm": {2, false}, "F#m": {3, false},
	"C#m": {4, false}, "G#m": {5, false}, "D#m": {6, false}, "A#m": {7, false},
	"Dm": {1, true}, "Gm": {2, true}, "Cm": {3, true}, "Fm": {4, true},
	"Bbm": {5, true}, "Ebm": {6, true}, "Abm": {7, true},
}

var letterPitchClass = map[byte]int{'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11}

// KeyName renders an SMF key signature as a short textual key name,
// e.g. "Bb" or "F#m".
func KeyName(k smf.Key) string {
	pc := int(k.Key) % 12
	var name string
	if k.IsFlat {
		name = flatNames[pc]
	} else {
		name = sharpNames[pc]
	}
	if !k.IsMajor {
		name += "m"
	}
	return name
}

// ParseKeyName is the inverse of KeyName. It also accepts the spelled
// out "Bb major" / "a minor" forms. Unknown accidental counts fall back
// to a plain signature so the tonic is still preserved.
func ParseKeyName(name string) smf.Key {
	name = strings.TrimSpace(name)

	minor := false
	if fields := strings.Fields(name); len(fields) >= 2 {
		name = fields[0]
		minor = strings.EqualFold(fields[1], "minor")
	} else if strings.HasSuffix(name, "m") && len(name) > 1 {
		name = name[:len(name)-1]
		minor = true
	}

	canonical := name
	if minor {
		canonical += "m"
	}

	var pc int
	if len(name) > 0 {
		pc = letterPitchClass[name[0]&^0x20] // tolerate lowercase tonics
		for _, r := range name[1:] {
			switch r {
			case '#':
				pc++
			case 'b':
				pc--
			}
		}
		pc = ((pc % 12) + 12) % 12
	}

	acc := keyAccidentals[canonical]
	return smf.Key{
		Key:     uint8(pc),
		IsMajor: !minor,
		Num:     acc.num,
		IsFlat:  acc.flat,
	}
}
