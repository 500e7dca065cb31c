// Package chord classifies pitch-class sets into root/quality labels and
// derives the chord-annotation dataset from two-track pieces.
package chord

import (
	"sort"
)

// PitchClassNames indexes pitch classes 0..11.
var PitchClassNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// major, minor, diminished, augmented, sus2, sus4
var triadNames = []string{"M", "m", "o", "+", "sus2", "sus4"}
var triadShapes = []uint16{
	shape(0, 4, 7),
	shape(0, 3, 7),
	shape(0, 3, 6),
	shape(0, 4, 8),
	shape(0, 2, 7),
	shape(0, 5, 7),
}

// dominant, major, minor, half-diminished, diminished, minor-major,
// augmented sevenths
var seventhNames = []string{"D7", "M7", "m7", "/o7", "o7", "mM7", "+7"}
var seventhShapes = []uint16{
	shape(0, 4, 7, 10),
	shape(0, 4, 7, 11),
	shape(0, 3, 7, 10),
	shape(0, 3, 6, 10),
	shape(0, 3, 6, 9),
	shape(0, 3, 7, 11),
	shape(0, 4, 8, 10),
}

func shape(degrees ...int) uint16 {
	var mask uint16
	for _, d := range degrees {
		mask |= 1 << uint(d%12)
	}
	return mask
}

// Quality classifies a pitch-class set. Every pitch class is tried as a
// candidate root in ascending order; seventh shapes are checked before
// triads and the first match wins. An empty set yields (-1, "N") and an
// unclassifiable one (-1, "other").
func Quality(pitchClasses []int) (int, string) {
	if len(pitchClasses) == 0 {
		return -1, "N"
	}

	seen := make(map[int]bool, len(pitchClasses))
	var pcs []int
	for _, pc := range pitchClasses {
		pc = ((pc % 12) + 12) % 12
		if !seen[pc] {
			seen[pc] = true
			pcs = append(pcs, pc)
		}
	}
	sort.Ints(pcs)

	for _, root := range pcs {
		var degrees uint16
		for _, pc := range pcs {
			degrees |= 1 << uint(((pc-root)%12+12)%12)
		}
		for i, s := range seventhShapes {
			if degrees == s {
				return root, seventhNames[i]
			}
		}
		for i, s := range triadShapes {
			if degrees == s {
				return root, triadNames[i]
			}
		}
	}
	return -1, "other"
}
