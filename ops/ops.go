// Package ops implements the three declarative edit operations applied
// to a document: time-signature changes, key-signature insertions, and
// alignment of the first note to a target global beat.
package ops

import (
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/jsphweid/midiops/model"
	"github.com/jsphweid/midiops/shift"
	"github.com/jsphweid/midiops/timeline"
)

// sharpToFlat normalizes enharmonic key spellings before storage, the
// same 11 fixed mappings the annotation data uses.
var sharpToFlat = map[string]string{
	"A#":  "Bb",
	"D#":  "Eb",
	"G#":  "Ab",
	"A#m": "Bbm",
	"D#m": "Ebm",
	"G#m": "Abm",
	"Cbm": "Bm",
	"C#":  "Db",
	"F#":  "Gb",
	"B#":  "C",
	"E#":  "F",
}

// NormalizeKeyName maps sharp spellings to their flat equivalents.
func NormalizeKeyName(name string) string {
	if flat, ok := sharpToFlat[name]; ok {
		return flat
	}
	return name
}

// Apply dispatches one operation record to its handler. Handlers mutate
// the document in place; an error means the single operation was not
// applied and the document is unchanged by it.
func Apply(doc *model.Document, op model.Operation) error {
	switch op.Operation {
	case model.OpChangeTimeSignature:
		return ChangeTimeSignature(doc, op)
	case model.OpAddKeyChange:
		return AddKeyChange(doc, op)
	case model.OpShiftStartBeat:
		return ShiftStartBeat(doc, op)
	default:
		return errors.Errorf("unknown operation %q", op.Operation)
	}
}

// ChangeTimeSignature inserts a meter change. Without a time field the
// change is global: it lands at tick 0 and replaces whatever meter
// entries already sit there. A timed change only adds.
func ChangeTimeSignature(doc *model.Document, op model.Operation) error {
	parts := strings.Split(op.TimeSignature, "/")
	if len(parts) != 2 {
		return errors.Errorf("malformed time signature %q", op.TimeSignature)
	}
	numerator, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return errors.Wrapf(err, "time signature %q", op.TimeSignature)
	}
	denominator, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return errors.Wrapf(err, "time signature %q", op.TimeSignature)
	}

	var tick int64
	if op.Time != "" {
		tick, err = timeline.ResolveTime(doc, op.Time.String(), timeline.UnitClockTime)
		if err != nil {
			return err
		}
	}

	if tick == 0 {
		kept := doc.TimeSignatures[:0]
		for _, ts := range doc.TimeSignatures {
			if ts.Time != 0 {
				kept = append(kept, ts)
			}
		}
		doc.TimeSignatures = kept
	}

	doc.TimeSignatures = append(doc.TimeSignatures, model.TimeSignature{
		Numerator:   numerator,
		Denominator: denominator,
		Time:        tick,
	})
	sort.SliceStable(doc.TimeSignatures, func(i, j int) bool {
		return doc.TimeSignatures[i].Time < doc.TimeSignatures[j].Time
	})
	return nil
}

// AddKeyChange appends a key-signature entry at the resolved tick. No
// dedupe happens here: the codec convention is that the last entry at a
// tick wins at lookup time.
func AddKeyChange(doc *model.Document, op model.Operation) error {
	tick, err := timeline.ResolveTime(doc, op.Time.String(), op.Unit)
	if err != nil {
		return err
	}
	doc.KeySignatures = append(doc.KeySignatures, model.KeySignature{
		Name: NormalizeKeyName(op.Key),
		Time: tick,
	})
	return nil
}

// ShiftStartBeat moves the whole document so the first instrument
// track's earliest note starts on the target global beat. A document
// without notes is left alone.
func ShiftStartBeat(doc *model.Document, op model.Operation) error {
	if !doc.HasNotes() {
		return nil
	}
	if len(doc.Instruments) == 0 || len(doc.Instruments[0].Notes) == 0 {
		return nil
	}

	firstNote := doc.Instruments[0].Notes[0].Start
	for _, n := range doc.Instruments[0].Notes {
		if n.Start < firstNote {
			firstNote = n.Start
		}
	}

	segments := timeline.BuildMeterSegments(doc.TimeSignatures, doc.TicksPerBeat)
	target := timeline.GlobalBeatToTick(int64(op.ToBeat), segments)

	delta := target - firstNote
	if delta == 0 {
		return nil
	}
	shift.Apply(doc, delta)
	return nil
}
