// Package shift applies a uniform tick offset to every timed event of a
// document and restores the document's invariants afterwards.
package shift

import (
	"sort"

	"github.com/jsphweid/midiops/model"
)

// Apply moves every timed event by delta ticks. Notes and pedals whose
// shifted end is not past tick 0 are dropped, as are control changes and
// pitch bends landing before tick 0. Tempo, meter, key and marker events
// are clamped to tick 0 instead, since the timeline must stay defined
// from the start. All event lists come out sorted and the earliest meter
// and tempo entries are forced to tick 0. A delta of 0 is a no-op.
func Apply(doc *model.Document, delta int64) {
	if delta == 0 {
		return
	}

	for _, inst := range doc.Instruments {
		notes := inst.Notes[:0]
		for _, n := range inst.Notes {
			n.Start += delta
			n.End += delta
			if n.End > 0 {
				notes = append(notes, n)
			}
		}
		inst.Notes = notes

		ccs := inst.ControlChanges[:0]
		for _, cc := range inst.ControlChanges {
			cc.Time += delta
			if cc.Time >= 0 {
				ccs = append(ccs, cc)
			}
		}
		inst.ControlChanges = ccs

		bends := inst.PitchBends[:0]
		for _, pb := range inst.PitchBends {
			pb.Time += delta
			if pb.Time >= 0 {
				bends = append(bends, pb)
			}
		}
		inst.PitchBends = bends

		pedals := inst.Pedals[:0]
		for _, p := range inst.Pedals {
			p.Start += delta
			p.End += delta
			if p.End > 0 {
				pedals = append(pedals, p)
			}
		}
		inst.Pedals = pedals

		sort.SliceStable(inst.Notes, func(i, j int) bool {
			return inst.Notes[i].Start < inst.Notes[j].Start
		})
		sort.SliceStable(inst.ControlChanges, func(i, j int) bool {
			return inst.ControlChanges[i].Time < inst.ControlChanges[j].Time
		})
		sort.SliceStable(inst.PitchBends, func(i, j int) bool {
			return inst.PitchBends[i].Time < inst.PitchBends[j].Time
		})
		sort.SliceStable(inst.Pedals, func(i, j int) bool {
			return inst.Pedals[i].Start < inst.Pedals[j].Start
		})
	}

	doc.TempoChanges = shiftTempos(doc.TempoChanges, delta)
	doc.TimeSignatures = shiftMeters(doc.TimeSignatures, delta)
	doc.KeySignatures = shiftKeys(doc.KeySignatures, delta)
	doc.Markers = shiftMarkers(doc.Markers, delta)

	if len(doc.TimeSignatures) == 0 {
		doc.TimeSignatures = append(doc.TimeSignatures, model.TimeSignature{Numerator: 4, Denominator: 4})
	} else if doc.TimeSignatures[0].Time != 0 {
		doc.TimeSignatures[0].Time = 0
	}
	if len(doc.TempoChanges) > 0 && doc.TempoChanges[0].Time != 0 {
		doc.TempoChanges[0].Time = 0
	}

	RecomputeMaxTick(doc)
}

// The four meta lists share shift-clamp-sort handling but not a type;
// keeping one loop per list mirrors how the codec stores them.

func shiftTempos(events []model.TempoChange, delta int64) []model.TempoChange {
	out := events[:0]
	for _, e := range events {
		e.Time = clampZero(e.Time + delta)
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time < out[j].Time })
	return out
}

func shiftMeters(events []model.TimeSignature, delta int64) []model.TimeSignature {
	out := events[:0]
	for _, e := range events {
		e.Time = clampZero(e.Time + delta)
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time < out[j].Time })
	return out
}

func shiftKeys(events []model.KeySignature, delta int64) []model.KeySignature {
	out := events[:0]
	for _, e := range events {
		e.Time = clampZero(e.Time + delta)
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time < out[j].Time })
	return out
}

func shiftMarkers(events []model.Marker, delta int64) []model.Marker {
	out := events[:0]
	for _, e := range events {
		e.Time = clampZero(e.Time + delta)
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time < out[j].Time })
	return out
}

func clampZero(t int64) int64 {
	if t < 0 {
		return 0
	}
	return t
}

// RecomputeMaxTick refreshes the document's tick extent: the maximum of
// all note ends and all meta-event times.
func RecomputeMaxTick(doc *model.Document) {
	var max int64
	for _, inst := range doc.Instruments {
		for _, n := range inst.Notes {
			if n.End > max {
				max = n.End
			}
		}
	}
	for _, t := range doc.TempoChanges {
		if t.Time > max {
			max = t.Time
		}
	}
	for _, ts := range doc.TimeSignatures {
		if ts.Time > max {
			max = ts.Time
		}
	}
	for _, k := range doc.KeySignatures {
		if k.Time > max {
			max = k.Time
		}
	}
	doc.MaxTick = max
}
