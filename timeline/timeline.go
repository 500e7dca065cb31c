// Package timeline models a MIDI file's musical timeline: a sequence of
// meter segments over which it converts between absolute ticks, global
// beat indexes, bar numbers and wall-clock time.
package timeline

import (
	"math"
	"regexp"
	"sort"
	"strconv"

	"github.com/pkg/errors"

	"github.com/jsphweid/midiops/model"
)

// OpenEnd marks the last segment, which extends to infinity. OpenBeats
// marks its beat count as unbounded.
const (
	OpenEnd   int64 = -1
	OpenBeats int64 = -1
)

// MeterSegment is a tick range during which the meter is constant.
// UnitTicks is the tick length of one meter-defined beat in the segment.
// CumulativeBeats counts the whole beats of all earlier segments.
type MeterSegment struct {
	Start           int64
	End             int64
	Numerator       int
	Denominator     int
	UnitTicks       int64
	Beats           int64
	CumulativeBeats int64
}

// BuildMeterSegments turns a meter-change list into contiguous segments
// covering [0, inf). Entries are deduped by tick (last one wins) and an
// implicit 4/4 segment is inserted at tick 0 when none is recorded there.
func BuildMeterSegments(changes []model.TimeSignature, ticksPerBeat int) []MeterSegment {
	sorted := make([]model.TimeSignature, len(changes))
	copy(sorted, changes)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Time < sorted[j].Time
	})

	var deduped []model.TimeSignature
	for _, ts := range sorted {
		if n := len(deduped); n > 0 && deduped[n-1].Time == ts.Time {
			deduped[n-1].Numerator = ts.Numerator
			deduped[n-1].Denominator = ts.Denominator
		} else {
			deduped = append(deduped, ts)
		}
	}
	if len(deduped) == 0 || deduped[0].Time != 0 {
		deduped = append([]model.TimeSignature{{Numerator: 4, Denominator: 4}}, deduped...)
	}

	ppq := int64(ticksPerBeat)
	if ppq < 1 {
		ppq = 1
	}

	segments := make([]MeterSegment, 0, len(deduped))
	for _, ts := range deduped {
		unit := ppq
		if ts.Denominator != 0 {
			unit = int64(math.Round(float64(ppq) * 4 / float64(ts.Denominator)))
		}
		if unit <= 0 {
			unit = ppq
		}
		segments = append(segments, MeterSegment{
			Start:       ts.Time,
			End:         OpenEnd,
			Numerator:   ts.Numerator,
			Denominator: ts.Denominator,
			UnitTicks:   unit,
			Beats:       OpenBeats,
		})
	}

	for i := 0; i < len(segments)-1; i++ {
		segments[i].End = segments[i+1].Start
		length := segments[i].End - segments[i].Start
		if length < 0 {
			length = 0
		}
		segments[i].Beats = length / segments[i].UnitTicks
	}

	var cumulative int64
	for i := range segments {
		segments[i].CumulativeBeats = cumulative
		if segments[i].Beats != OpenBeats {
			cumulative += segments[i].Beats
		}
	}
	return segments
}

// TickToGlobalBeat locates tick on the global beat grid. It returns the
// 1-based beat index, the tick where that beat starts, and the remaining
// offset of tick within the beat. Ticks before the first segment map to
// beat 1 at the segment start with zero offset.
func TickToGlobalBeat(tick int64, segments []MeterSegment) (index, beatStart, offset int64) {
	for _, seg := range segments {
		if tick < seg.Start {
			return seg.CumulativeBeats + 1, seg.Start, 0
		}
		if seg.End != OpenEnd && tick >= seg.End {
			continue
		}
		within := tick - seg.Start
		beatInSegment := within / seg.UnitTicks
		beatStart = seg.Start + beatInSegment*seg.UnitTicks
		return seg.CumulativeBeats + beatInSegment + 1, beatStart, tick - beatStart
	}
	// Unreachable with segments from BuildMeterSegments: the last
	// segment is always open.
	last := segments[len(segments)-1]
	within := tick - last.Start
	beatInSegment := within / last.UnitTicks
	beatStart = last.Start + beatInSegment*last.UnitTicks
	return last.CumulativeBeats + beatInSegment + 1, beatStart, tick - beatStart
}

// GlobalBeatToTick is the inverse of TickToGlobalBeat for beat starts.
// Indexes below 1 are clamped to 1.
func GlobalBeatToTick(index int64, segments []MeterSegment) int64 {
	if index < 1 {
		index = 1
	}
	target := index - 1

	for _, seg := range segments {
		if target < seg.CumulativeBeats {
			return seg.Start
		}
		inside := target - seg.CumulativeBeats
		if seg.Beats == OpenBeats || inside < seg.Beats {
			return seg.Start + inside*seg.UnitTicks
		}
	}

	last := segments[len(segments)-1]
	inside := target - last.CumulativeBeats
	if inside < 0 {
		inside = 0
	}
	return last.Start + inside*last.UnitTicks
}

var barNumberRe = regexp.MustCompile(`\d+`)

// BarToTick resolves a "bar:beat" position text to the tick at which the
// bar starts. Only the bar number is honored; bars are counted from 1
// through the meter-change history, fractional bar spans included.
func BarToTick(barText string, doc *model.Document) (int64, error) {
	match := barNumberRe.FindString(barText)
	if match == "" {
		return 0, errors.Errorf("no bar number in %q", barText)
	}
	bar, err := strconv.Atoi(match)
	if err != nil {
		return 0, errors.Wrapf(err, "bar number in %q", barText)
	}

	changes := make([]model.TimeSignature, len(doc.TimeSignatures))
	copy(changes, doc.TimeSignatures)
	sort.SliceStable(changes, func(i, j int) bool {
		return changes[i].Time < changes[j].Time
	})

	tpb := float64(doc.TicksPerBeat)
	last := model.TimeSignature{Numerator: 4, Denominator: 4}
	if len(changes) > 0 {
		last = changes[0]
	}

	var currentTick float64
	currentBar := 1.0
	var lastTick float64

	for _, ts := range changes {
		if ts.Time == 0 {
			continue
		}
		barsInSegment := (float64(ts.Time) - lastTick) /
			(float64(last.Numerator) * tpb * 4 / float64(last.Denominator))
		if currentBar+barsInSegment >= float64(bar) {
			break
		}
		currentTick = float64(ts.Time)
		currentBar += barsInSegment
		lastTick = float64(ts.Time)
		last = ts
	}

	ticksPerBar := float64(last.Numerator) * tpb * 4 / float64(last.Denominator)
	remaining := float64(bar) - currentBar
	return int64(currentTick + remaining*ticksPerBar), nil
}
