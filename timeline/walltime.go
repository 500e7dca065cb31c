package timeline

import (
	"math"
	"regexp"
	"sort"
	"strconv"

	"github.com/pkg/errors"

	"github.com/jsphweid/midiops/model"
)

const defaultBPM = 120.0

type tempoAnchor struct {
	tick       int64
	seconds    float64
	secPerTick float64
}

// TickTimeMap is a monotonic piecewise-linear mapping between absolute
// ticks and elapsed wall-clock seconds, built from a document's
// tempo-change history. A 120 BPM segment covers any leading span before
// the first recorded tempo.
type TickTimeMap struct {
	anchors []tempoAnchor
	maxTick int64
}

func NewTickTimeMap(doc *model.Document) *TickTimeMap {
	tpb := float64(doc.TicksPerBeat)
	if tpb < 1 {
		tpb = 1
	}

	tempos := make([]model.TempoChange, len(doc.TempoChanges))
	copy(tempos, doc.TempoChanges)
	sort.SliceStable(tempos, func(i, j int) bool {
		return tempos[i].Time < tempos[j].Time
	})

	m := &TickTimeMap{maxTick: doc.MaxTick}
	m.anchors = append(m.anchors, tempoAnchor{
		tick:       0,
		seconds:    0,
		secPerTick: 60.0 / (defaultBPM * tpb),
	})
	for _, tc := range tempos {
		if tc.BPM <= 0 {
			continue
		}
		tick := tc.Time
		if tick < 0 {
			tick = 0
		}
		prev := m.anchors[len(m.anchors)-1]
		anchor := tempoAnchor{
			tick:       tick,
			seconds:    prev.seconds + float64(tick-prev.tick)*prev.secPerTick,
			secPerTick: 60.0 / (tc.BPM * tpb),
		}
		if tick == prev.tick {
			m.anchors[len(m.anchors)-1] = anchor
		} else {
			m.anchors = append(m.anchors, anchor)
		}
	}
	return m
}

// TimeAt returns the elapsed seconds at an absolute tick.
func (m *TickTimeMap) TimeAt(tick int64) float64 {
	if tick <= 0 {
		return 0
	}
	i := sort.Search(len(m.anchors), func(i int) bool {
		return m.anchors[i].tick > tick
	}) - 1
	a := m.anchors[i]
	return a.seconds + float64(tick-a.tick)*a.secPerTick
}

// TickAt returns the tick whose mapped time is nearest to the requested
// seconds, ties broken toward the earlier tick, clamped to [0, MaxTick].
func (m *TickTimeMap) TickAt(seconds float64) int64 {
	if seconds <= 0 {
		return 0
	}
	i := sort.Search(len(m.anchors), func(i int) bool {
		return m.anchors[i].seconds > seconds
	}) - 1
	a := m.anchors[i]
	exact := float64(a.tick) + (seconds-a.seconds)/a.secPerTick

	lo := int64(math.Floor(exact))
	hi := lo + 1
	if lo >= m.maxTick {
		return m.maxTick
	}
	if hi > m.maxTick {
		hi = m.maxTick
	}
	if math.Abs(seconds-m.TimeAt(lo)) <= math.Abs(seconds-m.TimeAt(hi)) {
		return lo
	}
	return hi
}

// SecondsToTick resolves a wall-clock position against the document's
// tempo history.
func SecondsToTick(doc *model.Document, seconds float64) int64 {
	return NewTickTimeMap(doc).TickAt(seconds)
}

var clockTimeRe = regexp.MustCompile(`^\s*(\d+):(\d+)(?::(\d+))?\s*$`)

// ParseClockTime parses "MM:SS" and "MM:SS:ms" position texts.
func ParseClockTime(s string) (float64, error) {
	m := clockTimeRe.FindStringSubmatch(s)
	if m == nil {
		return 0, errors.Errorf("malformed clock time %q", s)
	}
	minutes, _ := strconv.Atoi(m[1])
	secs, _ := strconv.Atoi(m[2])
	var millis int
	if m[3] != "" {
		millis, _ = strconv.Atoi(m[3])
	}
	return float64(minutes)*60 + float64(secs) + float64(millis)/1000, nil
}

// Position units accepted by ResolveTime.
const (
	UnitBarBeat   = "bar:beat"
	UnitClockTime = "minute:second:ms"
	UnitSeconds   = "s"
)

// ResolveTime converts a position text in the given unit to an absolute
// tick. Malformed input yields an error rather than a zero tick, so a
// legitimate tick-0 result stays distinguishable from a parse failure.
func ResolveTime(doc *model.Document, value string, unit string) (int64, error) {
	switch unit {
	case UnitBarBeat:
		return BarToTick(value, doc)
	case UnitClockTime:
		seconds, err := ParseClockTime(value)
		if err != nil {
			return 0, err
		}
		return SecondsToTick(doc, seconds), nil
	case UnitSeconds:
		seconds, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, errors.Wrapf(err, "malformed seconds %q", value)
		}
		return SecondsToTick(doc, seconds), nil
	default:
		return 0, errors.Errorf("unknown time unit %q", unit)
	}
}
