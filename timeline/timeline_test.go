package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jsphweid/midiops/model"
)

func fourFourThenThreeFour() []MeterSegment {
	return BuildMeterSegments([]model.TimeSignature{
		{Numerator: 4, Denominator: 4, Time: 0},
		{Numerator: 3, Denominator: 4, Time: 1920},
	}, 480)
}

func TestBuildMeterSegments(t *testing.T) {
	assert := assert.New(t)
	segments := fourFourThenThreeFour()

	assert.Len(segments, 2)
	assert.Equal(int64(0), segments[0].Start)
	assert.Equal(int64(1920), segments[0].End)
	assert.Equal(int64(480), segments[0].UnitTicks)
	assert.Equal(int64(4), segments[0].Beats)
	assert.Equal(int64(0), segments[0].CumulativeBeats)

	assert.Equal(int64(1920), segments[1].Start)
	assert.Equal(OpenEnd, segments[1].End)
	assert.Equal(int64(480), segments[1].UnitTicks)
	assert.Equal(OpenBeats, segments[1].Beats)
	assert.Equal(int64(4), segments[1].CumulativeBeats)
}

func TestBuildMeterSegmentsInsertsImplicitFourFour(t *testing.T) {
	assert := assert.New(t)
	segments := BuildMeterSegments([]model.TimeSignature{
		{Numerator: 3, Denominator: 8, Time: 960},
	}, 480)

	assert.Len(segments, 2)
	assert.Equal(4, segments[0].Numerator)
	assert.Equal(4, segments[0].Denominator)
	assert.Equal(int64(0), segments[0].Start)
	// 3/8 beat unit is an eighth note
	assert.Equal(int64(240), segments[1].UnitTicks)
}

func TestBuildMeterSegmentsDedupesByTick(t *testing.T) {
	assert := assert.New(t)
	segments := BuildMeterSegments([]model.TimeSignature{
		{Numerator: 4, Denominator: 4, Time: 0},
		{Numerator: 6, Denominator: 8, Time: 0},
	}, 480)

	assert.Len(segments, 1)
	assert.Equal(6, segments[0].Numerator)
	assert.Equal(8, segments[0].Denominator)
}

func TestBuildMeterSegmentsOnEmptyList(t *testing.T) {
	assert := assert.New(t)
	segments := BuildMeterSegments(nil, 480)

	assert.Len(segments, 1)
	assert.Equal(4, segments[0].Numerator)
	assert.Equal(int64(480), segments[0].UnitTicks)
	assert.Equal(OpenEnd, segments[0].End)
}

func TestTickToGlobalBeatAcrossMeterChange(t *testing.T) {
	assert := assert.New(t)
	segments := fourFourThenThreeFour()

	for i, beatStart := range []int64{0, 480, 960, 1440} {
		idx, start, offset := TickToGlobalBeat(beatStart, segments)
		assert.Equal(int64(i+1), idx)
		assert.Equal(beatStart, start)
		assert.Equal(int64(0), offset)
	}

	idx, start, offset := TickToGlobalBeat(1920, segments)
	assert.Equal(int64(5), idx)
	assert.Equal(int64(1920), start)
	assert.Equal(int64(0), offset)

	idx, start, offset = TickToGlobalBeat(2000, segments)
	assert.Equal(int64(5), idx)
	assert.Equal(int64(1920), start)
	assert.Equal(int64(80), offset)
}

func TestTickToGlobalBeatBeforeTimelineStart(t *testing.T) {
	assert := assert.New(t)
	segments := fourFourThenThreeFour()

	idx, start, offset := TickToGlobalBeat(-50, segments)
	assert.Equal(int64(1), idx)
	assert.Equal(int64(0), start)
	assert.Equal(int64(0), offset)
}

func TestTickToGlobalBeatMonotonic(t *testing.T) {
	segments := BuildMeterSegments([]model.TimeSignature{
		{Numerator: 4, Denominator: 4, Time: 0},
		{Numerator: 3, Denominator: 4, Time: 1920},
		{Numerator: 7, Denominator: 8, Time: 3000},
	}, 480)

	prev := int64(0)
	for tick := int64(0); tick <= 6000; tick += 7 {
		idx, _, _ := TickToGlobalBeat(tick, segments)
		if idx < prev {
			t.Fatalf("beat index decreased at tick %v: %v -> %v", tick, prev, idx)
		}
		prev = idx
	}
}

func TestGlobalBeatRoundTripLandsOnBeatStart(t *testing.T) {
	assert := assert.New(t)
	segments := BuildMeterSegments([]model.TimeSignature{
		{Numerator: 4, Denominator: 4, Time: 0},
		{Numerator: 3, Denominator: 4, Time: 1920},
		{Numerator: 6, Denominator: 8, Time: 4320},
	}, 480)

	for tick := int64(0); tick <= 8000; tick += 13 {
		idx, beatStart, _ := TickToGlobalBeat(tick, segments)
		assert.Equal(beatStart, GlobalBeatToTick(idx, segments), "tick %v", tick)
	}
}

func TestGlobalBeatToTickClampsBelowOne(t *testing.T) {
	assert := assert.New(t)
	segments := fourFourThenThreeFour()

	assert.Equal(int64(0), GlobalBeatToTick(0, segments))
	assert.Equal(int64(0), GlobalBeatToTick(-3, segments))
	assert.Equal(int64(0), GlobalBeatToTick(1, segments))
	assert.Equal(int64(2400), GlobalBeatToTick(6, segments))
}

func TestBarToTick(t *testing.T) {
	assert := assert.New(t)
	doc := &model.Document{
		TicksPerBeat: 480,
		TimeSignatures: []model.TimeSignature{
			{Numerator: 4, Denominator: 4, Time: 0},
			{Numerator: 3, Denominator: 4, Time: 1920},
		},
	}

	tick, err := BarToTick("1:1", doc)
	assert.NoError(err)
	assert.Equal(int64(0), tick)

	tick, err = BarToTick("2:1", doc)
	assert.NoError(err)
	assert.Equal(int64(1920), tick)

	// bar 3 is the second bar of the 3/4 segment
	tick, err = BarToTick("3:1", doc)
	assert.NoError(err)
	assert.Equal(int64(3360), tick)
}

func TestBarToTickRejectsNonNumeric(t *testing.T) {
	doc := &model.Document{TicksPerBeat: 480}
	_, err := BarToTick("not a bar", doc)
	assert.Error(t, err)
}

func TestParseClockTime(t *testing.T) {
	assert := assert.New(t)

	seconds, err := ParseClockTime("1:30")
	assert.NoError(err)
	assert.Equal(90.0, seconds)

	seconds, err = ParseClockTime("0:05:500")
	assert.NoError(err)
	assert.Equal(5.5, seconds)

	seconds, err = ParseClockTime(" 2:10 ")
	assert.NoError(err)
	assert.Equal(130.0, seconds)

	_, err = ParseClockTime("90")
	assert.Error(err)
	_, err = ParseClockTime("1:2:3:4")
	assert.Error(err)
}

func TestSecondsToTickConstantTempo(t *testing.T) {
	assert := assert.New(t)
	doc := &model.Document{
		TicksPerBeat: 480,
		MaxTick:      100000,
		TempoChanges: []model.TempoChange{{BPM: 120, Time: 0}},
	}

	// 120 BPM: two quarter beats per second
	assert.Equal(int64(0), SecondsToTick(doc, 0))
	assert.Equal(int64(960), SecondsToTick(doc, 1))
	assert.Equal(int64(480), SecondsToTick(doc, 0.5))
}

func TestSecondsToTickWithTempoChange(t *testing.T) {
	assert := assert.New(t)
	doc := &model.Document{
		TicksPerBeat: 480,
		MaxTick:      100000,
		TempoChanges: []model.TempoChange{
			{BPM: 120, Time: 0},
			{BPM: 60, Time: 960},
		},
	}

	// the first second covers 960 ticks, after that one beat per second
	assert.Equal(int64(960), SecondsToTick(doc, 1))
	assert.Equal(int64(1440), SecondsToTick(doc, 2))
	assert.Equal(int64(1920), SecondsToTick(doc, 3))
}

func TestSecondsToTickClampsToMaxTick(t *testing.T) {
	doc := &model.Document{
		TicksPerBeat: 480,
		MaxTick:      1000,
		TempoChanges: []model.TempoChange{{BPM: 120, Time: 0}},
	}
	assert.Equal(t, int64(1000), SecondsToTick(doc, 3600))
}

func TestSecondsToTickDefaultsTo120BPM(t *testing.T) {
	doc := &model.Document{TicksPerBeat: 480, MaxTick: 100000}
	assert.Equal(t, int64(960), SecondsToTick(doc, 1))
}

func TestResolveTime(t *testing.T) {
	assert := assert.New(t)
	doc := &model.Document{
		TicksPerBeat:   480,
		MaxTick:        100000,
		TempoChanges:   []model.TempoChange{{BPM: 120, Time: 0}},
		TimeSignatures: []model.TimeSignature{{Numerator: 4, Denominator: 4, Time: 0}},
	}

	tick, err := ResolveTime(doc, "2:1", UnitBarBeat)
	assert.NoError(err)
	assert.Equal(int64(1920), tick)

	tick, err = ResolveTime(doc, "0:01", UnitClockTime)
	assert.NoError(err)
	assert.Equal(int64(960), tick)

	tick, err = ResolveTime(doc, "0.5", UnitSeconds)
	assert.NoError(err)
	assert.Equal(int64(480), tick)

	_, err = ResolveTime(doc, "0.5", "fortnights")
	assert.Error(err)
	_, err = ResolveTime(doc, "abc", UnitSeconds)
	assert.Error(err)
}
