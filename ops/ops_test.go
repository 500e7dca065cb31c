package ops

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jsphweid/midiops/model"
)

func docWith(notes []model.Note) *model.Document {
	doc := &model.Document{
		TicksPerBeat:   480,
		MaxTick:        100000,
		TempoChanges:   []model.TempoChange{{BPM: 120, Time: 0}},
		TimeSignatures: []model.TimeSignature{{Numerator: 4, Denominator: 4, Time: 0}},
	}
	if len(notes) > 0 {
		doc.Instruments = []*model.Instrument{{Notes: notes}}
	}
	return doc
}

func TestChangeTimeSignatureGlobalReplacesTickZero(t *testing.T) {
	assert := assert.New(t)
	doc := docWith(nil)
	doc.TimeSignatures = []model.TimeSignature{
		{Numerator: 3, Denominator: 4, Time: 0},
		{Numerator: 6, Denominator: 8, Time: 3840},
	}

	err := Apply(doc, model.Operation{
		Operation:     model.OpChangeTimeSignature,
		TimeSignature: "4/4",
	})

	assert.NoError(err)
	assert.Len(doc.TimeSignatures, 2)
	assert.Equal(model.TimeSignature{Numerator: 4, Denominator: 4, Time: 0}, doc.TimeSignatures[0])
	assert.Equal(int64(3840), doc.TimeSignatures[1].Time)
}

func TestChangeTimeSignatureTimedAdds(t *testing.T) {
	assert := assert.New(t)
	doc := docWith(nil)

	err := Apply(doc, model.Operation{
		Operation:     model.OpChangeTimeSignature,
		TimeSignature: "3/4",
		Time:          "0:01",
	})

	assert.NoError(err)
	assert.Len(doc.TimeSignatures, 2)
	// one second at 120 BPM is 960 ticks
	assert.Equal(model.TimeSignature{Numerator: 3, Denominator: 4, Time: 960}, doc.TimeSignatures[1])
}

func TestChangeTimeSignatureRejectsMalformed(t *testing.T) {
	assert := assert.New(t)
	doc := docWith(nil)

	assert.Error(ChangeTimeSignature(doc, model.Operation{TimeSignature: "44"}))
	assert.Error(ChangeTimeSignature(doc, model.Operation{TimeSignature: "a/b"}))
	assert.Error(ChangeTimeSignature(doc, model.Operation{TimeSignature: "4/4", Time: "nope"}))
	// nothing was applied
	assert.Len(doc.TimeSignatures, 1)
}

func TestAddKeyChangeNormalizesEnharmonics(t *testing.T) {
	assert := assert.New(t)
	doc := docWith(nil)

	err := Apply(doc, model.Operation{
		Operation: model.OpAddKeyChange,
		Key:       "A#",
		Time:      "0",
		Unit:      "s",
	})
	assert.NoError(err)

	err = Apply(doc, model.Operation{
		Operation: model.OpAddKeyChange,
		Key:       "Cbm",
		Time:      "2:1",
		Unit:      "bar:beat",
	})
	assert.NoError(err)

	assert.Equal(model.KeySignature{Name: "Bb", Time: 0}, doc.KeySignatures[0])
	assert.Equal(model.KeySignature{Name: "Bm", Time: 1920}, doc.KeySignatures[1])
}

func TestAddKeyChangeKeepsDuplicateTicks(t *testing.T) {
	assert := assert.New(t)
	doc := docWith(nil)

	for _, key := range []string{"C", "Gm"} {
		err := AddKeyChange(doc, model.Operation{Key: key, Time: "0", Unit: "s"})
		assert.NoError(err)
	}

	assert.Len(doc.KeySignatures, 2)
	assert.Equal("Gm", doc.KeySignatures[1].Name)
}

func TestAddKeyChangeRejectsBadTime(t *testing.T) {
	doc := docWith(nil)
	err := AddKeyChange(doc, model.Operation{Key: "C", Time: "garbage", Unit: "s"})
	assert.Error(t, err)
	assert.Empty(t, doc.KeySignatures)
}

func TestShiftStartBeatAlignsFirstNote(t *testing.T) {
	assert := assert.New(t)
	doc := docWith([]model.Note{
		{Pitch: 60, Start: 240, End: 720},
		{Pitch: 64, Start: 960, End: 1440},
	})

	err := Apply(doc, model.Operation{Operation: model.OpShiftStartBeat, ToBeat: 2})

	assert.NoError(err)
	// beat 2 starts at tick 480; everything moves by +240
	assert.Equal(int64(480), doc.Instruments[0].Notes[0].Start)
	assert.Equal(int64(1200), doc.Instruments[0].Notes[1].Start)
}

func TestShiftStartBeatAcrossMeterChange(t *testing.T) {
	assert := assert.New(t)
	doc := docWith([]model.Note{{Pitch: 60, Start: 0, End: 480}})
	doc.TimeSignatures = []model.TimeSignature{
		{Numerator: 4, Denominator: 4, Time: 0},
		{Numerator: 3, Denominator: 4, Time: 1920},
	}

	err := ShiftStartBeat(doc, model.Operation{ToBeat: 5})

	assert.NoError(err)
	// global beat 5 is the first beat of the 3/4 segment
	assert.Equal(int64(1920), doc.Instruments[0].Notes[0].Start)
	// the shifted meter list gets its first entry pinned back to zero
	assert.Equal(int64(0), doc.TimeSignatures[0].Time)
	assert.Equal(int64(3840), doc.TimeSignatures[1].Time)
}

func TestShiftStartBeatAlreadyAlignedIsNoOp(t *testing.T) {
	assert := assert.New(t)
	doc := docWith([]model.Note{
		{Pitch: 64, Start: 960, End: 1440},
		{Pitch: 60, Start: 0, End: 480},
	})

	err := ShiftStartBeat(doc, model.Operation{ToBeat: 1})

	assert.NoError(err)
	// no shift, no re-sort: the note order is untouched
	assert.Equal(int64(960), doc.Instruments[0].Notes[0].Start)
	assert.Equal(int64(0), doc.Instruments[0].Notes[1].Start)
}

func TestShiftStartBeatWithoutNotesIsNoOp(t *testing.T) {
	doc := docWith(nil)
	assert.NoError(t, ShiftStartBeat(doc, model.Operation{ToBeat: 4}))
}

func TestShiftStartBeatScansOnlyFirstTrack(t *testing.T) {
	assert := assert.New(t)
	doc := docWith([]model.Note{{Pitch: 60, Start: 960, End: 1440}})
	doc.Instruments = append(doc.Instruments, &model.Instrument{
		Notes: []model.Note{{Pitch: 36, Start: 0, End: 480}},
	})

	err := ShiftStartBeat(doc, model.Operation{ToBeat: 1})

	assert.NoError(err)
	// the first track's note defines the anchor: it moves to tick 0,
	// the accompaniment note is pushed before zero and dropped
	assert.Equal(int64(0), doc.Instruments[0].Notes[0].Start)
	assert.Empty(doc.Instruments[1].Notes)
}

func TestApplyRejectsUnknownOperation(t *testing.T) {
	doc := docWith(nil)
	assert.Error(t, Apply(doc, model.Operation{Operation: "transpose"}))
}
