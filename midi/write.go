package midi

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/jsphweid/midiops/model"
)

type timedMessage struct {
	tick int64
	// note-offs sort before other messages at the same tick so equal
	// start/end pairs don't retrigger
	off bool
	msg smf.Message
}

func toTrack(msgs []timedMessage) smf.Track {
	sort.SliceStable(msgs, func(i, j int) bool {
		if msgs[i].tick != msgs[j].tick {
			return msgs[i].tick < msgs[j].tick
		}
		return msgs[i].off && !msgs[j].off
	})

	var track smf.Track
	var prev int64
	for _, tm := range msgs {
		tick := tm.tick
		if tick < 0 {
			tick = 0
		}
		track.Add(uint32(tick-prev), tm.msg)
		prev = tick
	}
	track.Close(0)
	return track
}

func metaTrack(doc *model.Document) smf.Track {
	var msgs []timedMessage
	for _, t := range doc.TempoChanges {
		msgs = append(msgs, timedMessage{tick: t.Time, msg: smf.MetaTempo(t.BPM)})
	}
	for _, ts := range doc.TimeSignatures {
		msgs = append(msgs, timedMessage{tick: ts.Time, msg: smf.MetaMeter(uint8(ts.Numerator), uint8(ts.Denominator))})
	}
	for _, k := range doc.KeySignatures {
		sig := ParseKeyName(k.Name)
		msgs = append(msgs, timedMessage{tick: k.Time, msg: smf.MetaKey(sig.Key, sig.IsMajor, sig.Num, sig.IsFlat)})
	}
	for _, m := range doc.Markers {
		msgs = append(msgs, timedMessage{tick: m.Time, msg: smf.MetaMarker(m.Text)})
	}
	return toTrack(msgs)
}

func instrumentTrack(inst *model.Instrument) smf.Track {
	var msgs []timedMessage
	if inst.Name != "" {
		msgs = append(msgs, timedMessage{msg: smf.MetaTrackSequenceName(inst.Name)})
	}
	msgs = append(msgs, timedMessage{msg: smf.Message(gomidi.ProgramChange(inst.Channel, inst.Program))})

	for _, n := range inst.Notes {
		msgs = append(msgs, timedMessage{
			tick: n.Start,
			msg:  smf.Message(gomidi.NoteOn(inst.Channel, n.Pitch, n.Velocity)),
		})
		msgs = append(msgs, timedMessage{
			tick: n.End,
			off:  true,
			msg:  smf.Message(gomidi.NoteOff(inst.Channel, n.Pitch)),
		})
	}
	for _, cc := range inst.ControlChanges {
		msgs = append(msgs, timedMessage{
			tick: cc.Time,
			msg:  smf.Message(gomidi.ControlChange(inst.Channel, cc.Controller, cc.Value)),
		})
	}
	for _, pb := range inst.PitchBends {
		msgs = append(msgs, timedMessage{
			tick: pb.Time,
			msg:  smf.Message(gomidi.Pitchbend(inst.Channel, pb.Value)),
		})
	}
	// pedals are a derived view over CC64 and are not written separately
	return toTrack(msgs)
}

// WriteDocument serializes the document as a format-1 SMF. The file is
// written to a temp name in the destination directory first and renamed
// into place.
func WriteDocument(doc *model.Document, path string) error {
	s := smf.NewSMF1()
	s.TimeFormat = smf.MetricTicks(doc.TicksPerBeat)

	if err := s.Add(metaTrack(doc)); err != nil {
		return errors.Wrap(err, "adding meta track")
	}
	for _, inst := range doc.Instruments {
		if err := s.Add(instrumentTrack(inst)); err != nil {
			return errors.Wrapf(err, "adding track %q", inst.Name)
		}
	}

	tmp := filepath.Join(filepath.Dir(path), "."+uuid.New().String()+".tmp")
	f, err := os.Create(tmp)
	if err != nil {
		return errors.Wrapf(err, "creating %v", tmp)
	}
	if _, err := s.WriteTo(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return errors.Wrapf(err, "writing %v", path)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return errors.Wrapf(err, "closing %v", tmp)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return errors.Wrapf(err, "renaming into %v", path)
	}
	return nil
}
