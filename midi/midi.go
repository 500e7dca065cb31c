// Package midi adapts gomidi's SMF representation to and from the typed
// document the rest of the pipeline works on.
package midi

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sort"

	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/jsphweid/midiops/model"
	"github.com/jsphweid/midiops/shift"
)

const sustainController = 64

func readSMF(filepath string) (s *smf.SMF, e error) {
	var blank smf.SMF

	// handle panics
	// https://github.com/gomidi/midi/issues/20
	defer func() {
		if r, ok := recover().(string); ok {
			e = errors.New(r)
		}
	}()

	dat, err := os.ReadFile(filepath)
	if err != nil {
		errText := fmt.Sprintf("Error reading midi file... %s", err.Error())
		return &blank, errors.New(errText)
	}
	res, err := smf.ReadFrom(bytes.NewReader(dat))
	if err != nil {
		errText := fmt.Sprintf("Error parsing midi file... %s", err.Error())
		return &blank, errors.New(errText)
	}
	return res, nil
}

// ReadDocument parses a MIDI file into a document. Each track carrying
// channel events becomes one instrument; meta-only tracks contribute to
// the global tempo/meter/key/marker lists.
func ReadDocument(path string) (*model.Document, error) {
	s, err := readSMF(path)
	if err != nil {
		return nil, err
	}

	ticks, ok := s.TimeFormat.(smf.MetricTicks)
	if !ok {
		return nil, errors.New("unsupported time format, expected metric ticks")
	}

	doc := &model.Document{TicksPerBeat: int(uint16(ticks))}

	for _, track := range s.Tracks {
		inst := &model.Instrument{}
		hasChannelEvents := false
		pending := make(map[uint8]model.Note)
		pedalStart := int64(-1)

		var absTicks int64
		for _, ev := range track {
			absTicks += int64(ev.Delta)
			msg := ev.Message

			var ch, key, vel, controller, value, program uint8
			var rel int16
			var abs uint16
			var num, denom uint8
			var bpm float64
			var text string
			var k smf.Key

			switch {
			case msg.GetNoteStart(&ch, &key, &vel):
				hasChannelEvents = true
				inst.Channel = ch
				pending[key] = model.Note{Pitch: key, Velocity: vel, Start: absTicks}
			case msg.GetNoteEnd(&ch, &key):
				if n, ok := pending[key]; ok {
					n.End = absTicks
					if n.End > n.Start {
						inst.Notes = append(inst.Notes, n)
					}
					delete(pending, key)
				}
			case msg.GetControlChange(&ch, &controller, &value):
				hasChannelEvents = true
				inst.Channel = ch
				inst.ControlChanges = append(inst.ControlChanges, model.ControlChange{
					Controller: controller,
					Value:      value,
					Time:       absTicks,
				})
				if controller == sustainController {
					if value >= 64 && pedalStart < 0 {
						pedalStart = absTicks
					} else if value < 64 && pedalStart >= 0 {
						inst.Pedals = append(inst.Pedals, model.Pedal{Start: pedalStart, End: absTicks})
						pedalStart = -1
					}
				}
			case msg.GetPitchBend(&ch, &rel, &abs):
				hasChannelEvents = true
				inst.Channel = ch
				inst.PitchBends = append(inst.PitchBends, model.PitchBend{Value: rel, Time: absTicks})
			case msg.GetProgramChange(&ch, &program):
				hasChannelEvents = true
				inst.Channel = ch
				inst.Program = program
			case msg.GetMetaTempo(&bpm):
				doc.TempoChanges = append(doc.TempoChanges, model.TempoChange{BPM: bpm, Time: absTicks})
			case msg.GetMetaMeter(&num, &denom):
				doc.TimeSignatures = append(doc.TimeSignatures, model.TimeSignature{
					Numerator:   int(num),
					Denominator: int(denom),
					Time:        absTicks,
				})
			case msg.GetMetaKey(&k):
				doc.KeySignatures = append(doc.KeySignatures, model.KeySignature{
					Name: KeyName(k),
					Time: absTicks,
				})
			case msg.GetMetaMarker(&text):
				doc.Markers = append(doc.Markers, model.Marker{Text: text, Time: absTicks})
			case msg.GetMetaTrackName(&text):
				inst.Name = text
			}
		}

		if hasChannelEvents {
			inst.IsDrum = inst.Channel == 9
			sort.SliceStable(inst.Notes, func(i, j int) bool {
				return inst.Notes[i].Start < inst.Notes[j].Start
			})
			doc.Instruments = append(doc.Instruments, inst)
		}
	}

	shift.RecomputeMaxTick(doc)
	return doc, nil
}
