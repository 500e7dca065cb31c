package chord

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/jsphweid/midiops/midi"
	"github.com/jsphweid/midiops/model"
	"github.com/jsphweid/midiops/shift"
)

// CSVName is the per-piece annotation filename.
const CSVName = "chord_symbol.csv"

var csvHeader = []string{"offset_qb", "root", "quality", "bass", "local_key"}

type block struct {
	start    int64
	end      int64
	root     string
	quality  string
	bass     string
	localKey string
}

// LocalKeyLabel renders a key-signature name as the local-key column
// value: "Bb major" forms keep the root, minor forms (spelled out or
// trailing-m) are lowercased.
func LocalKeyLabel(name string) string {
	if strings.Contains(name, " ") {
		fields := strings.Fields(name)
		root, mode := fields[0], fields[1]
		if mode == "major" {
			return root
		}
		return strings.ToLower(root)
	}
	if strings.HasSuffix(name, "m") && len(name) > 1 {
		return strings.ToLower(name[:len(name)-1])
	}
	return name
}

func localKeyAt(keys []model.KeySignature, tick int64) string {
	current := "C"
	if len(keys) == 0 {
		return current
	}
	sorted := make([]model.KeySignature, len(keys))
	copy(sorted, keys)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Time < sorted[j].Time })

	var active *model.KeySignature
	for i := range sorted {
		if sorted[i].Time <= tick {
			active = &sorted[i]
		} else {
			break
		}
	}
	if active == nil {
		return current
	}
	return LocalKeyLabel(active.Name)
}

func chordBlocks(doc *model.Document) []block {
	chordTrack := doc.Instruments[len(doc.Instruments)-1]

	byStart := make(map[int64][]model.Note)
	for _, n := range chordTrack.Notes {
		byStart[n.Start] = append(byStart[n.Start], n)
	}
	starts := make([]int64, 0, len(byStart))
	for start := range byStart {
		starts = append(starts, start)
	}
	sort.Slice(starts, func(i, j int) bool { return starts[i] < starts[j] })

	var blocks []block
	for _, start := range starts {
		notes := byStart[start]
		end := notes[0].End
		bass := notes[0]
		var pcs []int
		for _, n := range notes {
			if n.End > end {
				end = n.End
			}
			if n.Pitch < bass.Pitch {
				bass = n
			}
			pcs = append(pcs, int(n.Pitch)%12)
		}

		root, quality := Quality(pcs)
		if root == -1 {
			continue
		}
		blocks = append(blocks, block{
			start:    start,
			end:      end,
			root:     PitchClassNames[root],
			quality:  quality,
			bass:     PitchClassNames[int(bass.Pitch)%12],
			localKey: localKeyAt(doc.KeySignatures, start),
		})
	}
	return blocks
}

// Events flattens chord blocks into the final gap-filled, deduplicated
// event list. Offsets are in quarter beats. A no-chord event covers any
// leading silence and every silence between consecutive blocks; events
// closer than 1e-6 quarter beats are merged, a real chord winning over a
// gap marker.
func Events(blocks []block, ticksPerBeat int) []model.ChordEvent {
	tpb := float64(ticksPerBeat)

	type raw struct {
		time float64
		gap  bool
		b    block
	}
	var all []raw
	if len(blocks) == 0 || blocks[0].start > 0 {
		all = append(all, raw{time: 0, gap: true})
	}
	for i, b := range blocks {
		all = append(all, raw{time: float64(b.start) / tpb, b: b})
		if i < len(blocks)-1 {
			endQB := float64(b.end) / tpb
			nextQB := float64(blocks[i+1].start) / tpb
			if nextQB > endQB {
				all = append(all, raw{time: endQB, gap: true})
			}
		}
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].time < all[j].time })

	var final []model.ChordEvent
	lastTime := -1.0
	for _, ev := range all {
		if math.Abs(ev.time-lastTime) < 1e-6 {
			if !ev.gap && len(final) > 0 && final[len(final)-1].IsGap() {
				final[len(final)-1] = model.ChordEvent{
					OffsetQB: ev.time,
					Root:     ev.b.root,
					Quality:  ev.b.quality,
					Bass:     ev.b.bass,
					LocalKey: ev.b.localKey,
				}
			}
			continue
		}
		if ev.gap {
			final = append(final, model.ChordEvent{
				OffsetQB: ev.time, Root: "N", Quality: "N", Bass: "N", LocalKey: "N",
			})
		} else {
			final = append(final, model.ChordEvent{
				OffsetQB: ev.time,
				Root:     ev.b.root,
				Quality:  ev.b.quality,
				Bass:     ev.b.bass,
				LocalKey: ev.b.localKey,
			})
		}
		lastTime = ev.time
	}
	return final
}

// ExtractPiece shifts doc so the first track's earliest note starts at
// tick 0, writes the melody-only MIDI and the chord CSV into outDir.
func ExtractPiece(doc *model.Document, name, outDir string) error {
	if len(doc.Instruments) < 2 {
		return errors.Errorf("piece %v: need at least 2 instrument tracks, have %v", name, len(doc.Instruments))
	}
	score := doc.Instruments[0]
	if len(score.Notes) == 0 {
		return errors.Errorf("piece %v: no notes in score track", name)
	}

	firstNote := score.Notes[0].Start
	for _, n := range score.Notes {
		if n.Start < firstNote {
			firstNote = n.Start
		}
	}
	shift.Apply(doc, -firstNote)

	if err := os.MkdirAll(outDir, 0777); err != nil {
		return errors.Wrapf(err, "piece %v", name)
	}

	melody := &model.Document{
		TicksPerBeat:   doc.TicksPerBeat,
		Instruments:    []*model.Instrument{doc.Instruments[0]},
		TempoChanges:   doc.TempoChanges,
		TimeSignatures: doc.TimeSignatures,
		KeySignatures:  doc.KeySignatures,
	}
	shift.RecomputeMaxTick(melody)
	if err := midi.WriteDocument(melody, filepath.Join(outDir, name+".mid")); err != nil {
		return errors.Wrapf(err, "piece %v: writing melody", name)
	}

	events := Events(chordBlocks(doc), doc.TicksPerBeat)
	return WriteCSV(events, filepath.Join(outDir, CSVName))
}

// WriteCSV emits the annotation rows with four-decimal offsets.
func WriteCSV(events []model.ChordEvent, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %v", path)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return err
	}
	for _, ev := range events {
		row := []string{
			fmt.Sprintf("%.4f", ev.OffsetQB),
			ev.Root, ev.Quality, ev.Bass, ev.LocalKey,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// ReadCSV loads a previously written annotation file.
func ReadCSV(path string) ([]model.ChordEvent, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, errors.Wrapf(err, "reading %v", path)
	}

	var events []model.ChordEvent
	for i, rec := range records {
		if i == 0 || len(rec) != 5 {
			continue
		}
		offset, err := strconv.ParseFloat(rec[0], 64)
		if err != nil {
			return nil, errors.Wrapf(err, "row %v of %v", i, path)
		}
		events = append(events, model.ChordEvent{
			OffsetQB: offset,
			Root:     rec[1],
			Quality:  rec[2],
			Bass:     rec[3],
			LocalKey: rec[4],
		})
	}
	return events, nil
}
