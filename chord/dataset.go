package chord

import (
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"github.com/jsphweid/midiops/midi"
	"github.com/jsphweid/midiops/util"
)

// DatasetSummary aggregates one ExtractAll run.
type DatasetSummary struct {
	Pieces  []string
	Skipped int
}

// ExtractAll runs the extraction over every MIDI file under srcDir,
// writing one subdirectory per piece into outRoot. A failing piece is
// logged and skipped; it never aborts the run.
func ExtractAll(srcDir, outRoot string) (*DatasetSummary, error) {
	paths := util.GatherAllMidiPaths(srcDir, 0)

	p := mpb.New(mpb.WithWidth(64))
	bar := p.AddBar(int64(len(paths)),
		mpb.PrependDecorators(
			decor.Name("Extracting: "),
			decor.CountersNoUnit("%d / %d"),
		),
		mpb.AppendDecorators(decor.Percentage()),
	)

	var summary DatasetSummary
	for _, path := range paths {
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		if err := extractOne(path, name, outRoot); err != nil {
			logrus.WithField("piece", name).Warnf("skipping: %v", err)
			summary.Skipped++
		} else {
			summary.Pieces = append(summary.Pieces, name)
		}
		bar.Increment()
	}
	p.Wait()

	logrus.Infof("extracted %v pieces, skipped %v", len(summary.Pieces), summary.Skipped)
	return &summary, nil
}

func extractOne(path, name, outRoot string) error {
	doc, err := midi.ReadDocument(path)
	if err != nil {
		return err
	}
	return ExtractPiece(doc, name, filepath.Join(outRoot, name))
}
