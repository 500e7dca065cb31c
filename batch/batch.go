// Package batch applies the operations file to a directory of MIDI
// files: files with an entry are loaded, mutated and rewritten, the rest
// are copied verbatim.
package batch

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"github.com/jsphweid/midiops/file"
	"github.com/jsphweid/midiops/midi"
	"github.com/jsphweid/midiops/model"
	"github.com/jsphweid/midiops/ops"
	"github.com/jsphweid/midiops/util"
)

// Summary aggregates one batch run. Processed files had operations
// applied and were rewritten; Copied files had no entry and were copied
// byte for byte; Failed files were logged and skipped.
type Summary struct {
	Processed int
	Copied    int
	Failed    int
}

// LoadOperations reads the id-keyed operations file.
func LoadOperations(path string) (model.OperationsMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading operations file %v", path)
	}
	var m model.OperationsMap
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrapf(err, "parsing operations file %v", path)
	}
	return m, nil
}

// Run processes every MIDI file under srcDir into dstDir. A failure on
// one file never aborts the batch.
func Run(srcDir, dstDir, opsPath string) (*Summary, error) {
	opsMap, err := LoadOperations(opsPath)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dstDir, 0777); err != nil {
		return nil, errors.Wrapf(err, "creating %v", dstDir)
	}

	paths := util.GatherAllMidiPaths(srcDir, 0)

	p := mpb.New(mpb.WithWidth(64))
	bar := p.AddBar(int64(len(paths)),
		mpb.PrependDecorators(
			decor.Name("Processing: "),
			decor.CountersNoUnit("%d / %d"),
		),
		mpb.AppendDecorators(decor.Percentage()),
	)

	var summary Summary
	for _, path := range paths {
		applied, err := processFile(path, dstDir, opsMap)
		switch {
		case err != nil:
			logrus.WithField("file", filepath.Base(path)).Warnf("skipping: %v", err)
			summary.Failed++
		case applied:
			summary.Processed++
		default:
			summary.Copied++
		}
		bar.Increment()
	}
	p.Wait()

	logrus.Infof("processed %v, copied %v, failed %v", summary.Processed, summary.Copied, summary.Failed)
	return &summary, nil
}

func processFile(path, dstDir string, opsMap model.OperationsMap) (applied bool, err error) {
	dst := filepath.Join(dstDir, filepath.Base(path))

	var fileOps []model.Operation
	if id, ok := file.IDFromPath(path); ok {
		fileOps = opsMap[id]
	}
	if len(fileOps) == 0 {
		return false, util.CopyFile(path, dst)
	}

	doc, err := midi.ReadDocument(path)
	if err != nil {
		return false, err
	}
	for _, op := range fileOps {
		// a malformed operation only loses itself, not the file
		if err := ops.Apply(doc, op); err != nil {
			logrus.WithField("file", filepath.Base(path)).
				Warnf("operation %v not applied: %v", op.Operation, err)
		}
	}
	return true, midi.WriteDocument(doc, dst)
}
