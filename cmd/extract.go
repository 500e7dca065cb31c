package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jsphweid/midiops/chord"
	"github.com/jsphweid/midiops/constants"
	"github.com/jsphweid/midiops/db"
)

func init() {
	rootCmd.AddCommand(extractCmd)
}

var extractCmd = &cobra.Command{
	Use:   "extract [srcDir] [outDir]",
	Short: "Derives the chord-annotation dataset from processed files",
	Long: `Derives the chord-annotation dataset: per piece, a shifted
melody-only MIDI file and a chord_symbol.csv.`,
	Args: cobra.MaximumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		srcDir := constants.GetDstDir()
		outDir := constants.GetDatasetDir()
		if len(args) > 0 {
			srcDir = args[0]
		}
		if len(args) > 1 {
			outDir = args[1]
		}
		cobra.CheckErr(os.MkdirAll(outDir, 0777))

		summary, err := chord.ExtractAll(srcDir, outDir)
		cobra.CheckErr(err)

		if constants.GetMetadataTable() != "" {
			attachMetadata(outDir, summary.Pieces)
		}
	},
}

// attachMetadata drops a metadata.json next to each piece that has an
// item in the metadata table. Lookup trouble only logs; the dataset is
// complete without it.
func attachMetadata(outDir string, pieces []string) {
	metadatas, err := db.GetPieceMetadatas(pieces)
	if err != nil {
		logrus.Warnf("metadata lookup failed: %v", err)
		return
	}
	for name, m := range metadatas {
		data, err := json.MarshalIndent(m, "", "  ")
		if err != nil {
			logrus.WithField("piece", name).Warnf("encoding metadata: %v", err)
			continue
		}
		path := filepath.Join(outDir, name, "metadata.json")
		if err := os.WriteFile(path, data, 0666); err != nil {
			logrus.WithField("piece", name).Warnf("writing metadata: %v", err)
		}
	}
}
