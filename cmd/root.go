package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "midiops",
	Short: "Batch MIDI timeline edits and chord-annotation extraction",
	Long: `midiops applies a declarative list of per-file edit operations
(time-signature changes, key-signature insertions, beat-alignment
shifts) to a directory of MIDI files, and derives a chord-annotation
dataset from the results.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			logrus.SetLevel(logrus.DebugLevel)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}
