package cmd

import (
	"github.com/spf13/cobra"

	"github.com/jsphweid/midiops/batch"
	"github.com/jsphweid/midiops/constants"
)

func init() {
	rootCmd.AddCommand(processCmd)
}

var processCmd = &cobra.Command{
	Use:   "process [srcDir] [dstDir] [operations.json]",
	Short: "Applies the operations file to a directory of MIDI files",
	Long: `Applies the operations file to a directory of MIDI files.
Files with an operations entry are rewritten, the rest are copied
verbatim.`,
	Args: cobra.MaximumNArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		srcDir := constants.GetSrcDir()
		dstDir := constants.GetDstDir()
		opsPath := constants.GetOperationsFile()
		if len(args) > 0 {
			srcDir = args[0]
		}
		if len(args) > 1 {
			dstDir = args[1]
		}
		if len(args) > 2 {
			opsPath = args[2]
		}

		_, err := batch.Run(srcDir, dstDir, opsPath)
		cobra.CheckErr(err)
	},
}
