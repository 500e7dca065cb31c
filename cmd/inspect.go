package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jsphweid/midiops/midi"
	"github.com/jsphweid/midiops/timeline"
)

func init() {
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <file.mid> [tick]",
	Short: "Prints a file's meter segments",
	Long: `Prints a file's meter segments and, given a tick, where that
tick falls on the global beat grid.`,
	Args: cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		doc, err := midi.ReadDocument(args[0])
		cobra.CheckErr(err)

		segments := timeline.BuildMeterSegments(doc.TimeSignatures, doc.TicksPerBeat)
		fmt.Printf("ticksPerBeat: %v  maxTick: %v\n", doc.TicksPerBeat, doc.MaxTick)
		for i, seg := range segments {
			end := "open"
			if seg.End != timeline.OpenEnd {
				end = strconv.FormatInt(seg.End, 10)
			}
			fmt.Printf("segment %v: %v/%v ticks [%v, %v) unit=%v beatsBefore=%v\n",
				i, seg.Numerator, seg.Denominator, seg.Start, end, seg.UnitTicks, seg.CumulativeBeats)
		}

		if len(args) == 2 {
			tick, err := strconv.ParseInt(args[1], 10, 64)
			cobra.CheckErr(err)
			beat, beatStart, offset := timeline.TickToGlobalBeat(tick, segments)
			fmt.Printf("tick %v: global beat %v (starts at tick %v, offset %v)\n",
				tick, beat, beatStart, offset)
		}
	},
}
