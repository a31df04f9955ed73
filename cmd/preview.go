package cmd

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jsphweid/noteblock/constants"
	"github.com/jsphweid/noteblock/midi"
	"github.com/jsphweid/noteblock/util"
)

func init() {
	rootCmd.AddCommand(previewCmd)
}

var previewCmd = &cobra.Command{
	Use:   "preview <filename> [bpm]",
	Short: "Writes a MIDI file to listen to a song before building it",
	Long: `Writes <filename>.mid. Without a bpm the fastest tempo at or above the
configured min_bpm is used.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, tempos, err := tempoOptions(args[0], cfg.MinBPM)
		if err != nil {
			return err
		}
		bpm := tempos[0].BPM
		if len(args) == 2 {
			if bpm, err = strconv.ParseFloat(args[1], 64); err != nil {
				return fmt.Errorf("bpm must be a number: %w", err)
			}
		}
		if err := util.EnsureOutputDir(cfg.OutDir); err != nil {
			return err
		}
		out := util.OutputPath(cfg.OutDir, args[0], constants.MidiExt)
		n, err := midi.WriteSongFile(out, s, bpm)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %v (%v, %.2f bpm)\n", out, humanize.Bytes(uint64(n)), bpm)
		return nil
	},
}
