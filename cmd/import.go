package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jsphweid/noteblock/midi"
	"github.com/jsphweid/noteblock/song"
	"github.com/jsphweid/noteblock/util"
)

func init() {
	rootCmd.AddCommand(importCmd)
}

var importCmd = &cobra.Command{
	Use:   "import <midi file> [out]",
	Short: "Converts a MIDI file into a song file",
	Long: `Reads a MIDI file and writes the notes that have a note block as a song
file. Keys outside the note block range are dropped and counted.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		mf, err := midi.ReadMidiFile(args[0])
		if err != nil {
			return err
		}
		imp, err := midi.ToSong(mf)
		if err != nil {
			return fmt.Errorf("%v: %w", args[0], err)
		}
		out := util.TrimExt(args[0]) + ".txt"
		if len(args) == 2 {
			out = args[1]
		}
		if err := util.WriteFile(out, []byte(song.Format(imp.Song))); err != nil {
			return err
		}
		if imp.Skipped > 0 {
			logger.Warn().Int("skipped", imp.Skipped).Str("midi", args[0]).Msg("dropped notes without a note block")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %v (%d events)\n", out, len(imp.Song.Events))
		return nil
	},
}
