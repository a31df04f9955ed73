package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(bpmsCmd)
}

var bpmsCmd = &cobra.Command{
	Use:   "bpms <filename> [min_bpm]",
	Short: "Lists the tempos a song can be built at",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		minBPM := cfg.MinBPM
		if len(args) == 2 {
			v, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("min_bpm must be a number: %w", err)
			}
			minBPM = v
		}
		s, tempos, err := tempoOptions(args[0], minBPM)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%v: %d events, lcd %d, length %d\n", args[0], len(s.Events), s.LCD, s.Length)
		printTempos(out, tempos)
		return nil
	},
}
