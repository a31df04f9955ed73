package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jsphweid/noteblock/db"
	"github.com/jsphweid/noteblock/file"
	"github.com/jsphweid/noteblock/generator"
)

var (
	batchRows      int
	batchNoHistory bool
)

func init() {
	batchCmd.Flags().IntVar(&batchRows, "rows", 0, "grid rows, defaults to the configured rows")
	batchCmd.Flags().BoolVar(&batchNoHistory, "no-history", false, "do not record runs in the history db")
	rootCmd.AddCommand(batchCmd)
}

var batchCmd = &cobra.Command{
	Use:   "batch <dir> [max]",
	Short: "Generates a schematic for every song in a directory",
	Long: `Walks dir for .txt song files and builds each one at the fastest tempo
that both clears min_bpm and fits the clock. Songs that cannot be built
are reported and skipped.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var maxNum int
		if len(args) == 2 {
			v, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("max must be an integer: %w", err)
			}
			maxNum = v
		}
		rows := cfg.Rows
		if batchRows > 0 {
			rows = batchRows
		}
		paths, err := file.Gather(args[0], maxNum, ".txt")
		if err != nil {
			return err
		}
		runs := batch(paths, rows, cmd.OutOrStdout())
		if !batchNoHistory && len(runs) > 0 {
			record(cmd.Context(), runs...)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Built %d of %d songs\n", len(runs), len(paths))
		return nil
	},
}

func batch(paths []string, rows int, w io.Writer) []db.Run {
	var runs []db.Run
	for i, path := range paths {
		fmt.Fprintf(w, "Processing %v of %v: %v\n", i+1, len(paths), path)
		s, tempos, err := tempoOptions(path, cfg.MinBPM)
		if err != nil {
			fmt.Fprintf(w, "Skipping %v because: %v\n", path, err)
			continue
		}
		o, err := options(rows, 0)
		if err != nil {
			fmt.Fprintf(w, "Skipping %v because: %v\n", path, err)
			continue
		}
		res, tempo, err := generator.FirstFeasible(s, o, tempos)
		if err != nil {
			fmt.Fprintf(w, "Skipping %v because: %v\n", path, err)
			continue
		}
		b, err := save(path, s, rows, tempo, res)
		if err != nil {
			fmt.Fprintf(w, "Skipping %v because: %v\n", path, err)
			continue
		}
		fmt.Fprintln(w, b.summary())
		runs = append(runs, b.run(s))
	}
	return runs
}
