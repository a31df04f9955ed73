package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jsphweid/noteblock/db"
)

var reportLimit int

func init() {
	reportCmd.Flags().IntVarP(&reportLimit, "limit", "n", 20, "number of runs to show, 0 for all")
	rootCmd.AddCommand(reportCmd)
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Lists previously generated schematics",
	Long:  `Lists previously generated schematics from the history db, newest first.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := db.Open(cfg.HistoryDB)
		if err != nil {
			return err
		}
		defer h.Close()

		runs, err := h.List(cmd.Context(), reportLimit)
		if err != nil {
			return err
		}
		report(cmd.OutOrStdout(), runs, time.Now())
		return nil
	},
}

func report(w io.Writer, runs []db.Run, now time.Time) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded yet.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "WHEN\tSONG\tBPM\tROWS\tSIZE (WxHxD)\tNOTES\tBYTES\tOUTPUT")
	for _, r := range runs {
		fmt.Fprintf(tw, "%v\t%v\t%.2f\t%d\t%dx%dx%d\t%d\t%v\t%v\n",
			humanize.RelTime(r.CreatedAt, now, "ago", "from now"), r.Song, r.BPM, r.Rows,
			r.Width, r.Height, r.Depth, r.NoteBlocks, humanize.Bytes(uint64(r.Bytes)), r.Output)
	}
	tw.Flush()

	var total int
	for _, r := range runs {
		total += r.Bytes
	}
	fmt.Fprintf(w, "%d runs, %v written\n", len(runs), humanize.Bytes(uint64(total)))
}
