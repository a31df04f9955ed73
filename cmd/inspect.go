package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jsphweid/noteblock/block"
	"github.com/jsphweid/noteblock/canvas"
	"github.com/jsphweid/noteblock/schematic"
	"github.com/jsphweid/noteblock/util"
)

func init() {
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <schematic>",
	Short: "Inspects a schematic",
	Long:  `Prints the size, block counts and note count of a schematic file.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return inspect(args[0], cmd.OutOrStdout())
	},
}

func inspect(path string, w io.Writer) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	c, err := schematic.ReadFile(path)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "file: %v (%v)\n", path, humanize.Bytes(uint64(info.Size())))
	printCanvas(w, c)
	return nil
}

func printCanvas(w io.Writer, c *canvas.Canvas) {
	fmt.Fprintf(w, "size: %d wide, %d high, %d deep\n", c.Width(), c.Height(), c.Depth())
	hist := c.Histogram()
	for _, k := range util.GetKeysSorted(hist) {
		if k == block.Air {
			continue
		}
		fmt.Fprintf(w, "  %-18v %v\n", k, humanize.Comma(int64(hist[k])))
	}
	fmt.Fprintf(w, "notes: %d\n", len(c.Entities()))
}
