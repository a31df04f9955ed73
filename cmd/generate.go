package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/bep/debounce"
	"github.com/spf13/cobra"

	"github.com/jsphweid/noteblock/model"
	"github.com/jsphweid/noteblock/song"
)

var (
	generateOption    int
	generateNoHistory bool
	generateWatch     bool
)

func init() {
	generateCmd.Flags().IntVar(&generateOption, "option", -1, "tempo option id, skips the prompt")
	generateCmd.Flags().BoolVar(&generateNoHistory, "no-history", false, "do not record the run in the history db")
	generateCmd.Flags().BoolVar(&generateWatch, "watch", false, "regenerate whenever the song file changes")
	rootCmd.AddCommand(generateCmd)
}

var generateCmd = &cobra.Command{
	Use:   "generate <filename> [min_bpm] [rows]",
	Short: "Generates a schematic from a song file",
	Long: `Parses a song file, asks which of the compatible tempos to use and
writes <filename>.schematic.`,
	Args: cobra.RangeArgs(1, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		minBPM, rows, err := parseGenerateArgs(args)
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		in := bufio.NewReader(cmd.InOrStdin())
		out := cmd.OutOrStdout()
		option, err := generate(ctx, args[0], minBPM, rows, generateOption, in, out)
		if err != nil || !generateWatch {
			return err
		}
		return watch(ctx, args[0], minBPM, rows, option, out)
	},
}

func parseGenerateArgs(args []string) (float64, int, error) {
	minBPM, rows := cfg.MinBPM, cfg.Rows
	if len(args) > 1 {
		v, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return 0, 0, fmt.Errorf("min_bpm must be a number: %w", err)
		}
		minBPM = v
	}
	if len(args) > 2 {
		v, err := strconv.Atoi(args[2])
		if err != nil {
			return 0, 0, fmt.Errorf("rows must be an integer: %w", err)
		}
		rows = v
	}
	return minBPM, rows, nil
}

func tempoOptions(path string, minBPM float64) (model.Song, []model.Tempo, error) {
	s, err := song.ParseFile(path)
	if err != nil {
		return model.Song{}, nil, err
	}
	tempos, err := song.Tempos(s, minBPM)
	if err != nil {
		return model.Song{}, nil, err
	}
	if len(tempos) == 0 {
		return model.Song{}, nil, fmt.Errorf("no tempo of %v is at or above %v bpm", path, minBPM)
	}
	return s, tempos, nil
}

func printTempos(w io.Writer, tempos []model.Tempo) {
	for i, t := range tempos {
		fmt.Fprintf(w, "  %d. %v\n", i, t.BPM)
	}
}

// chooseTempo prompts on out and reads an option id from in unless option
// is already set.
func chooseTempo(tempos []model.Tempo, option int, in *bufio.Reader, out io.Writer) (int, error) {
	if option < 0 {
		fmt.Fprintln(out, "Please type the ID of one of the following BPM options:")
		printTempos(out, tempos)
		line, err := in.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return 0, err
		}
		option, err = strconv.Atoi(strings.TrimSpace(line))
		if err != nil {
			return 0, fmt.Errorf("option must be an integer: %w", err)
		}
	}
	if option < 0 || option >= len(tempos) {
		return 0, fmt.Errorf("option %d out of range, there are %d options", option, len(tempos))
	}
	return option, nil
}

// generate runs one full pass and returns the option id used so watch mode
// can repeat it.
func generate(ctx context.Context, path string, minBPM float64, rows, option int, in *bufio.Reader, out io.Writer) (int, error) {
	s, tempos, err := tempoOptions(path, minBPM)
	if err != nil {
		return 0, err
	}
	option, err = chooseTempo(tempos, option, in, out)
	if err != nil {
		return 0, err
	}
	b, err := writeSchematic(path, s, rows, tempos[option])
	if err != nil {
		return 0, err
	}
	fmt.Fprintln(out, b.summary())
	if !generateNoHistory {
		record(ctx, b.run(s))
	}
	return option, nil
}

func modTime(path string) (time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime(), nil
}

// watch polls path and regenerates once edits settle. Failed passes are
// logged and the watch goes on.
func watch(ctx context.Context, path string, minBPM float64, rows, option int, out io.Writer) error {
	last, err := modTime(path)
	if err != nil {
		return err
	}
	debounced := debounce.New(250 * time.Millisecond)
	changed := make(chan struct{}, 1)
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	logger.Info().Str("song", path).Msg("watching for changes")
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			mt, err := modTime(path)
			if err != nil || !mt.After(last) {
				continue
			}
			last = mt
			debounced(func() {
				select {
				case changed <- struct{}{}:
				default:
				}
			})
		case <-changed:
			if _, err := generate(ctx, path, minBPM, rows, option, nil, out); err != nil {
				logger.Error().Err(err).Str("song", path).Msg("regeneration failed")
			}
		}
	}
}
