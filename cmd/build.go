package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/jsphweid/noteblock/block"
	"github.com/jsphweid/noteblock/constants"
	"github.com/jsphweid/noteblock/db"
	"github.com/jsphweid/noteblock/generator"
	"github.com/jsphweid/noteblock/model"
	"github.com/jsphweid/noteblock/schematic"
	"github.com/jsphweid/noteblock/util"
)

// build is one written schematic and what went into it.
type build struct {
	Song   string
	Output string
	Rows   int
	Tempo  model.Tempo
	Result *generator.Result
	Bytes  int
}

func options(rows, interval int) (generator.Options, error) {
	o, err := cfg.Options(rows, interval)
	if err != nil {
		return generator.Options{}, err
	}
	o.Logger = &logger
	return o, nil
}

// writeSchematic generates s at one tempo and writes it next to songPath
// (or into the configured output dir).
func writeSchematic(songPath string, s model.Song, rows int, tempo model.Tempo) (build, error) {
	o, err := options(rows, tempo.Interval)
	if err != nil {
		return build{}, err
	}
	res, err := generator.Generate(s, o)
	if err != nil {
		return build{}, fmt.Errorf("%v at %.2f bpm: %w", songPath, tempo.BPM, err)
	}
	return save(songPath, s, rows, tempo, res)
}

func save(songPath string, s model.Song, rows int, tempo model.Tempo, res *generator.Result) (build, error) {
	if err := util.EnsureOutputDir(cfg.OutDir); err != nil {
		return build{}, err
	}
	out := util.OutputPath(cfg.OutDir, songPath, constants.SchematicExt)
	n, err := schematic.WriteFile(out, res.Canvas)
	if err != nil {
		return build{}, err
	}
	return build{Song: songPath, Output: out, Rows: rows, Tempo: tempo, Result: res, Bytes: n}, nil
}

func (b build) summary() string {
	d := b.Result.Dimensions
	return fmt.Sprintf("Wrote %v (%v, %dx%dx%d, %.2f bpm)",
		b.Output, humanize.Bytes(uint64(b.Bytes)), d.Width, d.Height, d.Depth, b.Tempo.BPM)
}

func (b build) run(s model.Song) db.Run {
	d := b.Result.Dimensions
	return db.Run{
		Song:         b.Song,
		Output:       b.Output,
		Rows:         b.Rows,
		Interval:     b.Tempo.Interval,
		BPM:          b.Tempo.BPM,
		Events:       len(s.Events),
		Length:       s.Length,
		Height:       d.Height,
		Width:        d.Width,
		Depth:        d.Depth,
		DepthReached: b.Result.DepthReached,
		TowerRow:     b.Result.Clock.Row,
		NoteBlocks:   b.Result.Canvas.Count(block.NoteBlock),
		Bytes:        b.Bytes,
	}
}

// record stores runs in the history db. A failure here never fails the
// command; the schematics are already on disk.
func record(ctx context.Context, runs ...db.Run) {
	h, err := db.Open(cfg.HistoryDB)
	if err != nil {
		logger.Warn().Err(err).Str("path", cfg.HistoryDB).Msg("history unavailable")
		return
	}
	defer h.Close()

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	for _, run := range runs {
		r, err := h.Record(ctx, run)
		if err != nil {
			logger.Warn().Err(err).Str("output", run.Output).Msg("could not record run")
			continue
		}
		logger.Debug().Str("id", r.ID).Str("output", r.Output).Msg("recorded run")
	}
}
