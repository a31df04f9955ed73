// Package generator sizes the canvas for a song and runs the note layout,
// the signal lines and the clock engine over it in order.
package generator

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jsphweid/noteblock/block"
	"github.com/jsphweid/noteblock/canvas"
	"github.com/jsphweid/noteblock/clock"
	"github.com/jsphweid/noteblock/constants"
	"github.com/jsphweid/noteblock/layout"
	"github.com/jsphweid/noteblock/model"
)

var ErrOptions = errors.New("invalid generation options")

type Options struct {
	Rows     int
	Interval int

	LineBlock   block.Block
	WiringBlock block.Block
	WiringSlab  block.Block

	// Logger receives stage-level debug output. Nil disables it.
	Logger *zerolog.Logger
}

func DefaultOptions(rows, interval int) Options {
	return Options{
		Rows:        rows,
		Interval:    interval,
		LineBlock:   block.Plank(block.Birch),
		WiringBlock: block.Plank(block.DarkOak),
		WiringSlab:  block.Slab(block.UpsideDownDarkOak),
	}
}

func (o Options) Validate() error {
	if o.Rows < 1 {
		return fmt.Errorf("%w: rows must be positive, got %d", ErrOptions, o.Rows)
	}
	if o.Interval < 1 {
		return fmt.Errorf("%w: interval must be positive, got %d", ErrOptions, o.Interval)
	}
	for name, b := range map[string]block.Block{
		"line block":   o.LineBlock,
		"wiring block": o.WiringBlock,
		"wiring slab":  o.WiringSlab,
	} {
		if !b.Kind.Valid() || b.IsAir() {
			return fmt.Errorf("%w: %s %v must be a solid block", ErrOptions, name, b)
		}
	}
	return nil
}

func (o Options) logger() *zerolog.Logger {
	if o.Logger == nil {
		nop := zerolog.Nop()
		return &nop
	}
	return o.Logger
}

// MaxCells bounds the canvas a single song may allocate.
const MaxCells = 64 << 20

type Dimensions struct {
	Height int
	Width  int
	Depth  int
	Cols   int
	// Capacity is the number of slots left in front of the clock.
	Capacity int
}

// check rejects grids over MaxCells without multiplying past int range.
func (d Dimensions) check() error {
	if d.Height <= 0 || d.Width <= 0 || d.Depth <= 0 {
		return fmt.Errorf("%w: empty canvas %dx%dx%d", ErrOptions, d.Width, d.Height, d.Depth)
	}
	if d.Width > MaxCells/(d.Height*d.Depth) {
		return fmt.Errorf("%w: canvas %dx%dx%d exceeds %d cells", ErrOptions, d.Width, d.Height, d.Depth, MaxCells)
	}
	return nil
}

func Measure(s model.Song, o Options) Dimensions {
	cols := layout.Columns(s.Length, o.Rows)
	depth := constants.RedstoneMax + 6 + (o.Interval-1)/8
	return Dimensions{
		Height:   2*o.Rows + 2,
		Width:    2 * cols,
		Depth:    depth,
		Cols:     cols,
		Capacity: depth - clock.Depth(o.Interval),
	}
}

type Result struct {
	Canvas       *canvas.Canvas
	Layout       layout.Layout
	Dimensions   Dimensions
	DepthReached int
	EngineOrigin canvas.Pos
	Clock        clock.Report
}

// NoteStage plans the song and returns a canvas holding only the note
// blocks and signal lines.
func NoteStage(s model.Song, o Options) (*Result, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	log := o.logger()

	dims := Measure(s, o)
	if err := dims.check(); err != nil {
		return nil, err
	}
	l, err := layout.Plan(s, o.Rows, dims.Capacity)
	if err != nil {
		return nil, err
	}
	log.Debug().
		Int("rows", o.Rows).
		Int("cols", dims.Cols).
		Int("depth_reached", l.DepthReached).
		Int("notes", len(l.Placements)).
		Msg("planned notes")

	c := canvas.New(dims.Height, dims.Width, dims.Depth)
	layout.Place(c.View(canvas.Pos{}), l)
	layout.PlaceLines(c.View(canvas.Pos{Y: 1}), o.Rows, dims.Cols, l.DepthReached, o.LineBlock)

	return &Result{
		Canvas:       c,
		Layout:       l,
		Dimensions:   dims,
		DepthReached: l.DepthReached,
		EngineOrigin: canvas.Pos{X: l.DepthReached, Y: 2},
	}, nil
}

// Generate builds the complete structure. On error nothing is returned, so
// a partially built canvas never reaches a writer.
func Generate(s model.Song, o Options) (*Result, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	if err := clock.CheckRows(o.Rows); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOptions, err)
	}
	if _, err := clock.SelectRow(o.Interval, o.Rows); err != nil {
		return nil, err
	}
	res, err := NoteStage(s, o)
	if err != nil {
		return nil, err
	}
	rep, err := clock.Assemble(res.Canvas.View(res.EngineOrigin), clock.Params{
		Rows:     o.Rows,
		Cols:     res.Dimensions.Cols,
		Interval: o.Interval,
		Wiring:   o.WiringBlock,
		Slab:     o.WiringSlab,
	})
	if err != nil {
		return nil, err
	}
	res.Clock = rep
	o.logger().Debug().
		Int("interval", o.Interval).
		Int("tower_row", rep.Row).
		Int("stair_depth", rep.StairDepth).
		Int("leftover", rep.Leftover).
		Bool("padded", rep.Padded).
		Msg("assembled clock")
	return res, nil
}

// FirstFeasible generates with each tempo in turn and returns the first
// that builds. Only clock infeasibility moves on to the next tempo; any
// other error ends the search.
func FirstFeasible(s model.Song, o Options, tempos []model.Tempo) (*Result, model.Tempo, error) {
	if len(tempos) == 0 {
		return nil, model.Tempo{}, fmt.Errorf("%w: no tempo options", ErrOptions)
	}
	var lastErr error
	for _, t := range tempos {
		o.Interval = t.Interval
		res, err := Generate(s, o)
		if err == nil {
			return res, t, nil
		}
		if !errors.Is(err, clock.ErrInfeasible) {
			return nil, model.Tempo{}, err
		}
		lastErr = err
	}
	return nil, model.Tempo{}, lastErr
}
