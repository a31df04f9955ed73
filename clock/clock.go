// Package clock builds the pulse generator that drives the note columns.
//
// The engine is two mirrored delay staircases, one per lane of a column
// pair, stacked up the full height of the note rows. Torch towers near the
// top pad the loop so that one full cycle spends exactly the requested
// interval between consecutive rows. All coordinates are relative to the
// engine origin; X runs away from the notes.
package clock

import (
	"errors"
	"fmt"

	"github.com/jsphweid/noteblock/block"
	"github.com/jsphweid/noteblock/canvas"
	"github.com/jsphweid/noteblock/transform"
)

var ErrInfeasible = errors.New("no torch tower row fits the delay budget")

var ErrRows = errors.New("rows must be a positive even number")

type InfeasibleError struct {
	Interval  int
	Rows      int
	Remaining int
}

func (e *InfeasibleError) Error() string {
	return fmt.Sprintf("%v: interval %d with %d rows leaves %d ticks to absorb",
		ErrInfeasible, e.Interval, e.Rows, e.Remaining)
}

func (e *InfeasibleError) Unwrap() error {
	return ErrInfeasible
}

// Params are the inputs of one engine build.
type Params struct {
	Rows     int
	Cols     int
	Interval int
	Wiring   block.Block
	Slab     block.Block
}

// Report records the tuning Assemble settled on.
type Report struct {
	Row        int
	StairDepth int
	// Padded is set when the extra pair of 4-tick repeaters was placed.
	Padded bool
	// Leftover is the delay absorbed by the terminal repeaters, which are
	// set to stage Leftover+1.
	Leftover int
}

// Depth is how far the engine reaches along X for a given interval.
func Depth(interval int) int {
	return PlanStaircase(interval).Depth() + 3
}

// Budget is the delay the torch towers and terminal repeaters must absorb.
func Budget(interval, rows int) int {
	return interval*(rows/2-1) - 5
}

// SelectRow scans r in [1, rows) for the first window
// [(interval+2)r, (interval+2)r+7] holding the budget. The scan stops early
// once the budget falls below a window.
func SelectRow(interval, rows int) (int, error) {
	remaining := Budget(interval, rows)
	for r := 1; r < rows; r++ {
		lo := (interval + 2) * r
		if remaining < lo {
			break
		}
		if remaining <= lo+7 {
			return r, nil
		}
	}
	return 0, &InfeasibleError{Interval: interval, Rows: rows, Remaining: remaining}
}

// CheckRows rejects grids the engine cannot span. The staircases stack in
// pairs of rows, so an odd count leaves the top row of every column after
// the first without its terminal repeaters.
func CheckRows(rows int) error {
	if rows < 2 || rows%2 != 0 {
		return fmt.Errorf("%w: got %d", ErrRows, rows)
	}
	return nil
}

// Assemble writes the whole engine at v. Row selection runs first, so an
// infeasible combination leaves the canvas untouched.
func Assemble(v canvas.View, p Params) (Report, error) {
	if p.Interval < 1 {
		return Report{}, fmt.Errorf("interval must be positive, got %d", p.Interval)
	}
	if p.Cols < 1 {
		return Report{}, fmt.Errorf("cols must be positive, got %d", p.Cols)
	}
	if err := CheckRows(p.Rows); err != nil {
		return Report{}, err
	}
	row, err := SelectRow(p.Interval, p.Rows)
	if err != nil {
		return Report{}, err
	}

	c := v.Canvas()
	air := block.Block{}
	dust := block.Of(block.RedstoneDust)
	wiring := p.Wiring
	top := 2 * p.Rows
	half := p.Rows / 2
	box := func(x0, y0, z0, x1, y1, z1 int) transform.Cuboid {
		return transform.Box(v.Abs(x0, y0, z0), v.Abs(x1, y1, z1))
	}

	v.Set(0, 0, 0, block.MustTorch(block.North))
	v.Set(0, 1, 0, p.Slab)
	v.Set(0, 2, 0, block.MustRepeater(block.West, 1))

	s := BuildDelayStaircase(v.Shift(1, 0, 0), p.Interval, wiring, p.Slab)
	transform.RotateDown(c, box(1, 0, 0, 1+s, 3, 0), 2)
	BuildDelayStaircase(v.Shift(0, 0, 1), p.Interval, wiring, p.Slab)
	transform.RotateDown(c, box(0, 0, 1, s, 3, 1), 3)
	if err := transform.Replicate(c, box(0, 0, 0, 1+s, 3, 1), transform.Up, half-1); err != nil {
		return Report{}, err
	}

	// open the ends of the stacked staircases
	for i := 0; i < s-1; i++ {
		v.Set(1+i, top-1, 1, air)
		v.Set(2+i, 0, 0, air)
		v.Set(2+i, 1, 0, air)
		v.Set(1+i, 0, 1, air)
	}

	v.Set(1+s, top-3, 0, block.MustTorch(block.South))
	v.Set(2+s, top-3, 0, wiring)
	v.Set(s, top-3, 1, wiring)
	v.Set(1+s, top-3, 1, wiring)
	v.Set(2+s, top-3, 1, block.MustTorch(block.South))
	v.Set(1+s, top-2, 0, wiring)
	v.Set(2+s, top-2, 0, block.MustTorch(block.South))
	v.Set(1+s, top-2, 1, block.MustTorch(block.South))
	v.Set(2+s, top-2, 1, wiring)
	v.Set(2+s, top-1, 0, wiring)

	remaining := Budget(p.Interval, p.Rows)
	base := top - 4*row
	v.Set(s, base-6, 1, wiring)
	v.Set(s, base-5, 1, dust)
	v.Set(1+s, base-5, 1, wiring)
	v.Set(1+s, base-4, 0, wiring)
	v.Set(s, base-4, 1, wiring)
	v.Set(2+s, base-4, 0, block.MustTorch(block.East))
	v.Set(1+s, base-4, 1, block.MustTorch(block.Up))
	remaining -= row * p.Interval

	BuildTorchTower(v.Shift(2+s, base-3, 0), 4*row, wiring)
	BuildTorchTower(v.Shift(1+s, base-3, 1), 4*row, wiring)
	remaining -= 2 * row

	rep := Report{Row: row, StairDepth: s}
	if remaining >= 4 {
		v.Set(s-1, top-3, 1, wiring)
		v.Set(s, top-2, 0, wiring)
		v.Set(s-1, top-2, 1, block.MustRepeater(block.West, 4))
		v.Set(s, top-1, 0, block.MustRepeater(block.West, 4))
		remaining -= 4
		rep.Padded = true
	}
	terminal, err := block.Repeater(block.West, 1+remaining)
	if err != nil {
		return Report{}, fmt.Errorf("terminal repeater for %d leftover ticks: %w", remaining, err)
	}
	v.Set(s, top-2, 1, terminal)
	v.Set(1+s, top-1, 0, terminal)
	rep.Leftover = remaining

	v.Set(s+1, top-7, 0, block.MustTorch(block.West))
	v.Set(s, top-7, 1, block.MustTorch(block.West))
	v.Set(s+1, top-6, 0, wiring)
	v.Set(s+2, top-6, 0, block.MustTorch(block.East))
	v.Set(s, top-6, 1, wiring)
	v.Set(s+1, top-6, 1, block.MustTorch(block.East))

	if err := transform.Replicate(c, box(0, 0, 0, 2+s, 4*half-1, 1), transform.East, p.Cols-1); err != nil {
		return Report{}, err
	}

	// final cleanup only touches the first column
	for i := 0; i < s; i++ {
		v.Set(1+i, top-3, 1, air)
		v.Set(2+i, top-2, 0, air)
		v.Set(1+i, top-2, 1, air)
		v.Set(2+i, top-1, 0, air)
	}
	v.Set(s+1, top-3, 0, air)
	v.Set(s+2, top-2, 0, air)
	v.Set(s+1, top-2, 1, air)
	v.Set(0, top-2, 1, air)
	v.Set(1, top-1, 0, air)
	v.Set(s, top-1, 0, air)
	v.Set(s+2, top-1, 0, air)

	return rep, nil
}
