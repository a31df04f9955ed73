// Package layout assigns chord notes to playback slots and places the note
// blocks and signal lines that feed them.
//
// The song is laid out on a rows x cols grid of one-step cells, filled row
// by row inside a column: the event starting at step i sits in row i%rows of
// column i/rows. Every cell has a line of slots running along the depth
// axis; a chord spreads its notes over distinct slots.
package layout

import (
	"errors"
	"fmt"

	"github.com/jsphweid/noteblock/block"
	"github.com/jsphweid/noteblock/canvas"
	"github.com/jsphweid/noteblock/chord"
	"github.com/jsphweid/noteblock/model"
	"github.com/jsphweid/noteblock/util"
)

var ErrPolyphony = errors.New("polyphony capacity exceeded")

type PolyphonyError struct {
	Event    int
	Chord    string
	Row, Col int
	Capacity int
}

func (e *PolyphonyError) Error() string {
	return fmt.Sprintf("%v: event %d (%s) at column %d row %d does not fit in %d slots",
		ErrPolyphony, e.Event, e.Chord, e.Col, e.Row, e.Capacity)
}

func (e *PolyphonyError) Unwrap() error {
	return ErrPolyphony
}

type Placement struct {
	Event int
	Row   int
	Col   int
	Slot  int
	Note  model.Note
}

type Layout struct {
	Rows, Cols int
	Placements []Placement
	// DepthReached is one past the deepest slot used.
	DepthReached int
}

func Columns(length, rows int) int {
	return util.CeilDiv(length, rows)
}

// Plan allocates a slot to every note. A slot held by a sounding
// (non-air) instrument in the previous event of the same column is skipped;
// the active set starts empty in each new column. Running into capacity is a
// *PolyphonyError.
func Plan(s model.Song, rows, capacity int) (Layout, error) {
	if rows <= 0 {
		return Layout{}, fmt.Errorf("rows must be positive, got %d", rows)
	}
	res := Layout{Rows: rows, Cols: Columns(s.Length, rows)}

	active := map[int]bool{}
	prevCol := -1
	offset := 0
	for i, ev := range s.Events {
		row, col := offset%rows, offset/rows
		if col != prevCol {
			active = map[int]bool{}
			prevCol = col
		}

		next := map[int]bool{}
		slot := 0
		for _, n := range ev.Chord {
			for active[slot] {
				slot++
			}
			if slot >= capacity {
				return Layout{}, &PolyphonyError{
					Event:    i,
					Chord:    chord.CreateChordKey(ev.Chord),
					Row:      row,
					Col:      col,
					Capacity: capacity,
				}
			}
			res.Placements = append(res.Placements, Placement{Event: i, Row: row, Col: col, Slot: slot, Note: n})
			if !block.ForInstrument(n.Instrument).IsAir() {
				next[slot] = true
			}
			res.DepthReached = util.Max(res.DepthReached, slot+1)
			slot++
		}
		active = next
		offset += ev.Duration
	}
	return res, nil
}

// NotePos is where the note block for a placement goes, relative to the
// layout origin. Row 0 is the top of the column.
func NotePos(rows int, p Placement) canvas.Pos {
	return canvas.Pos{X: p.Slot, Y: 2*(rows-p.Row) - 1, Z: 2*p.Col + 1}
}

// Place writes each note block, its pitch entity and the instrument block
// under it.
func Place(v canvas.View, l Layout) {
	for _, p := range l.Placements {
		pos := NotePos(l.Rows, p)
		v.Set(pos.X, pos.Y, pos.Z, block.Of(block.NoteBlock))
		v.AddEntity(pos.X, pos.Y, pos.Z, p.Note.Pitch)
		v.Set(pos.X, pos.Y-1, pos.Z, block.ForInstrument(p.Note.Instrument))
	}
}

// PlaceLines lays a line block topped with dust for every row of every
// column, length cells deep, beside the note blocks.
func PlaceLines(v canvas.View, rows, cols, length int, line block.Block) {
	dust := block.Of(block.RedstoneDust)
	for col := 0; col < cols; col++ {
		for row := 0; row < rows; row++ {
			for d := 0; d < length; d++ {
				v.Set(d, 2*row, 2*col, line)
				v.Set(d, 2*row+1, 2*col, dust)
			}
		}
	}
}
