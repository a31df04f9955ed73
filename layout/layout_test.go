package layout

import (
	"errors"
	"testing"

	"github.com/jsphweid/noteblock/block"
	"github.com/jsphweid/noteblock/canvas"
	"github.com/jsphweid/noteblock/model"
	"github.com/jsphweid/noteblock/song"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustSong(t *testing.T, text string) model.Song {
	t.Helper()
	s, err := song.ParseString(text)
	require.NoError(t, err)
	return s
}

func slots(l Layout, event int) []int {
	var res []int
	for _, p := range l.Placements {
		if p.Event == event {
			res = append(res, p.Slot)
		}
	}
	return res
}

func TestChordGetsDistinctSlots(t *testing.T) {
	s := mustSong(t, "G5 A7 C7 F#1 C4 1\n")
	l, err := Plan(s, 4, 5)
	require.NoError(t, err)

	assert := assert.New(t)
	assert.Equal([]int{0, 1, 2, 3, 4}, slots(l, 0))
	assert.Equal(5, l.DepthReached)
	assert.Equal(1, l.Cols)
}

func TestChordLargerThanCapacityFails(t *testing.T) {
	s := mustSong(t, "C4 E4 G4 C5 1\n")
	_, err := Plan(s, 4, 3)
	assert.ErrorIs(t, err, ErrPolyphony)
}

func TestActiveSlotsOfPreviousEventAreSkipped(t *testing.T) {
	s := mustSong(t, "G5 A7 1\nC4 E4 G4 1\n")

	l, err := Plan(s, 4, 5)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, slots(l, 0))
	assert.Equal(t, []int{2, 3, 4}, slots(l, 1))

	_, err = Plan(s, 4, 4)
	var perr *PolyphonyError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, 1, perr.Event)
	assert.Equal(t, 1, perr.Row)
	assert.Equal(t, 0, perr.Col)
	assert.Equal(t, 4, perr.Capacity)
	assert.Equal(t, "C4-E4-G4", perr.Chord)
}

func TestPolyphonyBoundary(t *testing.T) {
	// k notes after |active| sounding slots fit exactly when k+|active| == capacity
	s := mustSong(t, "G5 A7 B6 1\nC4 E4 1\n")
	_, err := Plan(s, 8, 5)
	assert.NoError(t, err)
	_, err = Plan(s, 8, 4)
	assert.ErrorIs(t, err, ErrPolyphony)
}

func TestAirInstrumentsDoNotHoldSlots(t *testing.T) {
	s := mustSong(t, "C4 E4 1\nG4 C5 1\n")
	l, err := Plan(s, 4, 2)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, slots(l, 1))
}

func TestOnlyThePreviousEventIsActive(t *testing.T) {
	s := mustSong(t, "G5 A7 1\nC4 1\nE4 1\n")
	l, err := Plan(s, 4, 3)
	require.NoError(t, err)
	assert.Equal(t, []int{2}, slots(l, 1))
	assert.Equal(t, []int{0}, slots(l, 2))
}

func TestActiveSetResetsPerColumn(t *testing.T) {
	s := mustSong(t, "G5 A7 1\nG5 A7 1\nC4 1\n")
	l, err := Plan(s, 2, 4)
	require.NoError(t, err)

	assert := assert.New(t)
	assert.Equal([]int{0, 1}, slots(l, 0))
	assert.Equal([]int{2, 3}, slots(l, 1))
	// third event opens column 1
	assert.Equal([]int{0}, slots(l, 2))
	assert.Equal(1, l.Placements[4].Col)
	assert.Equal(0, l.Placements[4].Row)
	assert.Equal(2, l.Cols)
}

func TestDurationsAdvanceCells(t *testing.T) {
	s := mustSong(t, "C4 1\nE4 1/2\nG4 1/2\nC5 3\n")
	l, err := Plan(s, 3, 4)
	require.NoError(t, err)

	// lcd 2: offsets 0, 2, 3, 4
	want := [][2]int{{0, 0}, {2, 0}, {0, 1}, {1, 1}}
	for i, p := range l.Placements {
		assert.Equal(t, want[i], [2]int{p.Row, p.Col}, "event %d", i)
	}
	assert.Equal(t, 4, l.Cols)
}

func TestPlan_BadRows(t *testing.T) {
	s := mustSong(t, "C4 1\n")
	_, err := Plan(s, 0, 4)
	assert.Error(t, err)
}

func TestPlaceWritesNoteBlocksAndEntities(t *testing.T) {
	s := mustSong(t, "G5 F#1 1\nC4 1\n")
	l, err := Plan(s, 2, 4)
	require.NoError(t, err)

	c := canvas.New(6, 2, 4)
	Place(c.View(canvas.Pos{}), l)

	assert := assert.New(t)
	assert.Equal(block.Of(block.NoteBlock), c.At(canvas.Pos{X: 0, Y: 3, Z: 1}))
	assert.Equal(block.Of(block.GoldBlock), c.At(canvas.Pos{X: 0, Y: 2, Z: 1}))
	assert.Equal(block.Of(block.NoteBlock), c.At(canvas.Pos{X: 1, Y: 3, Z: 1}))
	assert.Equal(block.Plank(block.DarkOak), c.At(canvas.Pos{X: 1, Y: 2, Z: 1}))
	// C4 skips the two sounding slots
	assert.Equal(block.Of(block.NoteBlock), c.At(canvas.Pos{X: 2, Y: 1, Z: 1}))
	assert.True(c.At(canvas.Pos{X: 2, Y: 0, Z: 1}).IsAir())

	assert.Equal([]canvas.BlockEntity{
		{Pos: canvas.Pos{X: 0, Y: 3, Z: 1}, Pitch: 1},
		{Pos: canvas.Pos{X: 1, Y: 3, Z: 1}, Pitch: 0},
		{Pos: canvas.Pos{X: 2, Y: 1, Z: 1}, Pitch: 6},
	}, c.Entities())
}

func TestPlaceLines(t *testing.T) {
	c := canvas.New(4, 4, 3)
	line := block.Plank(block.Birch)
	PlaceLines(c.View(canvas.Pos{}), 2, 2, 3, line)

	assert := assert.New(t)
	assert.Equal(12, c.Count(block.Planks))
	assert.Equal(12, c.Count(block.RedstoneDust))
	assert.Equal(line, c.At(canvas.Pos{X: 2, Y: 2, Z: 2}))
	assert.Equal(block.Of(block.RedstoneDust), c.At(canvas.Pos{X: 2, Y: 3, Z: 2}))
	assert.True(c.At(canvas.Pos{X: 0, Y: 0, Z: 1}).IsAir())
}
