package block

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jsphweid/noteblock/model"
	"github.com/stretchr/testify/assert"
)

func TestValidateStateTable(t *testing.T) {
	assert.NoError(t, Validate())
}

func TestRepeaterTableIsComplete(t *testing.T) {
	for _, d := range []Direction{North, East, South, West} {
		for stage := 1; stage <= 4; stage++ {
			name := fmt.Sprintf("repeater %v stage %d", d, stage)
			t.Run(name, func(t *testing.T) {
				b, err := Repeater(d, stage)
				assert := assert.New(t)
				assert.NoError(err)
				assert.Equal(RedstoneRepeater, b.Kind)
				assert.Equal(uint8(d)+uint8(4*(stage-1)), b.State)
				assert.Equal(stage, b.RepeaterStage())

				dir, got, ok := b.Facing()
				assert.True(ok)
				assert.Equal(d, dir)
				assert.Equal(stage, got)
			})
		}
	}
}

func TestInvalidCombinationsAreRejected(t *testing.T) {
	cases := []struct {
		name string
		fn   func() (Block, error)
	}{
		{"repeater stage 0", func() (Block, error) { return Repeater(West, 0) }},
		{"repeater stage 5", func() (Block, error) { return Repeater(East, 5) }},
		{"repeater up", func() (Block, error) { return Repeater(Up, 1) }},
		{"torch down", func() (Block, error) { return Torch(Down) }},
		{"piston bogus", func() (Block, error) { return Piston(Direction(9)) }},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := c.fn()
			assert.True(t, errors.Is(err, ErrInvalidState))
		})
	}
}

func TestMustRepeaterPanicsOnInvalidStage(t *testing.T) {
	assert.Panics(t, func() { MustRepeater(North, 7) })
}

func TestTorchAndPistonEncodings(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(Block{RedstoneTorch, 0}, MustTorch(Up))
	assert.Equal(Block{RedstoneTorch, 4}, MustTorch(North))
	assert.Equal(Block{RedstoneTorch, 3}, MustTorch(South))
	assert.Equal(Block{StickyPiston, 0}, MustPiston(Down))
	assert.Equal(Block{StickyPiston, 5}, MustPiston(East))
}

func TestKindsAreValid(t *testing.T) {
	assert.Len(t, Kinds(), 13)
	for _, k := range Kinds() {
		assert.True(t, k.Valid(), k.String())
	}
	assert.False(t, Kind(3).Valid())
}

func TestForInstrument(t *testing.T) {
	assert := assert.New(t)
	assert.True(ForInstrument(model.Harp).IsAir())
	assert.Equal(Of(GoldBlock), ForInstrument(model.Bell))
	assert.Equal(Plank(DarkOak), ForInstrument(model.Bass))
	assert.Equal(Of(PackedIce), ForInstrument(model.Chime))
	assert.Equal(Of(Glowstone), ForInstrument(model.Pling))
}

func TestParseWood(t *testing.T) {
	w, err := ParseWood("birch")
	assert.NoError(t, err)
	assert.Equal(t, Birch, w)

	_, err = ParseWood("oak")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestUpsideDownWoods(t *testing.T) {
	assert := assert.New(t)
	assert.False(Birch.UpsideDown())
	assert.False(DarkOak.UpsideDown())
	assert.True(UpsideDownDarkOak.UpsideDown())
}
