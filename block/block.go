// Package block holds the closed set of block kinds and orientation states
// the generator can emit, with their numeric encodings.
package block

import (
	"errors"
	"fmt"

	"github.com/jsphweid/noteblock/model"
)

var ErrInvalidState = errors.New("invalid block state")

type Kind uint8

const (
	Air              Kind = 0
	Planks           Kind = 5
	NoteBlock        Kind = 25
	StickyPiston     Kind = 29
	GoldBlock        Kind = 41
	RedstoneDust     Kind = 55
	Lever            Kind = 69
	RedstoneTorch    Kind = 76
	Glowstone        Kind = 89
	RedstoneRepeater Kind = 93
	WoodenSlab       Kind = 126
	RedstoneBlock    Kind = 152
	PackedIce        Kind = 174
)

var kindNames = map[Kind]string{
	Air:              "air",
	Planks:           "planks",
	NoteBlock:        "note_block",
	StickyPiston:     "sticky_piston",
	GoldBlock:        "gold_block",
	RedstoneDust:     "redstone_dust",
	Lever:            "lever",
	RedstoneTorch:    "redstone_torch",
	Glowstone:        "glowstone",
	RedstoneRepeater: "redstone_repeater",
	WoodenSlab:       "wooden_slab",
	RedstoneBlock:    "redstone_block",
	PackedIce:        "packed_ice",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

// Kinds lists every known kind in ascending id order.
func Kinds() []Kind {
	return []Kind{Air, Planks, NoteBlock, StickyPiston, GoldBlock, RedstoneDust, Lever,
		RedstoneTorch, Glowstone, RedstoneRepeater, WoodenSlab, RedstoneBlock, PackedIce}
}

// Block is a kind plus its state byte. The zero value is air.
type Block struct {
	Kind  Kind
	State uint8
}

func Of(k Kind) Block {
	return Block{Kind: k}
}

func (b Block) IsAir() bool {
	return b.Kind == Air
}

func (b Block) String() string {
	if b.State == 0 {
		return b.Kind.String()
	}
	return fmt.Sprintf("%v:%d", b.Kind, b.State)
}

type Wood uint8

const (
	Birch             Wood = 2
	DarkOak           Wood = 5
	UpsideDownDarkOak Wood = 13
)

var woodNames = map[string]Wood{
	"birch":                Birch,
	"dark_oak":             DarkOak,
	"upside_down_dark_oak": UpsideDownDarkOak,
}

func ParseWood(name string) (Wood, error) {
	w, ok := woodNames[name]
	if !ok {
		return 0, fmt.Errorf("%w: unknown wood %q", ErrInvalidState, name)
	}
	return w, nil
}

// UpsideDown reports whether w is a top-half slab variant. Those values
// only exist for slabs.
func (w Wood) UpsideDown() bool {
	return w&8 != 0
}

func Plank(w Wood) Block {
	return Block{Kind: Planks, State: uint8(w)}
}

func Slab(w Wood) Block {
	return Block{Kind: WoodenSlab, State: uint8(w)}
}

var instrumentBlocks = map[model.Instrument]Block{
	model.Bell:  Of(GoldBlock),
	model.Chime: Of(PackedIce),
	model.Harp:  Of(Air),
	model.Pling: Of(Glowstone),
	model.Bass:  Plank(DarkOak),
}

// ForInstrument returns the block that sits under a note block to give it
// the instrument's sound.
func ForInstrument(i model.Instrument) Block {
	return instrumentBlocks[i]
}
