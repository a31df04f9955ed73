package block

import "fmt"

type Direction uint8

const (
	North Direction = iota
	East
	South
	West
	Up
	Down
)

var directionNames = [...]string{"north", "east", "south", "west", "up", "down"}

func (d Direction) String() string {
	if int(d) < len(directionNames) {
		return directionNames[d]
	}
	return fmt.Sprintf("direction(%d)", uint8(d))
}

// stateKey addresses one orientation variant. Stage is zero for families
// without a delay stage.
type stateKey struct {
	kind  Kind
	dir   Direction
	stage int
}

var states = map[stateKey]uint8{
	{RedstoneTorch, Up, 0}:    0,
	{RedstoneTorch, East, 0}:  1,
	{RedstoneTorch, West, 0}:  2,
	{RedstoneTorch, South, 0}: 3,
	{RedstoneTorch, North, 0}: 4,

	{RedstoneRepeater, North, 1}: 0,
	{RedstoneRepeater, North, 2}: 4,
	{RedstoneRepeater, North, 3}: 8,
	{RedstoneRepeater, North, 4}: 12,
	{RedstoneRepeater, East, 1}:  1,
	{RedstoneRepeater, East, 2}:  5,
	{RedstoneRepeater, East, 3}:  9,
	{RedstoneRepeater, East, 4}:  13,
	{RedstoneRepeater, South, 1}: 2,
	{RedstoneRepeater, South, 2}: 6,
	{RedstoneRepeater, South, 3}: 10,
	{RedstoneRepeater, South, 4}: 14,
	{RedstoneRepeater, West, 1}:  3,
	{RedstoneRepeater, West, 2}:  7,
	{RedstoneRepeater, West, 3}:  11,
	{RedstoneRepeater, West, 4}:  15,

	{StickyPiston, Down, 0}:  0,
	{StickyPiston, Up, 0}:    1,
	{StickyPiston, North, 0}: 2,
	{StickyPiston, South, 0}: 3,
	{StickyPiston, West, 0}:  4,
	{StickyPiston, East, 0}:  5,
}

type decoded struct {
	dir   Direction
	stage int
}

var reverse = map[Block]decoded{}

func init() {
	if err := Validate(); err != nil {
		panic(err)
	}
	for k, s := range states {
		reverse[Block{Kind: k.kind, State: s}] = decoded{dir: k.dir, stage: k.stage}
	}
}

// Validate checks the state table: known kinds, 4-bit states, and no two
// variants of one kind sharing a state.
func Validate() error {
	seen := map[Block]stateKey{}
	for k, s := range states {
		if !k.kind.Valid() {
			return fmt.Errorf("%w: unknown kind %d", ErrInvalidState, k.kind)
		}
		if s > 15 {
			return fmt.Errorf("%w: %v %v stage %d encodes to %d", ErrInvalidState, k.kind, k.dir, k.stage, s)
		}
		b := Block{Kind: k.kind, State: s}
		if other, ok := seen[b]; ok {
			return fmt.Errorf("%w: %v %v/%d and %v/%d share state %d",
				ErrInvalidState, k.kind, k.dir, k.stage, other.dir, other.stage, s)
		}
		seen[b] = k
	}
	return nil
}

func lookup(k stateKey) (Block, error) {
	s, ok := states[k]
	if !ok {
		if k.stage != 0 {
			return Block{}, fmt.Errorf("%w: %v facing %v stage %d", ErrInvalidState, k.kind, k.dir, k.stage)
		}
		return Block{}, fmt.Errorf("%w: %v facing %v", ErrInvalidState, k.kind, k.dir)
	}
	return Block{Kind: k.kind, State: s}, nil
}

func Torch(d Direction) (Block, error) {
	return lookup(stateKey{RedstoneTorch, d, 0})
}

// Repeater returns a repeater facing d with a delay of stage ticks (1..4).
func Repeater(d Direction, stage int) (Block, error) {
	return lookup(stateKey{RedstoneRepeater, d, stage})
}

func Piston(d Direction) (Block, error) {
	return lookup(stateKey{StickyPiston, d, 0})
}

func must(b Block, err error) Block {
	if err != nil {
		panic(err)
	}
	return b
}

func MustTorch(d Direction) Block               { return must(Torch(d)) }
func MustRepeater(d Direction, stage int) Block { return must(Repeater(d, stage)) }
func MustPiston(d Direction) Block              { return must(Piston(d)) }

// Facing decodes an oriented block back to its direction and stage.
func (b Block) Facing() (Direction, int, bool) {
	d, ok := reverse[b]
	return d.dir, d.stage, ok
}

// RepeaterStage returns the delay of a repeater block, or 0 for anything else.
func (b Block) RepeaterStage() int {
	if b.Kind != RedstoneRepeater {
		return 0
	}
	_, stage, _ := b.Facing()
	return stage
}
