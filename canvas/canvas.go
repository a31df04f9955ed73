// Package canvas is a fixed-size dense voxel grid.
//
// Coordinates follow the schematic convention: X runs along the depth axis
// (away from the note rows toward the clock), Y is height and Z is width
// (one pair of columns per song column). Storage is indexed
// (height, width, depth), so the flat index is (y*width + z)*depth + x.
package canvas

import (
	"fmt"

	"github.com/jsphweid/noteblock/block"
)

type Pos struct {
	X, Y, Z int
}

func (p Pos) Add(o Pos) Pos {
	return Pos{p.X + o.X, p.Y + o.Y, p.Z + o.Z}
}

func (p Pos) String() string {
	return fmt.Sprintf("(%d,%d,%d)", p.X, p.Y, p.Z)
}

// BlockEntity is the side record carried by note blocks.
type BlockEntity struct {
	Pos   Pos
	Pitch uint8
}

type Canvas struct {
	height, width, depth int

	kinds    []block.Kind
	states   []uint8
	entities []BlockEntity
}

func New(height, width, depth int) *Canvas {
	if height <= 0 || width <= 0 || depth <= 0 {
		panic(fmt.Sprintf("canvas: bad dimensions %dx%dx%d", height, width, depth))
	}
	n := height * width * depth
	return &Canvas{
		height: height,
		width:  width,
		depth:  depth,
		kinds:  make([]block.Kind, n),
		states: make([]uint8, n),
	}
}

func (c *Canvas) Height() int { return c.height }
func (c *Canvas) Width() int  { return c.width }
func (c *Canvas) Depth() int  { return c.depth }

func (c *Canvas) Contains(p Pos) bool {
	return p.X >= 0 && p.X < c.depth &&
		p.Y >= 0 && p.Y < c.height &&
		p.Z >= 0 && p.Z < c.width
}

// Index panics when p is outside the canvas: every caller sizes the canvas
// before writing, so a stray coordinate is a bug.
func (c *Canvas) Index(p Pos) int {
	if !c.Contains(p) {
		panic(fmt.Sprintf("canvas: %v outside %dx%dx%d (h x w x d)", p, c.height, c.width, c.depth))
	}
	return (p.Y*c.width+p.Z)*c.depth + p.X
}

func (c *Canvas) Set(p Pos, b block.Block) {
	i := c.Index(p)
	c.kinds[i] = b.Kind
	c.states[i] = b.State
}

func (c *Canvas) At(p Pos) block.Block {
	i := c.Index(p)
	return block.Block{Kind: c.kinds[i], State: c.states[i]}
}

func (c *Canvas) AddEntity(p Pos, pitch uint8) {
	c.Index(p)
	c.entities = append(c.entities, BlockEntity{Pos: p, Pitch: pitch})
}

func (c *Canvas) Entities() []BlockEntity {
	return c.entities
}

// Kinds and States expose the flat storage in index order.
func (c *Canvas) Kinds() []block.Kind { return c.kinds }
func (c *Canvas) States() []uint8     { return c.states }

func (c *Canvas) Count(k block.Kind) int {
	var n int
	for _, v := range c.kinds {
		if v == k {
			n++
		}
	}
	return n
}

func (c *Canvas) Histogram() map[block.Kind]int {
	res := make(map[block.Kind]int)
	for _, v := range c.kinds {
		res[v]++
	}
	return res
}

// View returns a handle that places blocks relative to origin.
func (c *Canvas) View(origin Pos) View {
	return View{c: c, origin: origin}
}

type View struct {
	c      *Canvas
	origin Pos
}

func (v View) Canvas() *Canvas { return v.c }
func (v View) Origin() Pos     { return v.origin }

func (v View) Set(x, y, z int, b block.Block) {
	v.c.Set(v.origin.Add(Pos{x, y, z}), b)
}

func (v View) At(x, y, z int) block.Block {
	return v.c.At(v.origin.Add(Pos{x, y, z}))
}

func (v View) Abs(x, y, z int) Pos {
	return v.origin.Add(Pos{x, y, z})
}

func (v View) Shift(x, y, z int) View {
	return View{c: v.c, origin: v.Abs(x, y, z)}
}

func (v View) AddEntity(x, y, z int, pitch uint8) {
	v.c.AddEntity(v.Abs(x, y, z), pitch)
}
