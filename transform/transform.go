// Package transform copies, stacks and rotates cuboid regions of a canvas in
// place.
package transform

import (
	"errors"
	"fmt"

	"github.com/jsphweid/noteblock/canvas"
	"github.com/jsphweid/noteblock/util"
)

var ErrShapeMismatch = errors.New("region shapes differ")

// Cuboid is an axis-aligned box with inclusive bounds.
type Cuboid struct {
	Lo, Hi canvas.Pos
}

func Box(lo, hi canvas.Pos) Cuboid {
	return Cuboid{Lo: lo, Hi: hi}
}

// Extent is the number of cells along each axis.
func (q Cuboid) Extent() canvas.Pos {
	return canvas.Pos{
		X: q.Hi.X - q.Lo.X + 1,
		Y: q.Hi.Y - q.Lo.Y + 1,
		Z: q.Hi.Z - q.Lo.Z + 1,
	}
}

func (q Cuboid) Translate(d canvas.Pos) Cuboid {
	return Cuboid{Lo: q.Lo.Add(d), Hi: q.Hi.Add(d)}
}

func (q Cuboid) Empty() bool {
	e := q.Extent()
	return e.X <= 0 || e.Y <= 0 || e.Z <= 0
}

func (q Cuboid) String() string {
	return fmt.Sprintf("%v..%v", q.Lo, q.Hi)
}

// Copy writes every cell of src onto the matching cell of dst. The two
// cuboids must have the same extent on every axis.
func Copy(c *canvas.Canvas, src, dst Cuboid) error {
	if src.Extent() != dst.Extent() {
		return fmt.Errorf("%w: copy %v (extent %v) to %v (extent %v)",
			ErrShapeMismatch, src, src.Extent(), dst, dst.Extent())
	}
	if src.Empty() {
		return nil
	}
	d := canvas.Pos{X: dst.Lo.X - src.Lo.X, Y: dst.Lo.Y - src.Lo.Y, Z: dst.Lo.Z - src.Lo.Z}
	for x := src.Lo.X; x <= src.Hi.X; x++ {
		for y := src.Lo.Y; y <= src.Hi.Y; y++ {
			for z := src.Lo.Z; z <= src.Hi.Z; z++ {
				p := canvas.Pos{X: x, Y: y, Z: z}
				c.Set(p.Add(d), c.At(p))
			}
		}
	}
	return nil
}

type Axis int

const (
	// Up stacks along Y.
	Up Axis = iota
	// East stacks along Z, the width axis.
	East
	// South stacks along X, the depth axis.
	South
)

func (a Axis) String() string {
	switch a {
	case Up:
		return "up"
	case East:
		return "east"
	case South:
		return "south"
	}
	return fmt.Sprintf("axis(%d)", int(a))
}

func (a Axis) step(extent canvas.Pos) (canvas.Pos, error) {
	switch a {
	case Up:
		return canvas.Pos{Y: extent.Y}, nil
	case East:
		return canvas.Pos{Z: extent.Z}, nil
	case South:
		return canvas.Pos{X: extent.X}, nil
	}
	return canvas.Pos{}, fmt.Errorf("unknown axis %d", int(a))
}

// Replicate places count copies of region after it along axis, each one
// region-extent further than the last.
func Replicate(c *canvas.Canvas, region Cuboid, axis Axis, count int) error {
	if count < 0 {
		return fmt.Errorf("replicate %v: negative count %d", region, count)
	}
	step, err := axis.step(region.Extent())
	if err != nil {
		return err
	}
	offset := canvas.Pos{}
	for i := 0; i < count; i++ {
		offset = offset.Add(step)
		if err := Copy(c, region, region.Translate(offset)); err != nil {
			return err
		}
	}
	return nil
}

// RotateDown cyclically shifts every vertical column of region down by
// shift cells: the cell at height j receives the cell from j+shift, wrapping
// at the top. Each column is rotated in place by following the gcd(shift, H)
// disjoint cycles of the permutation.
func RotateDown(c *canvas.Canvas, region Cuboid, shift int) {
	h := region.Extent().Y
	if region.Empty() {
		return
	}
	shift %= h
	if shift < 0 {
		shift += h
	}
	if shift == 0 {
		return
	}
	cycles := util.GCD(shift, h)
	for x := region.Lo.X; x <= region.Hi.X; x++ {
		for z := region.Lo.Z; z <= region.Hi.Z; z++ {
			at := func(j int) canvas.Pos {
				return canvas.Pos{X: x, Y: region.Lo.Y + j, Z: z}
			}
			for i := 0; i < cycles; i++ {
				tmp := c.At(at(i))
				j := i
				for {
					k := j + shift
					if k >= h {
						k -= h
					}
					if k == i {
						break
					}
					c.Set(at(j), c.At(at(k)))
					j = k
				}
				c.Set(at(j), tmp)
			}
		}
	}
}
