package clock

import (
	"fmt"

	"github.com/jsphweid/noteblock/block"
	"github.com/jsphweid/noteblock/canvas"
	"github.com/jsphweid/noteblock/util"
)

// StepDelay is what one intermediate staircase step adds: a 4-tick repeater
// on each lane.
const StepDelay = 8

// Staircase describes a delay line before it is built.
type Staircase struct {
	Delay int
	// Steps is the number of intermediate 8-tick steps.
	Steps int
	// Tail is the delay carried by the last step, in [1,8].
	Tail int
}

func PlanStaircase(delay int) Staircase {
	steps := (delay - 1) / StepDelay
	return Staircase{Delay: delay, Steps: steps, Tail: delay - StepDelay*steps}
}

// Depth is the physical length of the staircase along X.
func (s Staircase) Depth() int {
	return s.Steps + 3
}

// Stages lists the repeater delays in the order the signal passes them.
func (s Staircase) Stages() []int {
	res := make([]int, 0, 2*s.Steps+2)
	for i := 0; i < s.Steps; i++ {
		res = append(res, 4, 4)
	}
	res = append(res, util.Min(4, s.Tail))
	if s.Tail > 4 {
		res = append(res, s.Tail-4)
	}
	return res
}

// BuildDelayStaircase lays a two-lane delay line of exactly delay ticks at
// v, running along +X: the signal goes out on lane 1 through west-facing
// repeaters and comes back on lane 3 through east-facing ones. Returns the
// depth consumed.
func BuildDelayStaircase(v canvas.View, delay int, wiring, slab block.Block) int {
	if delay < 1 {
		panic(fmt.Sprintf("clock: staircase delay must be positive, got %d", delay))
	}
	plan := PlanStaircase(delay)
	dust := block.Of(block.RedstoneDust)
	end := plan.Steps + 1

	v.Set(0, 0, 0, dust)
	v.Set(0, 1, 0, wiring)
	v.Set(0, 3, 0, wiring)

	for i := 0; i < plan.Steps; i++ {
		v.Set(1+i, 0, 0, wiring)
		v.Set(1+i, 1, 0, block.MustRepeater(block.West, 4))
		v.Set(1+i, 2, 0, wiring)
		v.Set(1+i, 3, 0, block.MustRepeater(block.East, 4))
	}

	if delay <= 4 {
		v.Set(end, 0, 0, slab)
	} else {
		v.Set(end, 0, 0, wiring)
	}
	v.Set(end, 1, 0, block.MustRepeater(block.West, util.Min(4, plan.Tail)))
	v.Set(end, 2, 0, wiring)
	if plan.Tail > 4 {
		v.Set(end, 3, 0, block.MustRepeater(block.East, plan.Tail-4))
		v.Set(end+1, 3, 0, wiring)
	} else {
		v.Set(end, 3, 0, dust)
	}
	v.Set(end+1, 1, 0, wiring)
	v.Set(end+1, 2, 0, dust)

	return plan.Depth()
}

// BuildTorchTower stacks height levels at v: filler on even levels, an
// upward torch on odd ones.
func BuildTorchTower(v canvas.View, height int, filler block.Block) {
	torch := block.MustTorch(block.Up)
	for i := 0; i < height; i++ {
		if i%2 == 0 {
			v.Set(0, i, 0, filler)
		} else {
			v.Set(0, i, 0, torch)
		}
	}
}
