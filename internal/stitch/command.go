/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package stitch

import (
	"fmt"

	"svgstitch/internal/vector"
)

// Op is the kind of a stitch command.
type Op uint8

const (
	OpMove Op = iota
	OpStitch
	OpColorChange
	OpEnd
)

func (o Op) String() string {
	switch o {
	case OpMove:
		return "move"
	case OpStitch:
		return "stitch"
	case OpColorChange:
		return "color_change"
	case OpEnd:
		return "end"
	}
	return fmt.Sprintf("op(%d)", uint8(o))
}

// Command is one entry of the stitch timeline. X and Y are only meaningful
// for moves and stitches.
type Command struct {
	Op   Op
	X, Y float64
}

func (c Command) Pt() vector.Pt { return vector.Pt{X: c.X, Y: c.Y} }

func Move(p vector.Pt) Command   { return Command{Op: OpMove, X: p.X, Y: p.Y} }
func Stitch(p vector.Pt) Command { return Command{Op: OpStitch, X: p.X, Y: p.Y} }

// FillRun is a horizontal interior span on row Y with X0 < X1.
type FillRun struct {
	Y      float64
	X0, X1 float64
}

func (r FillRun) Width() float64 { return r.X1 - r.X0 }

// runCommands emits every run as a move to its start and one stitch to its end.
func runCommands(runs []FillRun) []Command {
	out := make([]Command, 0, 2*len(runs))
	for _, r := range runs {
		out = append(out,
			Move(vector.Pt{X: r.X0, Y: r.Y}),
			Stitch(vector.Pt{X: r.X1, Y: r.Y}))
	}
	return out
}

// outline stitches a closed loop through pts, returning to the first point
// unless the list already ends there.
func outline(pts []vector.Pt) []Command {
	if len(pts) == 0 {
		return nil
	}
	out := make([]Command, 0, len(pts)+1)
	out = append(out, Move(pts[0]))
	for _, p := range pts[1:] {
		out = append(out, Stitch(p))
	}
	if len(pts) > 1 && pts[len(pts)-1] != pts[0] {
		out = append(out, Stitch(pts[0]))
	}
	return out
}

// outlines stitches one closed loop per subpath of c, each starting with its
// own move.
func outlines(c Contour) []Command {
	var out []Command
	for _, sp := range c.Subpaths() {
		out = append(out, outline(sp)...)
	}
	return out
}

// Count returns the number of Stitch commands in cmds.
func Count(cmds []Command) int {
	n := 0
	for _, c := range cmds {
		if c.Op == OpStitch {
			n++
		}
	}
	return n
}
