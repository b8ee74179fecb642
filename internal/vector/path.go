/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

// Path commands and shapes.

type PathOp uint8

const (
	MoveTo PathOp = iota
	LineTo
	QuadTo  // quadratic bezier (cx, cy, x, y)
	CubicTo // cubic bezier (cx1, cy1, cx2, cy2, x, y)
	Close
)

func (op PathOp) String() string {
	switch op {
	case MoveTo:
		return "M"
	case LineTo:
		return "L"
	case QuadTo:
		return "Q"
	case CubicTo:
		return "C"
	case Close:
		return "Z"
	}
	return "?"
}

// points returns how many (x,y) pairs the op carries in Data.
func (op PathOp) points() int {
	switch op {
	case MoveTo, LineTo:
		return 1
	case QuadTo:
		return 2
	case CubicTo:
		return 3
	}
	return 0
}

type PathCmd struct {
	Op   PathOp
	Data [6]float64 // enough for cubic; unused slots are zero
}

// End returns the pen position after the command. Close has no own end
// point; callers track the subpath start for it.
func (c PathCmd) End() Pt {
	n := c.Op.points()
	if n == 0 {
		return Pt{}
	}
	return Pt{c.Data[2*n-2], c.Data[2*n-1]}
}

type Path struct{ Cmds []PathCmd }

func (p *Path) MoveTo(x, y float64) {
	p.Cmds = append(p.Cmds, PathCmd{Op: MoveTo, Data: [6]float64{x, y}})
}
func (p *Path) LineTo(x, y float64) {
	p.Cmds = append(p.Cmds, PathCmd{Op: LineTo, Data: [6]float64{x, y}})
}
func (p *Path) QuadTo(cx, cy, x, y float64) {
	p.Cmds = append(p.Cmds, PathCmd{Op: QuadTo, Data: [6]float64{cx, cy, x, y}})
}
func (p *Path) CubicTo(cx1, cy1, cx2, cy2, x, y float64) {
	p.Cmds = append(p.Cmds, PathCmd{Op: CubicTo, Data: [6]float64{cx1, cy1, cx2, cy2, x, y}})
}
func (p *Path) Close() { p.Cmds = append(p.Cmds, PathCmd{Op: Close}) }

// Append copies the commands of q onto p.
func (p *Path) Append(q Path) { p.Cmds = append(p.Cmds, q.Cmds...) }

// Empty reports whether the path draws nothing, i.e. holds at most moves.
func (p Path) Empty() bool {
	for _, c := range p.Cmds {
		if c.Op != MoveTo && c.Op != Close {
			return false
		}
	}
	return true
}

// Bounds returns an axis-aligned bounding box of the path using a simple
// approximation by considering control points. Curves lie inside the hull
// of their control points, so the box is never too small.
func (p Path) Bounds() Rect {
	var e Extent
	for _, c := range p.Cmds {
		for i := 0; i < c.Op.points(); i++ {
			e.Add(Pt{c.Data[2*i], c.Data[2*i+1]})
		}
	}
	return e.Rect()
}

// Transform returns a copy of the path with m applied to every point.
// Affine maps keep Bezier curves Bezier, so control points map directly.
func (p Path) Transform(m Affine2D) Path {
	out := Path{Cmds: make([]PathCmd, len(p.Cmds))}
	for i, c := range p.Cmds {
		nc := PathCmd{Op: c.Op}
		for j := 0; j < c.Op.points(); j++ {
			q := m.Apply(Pt{c.Data[2*j], c.Data[2*j+1]})
			nc.Data[2*j], nc.Data[2*j+1] = q.X, q.Y
		}
		out.Cmds[i] = nc
	}
	return out
}

// Subpaths splits the path at every MoveTo. Drawing commands that appear
// before any MoveTo start at the origin, as in SVG.
func (p Path) Subpaths() []Path {
	var out []Path
	var cur Path
	for _, c := range p.Cmds {
		if c.Op == MoveTo && len(cur.Cmds) > 0 {
			out = append(out, cur)
			cur = Path{}
		}
		if c.Op != MoveTo && len(cur.Cmds) == 0 {
			cur.MoveTo(0, 0)
		}
		cur.Cmds = append(cur.Cmds, c)
	}
	if len(cur.Cmds) > 0 {
		out = append(out, cur)
	}
	return out
}

// Closed reports whether the (sub)path ends with a Close command.
func (p Path) Closed() bool {
	return len(p.Cmds) > 0 && p.Cmds[len(p.Cmds)-1].Op == Close
}
