/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import (
	"math"
	"sort"
)

// DefaultTolerance is the flattening tolerance used when callers pass <= 0.
const DefaultTolerance = 0.05

const maxSubdivision = 16

// Polyline is one flattened subpath.
type Polyline struct {
	Points []Pt
	Closed bool
}

// Flatten converts the path into polylines, one per subpath, subdividing
// curves until every control point lies within tol of the chord.
func (p Path) Flatten(tol float64) []Polyline {
	if tol <= 0 {
		tol = DefaultTolerance
	}
	var out []Polyline
	for _, sp := range p.Subpaths() {
		var pl Polyline
		var cur, start Pt
		for _, c := range sp.Cmds {
			switch c.Op {
			case MoveTo:
				cur = c.End()
				start = cur
				pl.Points = append(pl.Points, cur)
			case LineTo:
				cur = c.End()
				pl.Points = append(pl.Points, cur)
			case QuadTo:
				// elevate to cubic
				q := Pt{c.Data[0], c.Data[1]}
				end := c.End()
				c1 := cur.Add(q.Sub(cur).Mul(2.0 / 3))
				c2 := end.Add(q.Sub(end).Mul(2.0 / 3))
				flattenCubic(cur, c1, c2, end, tol, 0, &pl.Points)
				cur = end
			case CubicTo:
				end := c.End()
				flattenCubic(cur, Pt{c.Data[0], c.Data[1]}, Pt{c.Data[2], c.Data[3]}, end, tol, 0, &pl.Points)
				cur = end
			case Close:
				if cur != start {
					pl.Points = append(pl.Points, start)
				}
				cur = start
				pl.Closed = true
			}
		}
		out = append(out, pl)
	}
	return out
}

// flattenCubic appends points of the curve (excluding p0) using De Casteljau
// subdivision.
func flattenCubic(p0, p1, p2, p3 Pt, tol float64, depth int, out *[]Pt) {
	if depth >= maxSubdivision || (distToLine(p1, p0, p3) <= tol && distToLine(p2, p0, p3) <= tol) {
		*out = append(*out, p3)
		return
	}
	m01 := p0.Lerp(p1, 0.5)
	m12 := p1.Lerp(p2, 0.5)
	m23 := p2.Lerp(p3, 0.5)
	m012 := m01.Lerp(m12, 0.5)
	m123 := m12.Lerp(m23, 0.5)
	mid := m012.Lerp(m123, 0.5)
	flattenCubic(p0, m01, m012, mid, tol, depth+1, out)
	flattenCubic(mid, m123, m23, p3, tol, depth+1, out)
}

func distToLine(p, a, b Pt) float64 {
	d := b.Sub(a)
	l := d.Len()
	if l == 0 {
		return p.Dist(a)
	}
	return math.Abs(d.X*(a.Y-p.Y)-d.Y*(a.X-p.X)) / l
}

// Measured is a flattened path parameterized by arc length. Point(t) walks
// t·Length() along the outline. Subpaths are concatenated; the jump from one
// subpath end to the next start adds no length.
type Measured struct {
	pts    []Pt
	cum    []float64
	closed bool
}

// Measure flattens the path with tol and builds the arc-length table.
func (p Path) Measure(tol float64) *Measured {
	lines := p.Flatten(tol)
	m := &Measured{}
	for _, pl := range lines {
		m.appendPolyline(pl.Points, true)
	}
	m.closed = len(lines) == 1 && lines[0].Closed
	return m
}

// MeasurePolyline builds a Measured over explicit vertices.
func MeasurePolyline(pts []Pt, closed bool) *Measured {
	m := &Measured{closed: closed}
	m.appendPolyline(pts, true)
	if closed && len(pts) > 1 && pts[len(pts)-1] != pts[0] {
		m.appendPolyline([]Pt{pts[0]}, false)
	}
	return m
}

func (m *Measured) appendPolyline(pts []Pt, jump bool) {
	for i, q := range pts {
		if len(m.pts) == 0 {
			m.pts = append(m.pts, q)
			m.cum = append(m.cum, 0)
			continue
		}
		prev := m.cum[len(m.cum)-1]
		if !(jump && i == 0) {
			prev += m.pts[len(m.pts)-1].Dist(q)
		}
		m.pts = append(m.pts, q)
		m.cum = append(m.cum, prev)
	}
}

// Length is the total arc length.
func (m *Measured) Length() float64 {
	if len(m.cum) == 0 {
		return 0
	}
	return m.cum[len(m.cum)-1]
}

// Closed reports whether the measured outline is a single closed subpath.
func (m *Measured) Closed() bool { return m.closed }

// Vertices returns the flattened vertices in order.
func (m *Measured) Vertices() []Pt { return m.pts }

// Point returns the location at parameter t in [0,1], clamped.
func (m *Measured) Point(t float64) Pt {
	if len(m.pts) == 0 {
		return Pt{}
	}
	total := m.Length()
	if t <= 0 || total == 0 {
		return m.pts[0]
	}
	if t >= 1 {
		return m.pts[len(m.pts)-1]
	}
	target := t * total
	i := sort.SearchFloat64s(m.cum, target)
	if i == 0 {
		return m.pts[0]
	}
	if i >= len(m.pts) {
		return m.pts[len(m.pts)-1]
	}
	seg := m.cum[i] - m.cum[i-1]
	if seg == 0 {
		return m.pts[i]
	}
	return m.pts[i-1].Lerp(m.pts[i], (target-m.cum[i-1])/seg)
}
