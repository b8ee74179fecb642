/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import "math"

// kappa places cubic control points for a quarter ellipse.
const kappa = 0.5522847498307936

// maxArcSpan is the widest angle approximated by one cubic segment.
const maxArcSpan = math.Pi / 8

// AddRect appends a closed rectangle. rx and ry round the corners and are
// clamped to half the side lengths; a zero value copies the other one.
func (p *Path) AddRect(x, y, w, h, rx, ry float64) {
	if rx == 0 {
		rx = ry
	}
	if ry == 0 {
		ry = rx
	}
	rx = math.Min(math.Abs(rx), w/2)
	ry = math.Min(math.Abs(ry), h/2)
	if rx == 0 || ry == 0 {
		p.MoveTo(x, y)
		p.LineTo(x+w, y)
		p.LineTo(x+w, y+h)
		p.LineTo(x, y+h)
		p.Close()
		return
	}
	kx, ky := rx*kappa, ry*kappa
	p.MoveTo(x+rx, y)
	p.LineTo(x+w-rx, y)
	p.CubicTo(x+w-rx+kx, y, x+w, y+ry-ky, x+w, y+ry)
	p.LineTo(x+w, y+h-ry)
	p.CubicTo(x+w, y+h-ry+ky, x+w-rx+kx, y+h, x+w-rx, y+h)
	p.LineTo(x+rx, y+h)
	p.CubicTo(x+rx-kx, y+h, x, y+h-ry+ky, x, y+h-ry)
	p.LineTo(x, y+ry)
	p.CubicTo(x, y+ry-ky, x+rx-kx, y, x+rx, y)
	p.Close()
}

// AddEllipse appends a closed ellipse made of four cubic quarters, starting
// at the rightmost point and running clockwise in a y-down frame.
func (p *Path) AddEllipse(cx, cy, rx, ry float64) {
	kx, ky := rx*kappa, ry*kappa
	p.MoveTo(cx+rx, cy)
	p.CubicTo(cx+rx, cy+ky, cx+kx, cy+ry, cx, cy+ry)
	p.CubicTo(cx-kx, cy+ry, cx-rx, cy+ky, cx-rx, cy)
	p.CubicTo(cx-rx, cy-ky, cx-kx, cy-ry, cx, cy-ry)
	p.CubicTo(cx+kx, cy-ry, cx+rx, cy-ky, cx+rx, cy)
	p.Close()
}

// AddPolyline appends the points as one subpath, closed when asked.
func (p *Path) AddPolyline(pts []Pt, closed bool) {
	if len(pts) == 0 {
		return
	}
	p.MoveTo(pts[0].X, pts[0].Y)
	for _, q := range pts[1:] {
		p.LineTo(q.X, q.Y)
	}
	if closed {
		p.Close()
	}
}

// ArcTo appends an SVG elliptical arc from the current point to `to` as
// cubic segments (Maisonobe's approximation). Radii too small to reach the
// end point are scaled up; a zero radius degrades to a straight line.
func (p *Path) ArcTo(from Pt, rx, ry, xrotDeg float64, large, sweep bool, to Pt) {
	if from == to {
		return
	}
	rx, ry = math.Abs(rx), math.Abs(ry)
	if rx == 0 || ry == 0 {
		p.LineTo(to.X, to.Y)
		return
	}
	phi := xrotDeg * math.Pi / 180
	cos, sin := math.Cos(phi), math.Sin(phi)

	// endpoint to center parameterization
	dx2, dy2 := (from.X-to.X)/2, (from.Y-to.Y)/2
	x1 := cos*dx2 + sin*dy2
	y1 := -sin*dx2 + cos*dy2
	if lambda := x1*x1/(rx*rx) + y1*y1/(ry*ry); lambda > 1 {
		s := math.Sqrt(lambda)
		rx, ry = rx*s, ry*s
	}
	num := rx*rx*ry*ry - rx*rx*y1*y1 - ry*ry*x1*x1
	den := rx*rx*y1*y1 + ry*ry*x1*x1
	coef := 0.0
	if den > 0 && num > 0 {
		coef = math.Sqrt(num / den)
	}
	if large == sweep {
		coef = -coef
	}
	cxp := coef * rx * y1 / ry
	cyp := -coef * ry * x1 / rx
	cx := cos*cxp - sin*cyp + (from.X+to.X)/2
	cy := sin*cxp + cos*cyp + (from.Y+to.Y)/2

	theta := vecAngle(1, 0, (x1-cxp)/rx, (y1-cyp)/ry)
	delta := vecAngle((x1-cxp)/rx, (y1-cyp)/ry, (-x1-cxp)/rx, (-y1-cyp)/ry)
	if !sweep && delta > 0 {
		delta -= 2 * math.Pi
	} else if sweep && delta < 0 {
		delta += 2 * math.Pi
	}

	at := func(eta float64) Pt {
		ce, se := math.Cos(eta), math.Sin(eta)
		return Pt{cx + rx*ce*cos - ry*se*sin, cy + rx*ce*sin + ry*se*cos}
	}
	tangent := func(eta float64) Pt {
		ce, se := math.Cos(eta), math.Sin(eta)
		return Pt{-rx*se*cos - ry*ce*sin, -rx*se*sin + ry*ce*cos}
	}

	segs := int(math.Ceil(math.Abs(delta) / maxArcSpan))
	if segs < 1 {
		segs = 1
	}
	d := delta / float64(segs)
	t := math.Tan(d / 2)
	alpha := math.Sin(d) * (math.Sqrt(4+3*t*t) - 1) / 3
	prev, prevT := from, tangent(theta)
	for i := 1; i <= segs; i++ {
		eta := theta + d*float64(i)
		next := at(eta)
		if i == segs {
			next = to
		}
		nt := tangent(eta)
		p.CubicTo(prev.X+alpha*prevT.X, prev.Y+alpha*prevT.Y,
			next.X-alpha*nt.X, next.Y-alpha*nt.Y, next.X, next.Y)
		prev, prevT = next, nt
	}
}

func vecAngle(ux, uy, vx, vy float64) float64 {
	return math.Atan2(ux*vy-uy*vx, ux*vx+uy*vy)
}
