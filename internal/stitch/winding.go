/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package stitch

import "svgstitch/internal/vector"

// Winding returns the signed crossing count of the polygon around p. The
// closing edge from the last point back to the first is included. Upward
// edges with p strictly left count +1, downward edges with p strictly right
// count -1; points exactly on an edge line count nothing.
//
// Every query walks all edges. There is no edge bucketing, so filling a
// polygon with E edges on R rows and P probes costs O(R·P·E).
func Winding(p vector.Pt, poly []vector.Pt) int {
	n := len(poly)
	w := 0
	for i := 0; i < n; i++ {
		a := poly[i]
		b := poly[(i+1)%n]
		cross := (b.X-a.X)*(p.Y-a.Y) - (p.X-a.X)*(b.Y-a.Y)
		switch {
		case a.Y <= p.Y && p.Y < b.Y:
			if cross > 0 {
				w++
			}
		case b.Y <= p.Y && p.Y < a.Y:
			if cross < 0 {
				w--
			}
		}
	}
	return w
}

// Inside applies the even-odd rule. Polygons with fewer than three points
// contain nothing.
func Inside(p vector.Pt, poly []vector.Pt) bool {
	if len(poly) < 3 {
		return false
	}
	return Winding(p, poly)%2 != 0
}

// Area is the signed shoelace area; positive for counter-clockwise polygons
// in a y-up frame.
func Area(poly []vector.Pt) float64 {
	n := len(poly)
	var a float64
	for i := 0; i < n; i++ {
		p, q := poly[i], poly[(i+1)%n]
		a += p.X*q.Y - q.X*p.Y
	}
	return a / 2
}

// Degenerate reports whether a polygon cannot enclose any area: fewer than
// three points or a flat bounding box. Slanted collinear input passes here
// but never classifies a probe as inside.
func Degenerate(poly []vector.Pt) bool {
	if len(poly) < 3 {
		return true
	}
	c := Contour{Points: poly}
	r := c.Bounds().Rect()
	return r.W == 0 || r.H == 0
}
