/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package stitch

import (
	"math"

	"svgstitch/internal/vector"
)

// Curve is a parametric outline. Point(t) for t in [0,1] must advance
// proportionally to arc length; vector.Measured satisfies this.
type Curve interface {
	Length() float64
	Point(t float64) vector.Pt
}

// Contour is an ordered list of sampled points. Closed is set by the caller
// and only affects stroking.
//
// A contour joined from several subpaths records where each one begins in
// Starts. The joined list is what the even-odd test sees; outlines and rings
// follow the subpaths.
type Contour struct {
	Points []vector.Pt
	Closed bool
	Starts []int
}

func (c Contour) Len() int { return len(c.Points) }

// Join concatenates the point lists of parts into one closed contour and
// records the subpath boundaries. Empty parts are skipped.
func Join(parts ...Contour) Contour {
	var c Contour
	for _, p := range parts {
		if len(p.Points) == 0 {
			continue
		}
		c.Starts = append(c.Starts, len(c.Points))
		c.Points = append(c.Points, p.Points...)
	}
	c.Closed = true
	return c
}

// Subpaths splits the points at Starts. Without boundaries the whole list is
// one subpath.
func (c Contour) Subpaths() [][]vector.Pt {
	if len(c.Points) == 0 {
		return nil
	}
	if len(c.Starts) == 0 {
		return [][]vector.Pt{c.Points}
	}
	out := make([][]vector.Pt, 0, len(c.Starts))
	for i, s := range c.Starts {
		end := len(c.Points)
		if i+1 < len(c.Starts) {
			end = c.Starts[i+1]
		}
		if s < end {
			out = append(out, c.Points[s:end])
		}
	}
	return out
}

// Bounds returns the extent of the contour points.
func (c Contour) Bounds() vector.Extent {
	var e vector.Extent
	for _, p := range c.Points {
		e.Add(p)
	}
	return e
}

// SampleCount is the number of intervals used for a curve of the given length:
// round(length/step), but never fewer than minSamples.
func SampleCount(length, step float64, minSamples int) int {
	if minSamples < 1 {
		minSamples = 1
	}
	if step <= 0 || math.IsInf(length, 0) || math.IsNaN(length) {
		return minSamples
	}
	n := int(math.Round(length / step))
	if n < minSamples {
		n = minSamples
	}
	return n
}

// Sample walks the curve at uniform arc-length steps and returns n+1 points
// at t = j/n, j = 0..n. A curve of zero length yields an empty contour.
func Sample(c Curve, step float64, minSamples int) Contour {
	length := c.Length()
	if !(length > 0) {
		return Contour{}
	}
	n := SampleCount(length, step, minSamples)
	pts := make([]vector.Pt, n+1)
	for j := 0; j <= n; j++ {
		pts[j] = c.Point(float64(j) / float64(n))
	}
	return Contour{Points: pts}
}
