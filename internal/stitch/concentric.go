/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package stitch

import "svgstitch/internal/vector"

const (
	// DefaultLayers is the ring count when none is configured.
	DefaultLayers = 8
	// DefaultLayerSpacing is the shrink distance between rings.
	DefaultLayerSpacing = 3.0
)

// ConcentricOptions controls the concentric fill.
type ConcentricOptions struct {
	Layers  int     // number of rings, including the unshrunk outline
	Spacing float64 // distance between consecutive rings
}

func (o ConcentricOptions) withDefaults() ConcentricOptions {
	if o.Layers <= 0 {
		o.Layers = DefaultLayers
	}
	if o.Spacing <= 0 {
		o.Spacing = DefaultLayerSpacing
	}
	return o
}

// Layer is one shrunk ring. Source[i] is the index of Points[i] in the
// input contour.
type Layer struct {
	Offset float64
	Points []vector.Pt
	Source []int
}

// Centroid is the arithmetic mean of the points.
func Centroid(pts []vector.Pt) vector.Pt {
	var c vector.Pt
	if len(pts) == 0 {
		return c
	}
	for _, p := range pts {
		c = c.Add(p)
	}
	return c.Mul(1 / float64(len(pts)))
}

// ConcentricLayers pulls every point toward the centroid by layer·spacing for
// layer = 0..Layers-1. Points no farther from the centroid than the offset are
// dropped from that layer. Only layers keeping more than three points are
// returned, and a degenerate outline has none.
//
// This is a radial shrink, not a true inward offset: on non-convex outlines
// inner rings can cross themselves or the outline.
func ConcentricLayers(pts []vector.Pt, opts ConcentricOptions) []Layer {
	opts = opts.withDefaults()
	if Degenerate(pts) {
		return nil
	}
	c := Centroid(pts)
	var layers []Layer
	for k := 0; k < opts.Layers; k++ {
		o := float64(k) * opts.Spacing
		l := Layer{Offset: o}
		for i, p := range pts {
			d := p.Dist(c)
			if d <= o {
				continue
			}
			l.Points = append(l.Points, p.Lerp(c, o/d))
			l.Source = append(l.Source, i)
		}
		if len(l.Points) > 3 {
			layers = append(layers, l)
		}
	}
	return layers
}

// ConcentricFill stitches every layer as a closed ring, outermost first.
// Each outer subpath shrinks toward its own centroid; a subpath lying inside
// an odd number of others is a hole and only its boundary is stitched.
// Degenerate contours yield no commands.
func ConcentricFill(c Contour, opts ConcentricOptions) []Command {
	if Degenerate(c.Points) {
		return nil
	}
	subs := c.Subpaths()
	var out []Command
	for i, sp := range subs {
		if Degenerate(sp) {
			continue
		}
		if isHole(i, subs) {
			out = append(out, outline(sp)...)
			continue
		}
		for _, l := range ConcentricLayers(sp, opts) {
			out = append(out, outline(l.Points)...)
		}
	}
	return out
}

func isHole(i int, subs [][]vector.Pt) bool {
	n := 0
	for j, other := range subs {
		if j != i && Inside(subs[i][0], other) {
			n++
		}
	}
	return n%2 == 1
}
