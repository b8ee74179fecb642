/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"math"

	"svgstitch/internal/thread"
)

type recKind uint8

const (
	recStitch recKind = iota
	recJump
	recColor
	recEnd
)

// record is one machine instruction with an integer displacement. Y grows
// upwards, as machines expect.
type record struct {
	kind   recKind
	dx, dy int
}

// deltas is a pattern.Sink that converts absolute coordinates into bounded
// relative records. Moves become jumps; displacements larger than maxStep
// are split into equal pieces.
type deltas struct {
	maxStep int
	x, y    int
	recs    []record
	threads []thread.Spec
	colors  int

	minX, minY, maxX, maxY int
	stitches               int
}

func newDeltas(maxStep int) *deltas { return &deltas{maxStep: maxStep} }

func (d *deltas) MoveAbs(x, y float64) error   { d.to(x, y, recJump); return nil }
func (d *deltas) StitchAbs(x, y float64) error { d.to(x, y, recStitch); return nil }

func (d *deltas) ColorChange(t thread.Spec) error {
	// the first thread is loaded before sewing starts
	if len(d.threads) > 0 {
		d.recs = append(d.recs, record{kind: recColor})
		d.colors++
	}
	d.threads = append(d.threads, t)
	return nil
}

func (d *deltas) End() error {
	d.recs = append(d.recs, record{kind: recEnd})
	return nil
}

func (d *deltas) to(fx, fy float64, kind recKind) {
	tx := int(math.Round(fx))
	ty := int(math.Round(-fy))
	dx, dy := tx-d.x, ty-d.y
	if dx == 0 && dy == 0 && kind == recJump {
		return
	}
	span := max(abs(dx), abs(dy))
	steps := 1
	if span > d.maxStep {
		steps = (span + d.maxStep - 1) / d.maxStep
	}
	x0, y0 := d.x, d.y
	for i := 1; i <= steps; i++ {
		nx := x0 + int(math.Round(float64(dx*i)/float64(steps)))
		ny := y0 + int(math.Round(float64(dy*i)/float64(steps)))
		d.recs = append(d.recs, record{kind: kind, dx: nx - d.x, dy: ny - d.y})
		d.x, d.y = nx, ny
		if kind == recStitch {
			d.stitches++
		}
		d.track()
	}
}

func (d *deltas) track() {
	d.minX, d.maxX = min(d.minX, d.x), max(d.maxX, d.x)
	d.minY, d.maxY = min(d.minY, d.y), max(d.maxY, d.y)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
