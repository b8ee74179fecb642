/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"image/color"

	"svgstitch/internal/pattern"
	"svgstitch/internal/thread"
	"svgstitch/internal/vector"
)

// PreviewOptions controls the rendered previews (PNG, SVG and the PDF proof).
type PreviewOptions struct {
	Size        int     // pixels along the longer side; default 800
	Margin      int     // pixels around the design; default 16
	StrokeWidth float64 // thread width in pixels; default 1.5
	ShowJumps   bool    // draw moves as thin gray lines
	Background  color.RGBA
}

func (o PreviewOptions) withDefaults() PreviewOptions {
	if o.Size <= 0 {
		o.Size = 800
	}
	if o.Margin < 0 || o.Margin*2 >= o.Size {
		o.Margin = 0
	} else if o.Margin == 0 {
		o.Margin = 16
	}
	if o.StrokeWidth <= 0 {
		o.StrokeWidth = 1.5
	}
	if o.Background == (color.RGBA{}) {
		o.Background = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	}
	return o
}

// block is the part of a pattern sewn with one thread.
type block struct {
	Thread   thread.Spec
	Runs     [][]vector.Pt // each run starts at a move
	Jumps    [][2]vector.Pt
	Stitches int
}

// blockSink splits a replayed pattern into color blocks.
type blockSink struct {
	blocks []block
	cur    vector.Pt
	moved  bool
}

func (s *blockSink) top() *block {
	if len(s.blocks) == 0 {
		s.blocks = append(s.blocks, block{Thread: thread.NewSpec(thread.Stroke, "black", thread.Black, 0)})
	}
	return &s.blocks[len(s.blocks)-1]
}

func (s *blockSink) MoveAbs(x, y float64) error {
	p := vector.Pt{X: x, Y: y}
	b := s.top()
	if s.moved {
		b.Jumps = append(b.Jumps, [2]vector.Pt{s.cur, p})
	}
	b.Runs = append(b.Runs, []vector.Pt{p})
	s.cur, s.moved = p, true
	return nil
}

func (s *blockSink) StitchAbs(x, y float64) error {
	p := vector.Pt{X: x, Y: y}
	b := s.top()
	if len(b.Runs) == 0 {
		b.Runs = append(b.Runs, []vector.Pt{s.cur})
	}
	r := &b.Runs[len(b.Runs)-1]
	*r = append(*r, p)
	b.Stitches++
	s.cur, s.moved = p, true
	return nil
}

func (s *blockSink) ColorChange(t thread.Spec) error {
	s.blocks = append(s.blocks, block{Thread: t})
	return nil
}

func (s *blockSink) End() error { return nil }

func colorBlocks(p *pattern.Pattern) ([]block, error) {
	var s blockSink
	if err := p.Replay(&s); err != nil {
		return nil, err
	}
	return s.blocks, nil
}

// fit maps pattern coordinates into a size×size box with the given margin,
// keeping the aspect ratio. It returns the transform and the pixel size of
// the image that holds the design.
func fit(p *pattern.Pattern, size, margin int) (vector.Affine2D, int, int) {
	e := p.Extent()
	if e.Empty() {
		return vector.Identity, size, size
	}
	r := e.Rect()
	inner := float64(size - 2*margin)
	span := max(r.W, r.H)
	s := 1.0
	if span > 0 {
		s = inner / span
	}
	w := int(r.W*s+0.5) + 2*margin
	h := int(r.H*s+0.5) + 2*margin
	m := vector.Translate(float64(margin), float64(margin)).
		Mul(vector.Scale(s, s)).
		Mul(vector.Translate(-r.X, -r.Y))
	return m, max(w, 1), max(h, 1)
}
