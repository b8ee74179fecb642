/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"

	"github.com/srwiley/rasterx"
	"golang.org/x/image/math/fixed"

	"svgstitch/internal/pattern"
	"svgstitch/internal/vector"
)

var jumpColor = color.RGBA{R: 0xb0, G: 0xb0, B: 0xb0, A: 0xff}

// RenderPNG draws every color block as stroked thread lines.
func RenderPNG(p *pattern.Pattern, opt PreviewOptions) (*image.RGBA, error) {
	opt = opt.withDefaults()
	blocks, err := colorBlocks(p)
	if err != nil {
		return nil, err
	}
	m, w, h := fit(p, opt.Size, opt.Margin)
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: opt.Background}, image.Point{}, draw.Src)

	scanner := rasterx.NewScannerGV(w, h, img, img.Bounds())
	dasher := rasterx.NewDasher(w, h, scanner)
	stroke := func(width float64, c color.Color, lines [][]vector.Pt) {
		dasher.Clear()
		dasher.SetStroke(fixed.Int26_6(width*64), 0, rasterx.RoundCap, rasterx.RoundCap, rasterx.RoundGap, rasterx.ArcClip, nil, 0)
		dasher.SetColor(c)
		for _, ln := range lines {
			if len(ln) < 2 {
				continue
			}
			q := m.Apply(ln[0])
			dasher.Start(rasterx.ToFixedP(q.X, q.Y))
			for _, pt := range ln[1:] {
				q = m.Apply(pt)
				dasher.Line(rasterx.ToFixedP(q.X, q.Y))
			}
			dasher.Stop(false)
		}
		dasher.Draw()
	}

	for _, b := range blocks {
		if opt.ShowJumps && len(b.Jumps) > 0 {
			lines := make([][]vector.Pt, len(b.Jumps))
			for i, j := range b.Jumps {
				lines[i] = j[:]
			}
			stroke(0.5, jumpColor, lines)
		}
		stroke(opt.StrokeWidth, b.Thread.Color.RGBA(), b.Runs)
	}
	return img, nil
}

// WritePNG renders p and encodes it as PNG.
func WritePNG(w io.Writer, p *pattern.Pattern, opt PreviewOptions) error {
	img, err := RenderPNG(p, opt)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}
