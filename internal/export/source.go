/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// RenderSource rasterizes the original SVG document so it can be compared
// side by side with the stitch preview. Unsupported SVG features are ignored.
func RenderSource(r io.Reader, opt PreviewOptions) (*image.RGBA, error) {
	opt = opt.withDefaults()
	icon, err := oksvg.ReadIconStream(r, oksvg.IgnoreErrorMode)
	if err != nil {
		return nil, fmt.Errorf("read source svg: %w", err)
	}
	vw, vh := icon.ViewBox.W, icon.ViewBox.H
	if vw <= 0 || vh <= 0 {
		return nil, fmt.Errorf("source svg has no view box")
	}
	inner := float64(opt.Size - 2*opt.Margin)
	s := inner / max(vw, vh)
	w := int(vw*s+0.5) + 2*opt.Margin
	h := int(vh*s+0.5) + 2*opt.Margin

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: opt.Background}, image.Point{}, draw.Src)
	icon.SetTarget(float64(opt.Margin), float64(opt.Margin), vw*s, vh*s)
	scanner := rasterx.NewScannerGV(w, h, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(w, h, scanner), 1)
	return img, nil
}

// WriteSourcePNG renders the source document as PNG.
func WriteSourcePNG(w io.Writer, r io.Reader, opt PreviewOptions) error {
	img, err := RenderSource(r, opt)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}
