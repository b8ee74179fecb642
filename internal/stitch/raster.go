/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package stitch

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/srwiley/rasterx"
	"golang.org/x/sync/errgroup"

	"svgstitch/internal/vector"
)

const (
	// DefaultPixelsPerUnit is the raster resolution before the side cap.
	DefaultPixelsPerUnit = 4.0
	// DefaultMinRunPixels is the shortest pixel run kept, exclusive.
	DefaultMinRunPixels = 2
	// DefaultRasterMargin pads the image on every side, in pixels.
	DefaultRasterMargin = 2

	// maxRasterSide caps the off-screen image; larger designs get a lower
	// effective resolution.
	maxRasterSide = 8192
)

// ErrEmptyRaster is returned when the contours cover no area to render.
var ErrEmptyRaster = errors.New("stitch: nothing to rasterize")

// RasterOptions controls the bitmap scan fill. Row spacing and minimum run
// width are in world units like the scanline engine.
type RasterOptions struct {
	PixelsPerUnit float64
	RowSpacing    float64
	MinRunPixels  int
	MinRunWidth   float64
	Margin        int
	Fill          color.RGBA
	Workers       int
}

func (o RasterOptions) withDefaults() RasterOptions {
	if o.PixelsPerUnit <= 0 {
		o.PixelsPerUnit = DefaultPixelsPerUnit
	}
	if o.RowSpacing <= 0 {
		o.RowSpacing = DefaultRowSpacing
	}
	if o.MinRunPixels <= 0 {
		o.MinRunPixels = DefaultMinRunPixels
	}
	switch {
	case o.MinRunWidth == 0:
		o.MinRunWidth = DefaultMinRunWidth
	case o.MinRunWidth < 0:
		o.MinRunWidth = 0
	}
	if o.Margin <= 0 {
		o.Margin = DefaultRasterMargin
	}
	if o.Workers <= 0 {
		o.Workers = 1
	}
	o.Fill.A = 0xff
	return o
}

// Raster is a rendered set of contours together with the transforms between
// world and pixel space.
type Raster struct {
	Img        *image.RGBA
	ToRaster   vector.Affine2D
	ToWorld    vector.Affine2D
	Fill       color.RGBA
	Background color.RGBA
	Bounds     vector.Extent
}

// Rasterize renders each contour as an even-odd filled polygon. The image
// covers the union of the contour bounds plus a margin.
func Rasterize(contours [][]vector.Pt, opts RasterOptions) (*Raster, error) {
	opts = opts.withDefaults()
	var b vector.Extent
	for _, c := range contours {
		b.Merge(Contour{Points: c}.Bounds())
	}
	r := b.Rect()
	if b.Empty() || r.W == 0 || r.H == 0 {
		return nil, ErrEmptyRaster
	}

	ppu := opts.PixelsPerUnit
	if side := math.Max(r.W, r.H) * ppu; side > maxRasterSide {
		ppu = maxRasterSide / math.Max(r.W, r.H)
	}
	m := float64(opts.Margin)
	toRaster := vector.Translate(m, m).Mul(vector.Scale(ppu, ppu)).Mul(vector.Translate(-r.X, -r.Y))
	toWorld, ok := toRaster.Invert()
	if !ok {
		return nil, ErrEmptyRaster
	}
	w := int(math.Ceil(r.W*ppu)) + 2*opts.Margin
	h := int(math.Ceil(r.H*ppu)) + 2*opts.Margin

	bg := contrasting(opts.Fill)
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: bg}, image.Point{}, draw.Src)

	scanner := rasterx.NewScannerGV(w, h, img, img.Bounds())
	filler := rasterx.NewFiller(w, h, scanner)
	filler.SetWinding(false)
	filler.SetColor(opts.Fill)
	for _, c := range contours {
		if len(c) < 3 {
			continue
		}
		p := toRaster.Apply(c[0])
		filler.Start(rasterx.ToFixedP(p.X, p.Y))
		for _, q := range c[1:] {
			p = toRaster.Apply(q)
			filler.Line(rasterx.ToFixedP(p.X, p.Y))
		}
		filler.Stop(true)
		filler.Draw()
		filler.Clear()
	}
	return &Raster{Img: img, ToRaster: toRaster, ToWorld: toWorld, Fill: opts.Fill, Background: bg, Bounds: b}, nil
}

// contrasting picks white for dark fills and black for light ones.
func contrasting(c color.RGBA) color.RGBA {
	lum := 0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)
	if lum > 127 {
		return color.RGBA{A: 0xff}
	}
	return color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
}

func colorDist(a, b color.RGBA) float64 {
	dr := float64(a.R) - float64(b.R)
	dg := float64(a.G) - float64(b.G)
	db := float64(a.B) - float64(b.B)
	return math.Sqrt(dr*dr + dg*dg + db*db)
}

// Filled reports whether pixel (x, y) is closer to the fill color than half
// the fill/background distance.
func (r *Raster) Filled(x, y int) bool {
	c := r.Img.RGBAAt(x, y)
	return colorDist(c, r.Fill) < colorDist(r.Fill, r.Background)/2
}

// Runs scans the pixel row under world height y and converts runs of more
// than minPixels filled pixels back to world coordinates.
func (r *Raster) Runs(y float64, minPixels int) []FillRun {
	ry := r.ToRaster.Apply(vector.Pt{Y: y}).Y
	py := int(math.Floor(ry))
	b := r.Img.Bounds()
	if py < b.Min.Y || py >= b.Max.Y {
		return nil
	}
	var runs []FillRun
	start := -1
	emit := func(end int) {
		if end-start > minPixels {
			x0 := r.ToWorld.Apply(vector.Pt{X: float64(start), Y: ry}).X
			x1 := r.ToWorld.Apply(vector.Pt{X: float64(end), Y: ry}).X
			runs = append(runs, FillRun{Y: y, X0: x0, X1: x1})
		}
		start = -1
	}
	for px := b.Min.X; px < b.Max.X; px++ {
		if r.Filled(px, py) {
			if start < 0 {
				start = px
			}
		} else if start >= 0 {
			emit(px)
		}
	}
	if start >= 0 {
		emit(b.Max.X)
	}
	return runs
}

// RasterRuns renders the contours and scans rows at the scanline heights of
// their union bounds.
func RasterRuns(ctx context.Context, contours [][]vector.Pt, opts RasterOptions) ([]FillRun, error) {
	opts = opts.withDefaults()
	r, err := Rasterize(contours, opts)
	if err != nil {
		return nil, err
	}
	ys := rowYs(r.Bounds, opts.RowSpacing)
	rows := make([][]FillRun, len(ys))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for i, y := range ys {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			for _, run := range r.Runs(y, opts.MinRunPixels) {
				if run.Width() > opts.MinRunWidth {
					rows[i] = append(rows[i], run)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	var runs []FillRun
	for _, row := range rows {
		runs = append(runs, row...)
	}
	return runs, nil
}

// RasterFill is the bitmap counterpart of ScanlineFill: runs from the
// rendered contour followed by one outline pass per subpath.
func RasterFill(ctx context.Context, c Contour, opts RasterOptions) ([]Command, error) {
	if Degenerate(c.Points) {
		return nil, nil
	}
	runs, err := RasterRuns(ctx, [][]vector.Pt{c.Points}, opts)
	if err != nil {
		if errors.Is(err, ErrEmptyRaster) {
			return nil, nil
		}
		return nil, err
	}
	return append(runCommands(runs), outlines(c)...), nil
}
