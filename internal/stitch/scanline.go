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
	"runtime"

	"golang.org/x/sync/errgroup"

	"svgstitch/internal/vector"
)

const (
	// DefaultRowSpacing is the distance between fill rows in world units.
	DefaultRowSpacing = 4.0
	// DefaultProbeSpacing is the horizontal step of the inside test.
	DefaultProbeSpacing = 2.0
	// DefaultMinRunWidth drops runs that are not strictly wider.
	DefaultMinRunWidth = 2.0

	// refineSteps bisects run ends toward the boundary; 12 halvings narrow a
	// probe interval to below 1/4000 of its width.
	refineSteps = 12
)

// ScanlineOptions controls the geometric scanline fill.
type ScanlineOptions struct {
	RowSpacing   float64 // vertical distance between rows (fy)
	ProbeSpacing float64 // horizontal distance between probes (fx)
	MinRunWidth  float64 // runs must be strictly wider; 0 means the default, negative keeps all
	MergeGap     float64 // inside probes closer than this join one run; 0 means 1.5·ProbeSpacing
	Workers      int     // concurrent rows; 0 means GOMAXPROCS
}

func (o ScanlineOptions) withDefaults() ScanlineOptions {
	if o.RowSpacing <= 0 {
		o.RowSpacing = DefaultRowSpacing
	}
	if o.ProbeSpacing <= 0 {
		o.ProbeSpacing = DefaultProbeSpacing
	}
	switch {
	case o.MinRunWidth == 0:
		o.MinRunWidth = DefaultMinRunWidth
	case o.MinRunWidth < 0:
		o.MinRunWidth = 0
	}
	if o.MergeGap <= 0 {
		o.MergeGap = 1.5 * o.ProbeSpacing
	}
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	return o
}

// rowYs lists scanline heights ymin + k·fy for k >= 1 while below ymax.
func rowYs(e vector.Extent, fy float64) []float64 {
	var ys []float64
	for k := 1; ; k++ {
		y := e.MinY + float64(k)*fy
		if y >= e.MaxY {
			break
		}
		ys = append(ys, y)
	}
	return ys
}

// ScanlineRuns classifies probe points on each row with the even-odd rule
// and returns the interior runs in row order, left to right.
func ScanlineRuns(ctx context.Context, poly []vector.Pt, opts ScanlineOptions) ([]FillRun, error) {
	if Degenerate(poly) {
		return nil, nil
	}
	opts = opts.withDefaults()
	bounds := Contour{Points: poly}.Bounds()
	ys := rowYs(bounds, opts.RowSpacing)
	rows := make([][]FillRun, len(ys))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for i, y := range ys {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rows[i] = scanRow(poly, bounds, y, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	var runs []FillRun
	for _, r := range rows {
		runs = append(runs, r...)
	}
	return runs, nil
}

func scanRow(poly []vector.Pt, b vector.Extent, y float64, o ScanlineOptions) []FillRun {
	inside := func(x float64) bool { return Inside(vector.Pt{X: x, Y: y}, poly) }

	var hits []float64
	for i := 0; ; i++ {
		x := b.MinX + float64(i)*o.ProbeSpacing
		if x > b.MaxX {
			break
		}
		if inside(x) {
			hits = append(hits, x)
		}
	}
	if len(hits) == 0 {
		return nil
	}

	var runs []FillRun
	start, prev := hits[0], hits[0]
	flush := func() {
		x0 := start
		if left := start - o.ProbeSpacing; left >= b.MinX && !inside(left) {
			x0 = refine(inside, start, left)
		}
		x1 := prev
		right := prev + o.ProbeSpacing
		if right > b.MaxX {
			right = b.MaxX
		}
		if right > prev && !inside(right) {
			x1 = refine(inside, prev, right)
		}
		if x1-x0 > o.MinRunWidth {
			runs = append(runs, FillRun{Y: y, X0: x0, X1: x1})
		}
	}
	for _, x := range hits[1:] {
		if x-prev > o.MergeGap {
			flush()
			start = x
		}
		prev = x
	}
	flush()
	return runs
}

// refine bisects between an inside abscissa and an outside one and returns
// the midpoint of the final bracket.
func refine(inside func(float64) bool, in, out float64) float64 {
	for i := 0; i < refineSteps; i++ {
		mid := (in + out) / 2
		if inside(mid) {
			in = mid
		} else {
			out = mid
		}
	}
	return (in + out) / 2
}

// ScanlineFill emits the runs of the contour followed by one outline pass
// around each of its subpaths. Degenerate contours yield no commands.
func ScanlineFill(ctx context.Context, c Contour, opts ScanlineOptions) ([]Command, error) {
	if Degenerate(c.Points) {
		return nil, nil
	}
	runs, err := ScanlineRuns(ctx, c.Points, opts)
	if err != nil {
		return nil, err
	}
	return append(runCommands(runs), outlines(c)...), nil
}
