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
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"svgstitch/internal/vector"
)

func squarePath(x, y, size float64) vector.Path {
	var p vector.Path
	p.MoveTo(x, y)
	p.LineTo(x+size, y)
	p.LineTo(x+size, y+size)
	p.LineTo(x, y+size)
	p.Close()
	return p
}

func sampledSquare(t *testing.T, size, step float64) Contour {
	t.Helper()
	c := Sample(squarePath(0, 0, size).Measure(0), step, 2)
	require.NotEmpty(t, c.Points)
	c.Closed = true
	return c
}

func reversed(pts []vector.Pt) []vector.Pt {
	out := make([]vector.Pt, len(pts))
	for i, p := range pts {
		out[len(pts)-1-i] = p
	}
	return out
}

func TestSampleCount(t *testing.T) {
	tests := []struct {
		name   string
		length float64
		step   float64
		min    int
		want   int
	}{
		{"rounds down", 10.4, 1, 2, 10},
		{"rounds up", 10.5, 1, 2, 11},
		{"minimum wins", 1, 3, 2, 2},
		{"non-positive step uses minimum", 50, 0, 4, 4},
		{"minimum raised to one", 0.1, 1, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SampleCount(tt.length, tt.step, tt.min))
		})
	}
}

func TestSample_ReturnsNPlusOnePoints(t *testing.T) {
	m := squarePath(0, 0, 10).Measure(0)
	c := Sample(m, 3, 2)
	n := SampleCount(40, 3, 2)
	require.Len(t, c.Points, n+1)
	assert.Equal(t, vector.Pt{}, c.Points[0])
	assert.Equal(t, vector.Pt{}, c.Points[n])

	again := Sample(m, 3, 2)
	assert.Equal(t, c.Points, again.Points, "sampling must be deterministic")
}

func TestSample_ShortCurveHonoursMinimum(t *testing.T) {
	var p vector.Path
	p.MoveTo(0, 0)
	p.LineTo(1, 0)
	c := Sample(p.Measure(0), 3, 2)
	require.Len(t, c.Points, 3)
	assert.InDelta(t, 0.5, c.Points[1].X, 1e-12)
}

func TestSample_ZeroLengthIsEmpty(t *testing.T) {
	var p vector.Path
	p.MoveTo(4, 4)
	p.LineTo(4, 4)
	assert.Empty(t, Sample(p.Measure(0), 1, 2).Points)
	assert.Empty(t, Sample(vector.Path{}.Measure(0), 1, 2).Points)
}

func TestInside_SquareAndReversal(t *testing.T) {
	poly := []vector.Pt{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
	rev := reversed(poly)
	probes := []struct {
		p    vector.Pt
		want bool
	}{
		{vector.Pt{5, 5}, true},
		{vector.Pt{0.1, 9.9}, true},
		{vector.Pt{-1, 5}, false},
		{vector.Pt{11, 5}, false},
		{vector.Pt{5, 10.5}, false},
	}
	for _, pr := range probes {
		assert.Equal(t, pr.want, Inside(pr.p, poly), "probe %+v", pr.p)
		assert.Equal(t, Inside(pr.p, poly), Inside(pr.p, rev), "reversal changed %+v", pr.p)
	}
	assert.Equal(t, 1, Winding(vector.Pt{5, 5}, poly))
	assert.Equal(t, -1, Winding(vector.Pt{5, 5}, rev))
}

func TestInside_EvenOddHole(t *testing.T) {
	// outer square then inner square in one contour, as a sampled path with
	// two subpaths produces
	poly := []vector.Pt{
		{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0},
		{3, 3}, {7, 3}, {7, 7}, {3, 7}, {3, 3},
	}
	assert.False(t, Inside(vector.Pt{5, 5}, poly), "hole")
	assert.True(t, Inside(vector.Pt{1, 5}, poly), "ring")
	assert.True(t, Inside(vector.Pt{8.5, 5}, poly), "ring")
	assert.False(t, Inside(vector.Pt{12, 5}, poly))
}

func TestInside_Degenerate(t *testing.T) {
	assert.False(t, Inside(vector.Pt{0, 0}, []vector.Pt{{-1, -1}, {1, 1}}))
	assert.True(t, Degenerate([]vector.Pt{{0, 0}, {5, 0}, {10, 0}}))
	assert.True(t, Degenerate(nil))
	assert.False(t, Degenerate([]vector.Pt{{0, 0}, {5, 0}, {5, 5}}))
}

func TestStroke_MoveThenStitches(t *testing.T) {
	c := Contour{Points: []vector.Pt{{0, 0}, {1, 0}, {2, 1}, {3, 3}}}
	cmds := Stroke(c)
	require.Len(t, cmds, 4)
	assert.Equal(t, OpMove, cmds[0].Op)
	assert.Equal(t, 3, Count(cmds))

	c.Closed = true
	closed := Stroke(c)
	require.Len(t, closed, 5)
	assert.Equal(t, vector.Pt{}, closed[4].Pt())

	assert.Nil(t, Stroke(Contour{}))
}

func TestStroke_ClosedAlreadyAtStart(t *testing.T) {
	c := sampledSquare(t, 10, 2)
	cmds := Stroke(c)
	assert.Len(t, cmds, len(c.Points), "no extra closing stitch when the samples return to the start")
}

func TestScanlineRuns_SquareSingleRow(t *testing.T) {
	c := sampledSquare(t, 10, 1)
	runs, err := ScanlineRuns(context.Background(), c.Points, ScanlineOptions{RowSpacing: 5, ProbeSpacing: 5})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 5.0, runs[0].Y)
	assert.InDelta(t, 0, runs[0].X0, 0.01)
	assert.InDelta(t, 10, runs[0].X1, 0.01)
}

func TestScanlineRuns_ConvexOneRunPerRow(t *testing.T) {
	// regular octagon
	var poly []vector.Pt
	for i := 0; i < 8; i++ {
		a := float64(i) * math.Pi / 4
		poly = append(poly, vector.Pt{X: 50 + 40*math.Cos(a), Y: 50 + 40*math.Sin(a)})
	}
	runs, err := ScanlineRuns(context.Background(), poly, ScanlineOptions{RowSpacing: 3, ProbeSpacing: 1, Workers: 4})
	require.NoError(t, err)
	require.NotEmpty(t, runs)
	seen := map[float64]int{}
	for _, r := range runs {
		seen[r.Y]++
		assert.Less(t, r.X0, r.X1)
		assert.Greater(t, r.Width(), DefaultMinRunWidth)
	}
	for y, n := range seen {
		assert.Equal(t, 1, n, "row %v", y)
	}
	for i := 1; i < len(runs); i++ {
		assert.Less(t, runs[i-1].Y, runs[i].Y, "rows must stay ordered")
	}
}

func TestScanlineRuns_ReversalInvariant(t *testing.T) {
	poly := []vector.Pt{{0, 0}, {30, 0}, {30, 30}, {15, 10}, {0, 30}}
	opts := ScanlineOptions{RowSpacing: 2, ProbeSpacing: 1}
	a, err := ScanlineRuns(context.Background(), poly, opts)
	require.NoError(t, err)
	b, err := ScanlineRuns(context.Background(), reversed(poly), opts)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	// the notch splits upper rows in two
	var split bool
	for i := 1; i < len(a); i++ {
		if a[i].Y == a[i-1].Y {
			split = true
		}
	}
	assert.True(t, split, "expected a row with two runs: %+v", a)
}

func TestScanlineRuns_MinWidthFilter(t *testing.T) {
	thin := []vector.Pt{{0, 0}, {1.5, 0}, {1.5, 20}, {0, 20}}
	runs, err := ScanlineRuns(context.Background(), thin, ScanlineOptions{RowSpacing: 2, ProbeSpacing: 0.5})
	require.NoError(t, err)
	assert.Empty(t, runs)

	runs, err = ScanlineRuns(context.Background(), thin, ScanlineOptions{RowSpacing: 2, ProbeSpacing: 0.5, MinRunWidth: 1})
	require.NoError(t, err)
	assert.NotEmpty(t, runs)
}

func TestScanlineRuns_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := sampledSquare(t, 100, 1)
	_, err := ScanlineRuns(ctx, c.Points, ScanlineOptions{RowSpacing: 1, ProbeSpacing: 1})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScanlineFill_RunsThenOutline(t *testing.T) {
	c := sampledSquare(t, 10, 1)
	cmds, err := ScanlineFill(context.Background(), c, ScanlineOptions{RowSpacing: 5, ProbeSpacing: 5})
	require.NoError(t, err)
	require.Len(t, cmds, 2+len(c.Points))
	assert.Equal(t, OpMove, cmds[0].Op)
	assert.Equal(t, OpStitch, cmds[1].Op)
	assert.Equal(t, Move(c.Points[0]), cmds[2])

	none, err := ScanlineFill(context.Background(), Contour{Points: []vector.Pt{{0, 0}, {1, 1}}}, ScanlineOptions{})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestConcentricLayers_MonotonicNonExpanding(t *testing.T) {
	c := sampledSquare(t, 40, 2)
	layers := ConcentricLayers(c.Points, ConcentricOptions{})
	require.NotEmpty(t, layers)
	require.LessOrEqual(t, len(layers), DefaultLayers)
	center := Centroid(c.Points)

	for k := 1; k < len(layers); k++ {
		prev := map[int]float64{}
		for i, src := range layers[k-1].Source {
			prev[src] = layers[k-1].Points[i].Dist(center)
		}
		assert.LessOrEqual(t, len(layers[k].Points), len(layers[k-1].Points))
		for i, src := range layers[k].Source {
			d, ok := prev[src]
			require.True(t, ok, "point %d reappeared after being dropped", src)
			assert.LessOrEqual(t, layers[k].Points[i].Dist(center), d+1e-9)
		}
	}
	assert.Equal(t, c.Points, layers[0].Points, "layer zero is the outline itself")
}

func TestConcentricLayers_DropsSmallLayers(t *testing.T) {
	c := sampledSquare(t, 4, 1)
	layers := ConcentricLayers(c.Points, ConcentricOptions{Layers: 8, Spacing: 3})
	// half-diagonal is ~2.83, so only the unshrunk ring survives
	require.Len(t, layers, 1)
	assert.Nil(t, ConcentricLayers(nil, ConcentricOptions{}))
}

func TestConcentricFill_ClosedRings(t *testing.T) {
	c := sampledSquare(t, 40, 2)
	cmds := ConcentricFill(c, ConcentricOptions{Layers: 3, Spacing: 3})
	moves := 0
	for _, cmd := range cmds {
		if cmd.Op == OpMove {
			moves++
		}
	}
	assert.Equal(t, 3, moves)
	assert.Equal(t, OpMove, cmds[0].Op)
}

func TestRasterRuns_SquareMatchesGeometry(t *testing.T) {
	c := sampledSquare(t, 10, 1)
	runs, err := RasterRuns(context.Background(), [][]vector.Pt{c.Points}, RasterOptions{RowSpacing: 2.5, PixelsPerUnit: 4})
	require.NoError(t, err)
	require.Len(t, runs, 3)
	for _, r := range runs {
		assert.InDelta(t, 0, r.X0, 0.5)
		assert.InDelta(t, 10, r.X1, 0.5)
	}
}

func TestRasterize_BackgroundContrastsFill(t *testing.T) {
	c := sampledSquare(t, 10, 1)
	r, err := Rasterize([][]vector.Pt{c.Points}, RasterOptions{})
	require.NoError(t, err)
	assert.Equal(t, uint8(0xff), r.Background.R, "black fill draws on white")
	center := r.ToRaster.Apply(vector.Pt{X: 5, Y: 5})
	assert.True(t, r.Filled(int(center.X), int(center.Y)))
	assert.False(t, r.Filled(0, 0))

	_, err = Rasterize(nil, RasterOptions{})
	assert.ErrorIs(t, err, ErrEmptyRaster)
}

func TestRasterFill_DegenerateYieldsNothing(t *testing.T) {
	cmds, err := RasterFill(context.Background(), Contour{Points: []vector.Pt{{0, 0}, {4, 0}, {8, 0}}}, RasterOptions{})
	require.NoError(t, err)
	assert.Empty(t, cmds)
}

func TestConcentricFill_DegenerateYieldsNothing(t *testing.T) {
	flat := Contour{Points: []vector.Pt{{0, 0}, {10, 0}, {0, 0}, {10, 0}}, Closed: true}
	assert.Empty(t, ConcentricFill(flat, ConcentricOptions{}))
	assert.Nil(t, ConcentricLayers(flat.Points, ConcentricOptions{}))
}

func donut(t *testing.T) Contour {
	t.Helper()
	outer := Sample(squarePath(0, 0, 100).Measure(0), 5, 2)
	hole := Sample(squarePath(40, 40, 20).Measure(0), 5, 2)
	c := Join(outer, hole)
	require.Equal(t, []int{0, len(outer.Points)}, c.Starts)
	return c
}

// assertNoBridge fails when an outline stitch leaves one subpath for a point
// on another. Run stitches follow a move and are not checked.
func assertNoBridge(t *testing.T, c Contour, cmds []Command) {
	t.Helper()
	owner := map[vector.Pt]int{}
	for i, sp := range c.Subpaths() {
		for _, p := range sp {
			owner[p] = i
		}
	}
	for k := 1; k < len(cmds); k++ {
		if cmds[k].Op != OpStitch || cmds[k-1].Op != OpStitch {
			continue
		}
		a, okA := owner[cmds[k-1].Pt()]
		b, okB := owner[cmds[k].Pt()]
		if okA && okB {
			assert.Equal(t, a, b, "stitch %v -> %v joins two subpaths", cmds[k-1].Pt(), cmds[k].Pt())
		}
	}
}

func TestJoin_Subpaths(t *testing.T) {
	c := donut(t)
	subs := c.Subpaths()
	require.Len(t, subs, 2)
	assert.Equal(t, vector.Pt{X: 0, Y: 0}, subs[0][0])
	assert.Equal(t, vector.Pt{X: 40, Y: 40}, subs[1][0])
	assert.Len(t, Contour{Points: []vector.Pt{{0, 0}, {1, 0}, {1, 1}}}.Subpaths(), 1)
	assert.Nil(t, Join(Contour{}).Subpaths())
}

func TestFill_DonutOutlinesEachSubpath(t *testing.T) {
	c := donut(t)
	scan, err := ScanlineFill(context.Background(), c, ScanlineOptions{RowSpacing: 10, ProbeSpacing: 2})
	require.NoError(t, err)
	raster, err := RasterFill(context.Background(), c, RasterOptions{RowSpacing: 10})
	require.NoError(t, err)
	rings := ConcentricFill(c, ConcentricOptions{Layers: 3, Spacing: 3})

	for name, cmds := range map[string][]Command{"scanline": scan, "raster": raster, "concentric": rings} {
		t.Run(name, func(t *testing.T) {
			require.NotEmpty(t, cmds)
			assertNoBridge(t, c, cmds)
			assert.Contains(t, cmds, Move(vector.Pt{X: 40, Y: 40}), "hole outline starts with its own move")
		})
	}
}

func TestConcentricFill_HoleKeepsBoundaryOnly(t *testing.T) {
	c := donut(t)
	cmds := ConcentricFill(c, ConcentricOptions{Layers: 3, Spacing: 3})
	hole := c.Subpaths()[1]
	var holeMoves int
	for _, cmd := range cmds {
		if cmd.Op == OpMove && cmd.Pt() == hole[0] {
			holeMoves++
		}
	}
	assert.Equal(t, 1, holeMoves)
	// three outer rings plus the hole boundary
	moves := 0
	for _, cmd := range cmds {
		if cmd.Op == OpMove {
			moves++
		}
	}
	assert.Equal(t, 4, moves)
}
