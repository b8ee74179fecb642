/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package pattern

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"svgstitch/internal/domain"
	"svgstitch/internal/stitch"
	"svgstitch/internal/thread"
	"svgstitch/internal/vector"
)

type recorder struct {
	events  []string
	threads []thread.Spec
	failAt  int
}

func (r *recorder) add(ev string) error {
	r.events = append(r.events, ev)
	if r.failAt > 0 && len(r.events) == r.failAt {
		return errors.New("disk full")
	}
	return nil
}

func (r *recorder) MoveAbs(x, y float64) error   { return r.add("Move") }
func (r *recorder) StitchAbs(x, y float64) error { return r.add("Stitch") }
func (r *recorder) End() error                   { return r.add("End") }
func (r *recorder) ColorChange(t thread.Spec) error {
	r.threads = append(r.threads, t)
	return r.add("ColorChange")
}

func square(x, y, side float64) vector.Path {
	var p vector.Path
	p.AddRect(x, y, side, side, 0, 0)
	return p
}

func line(x0, y0, x1, y1 float64) vector.Path {
	var p vector.Path
	p.MoveTo(x0, y0)
	p.LineTo(x1, y1)
	return p
}

func fillShape(p vector.Path, token string) domain.Shape {
	return domain.Shape{Path: p, Attributes: domain.Attributes{Fill: domain.NewPaint(token, nil)}}
}

func strokeShape(p vector.Path, token string) domain.Shape {
	return domain.Shape{Path: p, Attributes: domain.Attributes{Stroke: domain.NewPaint(token, nil)}}
}

func testOptions() Options {
	o := DefaultOptions()
	o.Center = false
	o.Scanline = stitch.ScanlineOptions{RowSpacing: 5, ProbeSpacing: 5}
	return o
}

// compact collapses each color block to "Move", "Stitch".
func compact(events []string) []string {
	var out []string
	for _, ev := range events {
		last := ""
		if len(out) > 0 {
			last = out[len(out)-1]
		}
		if (ev == "Move" || ev == "Stitch") && (last == "Stitch" || (last == "Move" && ev == "Move")) {
			continue
		}
		out = append(out, ev)
	}
	return out
}

func TestAssemble_FillThenStrokeOrder(t *testing.T) {
	shapes := []domain.Shape{
		fillShape(square(0, 0, 10), "red"),
		strokeShape(line(0, 20, 30, 20), "blue"),
	}
	p, err := NewAssembler(testOptions()).Assemble(context.Background(), shapes)
	require.NoError(t, err)
	require.True(t, p.Frozen())

	var rec recorder
	require.NoError(t, p.Replay(&rec))
	assert.Equal(t, []string{"ColorChange", "Move", "Stitch", "ColorChange", "Move", "Stitch", "End"}, compact(rec.events))

	require.Len(t, rec.threads, 2)
	assert.Equal(t, "#FF0000", rec.threads[0].Hex)
	assert.Equal(t, "Fill red", rec.threads[0].Description)
	assert.Equal(t, "001F", rec.threads[0].CatalogNumber)
	assert.Equal(t, "#0000FF", rec.threads[1].Hex)
	assert.Equal(t, "Stroke blue", rec.threads[1].Description)
	assert.Equal(t, "002S", rec.threads[1].CatalogNumber)
	assert.Equal(t, "40", rec.threads[1].Weight)

	// every color change is followed by a move
	for i, c := range p.Commands {
		if c.Op == stitch.OpColorChange {
			require.Less(t, i+1, len(p.Commands))
			assert.Equal(t, stitch.OpMove, p.Commands[i+1].Op)
		}
	}
	assert.Equal(t, stitch.Count(p.Commands), p.Stitches())
}

func TestAssemble_FillBeforeStrokeWithinShape(t *testing.T) {
	s := fillShape(square(0, 0, 10), "gold")
	s.Attributes.Stroke = domain.NewPaint("black", nil)
	p, err := NewAssembler(testOptions()).Assemble(context.Background(), []domain.Shape{s})
	require.NoError(t, err)
	require.Len(t, p.Threads, 2)
	assert.Equal(t, thread.Fill, p.Threads[0].Kind())
	assert.Equal(t, thread.Stroke, p.Threads[1].Kind())

	sum := p.Summary()
	assert.Equal(t, 1, sum.FillColors)
	assert.Equal(t, 1, sum.StrokeColors)
	assert.Equal(t, p.Stitches(), sum.Stitches)
	assert.InDelta(t, 10, sum.Width, 1e-9)
}

func TestAssemble_ZeroLengthSkipped(t *testing.T) {
	p, err := NewAssembler(testOptions()).Assemble(context.Background(), []domain.Shape{
		strokeShape(line(5, 5, 5, 5), "red"),
	})
	require.NoError(t, err)
	assert.Equal(t, []stitch.Command{{Op: stitch.OpEnd}}, p.Commands)
	assert.Zero(t, p.Stitches())
	assert.Empty(t, p.Threads)
	minX, minY, maxX, maxY := p.Bounds()
	assert.Zero(t, minX+minY+maxX+maxY)
}

func TestAssemble_UnpaintedAndNoneStrategy(t *testing.T) {
	o := testOptions()
	o.Strategy = None
	p, err := NewAssembler(o).Assemble(context.Background(), []domain.Shape{
		{Path: square(0, 0, 10)},
		fillShape(square(0, 0, 10), "red"),
	})
	require.NoError(t, err)
	assert.Len(t, p.Commands, 1)
}

func TestAssemble_EmptyInput(t *testing.T) {
	_, err := NewAssembler(testOptions()).Assemble(context.Background(), nil)
	var empty *EmptyInputError
	require.True(t, errors.As(err, &empty))

	_, err = NewAssembler(testOptions()).AssembleDesign(context.Background(), &domain.Design{Name: "blank"})
	require.True(t, errors.As(err, &empty))
	assert.Contains(t, err.Error(), "blank")
}

func TestAssemble_CenterAndScale(t *testing.T) {
	o := DefaultOptions()
	o.Scale = 2
	o.StepSize = 10
	d := &domain.Design{Name: "c", Width: 20, Height: 20, Shapes: []domain.Shape{
		strokeShape(line(0, 0, 20, 0), "red"),
	}}
	p, err := NewAssembler(o).AssembleDesign(context.Background(), d)
	require.NoError(t, err)
	assert.Equal(t, "c", p.Name)
	require.Len(t, p.Commands, 5)
	assert.Equal(t, vector.Pt{X: -20, Y: -20}, p.Commands[1].Pt())
	assert.Equal(t, vector.Pt{X: 0, Y: -20}, p.Commands[2].Pt())
	assert.Equal(t, vector.Pt{X: 20, Y: -20}, p.Commands[3].Pt())
	minX, minY, maxX, maxY := p.Bounds()
	assert.Equal(t, [4]float64{-20, -20, 20, -20}, [4]float64{minX, minY, maxX, maxY})
}

func TestAssemble_DeterministicAcrossWorkers(t *testing.T) {
	var shapes []domain.Shape
	for i := 0; i < 12; i++ {
		shapes = append(shapes, fillShape(square(float64(i*15), 0, 10), fmt.Sprintf("#%02X0000", i*20)))
	}
	o := testOptions()
	o.Workers = 1
	serial, err := NewAssembler(o).Assemble(context.Background(), shapes)
	require.NoError(t, err)
	o.Workers = 8
	parallel, err := NewAssembler(o).Assemble(context.Background(), shapes)
	require.NoError(t, err)
	assert.Equal(t, serial.Commands, parallel.Commands)
	assert.Equal(t, serial.Threads, parallel.Threads)
}

func TestAssemble_Strategies(t *testing.T) {
	for _, s := range []FillStrategy{Scanline, ConcentricOffset, RasterScan} {
		t.Run(s.String(), func(t *testing.T) {
			o := testOptions()
			o.Strategy = s
			o.Concentric = stitch.ConcentricOptions{Layers: 3, Spacing: 2}
			o.Raster = stitch.RasterOptions{RowSpacing: 5}
			p, err := NewAssembler(o).Assemble(context.Background(), []domain.Shape{fillShape(square(0, 0, 20), "green")})
			require.NoError(t, err)
			require.Len(t, p.Threads, 1)
			assert.Greater(t, p.Stitches(), 0)
			assert.Equal(t, stitch.OpMove, p.Commands[1].Op)
		})
	}
}

func TestAssemble_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewAssembler(testOptions()).Assemble(ctx, []domain.Shape{fillShape(square(0, 0, 10), "red")})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPatternFrozenAndReplayError(t *testing.T) {
	p := &Pattern{}
	require.NoError(t, p.colorChange(thread.NewSpec(thread.Stroke, "red", thread.RGB{R: 255}, 1)))
	require.NoError(t, p.move(vector.Pt{}))
	require.NoError(t, p.stitch(vector.Pt{X: 1}))
	require.NoError(t, p.end())
	assert.ErrorIs(t, p.stitch(vector.Pt{X: 2}), ErrFrozen)
	assert.ErrorIs(t, p.end(), ErrFrozen)

	rec := &recorder{failAt: 3}
	err := p.Replay(rec)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Len(t, rec.events, 3)
}

func TestParseFillStrategy(t *testing.T) {
	cases := map[string]FillStrategy{
		"scanline": Scanline, "": Scanline, "Concentric": ConcentricOffset,
		"raster-scan": RasterScan, "none": None,
	}
	for in, want := range cases {
		got, err := ParseFillStrategy(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseFillStrategy("zigzag")
	assert.Error(t, err)

	var s FillStrategy
	require.NoError(t, s.UnmarshalText([]byte("raster")))
	assert.Equal(t, RasterScan, s)
	b, _ := s.MarshalText()
	assert.Equal(t, "raster", string(b))
}

func TestBuild(t *testing.T) {
	red := thread.NewSpec(thread.Fill, "red", thread.RGB{R: 255}, 1)
	p, err := Build("b", []stitch.Command{
		{Op: stitch.OpColorChange},
		stitch.Move(vector.Pt{X: 1, Y: 1}),
		stitch.Stitch(vector.Pt{X: 4, Y: 5}),
	}, []thread.Spec{red})
	require.NoError(t, err)
	assert.True(t, p.Frozen())
	assert.Equal(t, 1, p.Stitches())
	assert.Equal(t, stitch.OpEnd, p.Commands[len(p.Commands)-1].Op)

	_, err = Build("b", []stitch.Command{stitch.Stitch(vector.Pt{})}, nil)
	assert.Error(t, err)
	_, err = Build("b", []stitch.Command{{Op: stitch.OpColorChange}}, nil)
	assert.Error(t, err)
	_, err = Build("b", nil, []thread.Spec{red})
	assert.Error(t, err)
}

func TestAssemble_DegenerateFillYieldsNothing(t *testing.T) {
	for _, s := range []FillStrategy{Scanline, ConcentricOffset, RasterScan} {
		t.Run(s.String(), func(t *testing.T) {
			o := testOptions()
			o.Strategy = s
			p, err := NewAssembler(o).Assemble(context.Background(), []domain.Shape{fillShape(line(0, 0, 10, 0), "red")})
			require.NoError(t, err)
			assert.Empty(t, p.Threads)
			assert.Zero(t, p.Stitches())
		})
	}
}

func TestAssemble_DonutOutlinesDoNotBridge(t *testing.T) {
	donut := square(0, 0, 100)
	donut.AddRect(40, 40, 20, 20, 0, 0)
	for _, s := range []FillStrategy{Scanline, ConcentricOffset, RasterScan} {
		t.Run(s.String(), func(t *testing.T) {
			o := testOptions()
			o.Strategy = s
			o.FillStepSize = 5
			o.Concentric = stitch.ConcentricOptions{Layers: 3, Spacing: 3}
			o.Raster = stitch.RasterOptions{RowSpacing: 5}
			p, err := NewAssembler(o).Assemble(context.Background(), []domain.Shape{fillShape(donut, "navy")})
			require.NoError(t, err)
			require.Len(t, p.Threads, 1)
			assert.Contains(t, p.Commands, stitch.Move(vector.Pt{X: 40, Y: 40}))
			for i := 1; i < len(p.Commands); i++ {
				prev, cur := p.Commands[i-1], p.Commands[i]
				if prev.Op != stitch.OpStitch || cur.Op != stitch.OpStitch {
					continue
				}
				assert.LessOrEqual(t, prev.Pt().Dist(cur.Pt()), 5+1e-6,
					"outline stitch %v -> %v", prev.Pt(), cur.Pt())
			}
		})
	}
}
