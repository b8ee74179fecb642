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
	"fmt"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"svgstitch/internal/domain"
	applog "svgstitch/internal/log"
	"svgstitch/internal/stitch"
	"svgstitch/internal/thread"
	"svgstitch/internal/vector"
)

// Assembler converts shapes into a Pattern. It holds no state between calls
// and may be reused.
type Assembler struct {
	opts Options
	log  *slog.Logger
}

func NewAssembler(opts Options) *Assembler {
	return &Assembler{
		opts: opts.withDefaults(),
		log:  applog.WithComponent("pattern"),
	}
}

func (a *Assembler) Options() Options { return a.opts }

// segment is one color block: the thread and the commands sewn with it.
type segment struct {
	thread thread.Spec
	cmds   []stitch.Command
}

// AssembleDesign uses the design canvas for centering and names the pattern
// after the design.
func (a *Assembler) AssembleDesign(ctx context.Context, d *domain.Design) (*Pattern, error) {
	if d == nil || len(d.Shapes) == 0 {
		src := ""
		if d != nil {
			src = d.Name
		}
		return nil, &EmptyInputError{Source: src}
	}
	b := *a
	if d.Width > 0 && d.Height > 0 {
		b.opts.Canvas = d.Canvas()
	}
	p, err := b.Assemble(ctx, d.Shapes)
	if err != nil {
		return nil, err
	}
	p.Name = d.Name
	return p, nil
}

// Assemble sews shapes in input order. For each shape the fill comes first,
// then the stroke, each preceded by a color change. Shapes without paint or
// with zero length contribute nothing.
func (a *Assembler) Assemble(ctx context.Context, shapes []domain.Shape) (*Pattern, error) {
	if len(shapes) == 0 {
		return nil, &EmptyInputError{}
	}
	log := applog.WithOperation(a.log, "assemble")

	var content vector.Extent
	for _, s := range shapes {
		if !s.Path.Empty() {
			b := s.Path.Bounds()
			content.Add(b.Min())
			content.Add(b.Max())
		}
	}
	xf := a.opts.outputTransform(content.Rect())

	results := make([][]segment, len(shapes))
	g, gctx := errgroup.WithContext(ctx)
	workers := a.opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	g.SetLimit(workers)
	for i := range shapes {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			segs, err := a.shape(gctx, i, shapes[i], log)
			if err != nil {
				id := shapes[i].ID
				if id == "" {
					id = fmt.Sprintf("#%d", i+1)
				}
				return fmt.Errorf("shape %s: %w", id, err)
			}
			results[i] = segs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	p := &Pattern{}
	for _, segs := range results {
		for _, sg := range segs {
			if err := p.colorChange(sg.thread); err != nil {
				return nil, err
			}
			for _, c := range sg.cmds {
				pt := xf.Apply(c.Pt())
				var err error
				if c.Op == stitch.OpMove {
					err = p.move(pt)
				} else {
					err = p.stitch(pt)
				}
				if err != nil {
					return nil, err
				}
			}
		}
	}
	if err := p.end(); err != nil {
		return nil, err
	}
	log.InfoContext(ctx, "pattern assembled",
		slog.Int("shapes", len(shapes)),
		slog.Int("colors", len(p.Threads)),
		slog.Int("stitches", p.stitches),
		slog.String("strategy", a.opts.Strategy.String()))
	return p, nil
}

// shape computes the color blocks of the index-th shape in canvas coordinates.
func (a *Assembler) shape(ctx context.Context, index int, s domain.Shape, log *slog.Logger) ([]segment, error) {
	attrs := s.Attributes
	if !attrs.Painted() {
		log.DebugContext(ctx, "skipping unpainted shape", slog.String("id", s.ID))
		return nil, nil
	}
	subs := s.Path.Subpaths()
	measured := make([]*vector.Measured, 0, len(subs))
	total := 0.0
	for _, sp := range subs {
		m := sp.Measure(a.opts.Tolerance)
		measured = append(measured, m)
		total += m.Length()
	}
	if !(total > 0) {
		log.DebugContext(ctx, "skipping zero-length shape", slog.String("id", s.ID))
		return nil, nil
	}

	var out []segment
	if attrs.Fill.Present() && a.opts.Strategy != None {
		cmds, err := a.fill(ctx, measured)
		if err != nil {
			return nil, err
		}
		if len(cmds) > 0 {
			out = append(out, segment{
				thread: thread.NewSpec(thread.Fill, attrs.Fill.Token, attrs.Fill.Color, index+1),
				cmds:   cmds,
			})
		}
	}
	if attrs.Stroke.Present() {
		var cmds []stitch.Command
		for _, m := range measured {
			c := stitch.Sample(m, a.opts.StepSize, a.opts.MinSamples)
			c.Closed = m.Closed()
			cmds = append(cmds, stitch.Stroke(c)...)
		}
		if len(cmds) > 0 {
			out = append(out, segment{
				thread: thread.NewSpec(thread.Stroke, attrs.Stroke.Token, attrs.Stroke.Color, index+1),
				cmds:   cmds,
			})
		}
	}
	return out, nil
}

// fill samples every subpath with the fill step and joins them into one
// even-odd contour, so inner subpaths become holes. The engines outline each
// subpath separately.
func (a *Assembler) fill(ctx context.Context, measured []*vector.Measured) ([]stitch.Command, error) {
	parts := make([]stitch.Contour, 0, len(measured))
	for _, m := range measured {
		parts = append(parts, stitch.Sample(m, a.opts.FillStepSize, a.opts.MinSamples))
	}
	c := stitch.Join(parts...)
	switch a.opts.Strategy {
	case ConcentricOffset:
		return stitch.ConcentricFill(c, a.opts.Concentric), nil
	case RasterScan:
		return stitch.RasterFill(ctx, c, a.opts.Raster)
	default:
		return stitch.ScanlineFill(ctx, c, a.opts.Scanline)
	}
}
