/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package pattern turns a list of painted shapes into a stitch timeline:
// moves, stitches and color changes in the order a machine would sew them,
// with one thread entry per color change.
package pattern

import (
	"errors"
	"fmt"

	"svgstitch/internal/stitch"
	"svgstitch/internal/thread"
	"svgstitch/internal/vector"
)

// ErrFrozen is returned when a finished pattern is modified.
var ErrFrozen = errors.New("pattern: already ended")

// EmptyInputError is returned by Assemble when there is nothing to convert.
type EmptyInputError struct {
	Source string
}

func (e *EmptyInputError) Error() string {
	if e.Source == "" {
		return "pattern: no shapes to convert"
	}
	return fmt.Sprintf("pattern: %s contains no shapes", e.Source)
}

// Sink receives a pattern in sewing order. Coordinates are absolute.
type Sink interface {
	MoveAbs(x, y float64) error
	StitchAbs(x, y float64) error
	ColorChange(t thread.Spec) error
	End() error
}

// Pattern is an ordered stitch timeline. The i-th OpColorChange command
// belongs to Threads[i].
type Pattern struct {
	Name     string
	Commands []stitch.Command
	Threads  []thread.Spec

	extent   vector.Extent
	stitches int
	frozen   bool
}

func (p *Pattern) move(pt vector.Pt) error   { return p.point(stitch.OpMove, pt) }
func (p *Pattern) stitch(pt vector.Pt) error { return p.point(stitch.OpStitch, pt) }

func (p *Pattern) point(op stitch.Op, pt vector.Pt) error {
	if p.frozen {
		return ErrFrozen
	}
	p.Commands = append(p.Commands, stitch.Command{Op: op, X: pt.X, Y: pt.Y})
	p.extent.Add(pt)
	if op == stitch.OpStitch {
		p.stitches++
	}
	return nil
}

func (p *Pattern) colorChange(t thread.Spec) error {
	if p.frozen {
		return ErrFrozen
	}
	p.Commands = append(p.Commands, stitch.Command{Op: stitch.OpColorChange})
	p.Threads = append(p.Threads, t)
	return nil
}

func (p *Pattern) end() error {
	if p.frozen {
		return ErrFrozen
	}
	p.Commands = append(p.Commands, stitch.Command{Op: stitch.OpEnd})
	p.frozen = true
	return nil
}

// Frozen reports whether the terminal End has been appended.
func (p *Pattern) Frozen() bool { return p.frozen }

// Stitches is the running total of Stitch commands.
func (p *Pattern) Stitches() int { return p.stitches }

// Extent covers every emitted move and stitch coordinate.
func (p *Pattern) Extent() vector.Extent { return p.extent }

// Bounds returns the extent as min/max pairs; all zero for an empty pattern.
func (p *Pattern) Bounds() (minX, minY, maxX, maxY float64) {
	if p.extent.Empty() {
		return 0, 0, 0, 0
	}
	return p.extent.MinX, p.extent.MinY, p.extent.MaxX, p.extent.MaxY
}

// Replay drives sink with every command in order. It stops at the first
// sink error.
func (p *Pattern) Replay(sink Sink) error {
	ti := 0
	for i, c := range p.Commands {
		var err error
		switch c.Op {
		case stitch.OpMove:
			err = sink.MoveAbs(c.X, c.Y)
		case stitch.OpStitch:
			err = sink.StitchAbs(c.X, c.Y)
		case stitch.OpColorChange:
			if ti >= len(p.Threads) {
				return fmt.Errorf("pattern: color change %d has no thread", ti)
			}
			err = sink.ColorChange(p.Threads[ti])
			ti++
		case stitch.OpEnd:
			err = sink.End()
		}
		if err != nil {
			return fmt.Errorf("replay command %d (%s): %w", i, c.Op, err)
		}
	}
	return nil
}

// Summary is the short report printed after a conversion.
type Summary struct {
	Name         string  `json:"name"`
	Stitches     int     `json:"stitches"`
	Moves        int     `json:"moves"`
	StrokeColors int     `json:"stroke_colors"`
	FillColors   int     `json:"fill_colors"`
	Width        float64 `json:"width"`
	Height       float64 `json:"height"`
}

func (p *Pattern) Summary() Summary {
	s := Summary{Name: p.Name, Stitches: p.stitches}
	for _, c := range p.Commands {
		if c.Op == stitch.OpMove {
			s.Moves++
		}
	}
	for _, t := range p.Threads {
		if t.Kind() == thread.Fill {
			s.FillColors++
		} else {
			s.StrokeColors++
		}
	}
	if !p.extent.Empty() {
		r := p.extent.Rect()
		s.Width, s.Height = r.W, r.H
	}
	return s
}

// Build checks a raw command list and wraps it in a finished pattern. An End
// is appended when missing. Each color change consumes the next thread.
func Build(name string, cmds []stitch.Command, threads []thread.Spec) (*Pattern, error) {
	p := &Pattern{Name: name}
	ti := 0
	needMove := true
	for i, c := range cmds {
		var err error
		switch c.Op {
		case stitch.OpMove:
			err = p.move(c.Pt())
			needMove = false
		case stitch.OpStitch:
			if needMove {
				return nil, fmt.Errorf("command %d: stitch without a preceding move", i)
			}
			err = p.stitch(c.Pt())
		case stitch.OpColorChange:
			if ti >= len(threads) {
				return nil, fmt.Errorf("command %d: color change without thread", i)
			}
			err = p.colorChange(threads[ti])
			ti++
			needMove = true
		case stitch.OpEnd:
			if i != len(cmds)-1 {
				return nil, fmt.Errorf("command %d: end before the last command", i)
			}
			err = p.end()
		default:
			return nil, fmt.Errorf("command %d: unknown op %d", i, c.Op)
		}
		if err != nil {
			return nil, err
		}
	}
	if ti != len(threads) {
		return nil, fmt.Errorf("%d threads for %d color changes", len(threads), ti)
	}
	if !p.frozen {
		_ = p.end()
	}
	return p, nil
}
