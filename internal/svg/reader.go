/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package svg reads SVG documents into a domain.Design. It understands the
// drawing subset used by outline art: path, rect, circle, ellipse, line,
// polyline and polygon, grouped with g and positioned with transform.
// Paint is taken from fill/stroke attributes and style declarations and is
// inherited from enclosing groups.
package svg

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html/charset"

	applog "svgstitch/internal/log"
	"svgstitch/internal/domain"
	"svgstitch/internal/thread"
	"svgstitch/internal/vector"
)

// ErrNoCanvas is returned when neither viewBox nor width/height is given and
// the drawing has no extent either.
var ErrNoCanvas = errors.New("svg: document has no size")

// ParseError locates a failure in the source document.
type ParseError struct {
	Element string
	Line    int
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("svg: <%s> at line %d: %v", e.Element, e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Options tunes reading.
type Options struct {
	Palette *thread.Palette
	// Strict turns unsupported elements and unit-less percentages into errors
	// instead of warnings.
	Strict bool
}

// style is the inherited presentation state.
type style struct {
	fill, stroke string
	xf           vector.Affine2D
	hidden       bool
}

type reader struct {
	opts    Options
	dec     *xml.Decoder
	design  *domain.Design
	stack   []style
	skip    int // depth inside defs, clipPath and friends
	rootSet bool
	counts  map[string]int
	log     *slog.Logger
}

// Read decodes an SVG document.
func Read(r io.Reader, opts Options) (*domain.Design, error) {
	if opts.Palette == nil {
		opts.Palette = thread.Default()
	}
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel
	rd := &reader{
		opts:   opts,
		dec:    dec,
		design: &domain.Design{},
		stack:  []style{{xf: vector.Identity}},
		counts: map[string]int{},
		log:    applog.WithOperation(applog.WithComponent("svg"), "read"),
	}
	if err := rd.run(); err != nil {
		return nil, err
	}
	return rd.finish()
}

// ReadFile opens and decodes path; the design is named after the file.
func ReadFile(path string, opts Options) (*domain.Design, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	d, err := Read(f, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if d.Name == "" {
		d.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	d.Metadata.Source = path
	return d, nil
}

func (rd *reader) run() error {
	for {
		tok, err := rd.dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("svg: %w", err)
		}
		switch se := tok.(type) {
		case xml.StartElement:
			if err := rd.start(se); err != nil {
				line, _ := rd.dec.InputPos()
				return &ParseError{Element: se.Name.Local, Line: line, Err: err}
			}
		case xml.EndElement:
			rd.end()
		}
	}
}

var skipped = map[string]bool{
	"defs": true, "clipPath": true, "mask": true, "symbol": true, "marker": true,
	"pattern": true, "linearGradient": true, "radialGradient": true, "filter": true,
	"style": true, "script": true, "metadata": true,
}

var ignored = map[string]bool{"title": true, "desc": true}

func (rd *reader) start(se xml.StartElement) error {
	name := se.Name.Local
	if rd.skip > 0 || skipped[name] {
		rd.skip++
		return nil
	}
	parent := rd.stack[len(rd.stack)-1]
	st, err := rd.inherit(parent, se.Attr)
	if err != nil {
		return err
	}
	rd.stack = append(rd.stack, st)
	if st.hidden {
		return nil
	}

	switch name {
	case "svg":
		if !rd.rootSet {
			rd.rootSet = true
			return rd.root(se.Attr)
		}
		return nil
	case "g", "a", "switch":
		return nil
	case "path", "rect", "circle", "ellipse", "line", "polyline", "polygon":
		return rd.shape(name, se.Attr, st)
	default:
		if ignored[name] {
			return nil
		}
		if rd.opts.Strict {
			return fmt.Errorf("unsupported element")
		}
		rd.log.Warn("skipping unsupported element", slog.String("element", name))
		return nil
	}
}

func (rd *reader) end() {
	if rd.skip > 0 {
		rd.skip--
		return
	}
	if len(rd.stack) > 1 {
		rd.stack = rd.stack[:len(rd.stack)-1]
	}
}

// root reads the canvas of the outermost svg element. A viewBox wins over
// width/height; its origin is moved to (0,0).
func (rd *reader) root(attrs []xml.Attr) error {
	var w, h float64
	var vb []float64
	for _, a := range attrs {
		var err error
		switch a.Name.Local {
		case "width":
			w, err = rd.length(a.Value)
		case "height":
			h, err = rd.length(a.Value)
		case "viewBox":
			vb, err = parseNumbers(a.Value)
			if err == nil && len(vb) != 4 {
				err = fmt.Errorf("viewBox needs 4 numbers, got %d", len(vb))
			}
		}
		if err != nil {
			return fmt.Errorf("%s: %w", a.Name.Local, err)
		}
	}
	if vb != nil {
		rd.design.Width, rd.design.Height = vb[2], vb[3]
		top := &rd.stack[len(rd.stack)-1]
		top.xf = top.xf.Mul(vector.Translate(-vb[0], -vb[1]))
	} else {
		rd.design.Width, rd.design.Height = w, h
	}
	return nil
}

func (rd *reader) finish() (*domain.Design, error) {
	d := rd.design
	if d.Width > 0 && d.Height > 0 {
		return d, nil
	}
	var e vector.Extent
	for _, s := range d.Shapes {
		if s.Path.Empty() {
			continue
		}
		b := s.Path.Bounds()
		e.Add(b.Min())
		e.Add(b.Max())
	}
	if e.Empty() {
		if len(d.Shapes) == 0 {
			return d, nil
		}
		return nil, ErrNoCanvas
	}
	if d.Width <= 0 {
		d.Width = e.MaxX
	}
	if d.Height <= 0 {
		d.Height = e.MaxY
	}
	return d, nil
}
