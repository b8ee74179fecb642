/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package svg

import (
	"encoding/xml"
	"fmt"
	"math"
	"strconv"
	"strings"

	"svgstitch/internal/vector"
)

// inherit derives the style of an element from its parent and attributes.
// Declarations in style="" override presentation attributes.
func (rd *reader) inherit(parent style, attrs []xml.Attr) (style, error) {
	st := parent
	decl := map[string]string{}
	for _, a := range attrs {
		switch a.Name.Local {
		case "fill", "stroke", "display", "visibility":
			decl[a.Name.Local] = a.Value
		case "transform":
			m, err := parseTransform(a.Value)
			if err != nil {
				return st, fmt.Errorf("transform: %w", err)
			}
			st.xf = st.xf.Mul(m)
		}
	}
	for _, a := range attrs {
		if a.Name.Local != "style" {
			continue
		}
		for _, part := range strings.Split(a.Value, ";") {
			k, v, ok := strings.Cut(part, ":")
			if !ok {
				continue
			}
			decl[strings.TrimSpace(k)] = strings.TrimSpace(v)
		}
	}
	if v, ok := decl["fill"]; ok && strings.TrimSpace(v) != "inherit" {
		st.fill = strings.TrimSpace(v)
	}
	if v, ok := decl["stroke"]; ok && strings.TrimSpace(v) != "inherit" {
		st.stroke = strings.TrimSpace(v)
	}
	if strings.TrimSpace(decl["display"]) == "none" || strings.TrimSpace(decl["visibility"]) == "hidden" {
		st.hidden = true
	}
	return st, nil
}

// parseTransform reads a transform list such as
// "translate(10,20) rotate(45 5 5) scale(2)". Functions apply left to right
// as nested coordinate systems.
func parseTransform(v string) (vector.Affine2D, error) {
	m := vector.Identity
	rest := strings.TrimSpace(v)
	for rest != "" {
		open := strings.IndexByte(rest, '(')
		closeIdx := strings.IndexByte(rest, ')')
		if open < 0 || closeIdx < open {
			return m, fmt.Errorf("malformed transform %q", v)
		}
		name := strings.ToLower(strings.Trim(strings.TrimSpace(rest[:open]), ","))
		args, err := parseNumbers(rest[open+1 : closeIdx])
		if err != nil {
			return m, err
		}
		t, err := transformFunc(name, args)
		if err != nil {
			return m, err
		}
		m = m.Mul(t)
		rest = strings.TrimLeft(rest[closeIdx+1:], " \t\r\n,")
	}
	return m, nil
}

func transformFunc(name string, a []float64) (vector.Affine2D, error) {
	deg := func(v float64) float64 { return v * math.Pi / 180 }
	bad := func() (vector.Affine2D, error) {
		return vector.Identity, fmt.Errorf("%s: unexpected argument count %d", name, len(a))
	}
	switch name {
	case "matrix":
		if len(a) != 6 {
			return bad()
		}
		return vector.Affine2D{A: a[0], B: a[1], C: a[2], D: a[3], E: a[4], F: a[5]}, nil
	case "translate":
		switch len(a) {
		case 1:
			return vector.Translate(a[0], 0), nil
		case 2:
			return vector.Translate(a[0], a[1]), nil
		}
		return bad()
	case "scale":
		switch len(a) {
		case 1:
			return vector.Scale(a[0], a[0]), nil
		case 2:
			return vector.Scale(a[0], a[1]), nil
		}
		return bad()
	case "rotate":
		switch len(a) {
		case 1:
			return vector.Rotate(deg(a[0])), nil
		case 3:
			return vector.RotateAbout(deg(a[0]), a[1], a[2]), nil
		}
		return bad()
	case "skewx":
		if len(a) != 1 {
			return bad()
		}
		return vector.SkewX(deg(a[0])), nil
	case "skewy":
		if len(a) != 1 {
			return bad()
		}
		return vector.SkewY(deg(a[0])), nil
	}
	return vector.Identity, fmt.Errorf("unknown transform %q", name)
}

// parseNumbers splits on commas and whitespace.
func parseNumbers(s string) ([]float64, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	out := make([]float64, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// unitScale converts absolute CSS units to user units (px at 96 dpi).
var unitScale = map[string]float64{
	"":   1,
	"px": 1,
	"pt": 96.0 / 72,
	"pc": 16,
	"mm": 96 / 25.4,
	"cm": 96 / 2.54,
	"in": 96,
}

// length parses a coordinate or length attribute. Percentages have no
// reference box here; they are rejected in strict mode and read as zero
// otherwise.
func (rd *reader) length(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if strings.HasSuffix(s, "%") {
		if rd.opts.Strict {
			return 0, fmt.Errorf("percentage length %q not supported", s)
		}
		rd.log.Warn("ignoring percentage length", "value", s)
		return 0, nil
	}
	i := len(s)
	for i > 0 && (s[i-1] >= 'a' && s[i-1] <= 'z') {
		i--
	}
	scale, ok := unitScale[s[i:]]
	if !ok {
		return 0, fmt.Errorf("unknown unit in %q", s)
	}
	v, err := strconv.ParseFloat(s[:i], 64)
	if err != nil {
		return 0, err
	}
	return v * scale, nil
}
