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
	"log/slog"

	"svgstitch/internal/domain"
	"svgstitch/internal/vector"
)

// shape converts one drawing element into a Shape in canvas coordinates.
func (rd *reader) shape(name string, attrs []xml.Attr, st style) error {
	get := map[string]string{}
	for _, a := range attrs {
		get[a.Name.Local] = a.Value
	}
	num := func(keys ...string) ([]float64, error) {
		out := make([]float64, len(keys))
		for i, k := range keys {
			v, err := rd.length(get[k])
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			out[i] = v
		}
		return out, nil
	}

	var p vector.Path
	fillable := true
	switch name {
	case "path":
		var err error
		p, err = vector.ParsePathData(get["d"])
		if err != nil {
			// keep what parsed before the error, as browsers do
			if rd.opts.Strict || len(p.Cmds) == 0 {
				return err
			}
			rd.log.Warn("truncated path data", slog.String("id", get["id"]), slog.Any("err", err))
		}
	case "rect":
		v, err := num("x", "y", "width", "height", "rx", "ry")
		if err != nil {
			return err
		}
		if v[2] <= 0 || v[3] <= 0 {
			return nil
		}
		p.AddRect(v[0], v[1], v[2], v[3], v[4], v[5])
	case "circle":
		v, err := num("cx", "cy", "r")
		if err != nil {
			return err
		}
		if v[2] <= 0 {
			return nil
		}
		p.AddEllipse(v[0], v[1], v[2], v[2])
	case "ellipse":
		v, err := num("cx", "cy", "rx", "ry")
		if err != nil {
			return err
		}
		if v[2] <= 0 || v[3] <= 0 {
			return nil
		}
		p.AddEllipse(v[0], v[1], v[2], v[3])
	case "line":
		v, err := num("x1", "y1", "x2", "y2")
		if err != nil {
			return err
		}
		p.MoveTo(v[0], v[1])
		p.LineTo(v[2], v[3])
		fillable = false
	case "polyline", "polygon":
		v, err := parseNumbers(get["points"])
		if err != nil {
			return fmt.Errorf("points: %w", err)
		}
		pts := make([]vector.Pt, 0, len(v)/2)
		for i := 0; i+1 < len(v); i += 2 {
			pts = append(pts, vector.Pt{X: v[i], Y: v[i+1]})
		}
		p.AddPolyline(pts, name == "polygon")
	}

	fill := st.fill
	if !fillable {
		fill = ""
	}
	attrsOut := domain.Attributes{
		Stroke: domain.NewPaint(st.stroke, rd.opts.Palette),
		Fill:   domain.NewPaint(fill, rd.opts.Palette),
	}
	for _, pt := range []domain.Paint{attrsOut.Stroke, attrsOut.Fill} {
		if pt.Fallback {
			rd.log.Warn("unknown color, using black", slog.String("color", pt.Token))
		}
	}

	rd.counts[name]++
	id := get["id"]
	if id == "" {
		id = fmt.Sprintf("%s-%d", name, rd.counts[name])
	}
	rd.design.Shapes = append(rd.design.Shapes, domain.Shape{
		ID:         id,
		Path:       p.Transform(st.xf),
		Attributes: attrsOut,
	})
	return nil
}
