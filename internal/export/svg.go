/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"

	"svgstitch/internal/pattern"
	"svgstitch/internal/vector"
)

// WriteSVG writes a vector preview of p: one group per color block with a
// polyline per run.
func WriteSVG(w io.Writer, p *pattern.Pattern, opt PreviewOptions) error {
	opt = opt.withDefaults()
	blocks, err := colorBlocks(p)
	if err != nil {
		return err
	}
	m, pw, ph := fit(p, opt.Size, opt.Margin)

	var buf bytes.Buffer
	var werr error
	wf := func(format string, args ...any) {
		if werr != nil {
			return
		}
		_, werr = fmt.Fprintf(&buf, format, args...)
	}
	points := func(pts []vector.Pt) string {
		var b []byte
		for i, pt := range pts {
			q := m.Apply(pt)
			if i > 0 {
				b = append(b, ' ')
			}
			b = strconv.AppendFloat(b, vector.FloatRound(q.X, 2), 'f', -1, 64)
			b = append(b, ',')
			b = strconv.AppendFloat(b, vector.FloatRound(q.Y, 2), 'f', -1, 64)
		}
		return string(b)
	}
	bg := opt.Background

	wf("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	wf("<svg xmlns=\"http://www.w3.org/2000/svg\" version=\"1.1\" width=\"%dpx\" height=\"%dpx\" viewBox=\"0 0 %d %d\">\n", pw, ph, pw, ph)
	if p.Name != "" {
		var esc bytes.Buffer
		_ = xml.EscapeText(&esc, []byte(p.Name))
		wf("  <title>%s</title>\n", esc.String())
	}
	wf("  <rect x=\"0\" y=\"0\" width=\"%d\" height=\"%d\" fill=\"#%02x%02x%02x\"/>\n", pw, ph, bg.R, bg.G, bg.B)
	for i, b := range blocks {
		wf("  <g id=\"color-%d\" fill=\"none\" stroke=\"%s\" stroke-width=\"%g\" stroke-linecap=\"round\" stroke-linejoin=\"round\">\n",
			i+1, b.Thread.Hex, opt.StrokeWidth)
		for _, run := range b.Runs {
			if len(run) < 2 {
				continue
			}
			wf("    <polyline points=\"%s\"/>\n", points(run))
		}
		if opt.ShowJumps {
			for _, j := range b.Jumps {
				wf("    <polyline points=\"%s\" stroke=\"#b0b0b0\" stroke-width=\"0.5\" stroke-dasharray=\"2 2\"/>\n", points(j[:]))
			}
		}
		wf("  </g>\n")
	}
	wf("</svg>\n")
	if werr != nil {
		return werr
	}
	_, err = w.Write(buf.Bytes())
	return err
}
