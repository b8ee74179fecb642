/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

// This file defines the design model handed from the readers (SVG, JSON
// manifest) to the stitch assembler. Colors are resolved once at ingestion
// so the assembler never deals with raw attribute strings.

import (
	"strings"

	"svgstitch/internal/thread"
	"svgstitch/internal/vector"
)

// Design is one embroidery design: a canvas and its shapes in paint order.
type Design struct {
	Name     string   `json:"name"`
	Width    float64  `json:"width"`
	Height   float64  `json:"height"`
	Metadata Metadata `json:"metadata,omitempty"`
	Shapes   []Shape  `json:"shapes"`
}

// Metadata contains optional descriptive metadata for a design.
type Metadata struct {
	Author string `json:"author,omitempty"`
	Source string `json:"source,omitempty"`
	Notes  string `json:"notes,omitempty"`
}

// Canvas is the design area; its center is the origin of stitch coordinates.
func (d Design) Canvas() vector.Rect { return vector.R(0, 0, d.Width, d.Height) }

// Shape is a single outline with its paint. Path is in canvas coordinates
// with all element transforms applied.
type Shape struct {
	ID         string      `json:"id,omitempty"`
	Path       vector.Path `json:"-"`
	Attributes Attributes  `json:"attributes"`
}

// Attributes carries the resolved paints of a shape. An absent Paint means
// the shape is not stroked (or not filled).
type Attributes struct {
	Stroke Paint `json:"stroke"`
	Fill   Paint `json:"fill"`
}

// Painted reports whether the shape has anything to stitch.
func (a Attributes) Painted() bool { return a.Stroke.Present() || a.Fill.Present() }

// Paint is a color token as written in the source and the thread color it
// resolved to. Fallback is set when the token was unknown and black was
// substituted.
type Paint struct {
	Token    string     `json:"token,omitempty"`
	Color    thread.RGB `json:"color"`
	Fallback bool       `json:"fallback,omitempty"`
}

func (p Paint) Present() bool { return p.Token != "" }

// NewPaint resolves token against the palette. Empty tokens and "none" give
// an absent paint.
func NewPaint(token string, pal *thread.Palette) Paint {
	token = strings.TrimSpace(token)
	if token == "" || strings.EqualFold(token, "none") || strings.EqualFold(token, "transparent") {
		return Paint{}
	}
	if pal == nil {
		pal = thread.Default()
	}
	c, ok := pal.Resolve(token)
	return Paint{Token: token, Color: c, Fallback: !ok}
}
