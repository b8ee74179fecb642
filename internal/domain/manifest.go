/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	gojsonschema "github.com/xeipuuv/gojsonschema"

	"svgstitch/internal/thread"
	"svgstitch/internal/vector"
)

//go:embed design.schema.json
var manifestSchema []byte

// ValidationError lists every schema violation of a manifest.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid design manifest: " + strings.Join(e.Problems, "; ")
}

// manifest is the on-disk JSON form of a Design. Shapes carry SVG path data
// and raw color tokens.
type manifest struct {
	Name     string          `json:"name,omitempty"`
	Width    float64         `json:"width,omitempty"`
	Height   float64         `json:"height,omitempty"`
	Metadata *Metadata       `json:"metadata,omitempty"`
	Shapes   []manifestShape `json:"shapes"`
}

type manifestShape struct {
	ID     string `json:"id,omitempty"`
	D      string `json:"d"`
	Stroke string `json:"stroke,omitempty"`
	Fill   string `json:"fill,omitempty"`
}

// ValidateManifest checks raw manifest bytes against the embedded schema.
func ValidateManifest(data []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(manifestSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return fmt.Errorf("validate manifest: %w", err)
	}
	if result.Valid() {
		return nil
	}
	ve := &ValidationError{}
	for _, e := range result.Errors() {
		ve.Problems = append(ve.Problems, e.String())
	}
	return ve
}

// LoadManifest validates and decodes a JSON design manifest. A missing
// canvas size is taken from the extent of all shapes.
func LoadManifest(data []byte, pal *thread.Palette) (*Design, error) {
	if err := ValidateManifest(data); err != nil {
		return nil, err
	}
	var m manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	d := &Design{Name: m.Name, Width: m.Width, Height: m.Height}
	if m.Metadata != nil {
		d.Metadata = *m.Metadata
	}
	var ext vector.Extent
	for i, s := range m.Shapes {
		p, err := vector.ParsePathData(s.D)
		if err != nil {
			return nil, fmt.Errorf("shape %d (%s): %w", i, s.ID, err)
		}
		b := p.Bounds()
		if !p.Empty() {
			ext.Add(b.Min())
			ext.Add(b.Max())
		}
		d.Shapes = append(d.Shapes, Shape{
			ID:   s.ID,
			Path: p,
			Attributes: Attributes{
				Stroke: NewPaint(s.Stroke, pal),
				Fill:   NewPaint(s.Fill, pal),
			},
		})
	}
	if d.Width == 0 {
		d.Width = ext.MaxX
	}
	if d.Height == 0 {
		d.Height = ext.MaxY
	}
	return d, nil
}

// MarshalManifest writes the design in manifest form, paths as absolute
// SVG path data.
func MarshalManifest(d *Design) ([]byte, error) {
	m := manifest{Name: d.Name, Width: d.Width, Height: d.Height}
	if d.Metadata != (Metadata{}) {
		md := d.Metadata
		m.Metadata = &md
	}
	m.Shapes = make([]manifestShape, 0, len(d.Shapes))
	for _, s := range d.Shapes {
		m.Shapes = append(m.Shapes, manifestShape{
			ID:     s.ID,
			D:      s.Path.String(),
			Stroke: s.Attributes.Stroke.Token,
			Fill:   s.Attributes.Fill.Token,
		})
	}
	return json.MarshalIndent(m, "", "  ")
}
