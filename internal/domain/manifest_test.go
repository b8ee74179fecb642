/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import (
	"errors"
	"strings"
	"testing"

	gojsonschema "github.com/xeipuuv/gojsonschema"
)

const sampleManifest = `{
  "name": "badge",
  "metadata": {"author": "test"},
  "shapes": [
    {"id": "ring", "d": "M0 0 H40 V20 H0 Z", "fill": "gold", "stroke": "none"},
    {"id": "line", "d": "M5 5 L35 15", "stroke": "#336699"}
  ]
}`

func TestLoadManifest(t *testing.T) {
	d, err := LoadManifest([]byte(sampleManifest), nil)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if d.Name != "badge" || d.Metadata.Author != "test" || len(d.Shapes) != 2 {
		t.Fatalf("unexpected design: %+v", d)
	}
	if d.Width != 40 || d.Height != 20 {
		t.Fatalf("canvas should default to shape extent, got %vx%v", d.Width, d.Height)
	}
	ring := d.Shapes[0].Attributes
	if !ring.Fill.Present() || ring.Stroke.Present() {
		t.Fatalf("unexpected ring paint: %+v", ring)
	}
	if got := d.Shapes[1].Attributes.Stroke.Color.Hex(); got != "#336699" {
		t.Fatalf("unexpected stroke color %s", got)
	}
}

func TestLoadManifest_SchemaViolations(t *testing.T) {
	cases := []string{
		`{"name": "x"}`,
		`{"shapes": [{"id": "a"}]}`,
		`{"shapes": [{"d": ""}]}`,
		`{"shapes": [], "colour": "red"}`,
	}
	for _, c := range cases {
		_, err := LoadManifest([]byte(c), nil)
		var ve *ValidationError
		if !errors.As(err, &ve) || len(ve.Problems) == 0 {
			t.Fatalf("expected validation error for %s, got %v", c, err)
		}
	}
}

func TestLoadManifest_BadPathData(t *testing.T) {
	_, err := LoadManifest([]byte(`{"shapes": [{"id": "x", "d": "M0 0 L"}]}`), nil)
	if err == nil || !strings.Contains(err.Error(), "shape 0 (x)") {
		t.Fatalf("expected path error naming the shape, got %v", err)
	}
}

func TestMarshalManifestConformsToSchema(t *testing.T) {
	d, err := LoadManifest([]byte(sampleManifest), nil)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	data, err := MarshalManifest(d)
	if err != nil {
		t.Fatalf("MarshalManifest: %v", err)
	}
	result, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(manifestSchema), gojsonschema.NewBytesLoader(data))
	if err != nil {
		t.Fatalf("schema validate error: %v", err)
	}
	if !result.Valid() {
		for _, e := range result.Errors() {
			t.Logf("schema error: %s", e)
		}
		t.Fatalf("manifest does not conform to schema")
	}
	again, err := LoadManifest(data, nil)
	if err != nil || len(again.Shapes) != 2 || again.Shapes[0].Attributes.Fill.Token != "gold" {
		t.Fatalf("reload failed: %v %+v", err, again)
	}
}
