/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package thread

import "testing"

func TestResolve(t *testing.T) {
	p := Default()
	tests := []struct {
		token string
		want  RGB
		ok    bool
	}{
		{"#FF0000", RGB{255, 0, 0}, true},
		{"#0f0", RGB{0, 255, 0}, true},
		{"  Green ", RGB{0, 0x80, 0}, true},
		{"darkgreen", RGB{0, 0x64, 0}, true},
		{"gold", RGB{0xff, 0xd7, 0}, true},
		{"rgb(10, 20, 30)", RGB{10, 20, 30}, true},
		{"rgb(100%,0%,50%)", RGB{255, 0, 128}, true},
		{"#12345", Black, false},
		{"#GGGGGG", Black, false},
		{"rgb(300,0,0)", Black, false},
		{"notacolor", Black, false},
		{"", Black, false},
	}
	for _, tt := range tests {
		got, ok := p.Resolve(tt.token)
		if got != tt.want || ok != tt.ok {
			t.Fatalf("Resolve(%q) = %v,%v want %v,%v", tt.token, got, ok, tt.want, tt.ok)
		}
	}
}

func TestNewPaletteOverrides(t *testing.T) {
	p, err := NewPalette(map[string]string{"Brand-Red": "#C8102E", "green": "#00FF00"})
	if err != nil {
		t.Fatalf("NewPalette: %v", err)
	}
	if c, ok := p.Resolve("brand-red"); !ok || c.Hex() != "#C8102E" {
		t.Fatalf("override not applied: %v %v", c, ok)
	}
	if c, _ := p.Resolve("green"); c != (RGB{0, 255, 0}) {
		t.Fatalf("override should replace builtin, got %v", c)
	}
	if c, _ := Default().Resolve("green"); c != (RGB{0, 0x80, 0}) {
		t.Fatalf("default palette must stay untouched, got %v", c)
	}
	if _, err := NewPalette(map[string]string{"x": "nope"}); err == nil {
		t.Fatalf("expected error for invalid entry")
	}
}

func TestNewSpec(t *testing.T) {
	s := NewSpec(Stroke, "navy", RGB{0, 0, 0x80}, 7)
	if s.Hex != "#000080" || s.Description != "Stroke navy" || s.CatalogNumber != "007S" {
		t.Fatalf("unexpected spec: %+v", s)
	}
	if s.Brand != "SVG" || s.Weight != "40" {
		t.Fatalf("unexpected brand/weight: %+v", s)
	}
	f := NewSpec(Fill, "#ff0000", RGB{255, 0, 0}, 12)
	if f.CatalogNumber != "012F" || f.Description != "Fill #ff0000" {
		t.Fatalf("unexpected fill spec: %+v", f)
	}
}

func TestRGBPacking(t *testing.T) {
	c := RGB{0x12, 0x34, 0x56}
	if c.Uint32() != 0x123456 {
		t.Fatalf("got %x", c.Uint32())
	}
	if c.RGBA().A != 0xff {
		t.Fatalf("thread colors are opaque")
	}
	if len(Default().Names()) < 140 {
		t.Fatalf("expected full named color table")
	}
}

func TestChartNearest(t *testing.T) {
	tests := []struct {
		chart Chart
		c     RGB
		want  string
	}{
		{PEC, RGB{0, 0, 0}, "Black"},
		{PEC, RGB{250, 250, 250}, "White"},
		{PEC, RGB{230, 5, 5}, "Red"},
		{Janome, RGB{0, 0, 0}, "Black"},
		{Janome, RGB{255, 255, 0}, "Yellow"},
		{Janome, RGB{250, 10, 10}, "Red"},
	}
	for _, tt := range tests {
		i := tt.chart.Nearest(tt.c, 1)
		if i < 1 || tt.chart[i].Name != tt.want {
			t.Fatalf("Nearest(%v) = %d (%s), want %s", tt.c, i, tt.chart[i].Name, tt.want)
		}
	}
	if len(PEC) != 65 {
		t.Fatalf("PEC chart has %d entries, want 65", len(PEC))
	}
}
