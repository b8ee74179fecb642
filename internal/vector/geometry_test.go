/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import (
	"math"
	"testing"
)

func TestRectContainsAndInset(t *testing.T) {
	r := R(10, 20, 100, 50)
	if !r.Contains(Pt{10, 20}) || !r.Contains(Pt{110, 70}) {
		t.Fatalf("expected edge points to be contained")
	}
	in := r.Inset(5, 5)
	if in.X != 15 || in.Y != 25 || in.W != 90 || in.H != 40 {
		t.Fatalf("unexpected inset: %+v", in)
	}
	if c := r.Center(); c.X != 60 || c.Y != 45 {
		t.Fatalf("unexpected center: %+v", c)
	}
}

func TestAffineBasic(t *testing.T) {
	m := Translate(10, 5).Mul(Scale(2, 3))
	p := m.Apply(Pt{1, 1})
	if p.X != 12 || p.Y != 8 { // (1*2+10, 1*3+5)
		t.Fatalf("unexpected transform result: %+v", p)
	}
}

func TestAffineInvertRoundTrip(t *testing.T) {
	m := Translate(3, -7).Mul(RotateAbout(0.4, 2, 2)).Mul(Scale(2.5, 0.5))
	inv, ok := m.Invert()
	if !ok {
		t.Fatalf("expected invertible matrix")
	}
	for _, p := range []Pt{{0, 0}, {1, 2}, {-4.5, 9}} {
		q := inv.Apply(m.Apply(p))
		if math.Abs(q.X-p.X) > 1e-9 || math.Abs(q.Y-p.Y) > 1e-9 {
			t.Fatalf("round trip of %+v gave %+v", p, q)
		}
	}
	if _, ok := Scale(0, 1).Invert(); ok {
		t.Fatalf("singular matrix must not invert")
	}
}

func TestExtent(t *testing.T) {
	var e Extent
	if !e.Empty() || e.Rect() != (Rect{}) {
		t.Fatalf("zero extent should be empty")
	}
	e.Add(Pt{3, -1})
	e.Add(Pt{-2, 4})
	var o Extent
	o.Add(Pt{10, 0})
	e.Merge(o)
	e.Merge(Extent{})
	if e.MinX != -2 || e.MinY != -1 || e.MaxX != 10 || e.MaxY != 4 {
		t.Fatalf("unexpected extent: %+v", e)
	}
}

func TestSkew(t *testing.T) {
	p := SkewX(math.Pi / 4).Apply(Pt{0, 2})
	if math.Abs(p.X-2) > 1e-9 || p.Y != 2 {
		t.Fatalf("unexpected skew: %+v", p)
	}
}

func TestFloatRound(t *testing.T) {
	if v := FloatRound(1.23456, 2); v != 1.23 {
		t.Fatalf("got %v", v)
	}
	if v := FloatRound(1.5, -1); v != 1.5 {
		t.Fatalf("negative places must pass through, got %v", v)
	}
}
