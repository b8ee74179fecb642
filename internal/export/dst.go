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
	"fmt"
	"io"
	"strings"

	"svgstitch/internal/pattern"
)

const (
	dstHeaderSize = 512
	// DSTMaxStep is the longest displacement one DST record can carry.
	DSTMaxStep = 121
)

// WriteDST encodes p as a Tajima DST file: a 512 byte text header followed by
// 3 byte records. Coordinates are taken as 0.1 mm units.
func WriteDST(w io.Writer, p *pattern.Pattern) error {
	d := newDeltas(DSTMaxStep)
	if err := p.Replay(d); err != nil {
		return err
	}
	if len(d.recs) == 0 || d.recs[len(d.recs)-1].kind != recEnd {
		d.recs = append(d.recs, record{kind: recEnd})
	}

	var buf bytes.Buffer
	buf.Write(dstHeader(p.Name, d))
	for _, r := range d.recs {
		b := dstRecord(r)
		buf.Write(b[:])
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// label reduces name to printable ASCII of at most n bytes.
func label(name string, n int) string {
	l := strings.Map(func(r rune) rune {
		if r < 0x20 || r > 0x7e {
			return ' '
		}
		return r
	}, name)
	if len(l) > n {
		l = l[:n]
	}
	return l
}

func dstHeader(name string, d *deltas) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "LA:%-16s\r", label(name, 16))
	fmt.Fprintf(&b, "ST:%7d\r", len(d.recs))
	fmt.Fprintf(&b, "CO:%3d\r", d.colors)
	fmt.Fprintf(&b, "+X:%5d\r", d.maxX)
	fmt.Fprintf(&b, "-X:%5d\r", -d.minX)
	fmt.Fprintf(&b, "+Y:%5d\r", d.maxY)
	fmt.Fprintf(&b, "-Y:%5d\r", -d.minY)
	fmt.Fprintf(&b, "AX:%s\r", signed(d.x))
	fmt.Fprintf(&b, "AY:%s\r", signed(d.y))
	b.WriteString("MX:+    0\r")
	b.WriteString("MY:+    0\r")
	b.WriteString("PD:******\r")
	b.WriteByte(0x1a)
	for b.Len() < dstHeaderSize {
		b.WriteByte(' ')
	}
	return b.Bytes()[:dstHeaderSize]
}

func signed(v int) string {
	if v < 0 {
		return fmt.Sprintf("-%5d", -v)
	}
	return fmt.Sprintf("+%5d", v)
}

// dstRecord packs a displacement in balanced ternary over the three bytes.
func dstRecord(r record) [3]byte {
	var b [3]byte
	switch r.kind {
	case recEnd:
		return [3]byte{0x00, 0x00, 0xf3}
	case recColor:
		return [3]byte{0x00, 0x00, 0xc3}
	}
	x, y := r.dx, r.dy
	type digit struct {
		weight   int
		idx      int
		pos, neg byte
	}
	xs := []digit{{81, 2, 0x04, 0x08}, {27, 1, 0x04, 0x08}, {9, 0, 0x04, 0x08}, {3, 1, 0x01, 0x02}, {1, 0, 0x01, 0x02}}
	ys := []digit{{81, 2, 0x20, 0x10}, {27, 1, 0x20, 0x10}, {9, 0, 0x20, 0x10}, {3, 1, 0x80, 0x40}, {1, 0, 0x80, 0x40}}
	for _, dg := range xs {
		half := dg.weight / 2
		switch {
		case x > half:
			b[dg.idx] |= dg.pos
			x -= dg.weight
		case x < -half:
			b[dg.idx] |= dg.neg
			x += dg.weight
		}
	}
	for _, dg := range ys {
		half := dg.weight / 2
		switch {
		case y > half:
			b[dg.idx] |= dg.pos
			y -= dg.weight
		case y < -half:
			b[dg.idx] |= dg.neg
			y += dg.weight
		}
	}
	b[2] |= 0x03
	if r.kind == recJump {
		b[2] |= 0x80
	}
	return b
}
