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
	"encoding/binary"
	"io"
	"time"

	"svgstitch/internal/pattern"
	"svgstitch/internal/thread"
)

const (
	// JEFMaxStep is the longest displacement one JEF record can carry.
	JEFMaxStep = 127

	jefHeaderSize = 0x74
)

// Janome hoop codes, smallest first in jefHoop.
const (
	hoop110x110 = 0
	hoop50x50   = 1
	hoop140x200 = 2
	hoop126x110 = 3
	hoop200x200 = 4
)

// jefNow stamps the header date.
var jefNow = time.Now

// WriteJEF encodes p as a Janome JEF file: a little endian header with the
// extents, hoop and thread chart indices, then signed byte pairs with 0x80
// escapes like EXP.
func WriteJEF(w io.Writer, p *pattern.Pattern) error {
	d := newDeltas(JEFMaxStep)
	if err := p.Replay(d); err != nil {
		return err
	}
	if len(d.recs) == 0 || d.recs[len(d.recs)-1].kind != recEnd {
		d.recs = append(d.recs, record{kind: recEnd})
	}

	var buf bytes.Buffer
	put := func(v int) { _ = binary.Write(&buf, binary.LittleEndian, int32(v)) }

	colors := len(d.threads)
	put(jefHeaderSize + 8*colors)
	put(0x14)
	buf.WriteString(jefNow().Format("20060102150405"))
	buf.Write([]byte{0, 0})
	put(colors)
	put(jefPoints(d.recs))

	width, height := d.maxX-d.minX, d.maxY-d.minY
	put(jefHoop(width, height))
	hw, hh := (width+1)/2, (height+1)/2
	put(hw)
	put(hh)
	put(hw)
	put(hh)
	// distances from the edges of the standard hoops
	for _, hoop := range [][2]int{{550, 550}, {250, 250}, {700, 1000}, {630, 550}} {
		x, y := hoop[0]-hw, hoop[1]-hh
		if x < 0 || y < 0 {
			x, y = -1, -1
		}
		put(x)
		put(y)
		put(x)
		put(y)
	}
	for _, t := range d.threads {
		put(thread.Janome.Nearest(t.Color, 1))
	}
	for range d.threads {
		put(0x0d)
	}

	for _, r := range d.recs {
		switch r.kind {
		case recStitch:
			buf.Write([]byte{byte(int8(r.dx)), byte(int8(r.dy))})
		case recJump:
			buf.Write([]byte{0x80, 0x02, byte(int8(r.dx)), byte(int8(r.dy))})
		case recColor:
			buf.Write([]byte{0x80, 0x01, 0x00, 0x00})
		case recEnd:
			buf.Write([]byte{0x80, 0x10})
		}
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// jefPoints counts stitch data entries the way Janome machines do: one per
// stitch, two per jump or color change, one for the end.
func jefPoints(recs []record) int {
	n := 0
	for _, r := range recs {
		switch r.kind {
		case recStitch, recEnd:
			n++
		case recJump, recColor:
			n += 2
		}
	}
	return n
}

// jefHoop picks the smallest hoop holding a design of the given size in
// 0.1 mm units.
func jefHoop(width, height int) int {
	switch {
	case width < 500 && height < 500:
		return hoop50x50
	case width < 1260 && height < 1100:
		return hoop126x110
	case width < 1400 && height < 2000:
		return hoop140x200
	case width < 2000 && height < 2000:
		return hoop200x200
	}
	return hoop110x110
}
