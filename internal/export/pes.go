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
	"fmt"
	"io"
	"math"

	"svgstitch/internal/pattern"
	"svgstitch/internal/thread"
)

const (
	// PECMaxStep is the longest displacement the PEC long form can carry.
	PECMaxStep = 2047

	pesHeaderSize = 22
	pecHeaderSize = 512

	pecIconWidth  = 48
	pecIconHeight = 38
	pecIconStride = pecIconWidth / 8
	pecIconSize   = pecIconStride * pecIconHeight

	pecJumpFlag = 0x1000
	pecTrimFlag = 0x2000
)

// WritePES encodes p as a version 1 Brother PES file whose header points
// straight at the PEC section. Machines sew from the PEC block; the PES
// design section is left empty.
func WritePES(w io.Writer, p *pattern.Pattern) error {
	d := newDeltas(PECMaxStep)
	if err := p.Replay(d); err != nil {
		return err
	}
	if len(d.recs) == 0 || d.recs[len(d.recs)-1].kind != recEnd {
		d.recs = append(d.recs, record{kind: recEnd})
	}

	var buf bytes.Buffer
	buf.WriteString("#PES0001")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(pesHeaderSize))
	buf.Write(make([]byte, pesHeaderSize-buf.Len()))
	writePEC(&buf, p.Name, d)
	_, err := w.Write(buf.Bytes())
	return err
}

// writePEC appends the PEC header, stitch block and thumbnails. PEC counts
// Y downwards, so record displacements are flipped back.
func writePEC(buf *bytes.Buffer, name string, d *deltas) {
	start := buf.Len()
	fmt.Fprintf(buf, "LA:%-16s\r", label(name, 8))
	buf.WriteString("            \xff\x00")
	buf.Write([]byte{pecIconStride, pecIconHeight})
	if n := len(d.threads); n > 0 {
		buf.WriteString("            ")
		buf.WriteByte(byte(n - 1))
		for _, t := range d.threads {
			buf.WriteByte(byte(thread.PEC.Nearest(t.Color, 1)))
		}
	} else {
		buf.Write([]byte{0x20, 0x20, 0x20, 0x20, 0x64, 0x20, 0x00, 0x20, 0x00, 0x20, 0x20, 0x20, 0xff})
	}
	for buf.Len()-start < pecHeaderSize {
		buf.WriteByte(' ')
	}

	minX, minY := d.minX, -d.maxY
	width, height := d.maxX-d.minX, d.maxY-d.minY

	block := buf.Len()
	buf.Write([]byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x31, 0xff, 0xf0})
	le16 := func(v int) { _ = binary.Write(buf, binary.LittleEndian, uint16(v)) }
	be16 := func(v int) { _ = binary.Write(buf, binary.BigEndian, uint16(v)) }
	le16(width)
	le16(height)
	le16(0x1e0)
	le16(0x1b0)
	be16(0x9000 | (-minX & 0x0fff))
	be16(0x9000 | (-minY & 0x0fff))
	pecStitches(buf, d.recs)
	n := buf.Len() - block
	b := buf.Bytes()
	b[block+2], b[block+3], b[block+4] = byte(n), byte(n>>8), byte(n>>16)

	for _, icon := range pecIcons(d, minX, minY, width, height) {
		buf.Write(icon[:])
	}
}

func pecLong(v, flag int) []byte {
	u := 0x8000 | flag | (v & 0x0fff)
	return []byte{byte(u >> 8), byte(u)}
}

func pecStitches(buf *bytes.Buffer, recs []record) {
	secondColor := true
	sewn := false
	for _, r := range recs {
		dx, dy := r.dx, -r.dy
		switch r.kind {
		case recStitch:
			sewn = true
			if dx > -64 && dx < 63 && dy > -64 && dy < 63 {
				buf.Write([]byte{byte(dx & 0x7f), byte(dy & 0x7f)})
				continue
			}
			buf.Write(pecLong(dx, 0))
			buf.Write(pecLong(dy, 0))
		case recJump:
			// moves before the first stitch position the frame; later ones cut
			flag := pecJumpFlag
			if sewn {
				flag = pecTrimFlag
			}
			buf.Write(pecLong(dx, flag))
			buf.Write(pecLong(dy, flag))
		case recColor:
			buf.Write([]byte{0xfe, 0xb0})
			if secondColor {
				buf.WriteByte(0x02)
			} else {
				buf.WriteByte(0x01)
			}
			secondColor = !secondColor
		case recEnd:
			buf.WriteByte(0xff)
		}
	}
}

// pecIcons draws the needle positions of the whole design and of each color
// into 48×38 monochrome thumbnails framed by a border.
func pecIcons(d *deltas, minX, minY, width, height int) [][pecIconSize]byte {
	icons := make([][pecIconSize]byte, len(d.threads)+1)
	for i := range icons {
		for x := 0; x < pecIconWidth; x++ {
			iconSet(&icons[i], x, 0)
			iconSet(&icons[i], x, pecIconHeight-1)
		}
		for y := 0; y < pecIconHeight; y++ {
			iconSet(&icons[i], 0, y)
			iconSet(&icons[i], pecIconWidth-1, y)
		}
	}
	const margin = 4
	scale := math.Min(float64(pecIconWidth-2*margin)/float64(max(width, 1)),
		float64(pecIconHeight-2*margin)/float64(max(height, 1)))
	color := 0
	x, y := 0, 0
	for _, r := range d.recs {
		switch r.kind {
		case recColor:
			color++
			continue
		case recEnd:
			continue
		}
		x += r.dx
		y -= r.dy
		if r.kind != recStitch {
			continue
		}
		px := margin + int(float64(x-minX)*scale)
		py := margin + int(float64(y-minY)*scale)
		iconSet(&icons[0], px, py)
		if color+1 < len(icons) {
			iconSet(&icons[color+1], px, py)
		}
	}
	return icons
}

func iconSet(icon *[pecIconSize]byte, x, y int) {
	if x < 0 || y < 0 || x >= pecIconWidth || y >= pecIconHeight {
		return
	}
	icon[y*pecIconStride+x/8] |= 1 << (x % 8)
}
