/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bufio"
	"io"

	"svgstitch/internal/pattern"
)

// EXPMaxStep is the longest displacement one EXP record can carry.
const EXPMaxStep = 127

// WriteEXP encodes p as a Melco EXP file: headerless signed byte pairs with
// 0x80 escapes for jumps and color changes.
func WriteEXP(w io.Writer, p *pattern.Pattern) error {
	d := newDeltas(EXPMaxStep)
	if err := p.Replay(d); err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	for _, r := range d.recs {
		switch r.kind {
		case recStitch:
			_, _ = bw.Write([]byte{byte(int8(r.dx)), byte(int8(r.dy))})
		case recJump:
			_, _ = bw.Write([]byte{0x80, 0x04, byte(int8(r.dx)), byte(int8(r.dy))})
		case recColor:
			_, _ = bw.Write([]byte{0x80, 0x01, 0x00, 0x00})
		}
	}
	return bw.Flush()
}
