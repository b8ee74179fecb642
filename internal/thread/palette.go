/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package thread

import (
	"fmt"
	"image/color"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// RGB is an opaque thread color.
type RGB struct{ R, G, B uint8 }

var Black = RGB{}

// Hex formats the color as #RRGGBB.
func (c RGB) Hex() string { return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B) }

// Uint32 packs the color as 0xRRGGBB.
func (c RGB) Uint32() uint32 { return uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B) }

func (c RGB) RGBA() color.RGBA { return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff} }

// Palette maps color names to RGB values. It is built once and never
// modified, so it can be shared by concurrent conversions.
type Palette struct {
	names map[string]RGB
}

var defaultPalette = func() *Palette {
	p := &Palette{names: make(map[string]RGB, len(colornames.Map))}
	for name, c := range colornames.Map {
		p.names[name] = RGB{c.R, c.G, c.B}
	}
	return p
}()

// Default returns the SVG/CSS named color table.
func Default() *Palette { return defaultPalette }

// NewPalette extends the default table with extra name → hex entries.
// Names are case-insensitive.
func NewPalette(extra map[string]string) (*Palette, error) {
	p := &Palette{names: make(map[string]RGB, len(defaultPalette.names)+len(extra))}
	for k, v := range defaultPalette.names {
		p.names[k] = v
	}
	for name, hex := range extra {
		c, ok := ParseHex(hex)
		if !ok {
			return nil, fmt.Errorf("palette entry %q: invalid color %q", name, hex)
		}
		p.names[strings.ToLower(strings.TrimSpace(name))] = c
	}
	return p, nil
}

// Lookup returns the named color.
func (p *Palette) Lookup(name string) (RGB, bool) {
	c, ok := p.names[strings.ToLower(strings.TrimSpace(name))]
	return c, ok
}

// Names lists the palette entries in sorted order.
func (p *Palette) Names() []string {
	out := make([]string, 0, len(p.names))
	for k := range p.names {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Resolve turns a color token into RGB. Accepted forms are #RRGGBB, #RGB,
// rgb(r, g, b) and palette names. Anything else resolves to black with
// ok == false so callers can warn.
func (p *Palette) Resolve(token string) (c RGB, ok bool) {
	t := strings.ToLower(strings.TrimSpace(token))
	switch {
	case strings.HasPrefix(t, "#"):
		return orBlack(ParseHex(t))
	case strings.HasPrefix(t, "rgb(") && strings.HasSuffix(t, ")"):
		return orBlack(parseFunctional(t[4 : len(t)-1]))
	}
	return orBlack(p.Lookup(t))
}

func orBlack(c RGB, ok bool) (RGB, bool) {
	if !ok {
		return Black, false
	}
	return c, true
}

// ParseHex parses #RRGGBB or #RGB; the leading # is optional.
func ParseHex(s string) (RGB, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	switch len(s) {
	case 3:
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	case 6:
	default:
		return RGB{}, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return RGB{}, false
	}
	return RGB{uint8(v >> 16), uint8(v >> 8), uint8(v)}, true
}

func parseFunctional(args string) (RGB, bool) {
	parts := strings.Split(args, ",")
	if len(parts) != 3 {
		return RGB{}, false
	}
	var ch [3]uint8
	for i, part := range parts {
		part = strings.TrimSpace(part)
		if strings.HasSuffix(part, "%") {
			f, err := strconv.ParseFloat(strings.TrimSuffix(part, "%"), 64)
			if err != nil || f < 0 || f > 100 {
				return RGB{}, false
			}
			ch[i] = uint8(f*255/100 + 0.5)
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 || n > 255 {
			return RGB{}, false
		}
		ch[i] = uint8(n)
	}
	return RGB{ch[0], ch[1], ch[2]}, true
}
