/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrPathSyntax = errors.New("path data syntax error")

// PathError reports where path data parsing stopped.
type PathError struct {
	Offset int
	Msg    string
}

func (e *PathError) Error() string { return fmt.Sprintf("path data at %d: %s", e.Offset, e.Msg) }
func (e *PathError) Unwrap() error { return ErrPathSyntax }

type pathLexer struct {
	s string
	i int
}

func (l *pathLexer) skipSep() {
	for l.i < len(l.s) {
		switch l.s[l.i] {
		case ' ', '\t', '\n', '\r', '\f', ',':
			l.i++
		default:
			return
		}
	}
}

func (l *pathLexer) done() bool {
	l.skipSep()
	return l.i >= len(l.s)
}

// atNumber reports whether the next token starts a number.
func (l *pathLexer) atNumber() bool {
	l.skipSep()
	if l.i >= len(l.s) {
		return false
	}
	c := l.s[l.i]
	return c == '-' || c == '+' || c == '.' || (c >= '0' && c <= '9')
}

func (l *pathLexer) fail(msg string) error { return &PathError{Offset: l.i, Msg: msg} }

func (l *pathLexer) number() (float64, error) {
	l.skipSep()
	start := l.i
	if l.i < len(l.s) && (l.s[l.i] == '-' || l.s[l.i] == '+') {
		l.i++
	}
	digits, dot := 0, false
	for l.i < len(l.s) {
		c := l.s[l.i]
		if c >= '0' && c <= '9' {
			digits++
		} else if c == '.' && !dot {
			dot = true
		} else {
			break
		}
		l.i++
	}
	if digits == 0 {
		l.i = start
		return 0, l.fail("number expected")
	}
	if l.i < len(l.s) && (l.s[l.i] == 'e' || l.s[l.i] == 'E') {
		j := l.i + 1
		if j < len(l.s) && (l.s[j] == '-' || l.s[j] == '+') {
			j++
		}
		k := j
		for k < len(l.s) && l.s[k] >= '0' && l.s[k] <= '9' {
			k++
		}
		if k > j {
			l.i = k
		}
	}
	v, err := strconv.ParseFloat(l.s[start:l.i], 64)
	if err != nil {
		return 0, l.fail(err.Error())
	}
	return v, nil
}

// flag reads an arc flag; flags may be written without separators ("a1 1 0 01 5 5").
func (l *pathLexer) flag() (bool, error) {
	l.skipSep()
	if l.i < len(l.s) {
		switch l.s[l.i] {
		case '0':
			l.i++
			return false, nil
		case '1':
			l.i++
			return true, nil
		}
	}
	return false, l.fail("arc flag expected")
}

func (l *pathLexer) numbers(n int) ([]float64, error) {
	out := make([]float64, n)
	for i := range out {
		v, err := l.number()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// ParsePathData parses SVG path data (M L H V C S Q T A Z in absolute and
// relative form) into a Path of lines, cubics, quadratics and closes.
func ParsePathData(d string) (Path, error) {
	var p Path
	l := &pathLexer{s: d}
	var cur, start, ctrl Pt
	var prevOp byte

	for !l.done() {
		op := l.s[l.i]
		if !strings.ContainsRune("MmLlHhVvCcSsQqTtAaZz", rune(op)) {
			return p, l.fail(fmt.Sprintf("unexpected %q", op))
		}
		l.i++
		rel := op >= 'a'
		upper := op &^ 0x20
		base := func() Pt {
			if rel {
				return cur
			}
			return Pt{}
		}

		if upper == 'Z' {
			p.Close()
			cur = start
			prevOp = 'Z'
			continue
		}

		first := true
		for first || l.atNumber() {
			switch upper {
			case 'M':
				v, err := l.numbers(2)
				if err != nil {
					return p, err
				}
				pt := base().Add(Pt{v[0], v[1]})
				if first {
					p.MoveTo(pt.X, pt.Y)
					start = pt
				} else {
					p.LineTo(pt.X, pt.Y)
				}
				cur = pt
			case 'L':
				v, err := l.numbers(2)
				if err != nil {
					return p, err
				}
				cur = base().Add(Pt{v[0], v[1]})
				p.LineTo(cur.X, cur.Y)
			case 'H':
				v, err := l.number()
				if err != nil {
					return p, err
				}
				if rel {
					cur.X += v
				} else {
					cur.X = v
				}
				p.LineTo(cur.X, cur.Y)
			case 'V':
				v, err := l.number()
				if err != nil {
					return p, err
				}
				if rel {
					cur.Y += v
				} else {
					cur.Y = v
				}
				p.LineTo(cur.X, cur.Y)
			case 'C':
				v, err := l.numbers(6)
				if err != nil {
					return p, err
				}
				b := base()
				c1 := b.Add(Pt{v[0], v[1]})
				ctrl = b.Add(Pt{v[2], v[3]})
				cur = b.Add(Pt{v[4], v[5]})
				p.CubicTo(c1.X, c1.Y, ctrl.X, ctrl.Y, cur.X, cur.Y)
			case 'S':
				v, err := l.numbers(4)
				if err != nil {
					return p, err
				}
				b := base()
				c1 := cur
				if prevOp == 'C' || prevOp == 'S' {
					c1 = cur.Add(cur.Sub(ctrl))
				}
				ctrl = b.Add(Pt{v[0], v[1]})
				cur = b.Add(Pt{v[2], v[3]})
				p.CubicTo(c1.X, c1.Y, ctrl.X, ctrl.Y, cur.X, cur.Y)
			case 'Q':
				v, err := l.numbers(4)
				if err != nil {
					return p, err
				}
				b := base()
				ctrl = b.Add(Pt{v[0], v[1]})
				cur = b.Add(Pt{v[2], v[3]})
				p.QuadTo(ctrl.X, ctrl.Y, cur.X, cur.Y)
			case 'T':
				v, err := l.numbers(2)
				if err != nil {
					return p, err
				}
				if prevOp == 'Q' || prevOp == 'T' {
					ctrl = cur.Add(cur.Sub(ctrl))
				} else {
					ctrl = cur
				}
				cur = base().Add(Pt{v[0], v[1]})
				p.QuadTo(ctrl.X, ctrl.Y, cur.X, cur.Y)
			case 'A':
				r, err := l.numbers(3)
				if err != nil {
					return p, err
				}
				large, err := l.flag()
				if err != nil {
					return p, err
				}
				sweep, err := l.flag()
				if err != nil {
					return p, err
				}
				v, err := l.numbers(2)
				if err != nil {
					return p, err
				}
				to := base().Add(Pt{v[0], v[1]})
				p.ArcTo(cur, r[0], r[1], r[2], large, sweep, to)
				cur = to
			}
			prevOp = upper
			first = false
		}
	}
	return p, nil
}

// String renders the path as absolute SVG path data.
func (p Path) String() string {
	var b strings.Builder
	f := func(v float64) string { return strconv.FormatFloat(FloatRound(v, 3), 'f', -1, 64) }
	for i, c := range p.Cmds {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(c.Op.String())
		for j := 0; j < 2*c.Op.points(); j++ {
			b.WriteByte(' ')
			b.WriteString(f(c.Data[j]))
		}
	}
	return b.String()
}
