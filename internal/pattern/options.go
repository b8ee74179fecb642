/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package pattern

import (
	"fmt"
	"strings"

	"svgstitch/internal/stitch"
	"svgstitch/internal/vector"
)

// FillStrategy selects the engine used for filled shapes.
type FillStrategy int

const (
	Scanline FillStrategy = iota
	ConcentricOffset
	RasterScan
	None
)

var strategyNames = map[FillStrategy]string{
	Scanline:         "scanline",
	ConcentricOffset: "concentric",
	RasterScan:       "raster",
	None:             "none",
}

func (s FillStrategy) String() string {
	if n, ok := strategyNames[s]; ok {
		return n
	}
	return fmt.Sprintf("FillStrategy(%d)", int(s))
}

// ParseFillStrategy accepts the names printed by String and a few aliases.
func ParseFillStrategy(s string) (FillStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "scanline", "scan":
		return Scanline, nil
	case "concentric", "concentric-offset", "offset":
		return ConcentricOffset, nil
	case "raster", "raster-scan", "bitmap":
		return RasterScan, nil
	case "none", "off":
		return None, nil
	}
	return Scanline, fmt.Errorf("unknown fill strategy %q", s)
}

func (s FillStrategy) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *FillStrategy) UnmarshalText(b []byte) error {
	v, err := ParseFillStrategy(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

const (
	DefaultStepSize   = 3.0
	DefaultScale      = 1.0
	DefaultMinSamples = 2
)

// Options configures an Assembler. Zero numeric fields take their defaults;
// use DefaultOptions to also get Center.
type Options struct {
	StepSize     float64 // stroke sampling interval
	FillStepSize float64 // fill contour sampling interval; 0 follows StepSize
	MinSamples   int
	Tolerance    float64 // curve flattening tolerance
	Scale        float64
	// Center moves the canvas center to the origin before scaling.
	Center bool
	// Canvas is used for centering; when empty the shapes' bounds are used.
	Canvas vector.Rect

	Strategy   FillStrategy
	Scanline   stitch.ScanlineOptions
	Concentric stitch.ConcentricOptions
	Raster     stitch.RasterOptions

	// Workers bounds how many shapes are computed at once; 0 means GOMAXPROCS.
	Workers int
}

func DefaultOptions() Options {
	return Options{
		StepSize:   DefaultStepSize,
		MinSamples: DefaultMinSamples,
		Scale:      DefaultScale,
		Center:     true,
		Strategy:   Scanline,
	}
}

func (o Options) withDefaults() Options {
	if o.StepSize <= 0 {
		o.StepSize = DefaultStepSize
	}
	if o.FillStepSize <= 0 {
		o.FillStepSize = o.StepSize
	}
	if o.MinSamples <= 0 {
		o.MinSamples = DefaultMinSamples
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Tolerance <= 0 {
		o.Tolerance = vector.DefaultTolerance
	}
	return o
}

// outputTransform maps canvas coordinates to emitted coordinates:
// (p - center)·scale, or p·scale when not centering.
func (o Options) outputTransform(content vector.Rect) vector.Affine2D {
	m := vector.Scale(o.Scale, o.Scale)
	if !o.Center {
		return m
	}
	canvas := o.Canvas
	if canvas.W <= 0 || canvas.H <= 0 {
		canvas = content
	}
	c := canvas.Center()
	return m.Mul(vector.Translate(-c.X, -c.Y))
}
