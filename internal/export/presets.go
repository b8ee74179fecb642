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
	"os"
	"path/filepath"
	"strings"

	"svgstitch/internal/pattern"
	"svgstitch/internal/storage"
)

// PresetName represents a named export preset.
type PresetName string

const (
	PresetMachine PresetName = "machine"
	PresetProof   PresetName = "proof"
	PresetWeb     PresetName = "web"
)

// formatSource is the batch-only pseudo format for a raster of the input SVG.
const formatSource = "source"

// BatchOptions controls writing several outputs of one pattern.
//
// Files are named <BaseName>.<ext> inside OutDir, with the source raster as
// <BaseName>.source.png. BaseName defaults to the pattern name.
type BatchOptions struct {
	Preset   PresetName
	Formats  []string // dst, exp, pes, jef, png, svg, pdf, source; empty means preset defaults
	OutDir   string
	BaseName string
	Source   string // input SVG path, needed for the source format
	Preview  PreviewOptions
}

// BatchExport writes every requested format and returns the written paths.
func BatchExport(p *pattern.Pattern, opt BatchOptions) ([]string, error) {
	if p == nil {
		return nil, fmt.Errorf("pattern is nil")
	}
	formats := opt.Formats
	if len(formats) == 0 {
		formats = presetDefaultFormats(opt.Preset)
	}
	base := opt.BaseName
	if base == "" {
		base = p.Name
	}
	if base == "" {
		base = "pattern"
	}
	if err := os.MkdirAll(opt.OutDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure out dir: %w", err)
	}

	var written []string
	for _, raw := range formats {
		name := strings.ToLower(strings.TrimSpace(raw))
		if name == formatSource {
			if opt.Source == "" {
				continue
			}
			out := filepath.Join(opt.OutDir, base+".source.png")
			if err := writeSource(opt.Source, out, opt.Preview); err != nil {
				return written, err
			}
			written = append(written, out)
			continue
		}
		f, err := ParseFormat(name)
		if err != nil {
			return written, err
		}
		out := filepath.Join(opt.OutDir, base+"."+string(f))
		if err := WriteFile(out, p, opt.Preview); err != nil {
			return written, err
		}
		written = append(written, out)
	}
	return written, nil
}

func writeSource(src, out string, opt PreviewOptions) error {
	in, err := os.Open(src)
	if err != nil {
		return &WriteError{Format: FormatPNG, Path: out, Err: err}
	}
	defer func() { _ = in.Close() }()
	var buf bytes.Buffer
	if err := WriteSourcePNG(&buf, in, opt); err != nil {
		return &WriteError{Format: FormatPNG, Path: out, Err: err}
	}
	if err := storage.WriteFileAtomic(out, buf.Bytes(), false); err != nil {
		return &WriteError{Format: FormatPNG, Path: out, Err: err}
	}
	return nil
}

func presetDefaultFormats(p PresetName) []string {
	switch p {
	case PresetProof:
		return []string{"dst", "pdf", "png", formatSource}
	case PresetWeb:
		return []string{"png", "svg"}
	default:
		return []string{"dst"}
	}
}

// ParsePreset validates a preset name; empty means machine.
func ParsePreset(s string) (PresetName, error) {
	switch p := PresetName(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PresetMachine, nil
	case PresetMachine, PresetProof, PresetWeb:
		return p, nil
	}
	return "", fmt.Errorf("unknown preset %q", s)
}
