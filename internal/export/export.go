/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export writes stitch patterns as machine files (DST, EXP, PES, JEF)
// and as previews (PNG, SVG, PDF proof sheet).
package export

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	applog "svgstitch/internal/log"
	"svgstitch/internal/pattern"
	"svgstitch/internal/storage"
)

type Format string

const (
	FormatDST Format = "dst"
	FormatEXP Format = "exp"
	FormatPES Format = "pes"
	FormatJEF Format = "jef"
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
	FormatPDF Format = "pdf"
)

// Machine reports whether the format is read by embroidery machines.
func (f Format) Machine() bool {
	switch f {
	case FormatDST, FormatEXP, FormatPES, FormatJEF:
		return true
	}
	return false
}

var ErrUnknownFormat = errors.New("unknown output format")

// WriteError reports a failed write of one output file.
type WriteError struct {
	Format Format
	Path   string
	Err    error
}

func (e *WriteError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("write %s: %v", e.Format, e.Err)
	}
	return fmt.Sprintf("write %s %s: %v", e.Format, e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// ParseFormat accepts a format name with or without a leading dot.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")))
	switch f {
	case FormatDST, FormatEXP, FormatPES, FormatJEF, FormatPNG, FormatSVG, FormatPDF:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// FormatFor picks the format from the file extension. Paths without an
// extension, or with one no encoder knows, get DST.
func FormatFor(path string) Format {
	f, err := ParseFormat(filepath.Ext(path))
	if err != nil {
		return FormatDST
	}
	return f
}

// Encode writes p to w in the given format.
func Encode(w io.Writer, f Format, p *pattern.Pattern, opt PreviewOptions) error {
	var err error
	switch f {
	case FormatDST:
		err = WriteDST(w, p)
	case FormatEXP:
		err = WriteEXP(w, p)
	case FormatPES:
		err = WritePES(w, p)
	case FormatJEF:
		err = WriteJEF(w, p)
	case FormatPNG:
		err = WritePNG(w, p, opt)
	case FormatSVG:
		err = WriteSVG(w, p, opt)
	case FormatPDF:
		err = WritePDF(w, p, opt)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
	}
	if err != nil {
		return &WriteError{Format: f, Err: err}
	}
	return nil
}

// WriteFile encodes p into path, choosing the format from the extension. The
// file is replaced atomically; an existing file is kept as a backup.
func WriteFile(path string, p *pattern.Pattern, opt PreviewOptions) error {
	f := FormatFor(path)
	var buf bytes.Buffer
	if err := Encode(&buf, f, p, opt); err != nil {
		var we *WriteError
		if errors.As(err, &we) {
			we.Path = path
		}
		return err
	}
	if err := storage.WriteFileAtomic(path, buf.Bytes(), true); err != nil {
		return &WriteError{Format: f, Path: path, Err: err}
	}
	applog.WithOperation(applog.WithComponent("export"), "write").Info("wrote output",
		"format", string(f), "path", path, "bytes", buf.Len())
	return nil
}
