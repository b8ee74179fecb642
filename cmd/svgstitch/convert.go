/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"svgstitch/internal/export"
	applog "svgstitch/internal/log"
	"svgstitch/internal/pattern"
	"svgstitch/internal/storage"
	"svgstitch/internal/telemetry"
)

type convertFlags struct {
	output  string
	outDir  string
	preset  string
	formats []string
	noHist  bool
}

func newConvertCmd(a *app) *cobra.Command {
	var f convertFlags
	cmd := &cobra.Command{
		Use:   "convert <input.svg|design.json>",
		Short: "Convert a design into stitch files",
		Long: `Convert reads an SVG (or a design manifest) and writes the stitch pattern.

With -o the output format follows the file extension (.dst, .exp, .pes, .jef,
.png, .svg, .pdf); any other extension is written as DST. Otherwise every
format of --formats (or of the preset) is written into the output directory.`,
		Args: args(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, in []string) error {
			if err := a.applyStitchFlags(cmd); err != nil {
				return err
			}
			return a.convert(cmd.Context(), in[0], f)
		},
	}
	fl := cmd.Flags()
	fl.StringVarP(&f.output, "output", "o", "", "output file; the extension picks the format")
	fl.StringVar(&f.outDir, "out-dir", "", "output directory for batch export (default: config output.dir or next to the input)")
	fl.StringVar(&f.preset, "preset", "", "export preset: machine, proof or web")
	fl.StringSliceVar(&f.formats, "formats", nil, "formats to write: dst, exp, pes, jef, png, svg, pdf, source")
	fl.BoolVar(&f.noHist, "no-history", false, "do not record the conversion in the history")
	addStitchFlags(cmd)
	addPreviewFlags(cmd)
	return cmd
}

func (a *app) convert(ctx context.Context, in string, f convertFlags) error {
	l := applog.WithOperation(a.log, "convert").With(slog.String("input", in))
	start := time.Now()
	rec := storage.Conversion{
		ID:        storage.NewConversionID(),
		StartedAt: start,
		Source:    absPath(in),
		Strategy:  a.cfg.Stitch.FillStrategy,
	}

	ctx = applog.WithJob(ctx, rec.ID)
	written, p, shapes, err := a.convertTo(ctx, in, f)
	rec.Duration = time.Since(start)
	rec.Shapes = shapes
	if p != nil {
		s := p.Summary()
		rec.Stitches, rec.Colors = s.Stitches, len(p.Threads)
		rec.Width, rec.Height = s.Width, s.Height
	}
	if len(written) > 0 {
		rec.Output = strings.Join(written, string(os.PathListSeparator))
		rec.Format = strings.TrimPrefix(filepath.Ext(written[0]), ".")
	}
	rec.Status = storage.StatusOK
	if err != nil {
		rec.Status, rec.Error = storage.StatusFailed, err.Error()
	}
	if !f.noHist {
		a.recordHistory(ctx, &rec)
	}
	telemetry.Default().Converted(telemetry.Conversion{
		Format:   rec.Format,
		Strategy: rec.Strategy,
		Shapes:   rec.Shapes,
		Stitches: rec.Stitches,
		Colors:   rec.Colors,
		Duration: rec.Duration,
		Failed:   err != nil,
	})
	if err != nil {
		l.ErrorContext(ctx, "convert failed", slog.Any("err", err))
		return err
	}

	s := p.Summary()
	l.InfoContext(ctx, "converted", slog.Int("stitches", s.Stitches), slog.Duration("took", rec.Duration))
	a.printf("%s: %d stitches, %d colors (%d fill, %d stroke), %.1f x %.1f\n",
		s.Name, s.Stitches, len(p.Threads), s.FillColors, s.StrokeColors, s.Width, s.Height)
	for _, w := range written {
		a.printf("  wrote %s\n", w)
	}
	return nil
}

func (a *app) convertTo(ctx context.Context, in string, f convertFlags) ([]string, *pattern.Pattern, int, error) {
	d, err := a.loadDesign(in)
	if err != nil {
		return nil, nil, 0, err
	}
	p, err := a.assemble(ctx, d)
	if err != nil {
		return nil, nil, len(d.Shapes), err
	}
	popt := a.cfg.Output.PreviewOptions()

	if f.output != "" {
		if err := export.WriteFile(f.output, p, popt); err != nil {
			return nil, p, len(d.Shapes), err
		}
		return []string{f.output}, p, len(d.Shapes), nil
	}

	preset, err := export.ParsePreset(firstNonEmpty(f.preset, a.cfg.Output.Preset))
	if err != nil {
		return nil, p, len(d.Shapes), &usageError{err: err}
	}
	formats := f.formats
	if len(formats) == 0 && f.preset == "" && preset == export.PresetMachine {
		formats = []string{a.cfg.Output.Format}
	}
	outDir := firstNonEmpty(f.outDir, a.cfg.Output.Dir, filepath.Dir(in))
	written, err := export.BatchExport(p, export.BatchOptions{
		Preset:   preset,
		Formats:  formats,
		OutDir:   outDir,
		BaseName: strings.TrimSuffix(filepath.Base(in), filepath.Ext(in)),
		Source:   svgSource(in),
		Preview:  popt,
	})
	return written, p, len(d.Shapes), err
}

func (a *app) recordHistory(ctx context.Context, rec *storage.Conversion) {
	st, err := a.openStore()
	if err != nil {
		a.log.Warn("history unavailable", slog.Any("err", err))
		return
	}
	if err := st.RecordConversion(ctx, rec); err != nil {
		a.log.Warn("record conversion", slog.Any("err", err))
		return
	}
	if keep := a.cfg.Output.HistoryKeep; keep > 0 {
		if _, err := st.PruneConversions(ctx, keep); err != nil {
			a.log.Warn("prune history", slog.Any("err", err))
		}
	}
}

// svgSource is the input path when it can be rendered as a source preview.
func svgSource(in string) string {
	if strings.EqualFold(filepath.Ext(in), ".svg") {
		return in
	}
	return ""
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
