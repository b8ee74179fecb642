/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"svgstitch/internal/config"
	"svgstitch/internal/domain"
	applog "svgstitch/internal/log"
	"svgstitch/internal/pattern"
	"svgstitch/internal/storage"
	"svgstitch/internal/svg"
	"svgstitch/internal/thread"
)

// app is the state shared by all commands of one invocation.
type app struct {
	out    io.Writer
	errOut io.Writer

	cfgPath   string
	dataDir   string
	logLevel  string
	logFormat string
	strict    bool

	cfg   config.AppConfig
	pal   *thread.Palette
	log   *slog.Logger
	store *storage.Store
}

func newApp(out, errOut io.Writer) *app {
	return &app{out: out, errOut: errOut, cfg: config.Defaults(), log: applog.WithComponent("cli")}
}

// setup loads the configuration and initialises logging. It runs before
// every command.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.cfgPath)
	if err != nil {
		return &usageError{err: fmt.Errorf("config: %w", err)}
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	if a.logFormat != "" {
		cfg.Logging.Format = a.logFormat
	}
	if a.dataDir != "" {
		cfg.DataDir = a.dataDir
	}
	a.cfg = cfg
	applog.Init(applog.Options{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.Source,
		File:      cfg.Logging.File,
		Output:    a.errOut,
	})
	a.log = applog.WithComponent("cli")
	a.log.Debug("start", slog.String("command", cmd.CommandPath()), slog.String("version", versionString()))
	return nil
}

// applyStitchFlags copies explicitly set flags into the config, then
// validates the result.
func (a *app) applyStitchFlags(cmd *cobra.Command) error {
	for flag, key := range stitchFlagKeys {
		f := cmd.Flags().Lookup(flag)
		if f == nil || !f.Changed {
			continue
		}
		v := f.Value.String()
		if flag == "no-center" {
			v = fmt.Sprint(v != "true")
		}
		if err := a.cfg.Set(key, v); err != nil {
			return &usageError{err: err}
		}
	}
	if err := a.cfg.Validate(); err != nil {
		return &usageError{err: err}
	}
	pal, err := a.cfg.ThreadPalette()
	if err != nil {
		return &usageError{err: err}
	}
	a.pal = pal
	return nil
}

var stitchFlagKeys = map[string]string{
	"step":           "stitch.step_size",
	"fill-step":      "stitch.fill_step_size",
	"scale":          "stitch.scale",
	"no-center":      "stitch.center",
	"strategy":       "stitch.fill_strategy",
	"fill-spacing":   "stitch.fill_spacing",
	"stitch-spacing": "stitch.stitch_spacing",
	"layers":         "stitch.layer_count",
	"layer-spacing":  "stitch.layer_spacing",
	"workers":        "stitch.workers",
	"size":           "output.preview_size",
	"show-jumps":     "output.show_jumps",
}

func addStitchFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Float64("step", 0, "stroke sampling step")
	f.Float64("fill-step", 0, "fill outline sampling step (0 uses --step)")
	f.Float64("scale", 0, "output scale factor")
	f.Bool("no-center", false, "keep canvas coordinates instead of centering on the canvas")
	f.String("strategy", "", "fill strategy: scanline, concentric, raster or none")
	f.Float64("fill-spacing", 0, "distance between fill rows or rings")
	f.Float64("stitch-spacing", 0, "scanline probe spacing")
	f.Int("layers", 0, "concentric ring count")
	f.Float64("layer-spacing", 0, "concentric ring spacing")
	f.Int("workers", 0, "parallel workers (0 uses all CPUs)")
}

func addPreviewFlags(cmd *cobra.Command) {
	cmd.Flags().Int("size", 0, "preview size in pixels (longest side)")
	cmd.Flags().Bool("show-jumps", false, "draw jumps in previews")
}

// loadDesign reads an SVG file or a design manifest (.json).
func (a *app) loadDesign(path string) (*domain.Design, error) {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return storage.OpenManifest(path, a.pal)
	}
	return svg.ReadFile(path, svg.Options{Palette: a.pal, Strict: a.strict})
}

// readDesign decodes an SVG already in memory.
func (a *app) readDesign(name string, data []byte) (*domain.Design, error) {
	d, err := svg.Read(bytes.NewReader(data), svg.Options{Palette: a.pal, Strict: a.strict})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if d.Name == "" {
		d.Name = strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	}
	d.Metadata.Source = name
	return d, nil
}

func (a *app) assemble(ctx context.Context, d *domain.Design) (*pattern.Pattern, error) {
	opts, err := a.cfg.Stitch.AssemblerOptions()
	if err != nil {
		return nil, &usageError{err: err}
	}
	return pattern.NewAssembler(opts).AssembleDesign(ctx, d)
}

func (a *app) dataDirPath() (string, error) {
	if a.cfg.DataDir != "" {
		return a.cfg.DataDir, nil
	}
	return storage.DefaultDir()
}

// openStore opens the history database once per invocation.
func (a *app) openStore() (*storage.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	dir, err := a.dataDirPath()
	if err != nil {
		return nil, err
	}
	st, err := storage.Open(dir)
	if err != nil {
		return nil, err
	}
	a.store = st
	return st, nil
}

func (a *app) close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn("close store", slog.Any("err", err))
		}
		a.store = nil
	}
}

// crashDir is where crash reports go; errors fall back to the temp dir.
func (a *app) crashDir() string {
	dir, err := a.dataDirPath()
	if err != nil {
		return ""
	}
	return dir
}

func (a *app) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(a.out, format, args...)
}
