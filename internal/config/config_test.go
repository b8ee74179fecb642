/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"svgstitch/internal/pattern"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	def := Defaults()
	if cfg.Stitch.StepSize != def.Stitch.StepSize || cfg.Output.Format != "dst" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if !cfg.Stitch.CenterEnabled() {
		t.Fatalf("center should default to true")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}

func TestLoad_MergesFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := `config_version: 1
stitch:
  step_size: 2.5
  center: false
  fill_strategy: Concentric
output:
  format: exp
logging:
  level: DEBUG
palette:
  brand: "#112233"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvScale, "2")
	t.Setenv(EnvLogFormat, "JSON")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Stitch.StepSize != 2.5 {
		t.Fatalf("step_size: got %v", cfg.Stitch.StepSize)
	}
	if cfg.Stitch.CenterEnabled() {
		t.Fatalf("center: file said false")
	}
	if cfg.Stitch.FillStrategy != "concentric" {
		t.Fatalf("fill_strategy: got %q", cfg.Stitch.FillStrategy)
	}
	if cfg.Stitch.FillSpacing != Defaults().Stitch.FillSpacing {
		t.Fatalf("unset fields must keep defaults, got fill_spacing %v", cfg.Stitch.FillSpacing)
	}
	if cfg.Output.Format != "exp" || cfg.Logging.Level != "debug" {
		t.Fatalf("output/logging not merged: %+v %+v", cfg.Output, cfg.Logging)
	}
	if cfg.Stitch.Scale != 2 || cfg.Logging.Format != "json" {
		t.Fatalf("env overrides not applied: scale=%v format=%q", cfg.Stitch.Scale, cfg.Logging.Format)
	}
	if env, ok := EnvOverrideFor("stitch.scale"); !ok || env != EnvScale {
		t.Fatalf("EnvOverrideFor: %q %v", env, ok)
	}
	if _, ok := EnvOverrideFor("stitch.step_size"); ok {
		t.Fatalf("step_size is not overridden")
	}
	pal, err := cfg.ThreadPalette()
	if err != nil {
		t.Fatalf("palette: %v", err)
	}
	if c, ok := pal.Lookup("Brand"); !ok || c.Hex() != "#112233" {
		t.Fatalf("palette lookup: %v %v", c, ok)
	}
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("stitch: [unterminated"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(bad); err == nil {
		t.Fatalf("expected parse error")
	}

	t.Setenv(EnvWorkers, "many")
	_, err := Load(filepath.Join(dir, "none.yaml"))
	if err == nil || !strings.Contains(err.Error(), EnvWorkers) {
		t.Fatalf("expected env parse error naming %s, got %v", EnvWorkers, err)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Defaults()
	if err := cfg.Set("stitch.fill_spacing", "5.5"); err != nil {
		t.Fatal(err)
	}
	if err := cfg.Set("stitch.center", "off"); err != nil {
		t.Fatal(err)
	}
	if err := cfg.Set("palette.Gold", "#FFD700"); err != nil {
		t.Fatal(err)
	}
	if err := Save(cfg, path); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Stitch.FillSpacing != 5.5 || got.Stitch.CenterEnabled() || got.Palette["gold"] != "#FFD700" {
		t.Fatalf("round trip lost values: %+v palette=%v", got.Stitch, got.Palette)
	}
	if v, _ := got.Get("stitch.fill_spacing"); v != "5.5" {
		t.Fatalf("Get: %q", v)
	}
}

func TestSetAndGet(t *testing.T) {
	cfg := Defaults()
	if err := cfg.Set("nope", "1"); err == nil {
		t.Fatalf("unknown key should fail")
	}
	if err := cfg.Set("stitch.layer_count", "x"); err == nil {
		t.Fatalf("bad int should fail")
	}
	if err := cfg.Set("output.show_jumps", "yes"); err != nil || !cfg.Output.ShowJumps {
		t.Fatalf("bool set: %v %v", err, cfg.Output.ShowJumps)
	}
	if _, err := cfg.Get("missing.key"); err == nil {
		t.Fatalf("unknown key should fail")
	}
	keys := Keys()
	for i := 1; i < len(keys); i++ {
		if keys[i-1] >= keys[i] {
			t.Fatalf("keys not sorted: %v", keys)
		}
	}
}

func TestValidate_JoinsErrors(t *testing.T) {
	cfg := Defaults()
	cfg.Stitch.FillSpacing = 0
	cfg.Stitch.StitchSpacing = -1
	cfg.Stitch.FillStrategy = "zigzag"
	cfg.Output.Format = "jef"
	err := cfg.Validate()
	if err == nil {
		t.Fatalf("expected validation errors")
	}
	msg := err.Error()
	for _, want := range []string{"stitch.fill_spacing", "stitch.stitch_spacing", "stitch.fill_strategy", "output.format"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("missing %q in %v", want, msg)
		}
	}
	var joined interface{ Unwrap() []error }
	if !errors.As(err, &joined) || len(joined.Unwrap()) != 4 {
		t.Fatalf("expected 4 joined errors, got %v", err)
	}
}

func TestAssemblerOptions(t *testing.T) {
	cfg := Defaults()
	cfg.Stitch.FillStrategy = "raster"
	cfg.Stitch.FillSpacing = 6
	cfg.Stitch.Workers = 3
	opts, err := cfg.Stitch.AssemblerOptions()
	if err != nil {
		t.Fatal(err)
	}
	if opts.Strategy != pattern.RasterScan || opts.Raster.RowSpacing != 6 || opts.Scanline.RowSpacing != 6 {
		t.Fatalf("unexpected options: %+v", opts)
	}
	if !opts.Center || opts.Workers != 3 {
		t.Fatalf("center/workers not mapped: %+v", opts)
	}
	cfg.Stitch.FillStrategy = "bogus"
	if _, err := cfg.Stitch.AssemblerOptions(); err == nil {
		t.Fatalf("bogus strategy should fail")
	}
}

func TestLoadFile_IgnoresEnv(t *testing.T) {
	t.Setenv(EnvStepSize, "9")
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "none.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Stitch.StepSize != Defaults().Stitch.StepSize {
		t.Fatalf("LoadFile applied env override: %v", cfg.Stitch.StepSize)
	}
}
