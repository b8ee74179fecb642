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
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"svgstitch/internal/export"
	applog "svgstitch/internal/log"
	"svgstitch/internal/pattern"
	"svgstitch/internal/stitch"
	"svgstitch/internal/storage"
	"svgstitch/internal/thread"
)

// AppConfig is the user-editable configuration persisted to a YAML file in the user scope.
// Environment variables are treated as read-only overrides at runtime.
//
// config_version: bump when the structure changes in a backward-incompatible way.
// Unknown fields are ignored on unmarshal.

type StitchConfig struct {
	StepSize       float64 `yaml:"step_size"`
	FillStepSize   float64 `yaml:"fill_step_size"`
	MinSamples     int     `yaml:"min_samples"`
	Tolerance      float64 `yaml:"tolerance"`
	Scale          float64 `yaml:"scale"`
	Center         *bool   `yaml:"center,omitempty"`
	FillStrategy   string  `yaml:"fill_strategy"`
	FillSpacing    float64 `yaml:"fill_spacing"`
	StitchSpacing  float64 `yaml:"stitch_spacing"`
	MinRunWidth    float64 `yaml:"min_run_width"`
	LayerCount     int     `yaml:"layer_count"`
	LayerSpacing   float64 `yaml:"layer_spacing"`
	RasterPPU      float64 `yaml:"raster_ppu"`
	RasterMinRunPx int     `yaml:"raster_min_run_px"`
	Workers        int     `yaml:"workers"`
}

type OutputConfig struct {
	Format      string `yaml:"format"`
	Preset      string `yaml:"preset"`
	Dir         string `yaml:"dir"`
	PreviewSize int    `yaml:"preview_size"`
	ShowJumps   bool   `yaml:"show_jumps"`
	HistoryKeep int    `yaml:"history_keep"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type AppConfig struct {
	ConfigVersion int               `yaml:"config_version"`
	DataDir       string            `yaml:"data_dir,omitempty"`
	Stitch        StitchConfig      `yaml:"stitch"`
	Output        OutputConfig      `yaml:"output"`
	Logging       LoggingConfig     `yaml:"logging"`
	Palette       map[string]string `yaml:"palette,omitempty"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	center := true
	return AppConfig{
		ConfigVersion: 1,
		Stitch: StitchConfig{
			StepSize:       pattern.DefaultStepSize,
			MinSamples:     pattern.DefaultMinSamples,
			Tolerance:      0.05,
			Scale:          pattern.DefaultScale,
			Center:         &center,
			FillStrategy:   pattern.Scanline.String(),
			FillSpacing:    stitch.DefaultRowSpacing,
			StitchSpacing:  stitch.DefaultProbeSpacing,
			MinRunWidth:    stitch.DefaultMinRunWidth,
			LayerCount:     stitch.DefaultLayers,
			LayerSpacing:   stitch.DefaultLayerSpacing,
			RasterPPU:      stitch.DefaultPixelsPerUnit,
			RasterMinRunPx: stitch.DefaultMinRunPixels,
			Workers:        runtime.NumCPU(),
		},
		Output: OutputConfig{
			Format:      string(export.FormatDST),
			Preset:      string(export.PresetMachine),
			PreviewSize: 800,
			HistoryKeep: 200,
		},
		Logging: LoggingConfig{Level: "info", Format: "console"},
	}
}

// CenterEnabled reports whether output is recentred on the canvas.
func (s StitchConfig) CenterEnabled() bool { return s.Center == nil || *s.Center }

// ConfigPath returns the per-user config file path.
func ConfigPath() (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" { // fallback
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "svgstitch")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "svgstitch")
	default: // linux and others
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			base = filepath.Join(xdg, "svgstitch")
		} else {
			base = filepath.Join(os.Getenv("HOME"), ".config", "svgstitch")
		}
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads the config file at path (the per-user file when empty), applies
// defaults and merges environment overrides. A missing file is not an error.
func Load(path string) (AppConfig, error) {
	cfg, err := LoadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := applyEnvOverrides(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadFile is Load without environment overrides.
func LoadFile(path string) (AppConfig, error) {
	cfg := Defaults()
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return cfg, err
		}
		path = p
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
		mergeInto(&cfg, &fileCfg)
	case !errors.Is(err, os.ErrNotExist):
		return cfg, fmt.Errorf("read %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config YAML to path (the per-user file when empty).
func Save(cfg AppConfig, path string) error {
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return err
		}
		path = p
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return storage.WriteFileAtomic(path, data, false)
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	if strings.TrimSpace(src.DataDir) != "" {
		dst.DataDir = strings.TrimSpace(src.DataDir)
	}
	mergeStitch(&dst.Stitch, &src.Stitch)

	if v := strings.ToLower(strings.TrimSpace(src.Output.Format)); v != "" {
		dst.Output.Format = v
	}
	if v := strings.ToLower(strings.TrimSpace(src.Output.Preset)); v != "" {
		dst.Output.Preset = v
	}
	if v := strings.TrimSpace(src.Output.Dir); v != "" {
		dst.Output.Dir = v
	}
	if src.Output.PreviewSize != 0 {
		dst.Output.PreviewSize = src.Output.PreviewSize
	}
	if src.Output.HistoryKeep != 0 {
		dst.Output.HistoryKeep = src.Output.HistoryKeep
	}
	// booleans: copy directly from src (file) so user preferences persist
	dst.Output.ShowJumps = src.Output.ShowJumps

	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}

	if len(src.Palette) > 0 {
		if dst.Palette == nil {
			dst.Palette = map[string]string{}
		}
		for k, v := range src.Palette {
			dst.Palette[k] = v
		}
	}
}

func mergeStitch(dst, src *StitchConfig) {
	setF := func(d *float64, s float64) {
		if s != 0 {
			*d = s
		}
	}
	setI := func(d *int, s int) {
		if s != 0 {
			*d = s
		}
	}
	setF(&dst.StepSize, src.StepSize)
	setF(&dst.FillStepSize, src.FillStepSize)
	setI(&dst.MinSamples, src.MinSamples)
	setF(&dst.Tolerance, src.Tolerance)
	setF(&dst.Scale, src.Scale)
	if src.Center != nil {
		c := *src.Center
		dst.Center = &c
	}
	if v := strings.ToLower(strings.TrimSpace(src.FillStrategy)); v != "" {
		dst.FillStrategy = v
	}
	setF(&dst.FillSpacing, src.FillSpacing)
	setF(&dst.StitchSpacing, src.StitchSpacing)
	setF(&dst.MinRunWidth, src.MinRunWidth)
	setI(&dst.LayerCount, src.LayerCount)
	setF(&dst.LayerSpacing, src.LayerSpacing)
	setF(&dst.RasterPPU, src.RasterPPU)
	setI(&dst.RasterMinRunPx, src.RasterMinRunPx)
	setI(&dst.Workers, src.Workers)
}

// Validate reports every invalid setting at once.
func (c AppConfig) Validate() error {
	var errs []error
	positive := func(key string, v float64) {
		if !(v > 0) {
			errs = append(errs, fmt.Errorf("%s must be positive, got %g", key, v))
		}
	}
	s := c.Stitch
	positive("stitch.step_size", s.StepSize)
	if s.FillStepSize < 0 {
		errs = append(errs, fmt.Errorf("stitch.fill_step_size must not be negative, got %g", s.FillStepSize))
	}
	if s.MinSamples < 1 {
		errs = append(errs, fmt.Errorf("stitch.min_samples must be at least 1, got %d", s.MinSamples))
	}
	positive("stitch.tolerance", s.Tolerance)
	if s.Scale == 0 {
		errs = append(errs, errors.New("stitch.scale must not be zero"))
	}
	positive("stitch.fill_spacing", s.FillSpacing)
	positive("stitch.stitch_spacing", s.StitchSpacing)
	if s.LayerCount < 1 {
		errs = append(errs, fmt.Errorf("stitch.layer_count must be at least 1, got %d", s.LayerCount))
	}
	positive("stitch.layer_spacing", s.LayerSpacing)
	positive("stitch.raster_ppu", s.RasterPPU)
	if s.Workers < 0 {
		errs = append(errs, fmt.Errorf("stitch.workers must not be negative, got %d", s.Workers))
	}
	if _, err := pattern.ParseFillStrategy(s.FillStrategy); err != nil {
		errs = append(errs, fmt.Errorf("stitch.fill_strategy: %w", err))
	}
	if _, err := export.ParseFormat(c.Output.Format); err != nil {
		errs = append(errs, fmt.Errorf("output.format: %w", err))
	}
	if _, err := export.ParsePreset(c.Output.Preset); err != nil {
		errs = append(errs, fmt.Errorf("output.preset: %w", err))
	}
	if _, err := thread.NewPalette(c.Palette); err != nil {
		errs = append(errs, fmt.Errorf("palette: %w", err))
	}
	return errors.Join(errs...)
}

// AssemblerOptions maps the stitch section onto pattern.Options.
func (s StitchConfig) AssemblerOptions() (pattern.Options, error) {
	strategy, err := pattern.ParseFillStrategy(s.FillStrategy)
	if err != nil {
		return pattern.Options{}, err
	}
	return pattern.Options{
		StepSize:     s.StepSize,
		FillStepSize: s.FillStepSize,
		MinSamples:   s.MinSamples,
		Tolerance:    s.Tolerance,
		Scale:        s.Scale,
		Center:       s.CenterEnabled(),
		Strategy:     strategy,
		Scanline: stitch.ScanlineOptions{
			RowSpacing:   s.FillSpacing,
			ProbeSpacing: s.StitchSpacing,
			MinRunWidth:  s.MinRunWidth,
			Workers:      s.Workers,
		},
		Concentric: stitch.ConcentricOptions{Layers: s.LayerCount, Spacing: s.LayerSpacing},
		Raster: stitch.RasterOptions{
			PixelsPerUnit: s.RasterPPU,
			RowSpacing:    s.FillSpacing,
			MinRunPixels:  s.RasterMinRunPx,
			MinRunWidth:   s.MinRunWidth,
			Workers:       s.Workers,
		},
		Workers: s.Workers,
	}, nil
}

// ThreadPalette is the default palette extended with the configured colors.
func (c AppConfig) ThreadPalette() (*thread.Palette, error) {
	return thread.NewPalette(c.Palette)
}

// PreviewOptions maps the output section onto export.PreviewOptions.
func (o OutputConfig) PreviewOptions() export.PreviewOptions {
	return export.PreviewOptions{Size: o.PreviewSize, ShowJumps: o.ShowJumps}
}

// setting binds a dotted key to a field, and optionally to an env var.
type setting struct {
	key string
	env string
	get func(*AppConfig) string
	set func(*AppConfig, string) error
}

func floatSetting(key, env string, field func(*AppConfig) *float64) setting {
	return setting{key: key, env: env,
		get: func(c *AppConfig) string { return strconv.FormatFloat(*field(c), 'g', -1, 64) },
		set: func(c *AppConfig, v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return err
			}
			*field(c) = f
			return nil
		}}
}

func intSetting(key, env string, field func(*AppConfig) *int) setting {
	return setting{key: key, env: env,
		get: func(c *AppConfig) string { return strconv.Itoa(*field(c)) },
		set: func(c *AppConfig, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return err
			}
			*field(c) = n
			return nil
		}}
}

func stringSetting(key, env string, lower bool, field func(*AppConfig) *string) setting {
	return setting{key: key, env: env,
		get: func(c *AppConfig) string { return *field(c) },
		set: func(c *AppConfig, v string) error {
			if lower {
				v = strings.ToLower(v)
			}
			*field(c) = v
			return nil
		}}
}

func boolSetting(key, env string, field func(*AppConfig) *bool) setting {
	return setting{key: key, env: env,
		get: func(c *AppConfig) string { return strconv.FormatBool(*field(c)) },
		set: func(c *AppConfig, v string) error {
			*field(c) = parseBool(v)
			return nil
		}}
}

func parseBool(v string) bool {
	lv := strings.ToLower(strings.TrimSpace(v))
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}

// Env var names used as overrides.
const (
	EnvDataDir      = "SVGSTITCH_DATA_DIR"
	EnvStepSize     = "SVGSTITCH_STEP_SIZE"
	EnvScale        = "SVGSTITCH_SCALE"
	EnvFillStrategy = "SVGSTITCH_FILL_STRATEGY"
	EnvFillSpacing  = "SVGSTITCH_FILL_SPACING"
	EnvWorkers      = "SVGSTITCH_WORKERS"
	EnvOutputFormat = "SVGSTITCH_OUTPUT_FORMAT"
	EnvOutputDir    = "SVGSTITCH_OUTPUT_DIR"
	// Logging envs are shared with the log package.
	EnvLogLevel  = applog.EnvLevel
	EnvLogFormat = applog.EnvFormat
	EnvLogSource = applog.EnvSource
	EnvLogFile   = applog.EnvFile
)

var settings = []setting{
	stringSetting("data_dir", EnvDataDir, false, func(c *AppConfig) *string { return &c.DataDir }),
	floatSetting("stitch.step_size", EnvStepSize, func(c *AppConfig) *float64 { return &c.Stitch.StepSize }),
	floatSetting("stitch.fill_step_size", "", func(c *AppConfig) *float64 { return &c.Stitch.FillStepSize }),
	intSetting("stitch.min_samples", "", func(c *AppConfig) *int { return &c.Stitch.MinSamples }),
	floatSetting("stitch.tolerance", "", func(c *AppConfig) *float64 { return &c.Stitch.Tolerance }),
	floatSetting("stitch.scale", EnvScale, func(c *AppConfig) *float64 { return &c.Stitch.Scale }),
	{key: "stitch.center",
		get: func(c *AppConfig) string { return strconv.FormatBool(c.Stitch.CenterEnabled()) },
		set: func(c *AppConfig, v string) error {
			b := parseBool(v)
			c.Stitch.Center = &b
			return nil
		}},
	stringSetting("stitch.fill_strategy", EnvFillStrategy, true, func(c *AppConfig) *string { return &c.Stitch.FillStrategy }),
	floatSetting("stitch.fill_spacing", EnvFillSpacing, func(c *AppConfig) *float64 { return &c.Stitch.FillSpacing }),
	floatSetting("stitch.stitch_spacing", "", func(c *AppConfig) *float64 { return &c.Stitch.StitchSpacing }),
	floatSetting("stitch.min_run_width", "", func(c *AppConfig) *float64 { return &c.Stitch.MinRunWidth }),
	intSetting("stitch.layer_count", "", func(c *AppConfig) *int { return &c.Stitch.LayerCount }),
	floatSetting("stitch.layer_spacing", "", func(c *AppConfig) *float64 { return &c.Stitch.LayerSpacing }),
	floatSetting("stitch.raster_ppu", "", func(c *AppConfig) *float64 { return &c.Stitch.RasterPPU }),
	intSetting("stitch.raster_min_run_px", "", func(c *AppConfig) *int { return &c.Stitch.RasterMinRunPx }),
	intSetting("stitch.workers", EnvWorkers, func(c *AppConfig) *int { return &c.Stitch.Workers }),
	stringSetting("output.format", EnvOutputFormat, true, func(c *AppConfig) *string { return &c.Output.Format }),
	stringSetting("output.preset", "", true, func(c *AppConfig) *string { return &c.Output.Preset }),
	stringSetting("output.dir", EnvOutputDir, false, func(c *AppConfig) *string { return &c.Output.Dir }),
	intSetting("output.preview_size", "", func(c *AppConfig) *int { return &c.Output.PreviewSize }),
	boolSetting("output.show_jumps", "", func(c *AppConfig) *bool { return &c.Output.ShowJumps }),
	intSetting("output.history_keep", "", func(c *AppConfig) *int { return &c.Output.HistoryKeep }),
	stringSetting("logging.level", EnvLogLevel, true, func(c *AppConfig) *string { return &c.Logging.Level }),
	stringSetting("logging.format", EnvLogFormat, true, func(c *AppConfig) *string { return &c.Logging.Format }),
	boolSetting("logging.source", EnvLogSource, func(c *AppConfig) *bool { return &c.Logging.Source }),
	stringSetting("logging.file", EnvLogFile, false, func(c *AppConfig) *string { return &c.Logging.File }),
}

func lookup(key string) (setting, bool) {
	for _, s := range settings {
		if s.key == key {
			return s, true
		}
	}
	return setting{}, false
}

func applyEnvOverrides(cfg *AppConfig) error {
	var errs []error
	for _, s := range settings {
		if s.env == "" {
			continue
		}
		v := strings.TrimSpace(os.Getenv(s.env))
		if v == "" {
			continue
		}
		if err := s.set(cfg, v); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.env, err))
		}
	}
	return errors.Join(errs...)
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	s, ok := lookup(key)
	if !ok || s.env == "" || os.Getenv(s.env) == "" {
		return "", false
	}
	return s.env, true
}

// Keys lists every dotted key accepted by Get and Set, sorted.
func Keys() []string {
	out := make([]string, 0, len(settings))
	for _, s := range settings {
		out = append(out, s.key)
	}
	sort.Strings(out)
	return out
}

// Get returns the value of a dotted key such as "stitch.step_size".
func (c *AppConfig) Get(key string) (string, error) {
	s, ok := lookup(key)
	if !ok {
		return "", fmt.Errorf("unknown config key %q", key)
	}
	return s.get(c), nil
}

// Set parses and stores value under a dotted key. Palette entries use the
// form "palette.<name>".
func (c *AppConfig) Set(key, value string) error {
	if name, ok := strings.CutPrefix(key, "palette."); ok && name != "" {
		if c.Palette == nil {
			c.Palette = map[string]string{}
		}
		c.Palette[strings.ToLower(name)] = value
		return nil
	}
	s, ok := lookup(key)
	if !ok {
		return fmt.Errorf("unknown config key %q", key)
	}
	if err := s.set(c, strings.TrimSpace(value)); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	return nil
}
