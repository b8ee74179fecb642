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
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"svgstitch/internal/export"
	"svgstitch/internal/storage"
)

func newPreviewCmd(a *app) *cobra.Command {
	var (
		output string
		source bool
		noCach bool
	)
	cmd := &cobra.Command{
		Use:   "preview <input.svg>",
		Short: "Render a PNG preview of the stitches (or of the source artwork)",
		Args:  args(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, in []string) error {
			if err := a.applyStitchFlags(cmd); err != nil {
				return err
			}
			if output == "" {
				output = strings.TrimSuffix(in[0], ".svg") + ".preview.png"
			}
			return a.preview(cmd.Context(), in[0], output, source, !noCach)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output PNG (default <input>.preview.png)")
	cmd.Flags().BoolVar(&source, "source", false, "render the SVG itself instead of its stitches")
	cmd.Flags().BoolVar(&noCach, "no-cache", false, "bypass the preview cache")
	addStitchFlags(cmd)
	addPreviewFlags(cmd)
	return cmd
}

func (a *app) preview(ctx context.Context, in, out string, source, useCache bool) error {
	l := a.log.With(slog.String("op", "preview"), slog.String("input", in))
	src, err := os.ReadFile(in)
	if err != nil {
		return err
	}
	popt := a.cfg.Output.PreviewOptions()
	kind := storage.PreviewKindStitches
	if source {
		kind = storage.PreviewKindSource
	}
	gen := func(ctx context.Context) ([]byte, error) {
		var buf bytes.Buffer
		if source {
			err := export.WriteSourcePNG(&buf, bytes.NewReader(src), popt)
			return buf.Bytes(), err
		}
		d, err := a.readDesign(in, src)
		if err != nil {
			return nil, err
		}
		p, err := a.assemble(ctx, d)
		if err != nil {
			return nil, err
		}
		err = export.Encode(&buf, export.FormatPNG, p, popt)
		return buf.Bytes(), err
	}

	var blob []byte
	var hit bool
	st, serr := a.openStore()
	switch {
	case !useCache || serr != nil:
		if serr != nil {
			l.Warn("preview cache unavailable", slog.Any("err", serr))
		}
		blob, err = gen(ctx)
	default:
		key := storage.PreviewKey(src, kind, a.settingsKey(), strconv.FormatBool(popt.ShowJumps))
		blob, hit, err = st.GetOrCreatePreview(ctx, key, kind, popt.Size, gen)
		if err == nil && !hit {
			if eerr := st.EvictPreviewsToFit(ctx, storage.MaxPreviewsBytesFromEnv()); eerr != nil {
				l.Warn("evict previews", slog.Any("err", eerr))
			}
		}
	}
	if err != nil {
		return err
	}
	if err := storage.WriteFileAtomic(out, blob, false); err != nil {
		return err
	}
	l.Info("preview written", slog.String("path", out), slog.Bool("cached", hit), slog.Int("bytes", len(blob)))
	a.printf("wrote %s\n", out)
	return nil
}

// settingsKey serialises the stitch settings so that any change misses the cache.
func (a *app) settingsKey() string {
	b, err := yaml.Marshal(a.cfg.Stitch)
	if err != nil {
		return ""
	}
	return string(b)
}
