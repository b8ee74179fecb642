/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"svgstitch/internal/domain"
	"svgstitch/internal/pattern"
	"svgstitch/internal/storage"
)

type inspectReport struct {
	Design  designInfo      `json:"design"`
	Pattern pattern.Summary `json:"pattern"`
	Threads []threadInfo    `json:"threads"`
}

type designInfo struct {
	Name      string  `json:"name"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	Shapes    int     `json:"shapes"`
	Unpainted int     `json:"unpainted"`
	Fallbacks int     `json:"fallback_colors"`
}

type threadInfo struct {
	Index       int    `json:"index"`
	Hex         string `json:"hex"`
	Description string `json:"description"`
	Catalog     string `json:"catalog"`
}

func newInspectCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "inspect <input.svg|design.json>",
		Short: "Show what a design would stitch without writing files",
		Args:  args(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, in []string) error {
			if err := a.applyStitchFlags(cmd); err != nil {
				return err
			}
			d, err := a.loadDesign(in[0])
			if err != nil {
				return err
			}
			p, err := a.assemble(cmd.Context(), d)
			if err != nil {
				return err
			}
			rep := buildReport(d, p)
			if asJSON {
				enc := json.NewEncoder(a.out)
				enc.SetIndent("", "  ")
				return enc.Encode(rep)
			}
			a.printReport(rep)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	addStitchFlags(cmd)
	return cmd
}

func buildReport(d *domain.Design, p *pattern.Pattern) inspectReport {
	rep := inspectReport{
		Design:  designInfo{Name: d.Name, Width: d.Width, Height: d.Height, Shapes: len(d.Shapes)},
		Pattern: p.Summary(),
	}
	for _, s := range d.Shapes {
		if !s.Attributes.Painted() {
			rep.Design.Unpainted++
		}
		if s.Attributes.Fill.Fallback || s.Attributes.Stroke.Fallback {
			rep.Design.Fallbacks++
		}
	}
	for i, t := range p.Threads {
		rep.Threads = append(rep.Threads, threadInfo{Index: i + 1, Hex: t.Hex, Description: t.Description, Catalog: t.CatalogNumber})
	}
	return rep
}

func (a *app) printReport(rep inspectReport) {
	d := rep.Design
	a.printf("Design:  %s (%.1f x %.1f), %d shapes", d.Name, d.Width, d.Height, d.Shapes)
	if d.Unpainted > 0 {
		a.printf(", %d unpainted", d.Unpainted)
	}
	if d.Fallbacks > 0 {
		a.printf(", %d unknown colors", d.Fallbacks)
	}
	a.printf("\n")
	s := rep.Pattern
	a.printf("Pattern: %d stitches, %d moves, %.1f x %.1f\n", s.Stitches, s.Moves, s.Width, s.Height)
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "#\tHEX\tDESCRIPTION\tCATALOG")
	for _, t := range rep.Threads {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", t.Index, t.Hex, t.Description, t.Catalog)
	}
	_ = tw.Flush()
}

func newManifestCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "manifest <input.svg>",
		Short: "Save the parsed design as a JSON manifest",
		Long: `Manifest writes the shapes read from an SVG, with resolved colors, to a JSON
file that convert and inspect accept as input. An existing file is backed up first.`,
		Args: args(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, in []string) error {
			if err := a.applyStitchFlags(cmd); err != nil {
				return err
			}
			d, err := a.loadDesign(in[0])
			if err != nil {
				return err
			}
			if output == "" {
				output = in[0] + ".json"
			}
			if err := storage.SaveManifest(output, d); err != nil {
				return err
			}
			a.printf("wrote %s (%d shapes)\n", output, len(d.Shapes))
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "manifest path (default <input>.json)")
	return cmd
}
