/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	"svgstitch/internal/pattern"
	"svgstitch/internal/thread"
	"svgstitch/internal/vector"
	"svgstitch/internal/version"
)

// PDF proof sheet layout, in millimetres on A4 portrait.
const (
	pdfMargin   = 15.0
	pdfDrawSize = 180.0
	pdfRowH     = 7.0
)

// WritePDF writes a proof sheet: the stitched design drawn to scale within
// the page, followed by a table of the threads in sewing order.
func WritePDF(w io.Writer, p *pattern.Pattern, opt PreviewOptions) error {
	opt = opt.withDefaults()
	blocks, err := colorBlocks(p)
	if err != nil {
		return err
	}
	sum := p.Summary()

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("%s stitch proof", p.Name), true)
	pdf.SetCreator("svgstitch "+version.String(), true)
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	title := p.Name
	if title == "" {
		title = "Untitled design"
	}
	pdf.CellFormat(0, 8, title, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 5, fmt.Sprintf("%d stitches, %d fill colors, %d stroke colors, %.1f x %.1f units",
		sum.Stitches, sum.FillColors, sum.StrokeColors, sum.Width, sum.Height), "", 1, "L", false, 0, "")
	pdf.Ln(3)

	// design area
	top := pdf.GetY()
	m := pdfFit(p, pdfMargin, top)
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.2)
	pdf.Rect(pdfMargin, top, pdfDrawSize, pdfDrawSize, "D")
	pdf.SetLineCapStyle("round")
	pdf.SetLineJoinStyle("round")
	for _, b := range blocks {
		c := b.Thread.Color
		pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
		pdf.SetLineWidth(0.25)
		for _, run := range b.Runs {
			for i := 1; i < len(run); i++ {
				a, z := m.Apply(run[i-1]), m.Apply(run[i])
				pdf.Line(a.X, a.Y, z.X, z.Y)
			}
		}
		if opt.ShowJumps {
			pdf.SetDrawColor(176, 176, 176)
			pdf.SetLineWidth(0.1)
			pdf.SetDashPattern([]float64{1, 1}, 0)
			for _, j := range b.Jumps {
				a, z := m.Apply(j[0]), m.Apply(j[1])
				pdf.Line(a.X, a.Y, z.X, z.Y)
			}
			pdf.SetDashPattern(nil, 0)
		}
	}
	pdf.SetXY(pdfMargin, top+pdfDrawSize+6)

	threadTable(pdf, blocks)
	if err := pdf.Error(); err != nil {
		return err
	}
	return pdf.Output(w)
}

func threadTable(pdf *gofpdf.Fpdf, blocks []block) {
	cols := []struct {
		title string
		w     float64
	}{{"#", 10}, {"", 10}, {"Hex", 22}, {"Description", 68}, {"Catalog", 22}, {"Weight", 18}, {"Stitches", 30}}
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(235, 235, 235)
	for _, c := range cols {
		pdf.CellFormat(c.w, pdfRowH, c.title, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 9)
	for i, b := range blocks {
		x, y := pdf.GetXY()
		pdf.CellFormat(cols[0].w, pdfRowH, fmt.Sprint(i+1), "1", 0, "R", false, 0, "")
		pdf.CellFormat(cols[1].w, pdfRowH, "", "1", 0, "", false, 0, "")
		swatch(pdf, b.Thread.Color, x+cols[0].w+2, y+1.5, cols[1].w-4, pdfRowH-3)
		pdf.CellFormat(cols[2].w, pdfRowH, b.Thread.Hex, "1", 0, "L", false, 0, "")
		pdf.CellFormat(cols[3].w, pdfRowH, b.Thread.Description, "1", 0, "L", false, 0, "")
		pdf.CellFormat(cols[4].w, pdfRowH, b.Thread.CatalogNumber, "1", 0, "L", false, 0, "")
		pdf.CellFormat(cols[5].w, pdfRowH, b.Thread.Weight, "1", 0, "L", false, 0, "")
		pdf.CellFormat(cols[6].w, pdfRowH, fmt.Sprint(b.Stitches), "1", 1, "R", false, 0, "")
	}
}

func swatch(pdf *gofpdf.Fpdf, c thread.RGB, x, y, w, h float64) {
	pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.1)
	pdf.Rect(x, y, w, h, "FD")
}

// pdfFit maps the pattern extent into the square design area at (x, y).
func pdfFit(p *pattern.Pattern, x, y float64) vector.Affine2D {
	e := p.Extent()
	if e.Empty() {
		return vector.Translate(x, y)
	}
	r := e.Rect()
	s := 1.0
	if span := max(r.W, r.H); span > 0 {
		s = (pdfDrawSize - 10) / span
	}
	ox := x + (pdfDrawSize-r.W*s)/2
	oy := y + (pdfDrawSize-r.H*s)/2
	return vector.Translate(ox, oy).Mul(vector.Scale(s, s)).Mul(vector.Translate(-r.X, -r.Y))
}
