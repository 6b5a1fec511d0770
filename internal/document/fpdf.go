// Package document renders quotes as PDF documents.
package document

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-orcamento/internal/quote"
)

const (
	pageMargin = 20.0
	lineHeight = 6.0
)

type column struct {
	title string
	width float64
	align string
}

// LogoSource downloads the company logo.
type LogoSource interface {
	Fetch(ctx context.Context, url string) ([]byte, string, error)
}

// FPDF renders A4 quote documents.
type FPDF struct {
	// Now stamps the PDF creation date; nil uses time.Now.
	Now func() time.Time
	// Logo is optional. A logo that cannot be fetched or decoded is skipped.
	Logo LogoSource
	Log  zerolog.Logger
}

// Render implements quote.Renderer.
func (f FPDF) Render(ctx context.Context, payload quote.RenderPayload, company quote.Company) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(payload.Number) == "" {
		return nil, fmt.Errorf("document: quote number is required")
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	now := time.Now()
	if f.Now != nil {
		now = f.Now()
	}
	pdf.SetCreationDate(now)
	pdf.SetTitle("Orçamento "+payload.Number, true)
	pdf.SetCreator(company.Name, true)
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 10, tr(fmt.Sprintf("Orçamento %s - página %d/{nb}", payload.Number, pdf.PageNo())), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	f.drawLogo(ctx, pdf, company.LogoURL)
	writeCompany(pdf, tr, company)
	writeTitle(pdf, tr, payload)
	writeCustomer(pdf, tr, payload.Customer)
	writeItems(pdf, tr, payload)
	writeNotes(pdf, tr, payload.Notes)

	if pdf.Err() {
		return nil, fmt.Errorf("document: %w", pdf.Error())
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("document: output: %w", err)
	}
	return buf.Bytes(), nil
}

const (
	logoMaxW = 40.0
	logoMaxH = 18.0
)

func (f FPDF) drawLogo(ctx context.Context, pdf *fpdf.Fpdf, url string) {
	if f.Logo == nil || strings.TrimSpace(url) == "" {
		return
	}
	data, _, err := f.Logo.Fetch(ctx, url)
	if err != nil {
		f.Log.Warn().Err(err).Str("url", url).Msg("logo fetch failed, rendering without logo")
		return
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil || cfg.Width == 0 || cfg.Height == 0 {
		f.Log.Warn().Err(err).Str("url", url).Msg("logo is not a supported image")
		return
	}
	imageType := map[string]string{"png": "PNG", "jpeg": "JPG", "gif": "GIF"}[format]
	opts := fpdf.ImageOptions{ImageType: imageType}
	pdf.RegisterImageOptionsReader("logo", opts, bytes.NewReader(data))
	if pdf.Err() {
		f.Log.Warn().Err(pdf.Error()).Str("url", url).Msg("logo rejected by pdf writer")
		pdf.ClearError()
		return
	}
	w, h := logoMaxW, logoMaxW*float64(cfg.Height)/float64(cfg.Width)
	if h > logoMaxH {
		w, h = logoMaxH*float64(cfg.Width)/float64(cfg.Height), logoMaxH
	}
	pdf.ImageOptions("logo", 210-pageMargin-w, pageMargin, w, h, false, opts, 0, "")
}

func writeCompany(pdf *fpdf.Fpdf, tr func(string) string, c quote.Company) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 8, tr(c.Name), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	var contact []string
	if c.CNPJ != "" {
		contact = append(contact, "CNPJ: "+c.CNPJ)
	}
	if c.Phone != "" {
		contact = append(contact, "Tel: "+c.Phone)
	}
	if c.Email != "" {
		contact = append(contact, c.Email)
	}
	if len(contact) > 0 {
		pdf.CellFormat(0, 5, tr(strings.Join(contact, "  |  ")), "", 1, "L", false, 0, "")
	}
	if c.Address != "" {
		pdf.CellFormat(0, 5, tr(c.Address), "", 1, "L", false, 0, "")
	}
	y := pdf.GetY() + 2
	pdf.SetDrawColor(120, 120, 120)
	pdf.Line(pageMargin, y, 210-pageMargin, y)
	pdf.Ln(5)
}

func writeTitle(pdf *fpdf.Fpdf, tr func(string) string, p quote.RenderPayload) {
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, tr("ORÇAMENTO Nº "+p.Number), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(85, lineHeight, tr("Emissão: "+p.IssueDate), "", 0, "L", false, 0, "")
	pdf.CellFormat(0, lineHeight, tr("Válido até: "+p.ValidUntil), "", 1, "R", false, 0, "")
	pdf.Ln(3)
}

func writeCustomer(pdf *fpdf.Fpdf, tr func(string) string, c quote.Customer) {
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetFillColor(235, 235, 235)
	pdf.CellFormat(0, 7, tr("Cliente"), "", 1, "L", true, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, lineHeight, tr(c.Name), "", 1, "L", false, 0, "")
	if c.Document != "" {
		pdf.CellFormat(0, lineHeight, tr("CPF/CNPJ: "+c.Document), "", 1, "L", false, 0, "")
	}
	var contact []string
	if c.Phone != "" {
		contact = append(contact, "Tel: "+c.Phone)
	}
	if c.Email != "" {
		contact = append(contact, c.Email)
	}
	if len(contact) > 0 {
		pdf.CellFormat(0, lineHeight, tr(strings.Join(contact, "  |  ")), "", 1, "L", false, 0, "")
	}
	if c.Address != "" {
		pdf.MultiCell(0, lineHeight, tr(c.Address), "", "L", false)
	}
	pdf.Ln(4)
}

func columns(withWeight bool) []column {
	if withWeight {
		return []column{
			{"Código", 22, "L"},
			{"Descrição", 63, "L"},
			{"Peso", 20, "R"},
			{"Qtd", 15, "R"},
			{"Unitário", 25, "R"},
			{"Subtotal", 25, "R"},
		}
	}
	return []column{
		{"Código", 22, "L"},
		{"Descrição", 83, "L"},
		{"Qtd", 15, "R"},
		{"Unitário", 25, "R"},
		{"Subtotal", 25, "R"},
	}
}

func hasWeight(lines []quote.RenderLine) bool {
	for _, l := range lines {
		if l.Weight.Valid && l.Weight.Decimal.IsPositive() {
			return true
		}
	}
	return false
}

func writeItems(pdf *fpdf.Fpdf, tr func(string) string, p quote.RenderPayload) {
	withWeight := hasWeight(p.Lines)
	cols := columns(withWeight)

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(50, 50, 50)
	pdf.SetTextColor(255, 255, 255)
	for _, c := range cols {
		pdf.CellFormat(c.width, 7, tr(c.title), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetTextColor(0, 0, 0)

	pdf.SetFont("Helvetica", "", 9)
	for i, l := range p.Lines {
		fill := i%2 == 1
		pdf.SetFillColor(245, 245, 245)
		cells := []string{l.Code, l.Description}
		if withWeight {
			cells = append(cells, Weight(l.Weight))
		}
		cells = append(cells, fmt.Sprintf("%d", l.Quantity), BRL(l.UnitPrice), BRL(l.Subtotal))
		for j, c := range cols {
			pdf.CellFormat(c.width, lineHeight, fit(pdf, tr(cells[j]), c.width-2), "1", 0, c.align, fill, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.SetFont("Helvetica", "B", 11)
	var labelWidth float64
	for _, c := range cols[:len(cols)-1] {
		labelWidth += c.width
	}
	pdf.CellFormat(labelWidth, 8, tr("Total"), "1", 0, "R", false, 0, "")
	pdf.CellFormat(cols[len(cols)-1].width, 8, BRL(p.Total), "1", 1, "R", false, 0, "")
	pdf.Ln(4)
}

func writeNotes(pdf *fpdf.Fpdf, tr func(string) string, notes string) {
	notes = strings.TrimSpace(notes)
	if notes == "" {
		return
	}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(0, lineHeight, tr("Observações"), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.MultiCell(0, 5, tr(notes), "", "L", false)
}

// fit trims s with an ellipsis until it fits width.
func fit(pdf *fpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && pdf.GetStringWidth(string(r)+"...") > width {
		r = r[:len(r)-1]
	}
	return string(r) + "..."
}
