package document_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-orcamento/internal/document"
	"github.com/noah-isme/backend-orcamento/internal/quote"
)

func TestBRL(t *testing.T) {
	cases := map[string]string{
		"0":          "R$ 0,00",
		"5":          "R$ 5,00",
		"25.5":       "R$ 25,50",
		"1234.56":    "R$ 1.234,56",
		"1000000":    "R$ 1.000.000,00",
		"999.999":    "R$ 1.000,00",
		"-1234.5":    "R$ -1.234,50",
		"123456.789": "R$ 123.456,79",
	}
	for in, want := range cases {
		require.Equal(t, want, document.BRL(decimal.RequireFromString(in)), in)
	}
}

func TestWeight(t *testing.T) {
	require.Equal(t, "2,5 kg", document.Weight(decimal.NewNullDecimal(decimal.RequireFromString("2.500"))))
	require.Equal(t, "-", document.Weight(decimal.NullDecimal{}))
}

func payload() quote.RenderPayload {
	return quote.RenderPayload{
		Number:     "ORC-2026-00001",
		IssueDate:  "10/01/2026",
		ValidUntil: "17/01/2026",
		Customer:   quote.Customer{Name: "Serralheria São João", Document: "12.345.678/0001-90", Phone: "(11) 5555-0000"},
		Lines: []quote.RenderLine{
			{Code: "P1", Description: "Chapa lisa", Quantity: 2, UnitPrice: decimal.RequireFromString("10"), Subtotal: decimal.RequireFromString("20")},
			{
				Code:        "P2",
				Description: strings.Repeat("Perfil U alumínio anodizado ", 5),
				Quantity:    1,
				UnitPrice:   decimal.RequireFromString("5"),
				Subtotal:    decimal.RequireFromString("5"),
				Weight:      decimal.NewNullDecimal(decimal.RequireFromString("4")),
			},
		},
		Total: decimal.RequireFromString("25"),
		Notes: "Pagamento à vista.",
	}
}

func TestFPDFRendersDocument(t *testing.T) {
	r := document.FPDF{Now: func() time.Time { return time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC) }}
	out, err := r.Render(context.Background(), payload(), quote.Company{Name: "Metais Centro", CNPJ: "00.000.000/0001-00"})
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	require.Greater(t, len(out), 1000)
}

func TestFPDFManyLinesPaginates(t *testing.T) {
	p := payload()
	for i := 0; i < 80; i++ {
		p.Lines = append(p.Lines, p.Lines[0])
	}
	out, err := document.FPDF{}.Render(context.Background(), p, quote.Company{Name: "Metais Centro"})
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func TestFPDFRequiresNumber(t *testing.T) {
	p := payload()
	p.Number = ""
	_, err := document.FPDF{}.Render(context.Background(), p, quote.Company{})
	require.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = document.FPDF{}.Render(ctx, payload(), quote.Company{})
	require.ErrorIs(t, err, context.Canceled)
}

type stubLogo struct {
	data []byte
	err  error
	urls []string
}

func (s *stubLogo) Fetch(_ context.Context, url string) ([]byte, string, error) {
	s.urls = append(s.urls, url)
	return s.data, "image/png", s.err
}

func pngLogo(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 4))
	for x := 0; x < 8; x++ {
		img.Set(x, 1, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestFPDFDrawsLogo(t *testing.T) {
	logo := &stubLogo{data: pngLogo(t)}
	company := quote.Company{Name: "Metais Centro", LogoURL: "https://cdn.example.com/logo.png"}

	out, err := document.FPDF{Logo: logo}.Render(context.Background(), payload(), company)
	require.NoError(t, err)
	require.Equal(t, []string{company.LogoURL}, logo.urls)
	require.True(t, bytes.Contains(out, []byte("/Subtype /Image")))
}

func TestFPDFSkipsBrokenLogo(t *testing.T) {
	company := quote.Company{Name: "Metais Centro", LogoURL: "https://cdn.example.com/logo.png"}
	for name, logo := range map[string]*stubLogo{
		"fetch error": {err: errors.New("timeout")},
		"not image":   {data: []byte("<html>")},
	} {
		out, err := document.FPDF{Logo: logo}.Render(context.Background(), payload(), company)
		require.NoError(t, err, name)
		require.False(t, bytes.Contains(out, []byte("/Subtype /Image")), name)
	}
}
