package printing

import (
	"bytes"
	"context"
	"time"

	"github.com/phpdave11/gofpdf"
	"go.uber.org/zap"
)

// RenderResult contains the output from PDF rendering
type RenderResult struct {
	// PDFData is the raw PDF file content
	PDFData []byte
	// PageCount is the number of pages in the PDF
	PageCount int
	Filename  string
	Number    string
	Variant   Variant
	// SignatureFallback is set when the placeholder replaced the signature
	SignatureFallback bool
}

// RenderError represents an error during PDF rendering
type RenderError struct {
	Code    string
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// Error codes for rendering failures
const (
	ErrCodeInvalidSnapshot = "INVALID_SNAPSHOT"
	ErrCodeRenderFailed    = "RENDER_FAILED"
)

// NewRenderError creates a new RenderError
func NewRenderError(code, message string, cause error) *RenderError {
	return &RenderError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

type rgb struct{ r, g, b int }

var (
	colorPrimary = rgb{26, 86, 219}
	colorText    = rgb{55, 65, 81}
	colorMuted   = rgb{107, 114, 128}
	colorGrid    = rgb{229, 231, 235}
	colorStripe  = rgb{249, 250, 251}
	colorWhite   = rgb{255, 255, 255}
)

const (
	fontFamily      = "Helvetica"
	pageMargin      = 20.0
	lineHeight      = 5.0
	tableRowHeight  = 7.0
	signatureWidth  = 60.0
	signatureHeight = 30.0
	signatureImage  = "signature"
)

// column widths in mm, matching the five table columns
var columnWidths = []float64{70, 20, 25, 25, 30}

// PDFRenderer writes quote and invoice documents with gofpdf
type PDFRenderer struct {
	logger *zap.Logger
}

// NewPDFRenderer creates a PDFRenderer
func NewPDFRenderer(logger *zap.Logger) *PDFRenderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PDFRenderer{logger: logger}
}

// Render composes and writes the document for snap. A signature that
// cannot be decoded is replaced by a placeholder and never fails the call.
func (r *PDFRenderer) Render(ctx context.Context, snap Snapshot) (*RenderResult, error) {
	if snap.Estimate == nil {
		return nil, NewRenderError(ErrCodeInvalidSnapshot, "estimate is required", nil)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc := Compose(snap)
	data, pages, err := Write(doc)
	if err != nil {
		return nil, NewRenderError(ErrCodeRenderFailed, "failed to write PDF", err)
	}

	fallback := doc.Signature != nil && doc.Signature.Image == nil
	if fallback {
		r.logger.Warn("Signature could not be decoded, printed placeholder",
			zap.String("estimate_id", snap.Estimate.ID.String()),
			zap.NamedError("cause", doc.Signature.DecodeErr))
	}

	return &RenderResult{
		PDFData:           data,
		PageCount:         pages,
		Filename:          doc.Filename,
		Number:            doc.Number,
		Variant:           doc.Variant,
		SignatureFallback: fallback,
	}, nil
}

// Write serializes a document. The only date embedded is doc.CreatedAt, so
// equal documents produce equal bytes.
func Write(doc Document) ([]byte, int, error) {
	created := doc.CreatedAt
	if created.IsZero() {
		created = time.Unix(0, 0).UTC()
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.SetCompression(true)
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(created)
	pdf.SetTitle(doc.Title, true)
	pdf.SetCreator("PressureFlow", true)
	pdf.AddPage()

	w := &pageWriter{pdf: pdf}
	w.issuer(doc.Issuer)
	w.title(doc.Title, doc.Date)
	w.block(doc.Customer, 0)
	w.pdf.Ln(8)
	w.table(doc.Items)
	w.totals(doc.Totals)
	if doc.Signature != nil {
		w.signature(doc.Signature)
	}
	if doc.Payment != nil {
		w.block(*doc.Payment, 10)
	}
	if doc.Notes != nil {
		w.notes(*doc.Notes)
	}

	if pdf.Err() {
		return nil, 0, pdf.Error()
	}
	pages := pdf.PageNo()

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, 0, err
	}
	return buf.Bytes(), pages, nil
}

type pageWriter struct {
	pdf *gofpdf.Fpdf
}

func (w *pageWriter) textColor(c rgb) { w.pdf.SetTextColor(c.r, c.g, c.b) }

func (w *pageWriter) line(text string, h float64, align string) {
	w.pdf.CellFormat(0, h, toWinAnsi(text), "", 1, align, false, 0, "")
}

func (w *pageWriter) body() {
	w.pdf.SetFont(fontFamily, "", 10)
	w.textColor(colorText)
}

func (w *pageWriter) heading(text string) {
	w.pdf.SetFont(fontFamily, "B", 11)
	w.textColor(colorPrimary)
	w.line(text, 7, "L")
}

func (w *pageWriter) issuer(b Block) {
	w.pdf.SetFont(fontFamily, "B", 20)
	w.textColor(colorPrimary)
	w.line(b.Heading, 10, "L")
	w.body()
	for _, l := range b.Lines {
		w.line(l, lineHeight, "L")
	}
	w.pdf.Ln(10)
}

func (w *pageWriter) title(title, date string) {
	w.pdf.SetFont(fontFamily, "B", 14)
	w.textColor(colorText)
	w.line(title, 8, "L")
	w.body()
	w.line(date, lineHeight, "L")
	w.pdf.Ln(5)
}

func (w *pageWriter) block(b Block, spaceBefore float64) {
	if spaceBefore > 0 {
		w.pdf.Ln(spaceBefore)
	}
	w.heading(b.Heading)
	w.body()
	for _, l := range b.Lines {
		w.line(l, lineHeight, "L")
	}
}

func (w *pageWriter) table(t Table) {
	w.heading(t.Heading)
	w.pdf.SetDrawColor(colorGrid.r, colorGrid.g, colorGrid.b)
	w.pdf.SetLineWidth(0.2)

	w.pdf.SetFont(fontFamily, "B", 9)
	w.pdf.SetFillColor(colorPrimary.r, colorPrimary.g, colorPrimary.b)
	w.textColor(colorWhite)
	w.row(t.Header, true)

	w.pdf.SetFont(fontFamily, "", 9)
	w.textColor(colorText)
	for i, cells := range t.Rows {
		stripe := colorWhite
		if i%2 == 1 {
			stripe = colorStripe
		}
		w.pdf.SetFillColor(stripe.r, stripe.g, stripe.b)
		w.row(cells, true)
	}
	w.pdf.Ln(5)
}

func (w *pageWriter) row(cells []string, fill bool) {
	for i, width := range columnWidths {
		text := ""
		if i < len(cells) {
			text = w.fit(cells[i], width)
		}
		align := "R"
		if i == 0 {
			align = "L"
		}
		w.pdf.CellFormat(width, tableRowHeight, text, "1", 0, align, fill, 0, "")
	}
	w.pdf.Ln(-1)
}

// fit shortens text with an ellipsis until it fits the cell width
func (w *pageWriter) fit(text string, width float64) string {
	s := toWinAnsi(text)
	limit := width - 2
	if w.pdf.GetStringWidth(s) <= limit {
		return s
	}
	for len(s) > 0 && w.pdf.GetStringWidth(s+"...") > limit {
		s = s[:len(s)-1]
	}
	return s + "..."
}

func (w *pageWriter) totals(rows []TotalRow) {
	for _, r := range rows {
		if r.Emphasis {
			w.pdf.Ln(1.5)
			w.pdf.SetFont(fontFamily, "B", 13)
			w.textColor(colorPrimary)
			w.line(r.Text(), 7, "R")
			continue
		}
		w.pdf.SetFont(fontFamily, "", 9)
		w.textColor(colorMuted)
		w.line(r.Text(), lineHeight, "R")
	}
}

func (w *pageWriter) signature(s *SignatureBlock) {
	w.pdf.Ln(10)
	w.heading(s.Heading)

	if s.Image != nil && w.image(s) {
		return
	}
	w.body()
	w.line(firstNonEmpty(s.Placeholder, SignaturePlaceholder), lineHeight, "L")
}

// image places the signature scaled into the signature box. It returns
// false when the PDF writer refused the image.
func (w *pageWriter) image(s *SignatureBlock) bool {
	opts := gofpdf.ImageOptions{ImageType: s.ImageType}
	info := w.pdf.RegisterImageOptionsReader(signatureImage, opts, bytes.NewReader(s.Image))
	if info == nil || w.pdf.Err() || info.Width() <= 0 || info.Height() <= 0 {
		w.pdf.ClearError()
		s.Image = nil
		return false
	}

	width, height := signatureWidth, signatureWidth*info.Height()/info.Width()
	if height > signatureHeight {
		height = signatureHeight
		width = signatureHeight * info.Width() / info.Height()
	}
	left, _, _, _ := w.pdf.GetMargins()
	w.pdf.ImageOptions(signatureImage, left, 0, width, height, true, opts, 0, "")
	return true
}

func (w *pageWriter) notes(b Block) {
	w.pdf.Ln(5)
	w.heading(b.Heading)
	w.body()
	for _, l := range b.Lines {
		w.pdf.MultiCell(0, lineHeight, toWinAnsi(l), "", "L", false)
	}
}
