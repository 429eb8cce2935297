// Package printing turns persisted estimates into quote and invoice PDFs.
//
// Compose builds a Document from an already-fetched Snapshot; PDFRenderer
// writes that Document with gofpdf. Neither does any I/O, so the same
// snapshot always produces the same bytes.
package printing

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pressureflow/backend/internal/domain/estimate"
	"github.com/pressureflow/backend/internal/domain/partner"
	"github.com/pressureflow/backend/internal/domain/settings"
	"github.com/pressureflow/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// SignaturePlaceholder is printed when a stored signature cannot be decoded
const SignaturePlaceholder = "[Handtekening opgeslagen]"

// Variant selects between the quote and the invoice layout
type Variant string

const (
	VariantQuote   Variant = "quote"
	VariantInvoice Variant = "invoice"
)

// VariantFor maps an estimate status to a document variant
func VariantFor(status estimate.Status) Variant {
	if status.IsInvoice() {
		return VariantInvoice
	}
	return VariantQuote
}

// Title returns the heading word printed on the document
func (v Variant) Title() string {
	if v == VariantInvoice {
		return "FACTUUR"
	}
	return "OFFERTE"
}

// Prefix returns the configured number prefix for the variant, falling back
// to the defaults when the setting is blank
func (v Variant) Prefix(s settings.Settings) string {
	defaults := settings.Defaults()
	if v == VariantInvoice {
		return firstNonEmpty(s.InvoicePrefix, defaults.InvoicePrefix)
	}
	return firstNonEmpty(s.EstimatePrefix, defaults.EstimatePrefix)
}

// DocumentNumber formats {prefix}-{first 8 hex chars of id, upper-cased}
func DocumentNumber(prefix string, id uuid.UUID) string {
	return prefix + "-" + strings.ToUpper(estimate.ShortID(id))
}

// Filename returns {quote|invoice}_{first 8 chars of id}.pdf
func Filename(v Variant, id uuid.UUID) string {
	return fmt.Sprintf("%s_%s.pdf", v, estimate.ShortID(id))
}

// Snapshot is everything a document needs, fetched by the caller
type Snapshot struct {
	Estimate *estimate.Estimate
	Customer *partner.Customer
	Settings settings.Settings
}

// Block is a heading followed by plain text lines
type Block struct {
	Heading string
	Lines   []string
}

// Table is the work items table. Rows always have as many cells as Header.
type Table struct {
	Heading string
	Header  []string
	Rows    [][]string
}

// TotalRow is one right-aligned line of the totals block
type TotalRow struct {
	Label    string
	Amount   string
	Emphasis bool
}

// Text returns the row as printed, e.g. "Subtotaal: €116.20"
func (r TotalRow) Text() string {
	return r.Label + " " + r.Amount
}

// SignatureBlock holds either a decoded image or the placeholder text
type SignatureBlock struct {
	Heading     string
	Image       []byte
	ImageType   string
	Placeholder string
	// DecodeErr is set when the placeholder replaced the image
	DecodeErr error
}

// Document is the structured content of a quote or invoice, in print order
type Document struct {
	Variant   Variant
	Number    string
	Filename  string
	CreatedAt time.Time

	Issuer    Block
	Title     string
	Date      string
	Customer  Block
	Items     Table
	Totals    []TotalRow
	Signature *SignatureBlock
	Payment   *Block
	Notes     *Block
}

// Compose builds the document for a snapshot. Amounts come from the
// persisted estimate and are rounded to cents only here.
func Compose(snap Snapshot) Document {
	est := snap.Estimate
	cfg := snap.Settings
	variant := VariantFor(est.Status)
	number := DocumentNumber(variant.Prefix(cfg), est.ID)

	doc := Document{
		Variant:   variant,
		Number:    number,
		Filename:  Filename(variant, est.ID),
		CreatedAt: est.CreatedAt,
		Issuer:    issuerBlock(cfg),
		Title:     variant.Title() + " " + number,
		Date:      "Datum: " + est.CreatedAt.Format("2006-01-02"),
		Customer:  customerBlock(snap.Customer),
		Items:     itemsTable(est),
		Totals:    totals(est),
	}

	if est.HasSignature() {
		doc.Signature = signatureBlock(est.SignatureData)
	}
	if variant == VariantInvoice && strings.TrimSpace(cfg.IBAN) != "" {
		doc.Payment = &Block{
			Heading: "BETAALGEGEVENS",
			Lines: []string{
				"IBAN: " + cfg.IBAN,
				"T.n.v. " + cfg.CompanyName,
				"Ref: " + number,
			},
		}
	}
	if strings.TrimSpace(est.Notes) != "" {
		doc.Notes = &Block{Heading: "OPMERKINGEN", Lines: []string{est.Notes}}
	}
	return doc
}

func issuerBlock(cfg settings.Settings) Block {
	b := Block{Heading: firstNonEmpty(cfg.CompanyName, settings.Defaults().CompanyName)}
	b.Lines = appendIfSet(b.Lines, "", cfg.CompanyAddress)
	b.Lines = appendIfSet(b.Lines, "Tel: ", cfg.CompanyPhone)
	b.Lines = appendIfSet(b.Lines, "E-mail: ", cfg.CompanyEmail)
	b.Lines = appendIfSet(b.Lines, "KVK: ", cfg.KVK)
	b.Lines = appendIfSet(b.Lines, "BTW-ID: ", cfg.BTWID)
	return b
}

func customerBlock(c *partner.Customer) Block {
	b := Block{Heading: "KLANTGEGEVENS"}
	if c == nil {
		b.Lines = []string{"-"}
		return b
	}
	b.Lines = []string{firstNonEmpty(c.Name, "-")}
	b.Lines = appendIfSet(b.Lines, "", c.Address)
	b.Lines = appendIfSet(b.Lines, "Tel: ", c.Phone)
	b.Lines = appendIfSet(b.Lines, "E-mail: ", c.Email)
	return b
}

func itemsTable(est *estimate.Estimate) Table {
	t := Table{
		Heading: "WERKZAAMHEDEN",
		Header:  []string{"Omschrijving", "m²", "Prijs/m²", "Vervuiling", "Totaal"},
		Rows:    make([][]string, 0, len(est.Lines)+len(est.Upsells)),
	}
	// the pollution label is printed as stored; it is never reconciled
	// with the line's multiplier
	for _, l := range est.Lines {
		t.Rows = append(t.Rows, []string{
			l.Description,
			l.SquareMeters.StringFixed(1),
			formatMoney(l.UnitPrice),
			l.PollutionLevel.Label(),
			formatMoney(l.LineTotal),
		})
	}
	for _, u := range est.Upsells {
		t.Rows = append(t.Rows, []string{u.Description, "", "", "", formatMoney(u.Price)})
	}
	return t
}

func totals(est *estimate.Estimate) []TotalRow {
	return []TotalRow{
		{Label: "Subtotaal:", Amount: formatMoney(est.Subtotal)},
		{Label: fmt.Sprintf("BTW (%s%%):", est.BTWPercentage.String()), Amount: formatMoney(est.TaxAmount())},
		{Label: "TOTAAL:", Amount: formatMoney(est.TotalInclBTW), Emphasis: true},
	}
}

func signatureBlock(payload string) *SignatureBlock {
	b := &SignatureBlock{Heading: "HANDTEKENING KLANT"}
	data, imageType, err := DecodeSignature(payload)
	if err != nil {
		b.Placeholder = SignaturePlaceholder
		b.DecodeErr = err
		return b
	}
	b.Image = data
	b.ImageType = imageType
	return b
}

func formatMoney(d decimal.Decimal) string {
	return valueobject.NewMoneyEUR(d).Format()
}

func appendIfSet(lines []string, label, value string) []string {
	if strings.TrimSpace(value) == "" {
		return lines
	}
	return append(lines, label+value)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
