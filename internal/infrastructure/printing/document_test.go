package printing

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pressureflow/backend/internal/domain/estimate"
	"github.com/pressureflow/backend/internal/domain/partner"
	"github.com/pressureflow/backend/internal/domain/settings"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedID = uuid.MustParse("3f9a1c20-1111-4222-8333-444455556666")

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testEstimate(t *testing.T, status estimate.Status) *estimate.Estimate {
	t.Helper()
	multiplier := dec("1.3")
	est, err := estimate.NewEstimate(uuid.New(), uuid.New(), estimate.StatusConcept, nil, "", []estimate.LineDraft{
		{Description: "Oprit", SquareMeters: dec("50"), UnitPrice: dec("1.20")},
		{Description: "Terras", SquareMeters: dec("20"), UnitPrice: dec("1.20"), Multiplier: &multiplier, PollutionLevel: estimate.PollutionZwaar},
	}, []estimate.UpsellDraft{{Description: "Impregneren", Price: dec("25")}})
	require.NoError(t, err)

	est.ID = fixedID
	est.Status = status
	est.CreatedAt = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	return est
}

func testSnapshot(t *testing.T, status estimate.Status) Snapshot {
	t.Helper()
	customer, err := partner.NewCustomer("Familie de Vries", partner.SiteDetails{
		Address: "Dorpsstraat 1, Utrecht",
		Phone:   "0612345678",
	})
	require.NoError(t, err)

	cfg := settings.Defaults()
	cfg.CompanyName = "Schoon & Strak"
	cfg.CompanyPhone = "030-1234567"
	cfg.KVK = "12345678"
	cfg.IBAN = "NL00BANK0123456789"

	return Snapshot{Estimate: testEstimate(t, status), Customer: customer, Settings: cfg}
}

func TestVariantFor(t *testing.T) {
	for _, s := range estimate.AllStatuses() {
		want := VariantQuote
		if s == estimate.StatusFactuur || s == estimate.StatusBetaald {
			want = VariantInvoice
		}
		assert.Equal(t, want, VariantFor(s), s.String())
	}
}

func TestDocumentNumberAndFilename(t *testing.T) {
	assert.Equal(t, "FAC-3F9A1C20", DocumentNumber("FAC", fixedID))
	assert.Equal(t, "invoice_3f9a1c20.pdf", Filename(VariantInvoice, fixedID))
	assert.Equal(t, "quote_3f9a1c20.pdf", Filename(VariantQuote, fixedID))
}

func TestVariant_PrefixFallsBack(t *testing.T) {
	var empty settings.Settings
	assert.Equal(t, "FAC", VariantInvoice.Prefix(empty))
	assert.Equal(t, "OFF", VariantQuote.Prefix(empty))

	custom := settings.Settings{InvoicePrefix: "INV", EstimatePrefix: "Q"}
	assert.Equal(t, "INV", VariantInvoice.Prefix(custom))
	assert.Equal(t, "Q", VariantQuote.Prefix(custom))
}

func TestCompose_Invoice(t *testing.T) {
	doc := Compose(testSnapshot(t, estimate.StatusFactuur))

	assert.Equal(t, VariantInvoice, doc.Variant)
	assert.Equal(t, "FAC-3F9A1C20", doc.Number)
	assert.Equal(t, "FACTUUR FAC-3F9A1C20", doc.Title)
	assert.Equal(t, "Datum: 2026-03-14", doc.Date)
	assert.Equal(t, "invoice_3f9a1c20.pdf", doc.Filename)

	assert.Equal(t, "Schoon & Strak", doc.Issuer.Heading)
	assert.Equal(t, []string{"Tel: 030-1234567", "KVK: 12345678"}, doc.Issuer.Lines)

	assert.Equal(t, "KLANTGEGEVENS", doc.Customer.Heading)
	assert.Equal(t, []string{"Familie de Vries", "Dorpsstraat 1, Utrecht", "Tel: 0612345678"}, doc.Customer.Lines)

	assert.Equal(t, []string{"Omschrijving", "m²", "Prijs/m²", "Vervuiling", "Totaal"}, doc.Items.Header)
	assert.Equal(t, [][]string{
		{"Oprit", "50.0", "€1.20", "standaard", "€60.00"},
		{"Terras", "20.0", "€1.20", "zwaar (1.3x)", "€31.20"},
		{"Impregneren", "", "", "", "€25.00"},
	}, doc.Items.Rows)

	require.Len(t, doc.Totals, 3)
	assert.Equal(t, "Subtotaal: €116.20", doc.Totals[0].Text())
	assert.Equal(t, "BTW (21%): €24.40", doc.Totals[1].Text())
	assert.Equal(t, "TOTAAL: €140.60", doc.Totals[2].Text())
	assert.True(t, doc.Totals[2].Emphasis)

	require.NotNil(t, doc.Payment)
	assert.Equal(t, "BETAALGEGEVENS", doc.Payment.Heading)
	assert.Equal(t, []string{"IBAN: NL00BANK0123456789", "T.n.v. Schoon & Strak", "Ref: FAC-3F9A1C20"}, doc.Payment.Lines)

	assert.Nil(t, doc.Signature)
	assert.Nil(t, doc.Notes)
}

func TestCompose_QuoteHasNoPaymentBlock(t *testing.T) {
	snap := testSnapshot(t, estimate.StatusAkkoord)
	snap.Estimate.Notes = "Hek staat open"

	doc := Compose(snap)

	assert.Equal(t, "OFFERTE OFF-3F9A1C20", doc.Title)
	assert.Nil(t, doc.Payment)
	require.NotNil(t, doc.Notes)
	assert.Equal(t, "OPMERKINGEN", doc.Notes.Heading)
}

func TestCompose_InvoiceWithoutIBAN(t *testing.T) {
	snap := testSnapshot(t, estimate.StatusBetaald)
	snap.Settings.IBAN = " "
	assert.Nil(t, Compose(snap).Payment)
}

func TestCompose_PollutionLabelIsNotDerivedFromMultiplier(t *testing.T) {
	snap := testSnapshot(t, estimate.StatusOfferte)
	// declared zwaar but priced at 1.0, and the reverse
	snap.Estimate.Lines[0].PollutionLevel = estimate.PollutionZwaar
	snap.Estimate.Lines[1].PollutionLevel = estimate.PollutionStandaard

	doc := Compose(snap)

	assert.Equal(t, "zwaar (1.3x)", doc.Items.Rows[0][3])
	assert.Equal(t, "€60.00", doc.Items.Rows[0][4])
	assert.Equal(t, "standaard", doc.Items.Rows[1][3])
	assert.Equal(t, "€31.20", doc.Items.Rows[1][4])
}

func TestCompose_UsesPersistedTotals(t *testing.T) {
	snap := testSnapshot(t, estimate.StatusOfferte)
	// persisted values win over anything derivable from the lines
	snap.Estimate.Subtotal = dec("100.005")
	snap.Estimate.TotalInclBTW = dec("121.006")

	doc := Compose(snap)

	assert.Equal(t, "Subtotaal: €100.01", doc.Totals[0].Text())
	assert.Equal(t, "BTW (21%): €21.00", doc.Totals[1].Text())
	assert.Equal(t, "TOTAAL: €121.01", doc.Totals[2].Text())
}

func TestCompose_Signature(t *testing.T) {
	t.Run("valid image", func(t *testing.T) {
		snap := testSnapshot(t, estimate.StatusAkkoord)
		snap.Estimate.SignatureData = "data:image/png;base64," + base64.StdEncoding.EncodeToString(testPNG(t, 60, 30))

		doc := Compose(snap)
		require.NotNil(t, doc.Signature)
		assert.Equal(t, "HANDTEKENING KLANT", doc.Signature.Heading)
		assert.NotEmpty(t, doc.Signature.Image)
		assert.Empty(t, doc.Signature.Placeholder)
	})

	t.Run("malformed payload falls back to placeholder", func(t *testing.T) {
		snap := testSnapshot(t, estimate.StatusAkkoord)
		snap.Estimate.SignatureData = "data:image/png;base64,not-really-base64"

		doc := Compose(snap)
		require.NotNil(t, doc.Signature)
		assert.Nil(t, doc.Signature.Image)
		assert.Equal(t, SignaturePlaceholder, doc.Signature.Placeholder)
		assert.ErrorIs(t, doc.Signature.DecodeErr, ErrSignatureDecode)
	})
}

func TestCompose_MissingCustomerAndSettings(t *testing.T) {
	est := testEstimate(t, estimate.StatusConcept)
	doc := Compose(Snapshot{Estimate: est})

	assert.Equal(t, "PressureFlow", doc.Issuer.Heading)
	assert.Empty(t, doc.Issuer.Lines)
	assert.Equal(t, []string{"-"}, doc.Customer.Lines)
	assert.Equal(t, "OFF-3F9A1C20", doc.Number)
}
