package estimate

import (
	"testing"

	"github.com/google/uuid"
	"github.com/pressureflow/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	v := dec(s)
	return &v
}

func newTestEstimate(t *testing.T, status Status) *Estimate {
	t.Helper()
	e, err := NewEstimate(uuid.New(), uuid.New(), status, nil, "achterom", []LineDraft{
		{Description: "Oprit", SquareMeters: dec("50"), UnitPrice: dec("1.20")},
		{Description: "Terras", SquareMeters: dec("20"), UnitPrice: dec("1.20"), Multiplier: decPtr("1.3"), PollutionLevel: PollutionZwaar},
	}, []UpsellDraft{{Description: "Impregneren", Price: dec("25")}})
	require.NoError(t, err)
	return e
}

// ============================================================================
// Creation
// ============================================================================

func TestNewEstimate(t *testing.T) {
	t.Run("prices lines and applies default tax", func(t *testing.T) {
		e := newTestEstimate(t, "")

		assert.Equal(t, StatusConcept, e.Status)
		assert.Equal(t, 1, e.Version)
		assert.True(t, e.BTWPercentage.Equal(dec("21")))
		assert.True(t, e.Subtotal.Equal(dec("116.2")))
		assert.True(t, e.TotalInclBTW.Equal(dec("140.602")))
		assert.True(t, e.TaxAmount().Equal(dec("24.402")))

		require.Len(t, e.Lines, 2)
		assert.Equal(t, 0, e.Lines[0].Position)
		assert.Equal(t, e.ID, e.Lines[0].EstimateID)
		assert.True(t, e.Lines[0].Multiplier.Equal(dec("1")))
		assert.Equal(t, PollutionStandaard, e.Lines[0].PollutionLevel)
		assert.True(t, e.Lines[1].LineTotal.Equal(dec("31.2")))
		assert.Equal(t, PollutionZwaar, e.Lines[1].PollutionLevel)

		require.Len(t, e.Upsells, 1)
		assert.Equal(t, e.ID, e.Upsells[0].EstimateID)
	})

	t.Run("pollution level does not influence the multiplier", func(t *testing.T) {
		e, err := NewEstimate(uuid.New(), uuid.Nil, StatusOfferte, decPtr("9"), "", []LineDraft{
			{Description: "Gevel", SquareMeters: dec("10"), UnitPrice: dec("2"), PollutionLevel: PollutionZwaar},
		}, nil)
		require.NoError(t, err)
		assert.True(t, e.Lines[0].Multiplier.Equal(dec("1")))
		assert.True(t, e.Lines[0].LineTotal.Equal(dec("20")))
		assert.True(t, e.TotalInclBTW.Equal(dec("21.8")))
	})

	t.Run("rejects missing customer", func(t *testing.T) {
		_, err := NewEstimate(uuid.Nil, uuid.New(), "", nil, "", nil, nil)
		assert.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("rejects completed start status", func(t *testing.T) {
		_, err := NewEstimate(uuid.New(), uuid.New(), StatusVoltooid, nil, "", nil, nil)
		assert.ErrorIs(t, err, shared.ErrInvalidState)
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		_, err := NewEstimate(uuid.New(), uuid.New(), Status("open"), nil, "", nil, nil)
		assert.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("propagates pricing validation", func(t *testing.T) {
		_, err := NewEstimate(uuid.New(), uuid.New(), "", nil, "", []LineDraft{
			{Description: "x", SquareMeters: dec("-1"), UnitPrice: dec("1")},
		}, nil)
		assert.ErrorIs(t, err, shared.ErrValidation)
	})
}

func TestEstimate_ShortID(t *testing.T) {
	e := newTestEstimate(t, "")
	e.ID = uuid.MustParse("3f9a1c20-1111-2222-3333-444455556666")
	assert.Equal(t, "3f9a1c20", e.ShortID())
}

// ============================================================================
// Workflow
// ============================================================================

func TestEstimate_Sign(t *testing.T) {
	t.Run("offerte becomes akkoord", func(t *testing.T) {
		e := newTestEstimate(t, StatusOfferte)
		require.NoError(t, e.Sign("data:image/png;base64,AAAA"))
		assert.Equal(t, StatusAkkoord, e.Status)
		assert.True(t, e.HasSignature())
	})

	t.Run("akkoord replaces the signature", func(t *testing.T) {
		e := newTestEstimate(t, StatusAkkoord)
		require.NoError(t, e.Sign("first"))
		require.NoError(t, e.Sign("second"))
		assert.Equal(t, "second", e.SignatureData)
		assert.Equal(t, StatusAkkoord, e.Status)
	})

	t.Run("completed estimates cannot be signed", func(t *testing.T) {
		e := newTestEstimate(t, StatusAkkoord)
		require.NoError(t, e.Complete())
		err := e.Sign("late")
		assert.ErrorIs(t, err, shared.ErrInvalidState)
	})

	t.Run("empty signature is rejected", func(t *testing.T) {
		e := newTestEstimate(t, StatusConcept)
		assert.ErrorIs(t, e.Sign("   "), shared.ErrValidation)
	})
}

func TestEstimate_Complete(t *testing.T) {
	for _, from := range []Status{StatusConcept, StatusOfferte, StatusAkkoord} {
		t.Run("from "+from.String(), func(t *testing.T) {
			e := newTestEstimate(t, from)
			require.NoError(t, e.Complete())
			assert.Equal(t, StatusVoltooid, e.Status)
		})
	}

	t.Run("second completion is rejected", func(t *testing.T) {
		e := newTestEstimate(t, StatusConcept)
		require.NoError(t, e.Complete())
		assert.ErrorIs(t, e.Complete(), shared.ErrInvalidState)
	})
}

func TestEstimate_AdvanceTo(t *testing.T) {
	e := newTestEstimate(t, StatusConcept)

	require.NoError(t, e.AdvanceTo(StatusOfferte))
	assert.Equal(t, StatusOfferte, e.Status)

	assert.ErrorIs(t, e.AdvanceTo(StatusConcept), shared.ErrInvalidState)
	assert.ErrorIs(t, e.AdvanceTo(StatusOfferte), shared.ErrInvalidState)
	assert.ErrorIs(t, e.AdvanceTo(StatusVoltooid), shared.ErrInvalidState)
	assert.ErrorIs(t, e.AdvanceTo(Status("x")), shared.ErrValidation)

	require.NoError(t, e.Complete())
	require.NoError(t, e.AdvanceTo(StatusFactuur))
	require.NoError(t, e.AdvanceTo(StatusBetaald))
	assert.ErrorIs(t, e.AdvanceTo(StatusFactuur), shared.ErrInvalidState)
}

func TestEstimate_ChangeTaxRate(t *testing.T) {
	t.Run("recomputes from persisted line totals", func(t *testing.T) {
		e := newTestEstimate(t, StatusOfferte)
		// a stale catalog price must not leak in: only LineTotal counts
		e.Lines[0].UnitPrice = dec("99")

		require.NoError(t, e.ChangeTaxRate(dec("9")))
		assert.True(t, e.Subtotal.Equal(dec("116.2")))
		assert.True(t, e.TotalInclBTW.Equal(dec("126.658")))
		assert.True(t, e.BTWPercentage.Equal(dec("9")))
	})

	t.Run("not allowed after acceptance", func(t *testing.T) {
		e := newTestEstimate(t, StatusAkkoord)
		assert.ErrorIs(t, e.ChangeTaxRate(dec("9")), shared.ErrInvalidState)
	})

	t.Run("negative rate rejected", func(t *testing.T) {
		e := newTestEstimate(t, StatusConcept)
		assert.ErrorIs(t, e.ChangeTaxRate(dec("-9")), shared.ErrValidation)
		assert.True(t, e.BTWPercentage.Equal(dec("21")))
	})
}

func TestNewPhoto(t *testing.T) {
	estimateID := uuid.New()

	p, err := NewPhoto(estimateID, nil, "", "image/jpeg", "jpg", 1024, "voorkant")
	require.NoError(t, err)
	assert.Equal(t, PhotoBefore, p.PhotoType)
	assert.Contains(t, p.StorageKey, "estimates/"+estimateID.String()+"/photos/")
	assert.Contains(t, p.StorageKey, ".jpg")

	_, err = NewPhoto(estimateID, nil, PhotoType("tijdens"), "image/jpeg", "jpg", 1, "")
	assert.Error(t, err)

	_, err = NewPhoto(estimateID, nil, PhotoAfter, "image/jpeg", "jpg", 0, "")
	assert.Error(t, err)
}
