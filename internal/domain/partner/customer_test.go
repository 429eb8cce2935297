package partner

import (
	"testing"

	"github.com/pressureflow/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCustomer(t *testing.T) {
	c, err := NewCustomer("  Familie de Vries ", SiteDetails{Address: "Dorpsstraat 1, Utrecht"})
	require.NoError(t, err)
	assert.Equal(t, "Familie de Vries", c.Name)
	assert.Equal(t, ParkingDriveway, c.ParkingSituation)
	assert.True(t, c.WaterPressureLPM.IsZero())
}

func TestNewCustomer_Validation(t *testing.T) {
	tests := []struct {
		name     string
		custName string
		details  SiteDetails
	}{
		{"empty name", " ", SiteDetails{}},
		{"unknown parking", "Jansen", SiteDetails{ParkingSituation: "dak"}},
		{"negative pressure", "Jansen", SiteDetails{WaterPressureLPM: decimal.NewFromInt(-3)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCustomer(tt.custName, tt.details)
			assert.ErrorIs(t, err, shared.ErrValidation)
		})
	}
}

func TestCustomer_Update_KeepsDetails(t *testing.T) {
	c, err := NewCustomer("Jansen", SiteDetails{Phone: "0612345678", ParkingSituation: ParkingStreet})
	require.NoError(t, err)

	details := c.Details()
	details.Email = "jansen@example.nl"
	require.NoError(t, c.Update("Jansen BV", details))

	assert.Equal(t, "Jansen BV", c.Name)
	assert.Equal(t, "0612345678", c.Phone)
	assert.Equal(t, "jansen@example.nl", c.Email)
	assert.Equal(t, ParkingStreet, c.ParkingSituation)
}
