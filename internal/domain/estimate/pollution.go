package estimate

import (
	"fmt"

	"github.com/pressureflow/backend/internal/domain/shared"
)

// PollutionLevel classifies surface contamination for display.
// It is informational only: the multiplier on a line is whatever the caller
// supplied and is never derived from, or checked against, this level.
type PollutionLevel string

const (
	PollutionStandaard PollutionLevel = "standaard"
	PollutionZwaar     PollutionLevel = "zwaar"
)

// ParsePollutionLevel accepts "standaard", "zwaar" or empty (standaard)
func ParsePollutionLevel(raw string) (PollutionLevel, error) {
	switch PollutionLevel(raw) {
	case "":
		return PollutionStandaard, nil
	case PollutionStandaard, PollutionZwaar:
		return PollutionLevel(raw), nil
	}
	return "", shared.NewValidationError(fmt.Sprintf("unknown pollution level %q", raw))
}

// Label returns the document label. Anything but zwaar shows as standaard.
func (p PollutionLevel) Label() string {
	if p == PollutionZwaar {
		return "zwaar (1.3x)"
	}
	return "standaard"
}
