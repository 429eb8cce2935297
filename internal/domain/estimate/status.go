package estimate

import (
	"fmt"

	"github.com/pressureflow/backend/internal/domain/shared"
)

// Status is the position of an estimate in the job workflow:
// concept → offerte → akkoord → voltooid → factuur → betaald
type Status string

const (
	StatusConcept  Status = "concept"
	StatusOfferte  Status = "offerte"
	StatusAkkoord  Status = "akkoord"
	StatusVoltooid Status = "voltooid"
	StatusFactuur  Status = "factuur"
	StatusBetaald  Status = "betaald"
)

// statusRank orders the workflow; a higher rank is further along
var statusRank = map[Status]int{
	StatusConcept:  1,
	StatusOfferte:  2,
	StatusAkkoord:  3,
	StatusVoltooid: 4,
	StatusFactuur:  5,
	StatusBetaald:  6,
}

// AllStatuses returns every status in workflow order
func AllStatuses() []Status {
	return []Status{StatusConcept, StatusOfferte, StatusAkkoord, StatusVoltooid, StatusFactuur, StatusBetaald}
}

// ParseStatus converts a raw value into a Status
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.IsValid() {
		return "", shared.NewValidationError(fmt.Sprintf("unknown estimate status %q", raw))
	}
	return s, nil
}

// IsValid checks if the status is part of the workflow
func (s Status) IsValid() bool {
	_, ok := statusRank[s]
	return ok
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// Rank returns the workflow position, 0 for unknown statuses
func (s Status) Rank() int {
	return statusRank[s]
}

// CanTransitionTo reports whether target lies strictly ahead in the workflow.
// Steps may be skipped; moving backwards or staying put is never allowed.
func (s Status) CanTransitionTo(target Status) bool {
	if !s.IsValid() || !target.IsValid() {
		return false
	}
	return target.Rank() > s.Rank()
}

// IsCompleted returns true once the job has been carried out
func (s Status) IsCompleted() bool {
	return s.Rank() >= StatusVoltooid.Rank()
}

// IsInvoice returns true for statuses rendered as an invoice
func (s Status) IsInvoice() bool {
	return s == StatusFactuur || s == StatusBetaald
}

// IsDraft returns true while prices may still change
func (s Status) IsDraft() bool {
	return s == StatusConcept || s == StatusOfferte
}

// RevenueStatuses are the statuses counted as earned revenue
func RevenueStatuses() []Status {
	return []Status{StatusVoltooid, StatusFactuur, StatusBetaald}
}
