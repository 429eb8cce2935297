// Package settings holds the company profile printed on quotes and invoices.
package settings

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/pressureflow/backend/internal/domain/shared"
)

// Setting keys as stored in the key/value table
const (
	KeyCompanyName    = "company_name"
	KeyCompanyAddress = "company_address"
	KeyCompanyPhone   = "company_phone"
	KeyCompanyEmail   = "company_email"
	KeyKVK            = "company_kvk"
	KeyBTWID          = "company_btw_id"
	KeyIBAN           = "company_iban"
	KeyInvoicePrefix  = "invoice_prefix"
	KeyEstimatePrefix = "estimate_prefix"
)

var prefixRegex = regexp.MustCompile(`^[A-Za-z0-9-]{1,10}$`)

// Settings is the typed view of the settings table
type Settings struct {
	CompanyName    string `json:"company_name"`
	CompanyAddress string `json:"company_address"`
	CompanyPhone   string `json:"company_phone"`
	CompanyEmail   string `json:"company_email"`
	KVK            string `json:"company_kvk"`
	BTWID          string `json:"company_btw_id"`
	IBAN           string `json:"company_iban"`
	InvoicePrefix  string `json:"invoice_prefix"`
	EstimatePrefix string `json:"estimate_prefix"`
}

// Defaults returns the values used for keys that were never stored
func Defaults() Settings {
	return Settings{
		CompanyName:    "PressureFlow",
		InvoicePrefix:  "FAC",
		EstimatePrefix: "OFF",
	}
}

func (s *Settings) fields() map[string]*string {
	return map[string]*string{
		KeyCompanyName:    &s.CompanyName,
		KeyCompanyAddress: &s.CompanyAddress,
		KeyCompanyPhone:   &s.CompanyPhone,
		KeyCompanyEmail:   &s.CompanyEmail,
		KeyKVK:            &s.KVK,
		KeyBTWID:          &s.BTWID,
		KeyIBAN:           &s.IBAN,
		KeyInvoicePrefix:  &s.InvoicePrefix,
		KeyEstimatePrefix: &s.EstimatePrefix,
	}
}

// Keys lists every known key in sorted order
func Keys() []string {
	var s Settings
	keys := make([]string, 0, len(s.fields()))
	for k := range s.fields() {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// FromMap overlays stored values on the defaults. Unknown keys are ignored
// so rows left behind by older versions do not break reads.
func FromMap(values map[string]string) Settings {
	s := Defaults()
	fields := s.fields()
	for k, v := range values {
		if ptr, ok := fields[k]; ok {
			*ptr = v
		}
	}
	return s
}

// ToMap returns every key with its current value
func (s Settings) ToMap() map[string]string {
	out := make(map[string]string)
	for k, ptr := range s.fields() {
		out[k] = *ptr
	}
	return out
}

// ValidateUpdate rejects unknown keys, an empty company name and prefixes
// that would not fit a document number
func ValidateUpdate(values map[string]string) error {
	var s Settings
	fields := s.fields()
	var unknown []string
	for k := range values {
		if _, ok := fields[k]; !ok {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return shared.NewValidationError(fmt.Sprintf("unknown setting keys: %s", strings.Join(unknown, ", ")))
	}
	if name, ok := values[KeyCompanyName]; ok && strings.TrimSpace(name) == "" {
		return shared.NewValidationError("company_name must not be empty")
	}
	for _, key := range []string{KeyInvoicePrefix, KeyEstimatePrefix} {
		if v, ok := values[key]; ok && !prefixRegex.MatchString(v) {
			return shared.NewValidationError(key + " must be 1 to 10 letters, digits or dashes")
		}
	}
	return nil
}

// Repository stores settings as key/value rows
type Repository interface {
	GetAll(ctx context.Context) (map[string]string, error)
	// Upsert writes all values in one transaction
	Upsert(ctx context.Context, values map[string]string) error
}
