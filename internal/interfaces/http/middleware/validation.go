package middleware

import (
	"errors"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/pressureflow/backend/internal/interfaces/http/dto"
	"github.com/shopspring/decimal"
)

var setupValidatorOnce sync.Once

// SetupValidator configures gin's validator: JSON field names in errors and
// the nonneg tag for decimal amounts
func SetupValidator() {
	setupValidatorOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
			}
			return name
		})
		_ = v.RegisterValidation("nonneg", validateNonNegativeDecimal)
	})
}

// validateNonNegativeDecimal accepts decimal.Decimal values >= 0
func validateNonNegativeDecimal(fl validator.FieldLevel) bool {
	switch d := fl.Field().Interface().(type) {
	case decimal.Decimal:
		return !d.IsNegative()
	case *decimal.Decimal:
		return d == nil || !d.IsNegative()
	default:
		return false
	}
}

// FormatValidationErrors formats validation errors into a standard response
func FormatValidationErrors(err error, requestID string) dto.Response {
	var details []dto.ValidationDetail

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, e := range validationErrors {
			details = append(details, dto.ValidationDetail{
				Field:   e.Field(),
				Message: getValidationMessage(e),
			})
		}
	}

	return dto.NewValidationErrorResponse("Ongeldige invoer", requestID, details)
}

// HandleValidationError writes a 400 for a binding error. Malformed JSON
// gets ERR_INVALID_JSON, a body over the size limit gets 413.
func HandleValidationError(c *gin.Context, err error) {
	requestID := c.GetString("request_id")

	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		c.JSON(http.StatusRequestEntityTooLarge,
			dto.NewErrorResponseWithRequestID(dto.ErrCodePayloadTooLarge, "Het verzoek is te groot", requestID))
		return
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest,
			dto.NewErrorResponseWithRequestID(dto.ErrCodeInvalidJSON, "Ongeldige JSON in verzoek", requestID))
		return
	}

	c.JSON(http.StatusBadRequest, FormatValidationErrors(err, requestID))
}

// getValidationMessage returns a Dutch validation message
func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "Dit veld is verplicht"
	case "email":
		return "Ongeldig e-mailadres"
	case "min":
		if e.Kind() == reflect.String {
			return "Minimaal " + e.Param() + " tekens"
		}
		return "Minimaal " + e.Param()
	case "max":
		if e.Kind() == reflect.String {
			return "Maximaal " + e.Param() + " tekens"
		}
		return "Maximaal " + e.Param()
	case "len":
		return "Moet precies " + e.Param() + " tekens zijn"
	case "uuid":
		return "Ongeldige UUID"
	case "oneof":
		return "Moet een van de volgende zijn: " + e.Param()
	case "gte":
		return "Moet groter dan of gelijk aan " + e.Param() + " zijn"
	case "lte":
		return "Moet kleiner dan of gelijk aan " + e.Param() + " zijn"
	case "gt":
		return "Moet groter dan " + e.Param() + " zijn"
	case "lt":
		return "Moet kleiner dan " + e.Param() + " zijn"
	case "nonneg":
		return "Mag niet negatief zijn"
	default:
		return "Ongeldige waarde"
	}
}
