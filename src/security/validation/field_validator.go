// backend/src/security/validation/field_validator.go
package validation

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// ErrValidationFailed is the sentinel wrapped by every validation error.
var ErrValidationFailed = fmt.Errorf("validation failed")

const (
	MaxNameLength        = 255
	MaxDescriptionLength = 1024
	MaxCurrencySymLength = 10
)

// MaxMonetaryValue bounds accepted monetary inputs to a sane range.
var MaxMonetaryValue = decimal.New(1, 12) // 10^12

// --- String Validators ---

// ValidateStringNotEmpty checks if a string is not empty after trimming.
func ValidateStringNotEmpty(s, fieldName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s cannot be empty", ErrValidationFailed, fieldName)
	}
	return nil
}

// ValidateStringMaxLength checks if a string's UTF-8 character count is within max bounds.
func ValidateStringMaxLength(s string, maxLength int, fieldName string) error {
	if utf8.RuneCountInString(s) > maxLength {
		return fmt.Errorf("%w: %s exceeds maximum length of %d characters", ErrValidationFailed, fieldName, maxLength)
	}
	return nil
}

// --- Numeric Validators ---

// ValidateDecimalString parses a string into a decimal and checks its range.
func ValidateDecimalString(s, fieldName string, allowNegative bool) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return decimal.Zero, fmt.Errorf("%w: %s cannot be empty", ErrValidationFailed, fieldName)
	}
	value, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s ('%s') is not a valid decimal: %v", ErrValidationFailed, fieldName, s, err)
	}
	return value, ValidateDecimal(value, fieldName, allowNegative)
}

// ValidateDecimal checks a decimal value's sign and magnitude.
func ValidateDecimal(value decimal.Decimal, fieldName string, allowNegative bool) error {
	if !allowNegative && value.IsNegative() {
		return fmt.Errorf("%w: %s cannot be negative", ErrValidationFailed, fieldName)
	}
	if value.Abs().GreaterThan(MaxMonetaryValue) {
		return fmt.Errorf("%w: %s exceeds the maximum supported magnitude", ErrValidationFailed, fieldName)
	}
	return nil
}

// --- Date Validator ---

// ValidateDateString checks if a string is a valid date in "YYYY-MM-DD" format.
func ValidateDateString(s, fieldName string) (time.Time, error) {
	trimmed := strings.TrimSpace(s)
	if err := ValidateStringNotEmpty(trimmed, fieldName); err != nil {
		return time.Time{}, err
	}
	t, err := time.Parse("2006-01-02", trimmed)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s ('%s') is not a valid date (expected YYYY-MM-DD): %v", ErrValidationFailed, fieldName, s, err)
	}
	return t, nil
}
