// backend/src/security/validation/position_validator.go
package validation

import (
	"errors"

	"github.com/username/splitledger/backend/src/models"
)

// PositionValidationError carries field-level and form-level error messages
// for a single position. Consumers display it as-is; an absent field entry
// means "no error" for that field.
type PositionValidationError struct {
	FormErrors  []string            `json:"formErrors,omitempty"`
	FieldErrors map[string][]string `json:"fieldErrors,omitempty"`
}

func (e *PositionValidationError) addFieldError(field, message string) {
	if e.FieldErrors == nil {
		e.FieldErrors = make(map[string][]string)
	}
	e.FieldErrors[field] = append(e.FieldErrors[field], message)
}

// ValidationErrors maps position IDs to their validation errors. Positions
// without an entry are valid.
type ValidationErrors map[int64]*PositionValidationError

// ValidatePosition checks a single position and returns nil when it is valid.
func ValidatePosition(position models.Position) *PositionValidationError {
	result := &PositionValidationError{}

	if err := ValidateStringNotEmpty(position.Name, "name"); err != nil {
		result.addFieldError("name", "name cannot be empty")
	}
	if err := ValidateStringMaxLength(position.Name, MaxNameLength, "name"); err != nil {
		result.addFieldError("name", err.Error())
	}
	if err := ValidateDecimal(position.Price, "price", true); err != nil {
		result.addFieldError("price", err.Error())
	}
	if position.CommunistShares.IsNegative() {
		result.addFieldError("communistShares", "communist shares cannot be negative")
	}
	for _, weight := range position.Usages {
		if !weight.IsPositive() {
			result.addFieldError("usages", "usage shares must be positive")
			break
		}
	}
	if len(position.Usages) == 0 && position.CommunistShares.IsZero() && !position.Price.IsZero() {
		result.FormErrors = append(result.FormErrors, "a position with a price must be assigned to at least one account or marked as shared")
	}

	if len(result.FormErrors) == 0 && len(result.FieldErrors) == 0 {
		return nil
	}
	return result
}

// ValidatePositions validates a draft transaction's positions and returns the
// errors keyed by position ID. An empty result means all positions are valid.
func ValidatePositions(positions []models.Position) ValidationErrors {
	result := make(ValidationErrors)
	for _, position := range positions {
		if err := ValidatePosition(position); err != nil {
			result[position.ID] = err
		}
	}
	return result
}

// ErrPositionsInvalid signals that a commit was rejected because position
// validation produced errors.
var ErrPositionsInvalid = errors.New("one or more positions are invalid")
