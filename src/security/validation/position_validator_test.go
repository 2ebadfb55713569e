package validation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/splitledger/backend/src/models"
)

func TestValidatePositionValid(t *testing.T) {
	position := models.Position{
		ID:     1,
		Name:   "groceries",
		Price:  decimal.NewFromFloat(12.50),
		Usages: models.ShareMap{1: decimal.NewFromInt(1)},
	}
	assert.Nil(t, ValidatePosition(position))
}

func TestValidatePositionEmptyName(t *testing.T) {
	position := models.Position{
		ID:     1,
		Price:  decimal.NewFromInt(5),
		Usages: models.ShareMap{1: decimal.NewFromInt(1)},
	}

	err := ValidatePosition(position)
	require.NotNil(t, err)
	assert.Contains(t, err.FieldErrors, "name")
}

func TestValidatePositionNegativeCommunistShares(t *testing.T) {
	position := models.Position{
		ID:              1,
		Name:            "drinks",
		Price:           decimal.NewFromInt(5),
		CommunistShares: decimal.NewFromInt(-1),
	}

	err := ValidatePosition(position)
	require.NotNil(t, err)
	assert.Contains(t, err.FieldErrors, "communistShares")
}

func TestValidatePositionUnassignedPrice(t *testing.T) {
	position := models.Position{
		ID:    1,
		Name:  "orphan",
		Price: decimal.NewFromInt(10),
	}

	err := ValidatePosition(position)
	require.NotNil(t, err)
	assert.NotEmpty(t, err.FormErrors)
}

func TestValidatePositionsKeyedByID(t *testing.T) {
	valid := models.Position{
		ID:     1,
		Name:   "ok",
		Price:  decimal.NewFromInt(3),
		Usages: models.ShareMap{1: decimal.NewFromInt(1)},
	}
	invalid := models.Position{
		ID:    2,
		Price: decimal.NewFromInt(3),
	}

	errs := ValidatePositions([]models.Position{valid, invalid})
	require.Len(t, errs, 1)

	// An absent entry means "no error" for that position.
	assert.NotContains(t, errs, int64(1))
	assert.Contains(t, errs, int64(2))
}

func TestValidatePositionZeroPriceNoAssignmentIsValid(t *testing.T) {
	// Freshly added positions start empty; they only become invalid once a
	// price is entered without any assignment.
	position := models.Position{ID: 1, Name: "new item"}
	assert.Nil(t, ValidatePosition(position))
}
