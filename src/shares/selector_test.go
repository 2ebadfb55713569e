package shares

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/splitledger/backend/src/models"
)

func testAccounts() []models.Account {
	return []models.Account{
		{ID: 1, Type: models.AccountTypePersonal, Name: "Parking"},
		{ID: 2, Type: models.AccountTypePersonal, Name: "Park Ave"},
		{ID: 3, Type: models.AccountTypePersonal, Name: "Supermarket"},
		{ID: 4, Type: models.AccountTypeClearing, Name: "Ski Trip", DateInfo: "2024-02-10"},
	}
}

func TestCandidatesSearchIsCaseInsensitive(t *testing.T) {
	result := Candidates(testAccounts(), nil, CandidateFilter{Editable: true, Search: "PARK"})

	require.Len(t, result, 2)
	assert.Equal(t, "Parking", result[0].Name)
	assert.Equal(t, "Park Ave", result[1].Name)
}

func TestCandidatesSearchMatchesDateInfoForClearing(t *testing.T) {
	result := Candidates(testAccounts(), nil, CandidateFilter{Editable: true, Search: "2024-02"})

	require.Len(t, result, 1)
	assert.Equal(t, int64(4), result[0].ID)
}

func TestCandidatesEmptySearchMatchesAll(t *testing.T) {
	result := Candidates(testAccounts(), nil, CandidateFilter{Editable: true})
	assert.Len(t, result, 4)
}

func TestCandidatesExclusion(t *testing.T) {
	result := Candidates(testAccounts(), nil, CandidateFilter{Editable: true, Exclude: []int64{1, 4}})

	require.Len(t, result, 2)
	assert.Equal(t, int64(2), result[0].ID)
	assert.Equal(t, int64(3), result[1].ID)
}

func TestCandidatesNonEditableFallsBackToShareMap(t *testing.T) {
	value := models.ShareMap{2: decimal.NewFromInt(1)}

	result := Candidates(testAccounts(), value, CandidateFilter{})
	require.Len(t, result, 1)
	assert.Equal(t, int64(2), result[0].ID)
}

func TestCandidatesDisplayPredicateWins(t *testing.T) {
	value := models.ShareMap{2: decimal.NewFromInt(1)}
	shouldDisplay := func(accountID int64) bool { return accountID == 3 }

	result := Candidates(testAccounts(), value, CandidateFilter{ShouldDisplay: shouldDisplay})
	require.Len(t, result, 1)
	assert.Equal(t, int64(3), result[0].ID)
}

func TestCandidatesNoMatchIsEmptyNotError(t *testing.T) {
	result := Candidates(testAccounts(), nil, CandidateFilter{Editable: true, Search: "nothing matches this"})
	assert.Empty(t, result)
}

// A share map entry whose account disappeared from the candidate list is
// filtered from display but stays in the map until explicitly cleared.
func TestCandidatesMissingAccountKeptInMap(t *testing.T) {
	value := models.ShareMap{99: decimal.NewFromInt(2)}

	result := Candidates(testAccounts(), value, CandidateFilter{})
	assert.Empty(t, result)
	assert.Contains(t, value, int64(99))
}

func TestCountSelected(t *testing.T) {
	accounts := testAccounts()
	value := models.ShareMap{1: decimal.NewFromInt(1), 4: decimal.NewFromInt(2)}

	assert.Equal(t, 1, CountSelected(accounts, value, models.AccountTypePersonal, nil))
	assert.Equal(t, 1, CountSelected(accounts, value, models.AccountTypeClearing, nil))

	shouldDisplay := func(accountID int64) bool { return accountID == 2 }
	assert.Equal(t, 2, CountSelected(accounts, value, models.AccountTypePersonal, shouldDisplay))
}

func TestDisplayModeEscalation(t *testing.T) {
	var mode DisplayMode
	assert.False(t, mode.Advanced())

	mode.Observe(models.ShareMap{1: decimal.NewFromInt(1)})
	assert.False(t, mode.Advanced())

	mode.Observe(models.ShareMap{1: decimal.NewFromInt(1), 2: decimal.NewFromFloat(2.5)})
	assert.True(t, mode.Advanced())

	// All weights back to 1 within the same session: the mode stays advanced.
	mode.Observe(models.ShareMap{1: decimal.NewFromInt(1)})
	assert.True(t, mode.Advanced())
}

func TestDisplayModeExplicitToggle(t *testing.T) {
	var mode DisplayMode

	mode.Set(true)
	assert.True(t, mode.Advanced())

	// Only an explicit user action reverts the mode.
	mode.Set(false)
	assert.False(t, mode.Advanced())
}
