// Package shares implements the share-selection logic backing the share
// editing widgets: candidate filtering, selection counting and the
// simple/advanced display mode.
package shares

import (
	"strings"

	"github.com/username/splitledger/backend/src/models"
)

// CandidateFilter controls which accounts are offered as share candidates.
type CandidateFilter struct {
	// Editable widens the candidate set to every account regardless of the
	// display predicate.
	Editable bool
	// ShouldDisplay optionally forces accounts to be shown even without a
	// stored share. When nil, non-editable selection falls back to "has a
	// share in the map".
	ShouldDisplay func(accountID int64) bool
	// Exclude lists account IDs that are never candidates.
	Exclude []int64
	// Search is a case-insensitive substring matched against name,
	// description and, for clearing accounts, the date info. Empty matches all.
	Search string
}

// Candidates returns the accounts eligible for display, in input order.
// An empty result is a valid outcome of filtering, not an error.
func Candidates(accounts []models.Account, value models.ShareMap, filter CandidateFilter) []models.Account {
	excluded := make(map[int64]bool, len(filter.Exclude))
	for _, id := range filter.Exclude {
		excluded[id] = true
	}
	search := strings.ToLower(strings.TrimSpace(filter.Search))

	result := make([]models.Account, 0, len(accounts))
	for _, account := range accounts {
		if excluded[account.ID] {
			continue
		}
		if !isShown(account.ID, value, filter) {
			continue
		}
		if search != "" && !matchesSearch(account, search) {
			continue
		}
		result = append(result, account)
	}
	return result
}

// CountSelected counts accounts of the given type that are either forced
// visible by shouldDisplay or carry a positive share in the map.
func CountSelected(accounts []models.Account, value models.ShareMap, accountType models.AccountType, shouldDisplay func(accountID int64) bool) int {
	count := 0
	for _, account := range accounts {
		if account.Type != accountType {
			continue
		}
		if shouldDisplay != nil && shouldDisplay(account.ID) {
			count++
			continue
		}
		if value.Weight(account.ID).IsPositive() {
			count++
		}
	}
	return count
}

func isShown(accountID int64, value models.ShareMap, filter CandidateFilter) bool {
	if filter.Editable {
		return true
	}
	if filter.ShouldDisplay != nil {
		return filter.ShouldDisplay(accountID)
	}
	_, ok := value[accountID]
	return ok
}

func matchesSearch(account models.Account, search string) bool {
	if strings.Contains(strings.ToLower(account.Name), search) {
		return true
	}
	if strings.Contains(strings.ToLower(account.Description), search) {
		return true
	}
	if account.Type == models.AccountTypeClearing && account.DateInfo != "" {
		return strings.Contains(strings.ToLower(account.DateInfo), search)
	}
	return false
}
