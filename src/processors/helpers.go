package processors

import (
	"slices"

	"github.com/username/splitledger/backend/src/models"
)

// sortedAccountIDs returns the map keys in ascending order so that account
// sequences derived from share maps are deterministic.
func sortedAccountIDs(m models.ShareMap) []int64 {
	ids := make([]int64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
