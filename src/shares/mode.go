package shares

import (
	"github.com/shopspring/decimal"

	"github.com/username/splitledger/backend/src/models"
)

// DisplayMode tracks whether a share widget renders checkboxes (simple) or
// numeric weights (advanced). The transition to advanced is one-way: a
// weighted map cannot be faithfully re-displayed as checkboxes, so the mode
// never auto-reverts even if the map later returns to all-one weights.
type DisplayMode struct {
	advanced bool
}

// Advanced reports whether numeric weight editing is active.
func (m *DisplayMode) Advanced() bool {
	return m.advanced
}

// Observe escalates to advanced if any stored weight differs from 1.
func (m *DisplayMode) Observe(value models.ShareMap) {
	if m.advanced {
		return
	}
	one := decimal.NewFromInt(1)
	for _, weight := range value {
		if !weight.Equal(one) {
			m.advanced = true
			return
		}
	}
}

// Set applies an explicit user toggle. Only an explicit user action may
// leave advanced mode; Observe never reverts it.
func (m *DisplayMode) Set(advanced bool) {
	m.advanced = advanced
}
