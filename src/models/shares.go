package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// ShareMap maps an account ID to a positive share weight. An account absent
// from the map has implicit weight zero; zero-weight entries are never stored.
type ShareMap map[int64]decimal.Decimal

// WithShare returns a copy of the map with the given account's weight replaced.
// A zero weight removes the entry. The receiver is never mutated.
func (m ShareMap) WithShare(accountID int64, weight decimal.Decimal) ShareMap {
	result := m.Clone()
	if weight.IsZero() {
		delete(result, accountID)
	} else {
		result[accountID] = weight
	}
	return result
}

// Toggled returns a copy of the map with the account's weight set to 1 when
// checked and removed otherwise.
func (m ShareMap) Toggled(accountID int64, checked bool) ShareMap {
	if checked {
		return m.WithShare(accountID, decimal.NewFromInt(1))
	}
	return m.WithShare(accountID, decimal.Zero)
}

// Clone returns a shallow copy of the map. A nil receiver yields an empty map.
func (m ShareMap) Clone() ShareMap {
	result := make(ShareMap, len(m))
	for id, weight := range m {
		result[id] = weight
	}
	return result
}

// Weight returns the stored weight for the account, or zero if absent.
func (m ShareMap) Weight(accountID int64) decimal.Decimal {
	if weight, ok := m[accountID]; ok {
		return weight
	}
	return decimal.Zero
}

// TotalWeight returns the sum of all stored weights.
func (m ShareMap) TotalWeight() decimal.Decimal {
	total := decimal.Zero
	for _, weight := range m {
		total = total.Add(weight)
	}
	return total
}

// Value implements driver.Valuer so share maps can be stored as JSON text columns.
func (m ShareMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal share map: %w", err)
	}
	return string(data), nil
}

// Scan implements sql.Scanner for JSON text columns.
func (m *ShareMap) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case string:
		data = []byte(v)
	case []byte:
		data = v
	case nil:
		*m = ShareMap{}
		return nil
	default:
		return fmt.Errorf("unsupported type %T for share map column", src)
	}
	if len(data) == 0 {
		*m = ShareMap{}
		return nil
	}
	return json.Unmarshal(data, m)
}
