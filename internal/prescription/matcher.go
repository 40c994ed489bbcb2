package prescription

import "strings"

// NormalizeName canonicalizes a medicine name for inventory lookup:
// trimmed, lowercased, internal whitespace collapsed.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// requestedQuantity returns the quantity a line item asks for, defaulting
// to 1 when the prescription did not specify one.
func requestedQuantity(item LineItem) int {
	if item.Quantity > 0 {
		return item.Quantity
	}
	return 1
}

// MatchInventory partitions prescribed items into those the inventory
// can fulfil and those needing a procurement order. Matching is exact on
// normalized names; insufficient stock is treated the same as absence.
// Both partitions preserve the input order. Pure function, never fails.
func MatchInventory(items []LineItem, inventory []Medicine) MatchOutcome {
	byName := make(map[string]Medicine, len(inventory))
	for _, med := range inventory {
		byName[NormalizeName(med.Name)] = med
	}

	outcome := MatchOutcome{
		Available:   []AvailableItem{},
		Unavailable: []LineItem{},
	}
	for _, item := range items {
		med, found := byName[NormalizeName(item.Name)]
		if found && med.Quantity >= requestedQuantity(item) {
			outcome.Available = append(outcome.Available, AvailableItem{Item: item, Medicine: med})
		} else {
			outcome.Unavailable = append(outcome.Unavailable, item)
		}
	}
	return outcome
}
