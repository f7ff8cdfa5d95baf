// Package selection derives the candidate column set for a dataset and
// validates the user's confirmed choice into a FieldSelection.
package selection

import (
	"log"

	"cardstock/domain/cards"
	"cardstock/internal/errors"
)

// ProposeColumns returns every column of the dataset in discovery order.
// All of them are default-selected in the UI.
func ProposeColumns(dataset cards.Dataset) []string {
	columns := make([]string, len(dataset.Columns))
	copy(columns, dataset.Columns)
	return columns
}

// ConfirmSelection validates the chosen subset against the dataset and
// produces the authoritative FieldSelection: ordered as chosen, de-duplicated,
// restricted to columns the dataset actually has. Fails with NO_FIELDS_CHOSEN
// when nothing valid remains.
func ConfirmSelection(dataset cards.Dataset, chosen []string) (cards.FieldSelection, error) {
	seen := make(map[string]bool, len(chosen))
	fields := make(cards.FieldSelection, 0, len(chosen))

	for _, name := range chosen {
		if seen[name] {
			continue
		}
		if !dataset.HasColumn(name) {
			log.Printf("[ConfirmSelection] Ignoring unknown column %q", name)
			continue
		}
		seen[name] = true
		fields = append(fields, name)
	}

	if len(fields) == 0 {
		log.Printf("[ConfirmSelection] FAILED - No fields chosen")
		return nil, errors.NoFieldsChosen("choose at least one column to display")
	}

	return fields, nil
}
