package votes

import "github.com/lumen-studio/voting-backend/internal/models"

// Catalog is the closed set of destinations open for voting. Identifiers
// outside this list are rejected before the ledger is ever consulted,
// regardless of what rows exist in the store. Position fixes the display and
// tie-break order.
var Catalog = []models.Location{
	{ID: "maldives", DisplayName: "Maldives", Position: 1},
	{ID: "santorini", DisplayName: "Santorini, Greece", Position: 2},
	{ID: "kyoto", DisplayName: "Kyoto, Japan", Position: 3},
	{ID: "iceland", DisplayName: "Iceland", Position: 4},
	{ID: "bali", DisplayName: "Bali, Indonesia", Position: 5},
	{ID: "patagonia", DisplayName: "Patagonia", Position: 6},
}

var catalogIDs = func() map[string]bool {
	m := make(map[string]bool, len(Catalog))
	for _, loc := range Catalog {
		m[loc.ID] = true
	}
	return m
}()

// ValidLocation reports whether id is in the catalog.
func ValidLocation(id string) bool {
	return catalogIDs[id]
}
