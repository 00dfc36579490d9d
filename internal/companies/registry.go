// Package companies holds the static per-company configuration: the
// extraction prompt template and the canonical reference lists used to
// validate extracted names. Treated as immutable after process start.
package companies

import "invoice-extraction-platform/models"

var registry = map[string]*models.CompanyConfig{
	"86e676e3-4cc0-4725-b12c-358d3b4b3e43": {
		ID:            "86e676e3-4cc0-4725-b12c-358d3b4b3e43",
		Name:          "Le Comfort",
		MainPrompt:    leComfortMainPrompt,
		ProductsList:  leComfortProductsList,
		CoveringsList: leComfortCoveringsList,
	},
}

// Get returns the configuration for a company id.
func Get(id string) (*models.CompanyConfig, bool) {
	cfg, ok := registry[id]
	return cfg, ok
}
