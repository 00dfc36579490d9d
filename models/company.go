package models

// CompanyConfig is one entry of the static per-company registry:
// display name, the extraction prompt template, and the canonical
// reference lists used to validate extracted names. Immutable after load.
type CompanyConfig struct {
	ID            string
	Name          string
	MainPrompt    string
	ProductsList  []string
	CoveringsList []string
}

// CRMClient is one record of the CRM client directory.
type CRMClient struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
