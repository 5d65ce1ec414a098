package entity

// Element is one Level 3 item returned by structured extraction.
type Element struct {
	Level3Code string   `json:"level3_code"`
	Level3Name string   `json:"level3_name"`
	Inclusions []string `json:"inclusions"`
	Exclusions []string `json:"exclusions"`
}

// EnrichmentTarget is the per-code context handed to description generation.
type EnrichmentTarget struct {
	Level3Code         string   `json:"level3_code"`
	Level3Name         string   `json:"level3_name"`
	CurrentDescription string   `json:"current_description,omitempty"`
	Inclusions         []string `json:"inclusions"`
	Exclusions         []string `json:"exclusions"`
}

// Description is one generated description keyed by Level 3 code.
type Description struct {
	Level3Code          string `json:"level3_code"`
	EnhancedDescription string `json:"enhanced_description"`
}
