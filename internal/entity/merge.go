package entity

import "github.com/joseph-ayodele/uniformat-db/constants"

// Candidate is a near-miss code surfaced when a lookup fails.
type Candidate struct {
	Level3Code string `json:"level3_code"`
	Length     int    `json:"length"`
}

// MergeOutcome reports what happened to a single extracted element.
type MergeOutcome struct {
	Level3Code string                `json:"level3_code"`
	Status     constants.MergeStatus `json:"status"`
	CodeID     int64                 `json:"code_id,omitempty"`
	Inclusions int                   `json:"inclusions"`
	Exclusions int                   `json:"exclusions"`
	Candidates []Candidate           `json:"candidates,omitempty"`
}

// Fragment is a stored inclusion or exclusion line.
type Fragment struct {
	ID         int64                    `json:"id"`
	CodeID     int64                    `json:"code_id"`
	Level3Code string                   `json:"level3_code"`
	Kind       constants.EnrichmentKind `json:"kind"`
	Text       string                   `json:"text"`
}
