package constants

// MergeStatus is the outcome of merging one extracted element into the store.
type MergeStatus string

const (
	MergeMatched   MergeStatus = "MATCHED"   // inclusions/exclusions replaced
	MergeUnmatched MergeStatus = "UNMATCHED" // no code row; diagnostic candidates attached
	MergeSkipped   MergeStatus = "SKIPPED"   // element carried no level3_code
)

// EnrichmentKind labels an inclusion or exclusion fragment.
type EnrichmentKind string

const (
	Inclusion EnrichmentKind = "include"
	Exclusion EnrichmentKind = "exclude"
)
