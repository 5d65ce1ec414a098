package entity

// CodeRow is one spreadsheet row of the Uniformat hierarchy.
type CodeRow struct {
	Type       string `json:"type"`
	Level1Code string `json:"level1_code"`
	Level1Name string `json:"level1_name"`
	Level2Code string `json:"level2_code"`
	Level2Name string `json:"level2_name"`
	Level3Code string `json:"level3_code"`
	Level3Name string `json:"level3_name"`
	Level4Code string `json:"level4_code"`
	Level4Name string `json:"level4_name"`
}

// Code represents a stored uniformat_codes row for data transfer between layers.
type Code struct {
	ID int64 `json:"id"`
	CodeRow
	Description *string `json:"description,omitempty"`
	Notes       *string `json:"notes,omitempty"`
}
