package constants

import "time"

// Spreadsheet headers, in column order. Names must match exactly.
const (
	ColType       = "Type"
	ColLevel1Code = "Level 1 Code"
	ColLevel1Name = "Level 1 Name"
	ColLevel2Code = "Level 2 Code"
	ColLevel2Name = "Level 2 Name"
	ColLevel3Code = "Level 3 Code"
	ColLevel3Name = "Level 3 Name"
	ColLevel4Code = "Level 4 Code"
	ColLevel4Name = "Level 4 Name"
)

// CodeColumns lists every header the bulk load requires.
var CodeColumns = []string{
	ColType,
	ColLevel1Code, ColLevel1Name,
	ColLevel2Code, ColLevel2Name,
	ColLevel3Code, ColLevel3Name,
	ColLevel4Code, ColLevel4Name,
}

// Table names.
const (
	TableCodes      = "uniformat_codes"
	TableInclusions = "uniformat_inclusions"
	TableExclusions = "uniformat_exclusions"
)

// Published Gemini free-tier limits. Logged when planning description batches; nothing enforces them.
const (
	RPMLimit = 10     // requests per minute
	TPMLimit = 250000 // tokens per minute
	RPDLimit = 250    // requests per day
)

// Generation defaults.
const (
	DefaultGeminiModel       = "gemini-2.5-flash"
	DefaultOpenAIModel       = "gpt-4o-mini"
	ExtractionTemperature    = 0.0
	DescriptionTemperature   = 0.7
	TokensPerDescribedItem   = 2000
	DefaultMaxRetries        = 5
	DefaultInitialDelay      = 5 * time.Second
	DefaultDescribeBatchSize = 5
	FuzzyCandidateLimit      = 5
)
