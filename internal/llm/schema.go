package llm

// ExtractionSchemaName and DescriptionSchemaName label the two response shapes.
const (
	ExtractionSchemaName  = "uniformat_extraction"
	DescriptionSchemaName = "enhanced_descriptions"
)

// BuildExtractionSchema returns the JSON schema for structured inclusion/exclusion extraction.
// No description is requested; the guide has none preceding the bullet lists.
func BuildExtractionSchema() map[string]any {
	return map[string]any{
		"type": "array",
		"items": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"level3_code": map[string]any{
					"type":        "string",
					"description": "Uniformat Level 3 code, e.g. 'A1010' or 'B2010'.",
				},
				"level3_name": map[string]any{
					"type":        "string",
					"description": "Name of the Level 3 element, e.g. 'Standard Foundations'.",
				},
				"inclusions": map[string]any{
					"type":        "array",
					"items":       map[string]any{"type": "string"},
					"description": "One string per bullet of the element's 'Includes' list.",
				},
				"exclusions": map[string]any{
					"type":        "array",
					"items":       map[string]any{"type": "string"},
					"description": "One string per bullet of the element's 'Excludes' list, cross-references kept.",
				},
			},
			"required": []string{"level3_code", "level3_name", "inclusions", "exclusions"},
		},
	}
}

// BuildDescriptionSchema returns the JSON schema for batch description generation.
func BuildDescriptionSchema() map[string]any {
	return map[string]any{
		"type": "array",
		"items": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"level3_code": map[string]any{
					"type":        "string",
					"description": "Level 3 code the description belongs to.",
				},
				"enhanced_description": map[string]any{
					"type":        "string",
					"description": "Comprehensive description of the Level 3 element.",
				},
			},
			"required": []string{"level3_code", "enhanced_description"},
		},
	}
}
