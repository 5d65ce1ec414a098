package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/joseph-ayodele/uniformat-db/internal/entity"
)

// BuildExtractionPrompt asks for Level 3 codes, names and their Includes/Excludes bullets.
func BuildExtractionPrompt(text string) string {
	parts := []string{
		"You are an expert in construction classification systems, specifically Uniformat II.",
		"Extract Uniformat II Level 3 element data from the document section below.",
		"For each element identify its Level 3 code and name, then the separate lists of explicit inclusions and exclusions.",
		"Every bullet under 'Includes' or 'Excludes' must be its own list item.",
		"Keep cross-references such as '(see section ...)' inside the exclusion text.",
		"Do NOT extract any general prose description; only the code, name and the two lists.",
	}

	var b strings.Builder
	b.WriteString(strings.Join(parts, " "))
	b.WriteString("\n\nText Content:\n")
	b.WriteString(text)
	b.WriteString("\n\nOutput Schema (JSON):\n")
	b.WriteString(mustJSON(BuildExtractionSchema()))
	b.WriteString("\n\nReturn ONLY the JSON array, with no preamble or surrounding text. Ensure valid JSON.")
	return b.String()
}

// BuildDescriptionPrompt packs every element of the batch into one prompt.
func BuildDescriptionPrompt(batch []entity.EnrichmentTarget) string {
	var b strings.Builder
	b.WriteString("You are an expert in Uniformat II classification for construction. ")
	b.WriteString("Write a comprehensive, detailed description for each Uniformat II Level 3 element below, ")
	b.WriteString("using its code, name, brief description (if any), inclusions and exclusions. ")
	b.WriteString("Do NOT repeat the Includes or Excludes lists in the descriptions. ")
	b.WriteString("Return a JSON array of objects with 'level3_code' and 'enhanced_description', strictly following the schema.\n\n")
	b.WriteString("Output Schema (JSON):\n")
	b.WriteString(mustJSON(BuildDescriptionSchema()))
	b.WriteString("\n\nElements:\n\n")
	for i, el := range batch {
		fmt.Fprintf(&b, "--- Element %d ---\n", i+1)
		b.WriteString(elementBlock(el))
		b.WriteString("\n\n")
	}
	return b.String()
}

func elementBlock(el entity.EnrichmentTarget) string {
	desc := strings.TrimSpace(el.CurrentDescription)
	if desc == "" {
		desc = "No brief description in the guide; rely on the name, code, inclusions and exclusions."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Uniformat Code: %s\n", el.Level3Code)
	fmt.Fprintf(&b, "Uniformat Name: %s\n", el.Level3Name)
	fmt.Fprintf(&b, "Current Brief Description: %q\n\n", desc)
	b.WriteString("Items explicitly INCLUDED in this element:\n")
	b.WriteString(bulletList(el.Inclusions, "No explicit inclusions listed."))
	b.WriteString("\n\nItems explicitly EXCLUDED from this element:\n")
	b.WriteString(bulletList(el.Exclusions, "No explicit exclusions listed."))
	b.WriteString("\n\nThe description should be professional and clear, and expand on the context above.")
	return b.String()
}

func bulletList(items []string, empty string) string {
	if len(items) == 0 {
		return empty
	}
	return "- " + strings.Join(items, "\n- ")
}

func mustJSON(v any) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}
