package llm

import (
	"context"

	"github.com/joseph-ayodele/uniformat-db/internal/entity"
)

// GenerateRequest is one provider-neutral call to a generative model.
type GenerateRequest struct {
	Task            string         // log label, e.g. "extraction" or "description"
	Prompt          string         // full user prompt, schema included
	Schema          map[string]any // JSON schema the response must satisfy
	SchemaName      string
	Temperature     float32
	MaxOutputTokens int // 0 = provider default
}

// Generator is implemented by each model provider. It returns the raw JSON text the model produced.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) ([]byte, error)
}

// ElementExtractor turns guide text into Level 3 elements.
type ElementExtractor interface {
	ExtractElements(ctx context.Context, text string) ([]entity.Element, error)
}

// DescriptionGenerator writes descriptions for a batch of Level 3 elements.
type DescriptionGenerator interface {
	GenerateDescriptions(ctx context.Context, batch []entity.EnrichmentTarget) ([]entity.Description, error)
}
