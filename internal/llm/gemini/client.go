package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/joseph-ayodele/uniformat-db/internal/llm"
)

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	ResponseMimeType   string         `json:"responseMimeType"`
	ResponseJSONSchema map[string]any `json:"responseJsonSchema,omitempty"`
	Temperature        float32        `json:"temperature"`
	MaxOutputTokens    int            `json:"maxOutputTokens,omitempty"`
}

type generateContentRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

// Generate implements llm.Generator using models/{model}:generateContent with JSON output.
func (c *Client) Generate(ctx context.Context, req llm.GenerateRequest) ([]byte, error) {
	start := time.Now()
	c.log.Info("gemini.generate.start",
		"model", c.cfg.Model,
		"task", req.Task,
		"temp", req.Temperature,
		"max_output_tokens", req.MaxOutputTokens,
		"prompt_len", len(req.Prompt),
	)

	body := generateContentRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: req.Prompt}}}},
		GenerationConfig: generationConfig{
			ResponseMimeType:   "application/json",
			ResponseJSONSchema: req.Schema,
			Temperature:        req.Temperature,
			MaxOutputTokens:    req.MaxOutputTokens,
		},
	}
	endpoint := fmt.Sprintf("%s/models/%s:generateContent", strings.TrimRight(c.cfg.BaseURL, "/"), c.cfg.Model)
	headers := map[string]string{"x-goog-api-key": c.cfg.APIKey}

	raw, err := llm.SendJSON(ctx, c.httpClient, endpoint, body, headers, c.log)
	if err != nil {
		return nil, err
	}

	var resp generateContentResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		c.log.Error("gemini.generate.decode_error", "error", err, "raw_bytes", len(raw))
		return nil, fmt.Errorf("decode gemini response: %w", err)
	}
	if resp.PromptFeedback.BlockReason != "" {
		return nil, fmt.Errorf("gemini blocked prompt: %s", resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("%w: no candidates in gemini response", llm.ErrEmptyResponse)
	}

	cand := resp.Candidates[0]
	var b strings.Builder
	for _, p := range cand.Content.Parts {
		b.WriteString(p.Text)
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return nil, fmt.Errorf("%w: finish_reason=%s", llm.ErrEmptyResponse, cand.FinishReason)
	}

	c.log.Info("gemini.generate.ok",
		"task", req.Task,
		"finish_reason", cand.FinishReason,
		"chars", len(text),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return []byte(text), nil
}
