package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/joseph-ayodele/uniformat-db/internal/llm"
)

// wrapKey holds array responses; response_format only accepts an object at the root.
const wrapKey = "items"

// Generate implements llm.Generator using chat/completions with a json_schema response format.
func (c *Client) Generate(ctx context.Context, req llm.GenerateRequest) ([]byte, error) {
	start := time.Now()
	c.logger.Info("openai.generate.start",
		"model", c.cfg.Model,
		"task", req.Task,
		"temp", req.Temperature,
		"max_output_tokens", req.MaxOutputTokens,
		"prompt_len", len(req.Prompt),
	)

	schema, wrapped := rootObject(req.Schema)
	name := req.SchemaName
	if name == "" {
		name = "response"
	}

	body := map[string]any{
		"model":       c.cfg.Model,
		"temperature": req.Temperature,
		"response_format": map[string]any{
			"type": "json_schema",
			"json_schema": map[string]any{
				"name":   name,
				"schema": schema,
			},
		},
		"messages": []map[string]any{
			{"role": "system", "content": "Return ONLY JSON that matches the provided schema."},
			{"role": "user", "content": req.Prompt},
		},
	}
	if req.MaxOutputTokens > 0 {
		body["max_completion_tokens"] = req.MaxOutputTokens
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	headers := map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}

	raw, err := llm.SendJSON(ctx, c.http, endpoint, body, headers, c.logger)
	if err != nil {
		return nil, err
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
				Refusal string `json:"refusal"`
			} `json:"message"`
			FinishReason string `json:"finish_reason"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.logger.Error("openai.generate.decode_error", "error", err, "raw_bytes", len(raw))
		return nil, fmt.Errorf("decode openai response: %w", err)
	}
	if len(cc.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices in openai response", llm.ErrEmptyResponse)
	}
	msg := cc.Choices[0].Message
	if msg.Refusal != "" {
		return nil, fmt.Errorf("openai refused: %s", msg.Refusal)
	}
	content := strings.TrimSpace(msg.Content)
	if content == "" {
		return nil, fmt.Errorf("%w: finish_reason=%s", llm.ErrEmptyResponse, cc.Choices[0].FinishReason)
	}

	out := []byte(content)
	if wrapped {
		out, err = unwrap(out)
		if err != nil {
			return nil, err
		}
	}

	c.logger.Info("openai.generate.ok",
		"task", req.Task,
		"finish_reason", cc.Choices[0].FinishReason,
		"chars", len(out),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}

// rootObject wraps non-object schemas under wrapKey.
func rootObject(schema map[string]any) (map[string]any, bool) {
	if t, _ := schema["type"].(string); t == "object" {
		return schema, false
	}
	return map[string]any{
		"type":       "object",
		"properties": map[string]any{wrapKey: schema},
		"required":   []string{wrapKey},
	}, true
}

// unwrap returns the wrapped value, or the content unchanged when the model answered with a bare array.
func unwrap(content []byte) ([]byte, error) {
	trimmed := strings.TrimSpace(string(content))
	if strings.HasPrefix(trimmed, "[") {
		return content, nil
	}
	var env map[string]json.RawMessage
	if err := json.Unmarshal(content, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", llm.ErrMalformedResponse, err)
	}
	v, ok := env[wrapKey]
	if !ok {
		return nil, fmt.Errorf("%w: missing %q in response object", llm.ErrMalformedResponse, wrapKey)
	}
	return v, nil
}
