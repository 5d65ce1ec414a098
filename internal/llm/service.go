package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/uniformat-db/constants"
	"github.com/joseph-ayodele/uniformat-db/internal/common"
	"github.com/joseph-ayodele/uniformat-db/internal/entity"
)

// Service wraps a Generator with the retry policy, response decoding and schema validation.
// It implements ElementExtractor and DescriptionGenerator.
type Service struct {
	gen    Generator
	policy RetryPolicy
	timer  backoff.Timer // nil uses a real timer
	logger *slog.Logger
}

func NewService(gen Generator, policy RetryPolicy, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{gen: gen, policy: policy.normalized(), logger: logger}
}

// ExtractElements requests Level 3 elements with inclusions/exclusions at temperature 0.
func (s *Service) ExtractElements(ctx context.Context, text string) ([]entity.Element, error) {
	if strings.TrimSpace(text) == "" {
		s.logger.Warn("llm.extract.empty_input")
		return nil, ErrEmptyInput
	}
	req := GenerateRequest{
		Task:        "extraction",
		Prompt:      BuildExtractionPrompt(text),
		Schema:      BuildExtractionSchema(),
		SchemaName:  ExtractionSchemaName,
		Temperature: constants.ExtractionTemperature,
	}
	var out []entity.Element
	if err := s.call(ctx, req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GenerateDescriptions requests one description per element of batch at temperature 0.7.
func (s *Service) GenerateDescriptions(ctx context.Context, batch []entity.EnrichmentTarget) ([]entity.Description, error) {
	if len(batch) == 0 {
		return nil, ErrEmptyInput
	}
	req := GenerateRequest{
		Task:            "description",
		Prompt:          BuildDescriptionPrompt(batch),
		Schema:          BuildDescriptionSchema(),
		SchemaName:      DescriptionSchemaName,
		Temperature:     constants.DescriptionTemperature,
		MaxOutputTokens: constants.TokensPerDescribedItem * len(batch),
	}
	var out []entity.Description
	if err := s.call(ctx, req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) call(ctx context.Context, req GenerateRequest, out any) error {
	rid := common.RequestIDFromContext(ctx)
	if rid == "" {
		rid = uuid.New().String()
		ctx = common.WithRequestID(ctx, rid)
	}
	log := s.logger.With("req_id", rid, "task", req.Task)
	start := time.Now()

	raw, err := s.generate(ctx, log, req)
	if err != nil {
		return err
	}
	log.Debug("llm.response.raw", "preview", preview(raw, 500))

	if err := ValidateJSONAgainstSchema(req.Schema, raw); err != nil {
		log.Error("llm.response.schema_validation_failed", "error", err, "preview", preview(raw, 500))
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		log.Error("llm.response.decode_failed", "error", err)
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	log.Info("llm.call.ok", "bytes", len(raw), "elapsed_ms", time.Since(start).Milliseconds())
	return nil
}

// generate retries rate-limited calls on the policy's schedule; any other error stops immediately.
func (s *Service) generate(ctx context.Context, log *slog.Logger, req GenerateRequest) ([]byte, error) {
	var (
		raw     []byte
		attempt int
	)
	op := func() error {
		attempt++
		log.Info("llm.call.attempt", "attempt", attempt, "max_attempts", s.policy.MaxAttempts)
		b, err := s.gen.Generate(ctx, req)
		if err == nil {
			raw = b
			return nil
		}
		if IsRateLimited(err) {
			return err
		}
		return backoff.Permanent(err)
	}
	notify := func(err error, wait time.Duration) {
		log.Warn("llm.call.rate_limited", "attempt", attempt, "retry_in", wait.String(), "error", err)
	}

	err := backoff.RetryNotifyWithTimer(op, s.policy.backOff(ctx), notify, s.timer)
	switch {
	case err == nil:
		return raw, nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		log.Warn("llm.call.cancelled", "attempt", attempt, "error", err)
		return nil, err
	case IsRateLimited(err):
		log.Error("llm.call.retries_exhausted", "attempts", attempt, "error", err)
		return nil, fmt.Errorf("%w after %d attempts: %v", ErrRetriesExhausted, attempt, err)
	default:
		log.Error("llm.call.failed", "attempt", attempt, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrPermanent, err)
	}
}

func preview(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "…"
}
