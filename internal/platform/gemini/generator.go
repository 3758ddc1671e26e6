package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"strings"
	"text/template"
	"time"

	"github.com/taskraft/taskraft-api/internal/config"
	"github.com/taskraft/taskraft-api/internal/domain"
	"github.com/taskraft/taskraft-api/internal/generation"
	"google.golang.org/genai"
)

// Generator implements the generation.Generator interface using Google's
// Gemini API to propose task drafts from meeting-minutes text.
type Generator struct {
	logger         *slog.Logger
	config         config.LLMConfig
	promptTemplate *template.Template
	client         *genai.Client
	model          string
}

// Ensure Generator implements generation.Generator interface
var _ generation.Generator = (*Generator)(nil)

// NewGenerator creates a new Gemini-backed draft generator.
// Returns generation.ErrInvalidConfig if required settings are missing.
func NewGenerator(ctx context.Context, log *slog.Logger, cfg config.LLMConfig) (*Generator, error) {
	if log == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}

	promptTemplate, err := template.New("drafts").Parse(draftPromptTemplate)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse prompt template: %v",
			generation.ErrInvalidConfig, err)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v",
			generation.ErrInvalidConfig, err)
	}

	return &Generator{
		logger:         log.With(slog.String("component", "gemini_generator")),
		config:         cfg,
		promptTemplate: promptTemplate,
		client:         client,
		model:          cfg.ModelName,
	}, nil
}

// GenerateDrafts implements generation.Generator.GenerateDrafts.
func (g *Generator) GenerateDrafts(
	ctx context.Context,
	minutesText string,
) ([]*domain.TaskDraft, error) {
	if strings.TrimSpace(minutesText) == "" {
		return nil, generation.ErrEmptyMinutes
	}

	prompt, err := g.createPrompt(minutesText)
	if err != nil {
		return nil, err
	}

	text, err := g.callWithRetry(ctx, prompt)
	if err != nil {
		return nil, err
	}

	drafts, err := parseDrafts(text)
	if err != nil {
		g.logger.WarnContext(ctx, "failed to parse model response",
			slog.String("error", err.Error()),
			slog.Int("response_length", len(text)))
		return nil, err
	}

	g.logger.InfoContext(ctx, "generated task drafts",
		slog.Int("draft_count", len(drafts)))
	return drafts, nil
}

func (g *Generator) createPrompt(minutesText string) (string, error) {
	var buf bytes.Buffer
	err := g.promptTemplate.Execute(&buf, struct{ MinutesText string }{MinutesText: minutesText})
	if err != nil {
		return "", fmt.Errorf("failed to execute prompt template: %w", err)
	}
	return buf.String(), nil
}

// callWithRetry calls the Gemini API with exponential backoff and jitter.
// Permanent errors (safety blocks, malformed responses) are returned
// immediately; only transport-level failures are retried.
func (g *Generator) callWithRetry(ctx context.Context, prompt string) (string, error) {
	maxRetries := g.config.MaxRetries
	if maxRetries < 0 {
		maxRetries = 3
	}
	baseDelaySeconds := g.config.RetryDelaySeconds
	if baseDelaySeconds < 1 {
		baseDelaySeconds = 2
	}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		g.logger.DebugContext(ctx, "calling Gemini API",
			slog.Int("attempt", attempt+1),
			slog.Int("max_attempts", maxRetries+1))

		resp, err := g.client.Models.GenerateContent(
			ctx,
			g.model,
			genai.Text(prompt),
			&genai.GenerateContentConfig{
				ResponseMIMEType: "application/json",
			},
		)
		switch {
		case err != nil:
			lastErr = fmt.Errorf("%w: %v", generation.ErrTransientFailure, err)
			g.logger.WarnContext(ctx, "Gemini API call failed",
				slog.String("error", err.Error()),
				slog.Int("attempt", attempt+1))
		case resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil:
			return "", fmt.Errorf("%w: no content generated", generation.ErrInvalidResponse)
		case resp.Candidates[0].FinishReason == genai.FinishReasonSafety:
			return "", fmt.Errorf("%w: finish reason safety", generation.ErrContentBlocked)
		default:
			return resp.Text(), nil
		}

		if attempt == maxRetries {
			break
		}

		// Exponential backoff with up to one base-delay of jitter.
		delay := time.Duration(float64(baseDelaySeconds)*math.Pow(2, float64(attempt))) * time.Second
		delay += time.Duration(rng.Int63n(int64(time.Duration(baseDelaySeconds) * time.Second)))
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delay):
		}
	}

	return "", fmt.Errorf("%w: all %d attempts failed: %v",
		generation.ErrGenerationFailed, maxRetries+1, lastErr)
}

// draftSchema is the JSON shape the model is instructed to produce.
type draftSchema struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Deadline    string `json:"deadline,omitempty"`
	Priority    string `json:"priority,omitempty"`
}

// parseDrafts decodes the model output into task drafts. Any deviation from
// the instructed schema surfaces as generation.ErrInvalidResponse; partial
// output is never returned.
func parseDrafts(text string) ([]*domain.TaskDraft, error) {
	var raw []draftSchema
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", generation.ErrInvalidResponse, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty draft list", generation.ErrInvalidResponse)
	}

	drafts := make([]*domain.TaskDraft, 0, len(raw))
	for i, r := range raw {
		if r.Title == "" || r.Description == "" {
			return nil, fmt.Errorf("%w: draft %d is missing title or description",
				generation.ErrInvalidResponse, i)
		}

		draft := &domain.TaskDraft{
			Title:       r.Title,
			Description: r.Description,
			Status:      domain.StatusNotStarted,
		}

		if r.Deadline != "" {
			deadline, err := time.Parse(time.RFC3339, r.Deadline)
			if err != nil {
				return nil, fmt.Errorf("%w: draft %d has malformed deadline %q",
					generation.ErrInvalidResponse, i, r.Deadline)
			}
			draft.Deadline = &deadline
		}

		if r.Priority != "" {
			priority := domain.Priority(r.Priority)
			if !priority.IsValid() {
				return nil, fmt.Errorf("%w: draft %d has unknown priority %q",
					generation.ErrInvalidResponse, i, r.Priority)
			}
			draft.Priority = priority
		}

		drafts = append(drafts, draft)
	}

	return drafts, nil
}

const draftPromptTemplate = `You are an assistant that extracts action items from meeting minutes.

Read the minutes below and propose a list of tasks. Respond with a JSON array
only, no surrounding prose. Each element must have this shape:

  {
    "title": "short imperative summary, at most 100 characters",
    "description": "what needs to be done and why, one or two sentences",
    "deadline": "RFC 3339 timestamp, only when the minutes state one",
    "priority": "high, middle or low, only when it is clear from the minutes"
  }

Minutes:

{{.MinutesText}}
`
