package insights

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/meltforce/vitalsink/internal/config"
)

// Fallback insights returned when the generation backend cannot be used.
// The endpoint always answers; a degraded narrative is not an error.
const (
	fallbackUnconfigured = "AI insights temporarily unavailable. Please configure insight service credentials."
	fallbackServiceError = "AI insights temporarily unavailable due to service error."
	fallbackGeneric      = "AI insights temporarily unavailable. Analysis shows your metrics are being tracked successfully."
)

// Generator produces a one-paragraph narrative from period comparisons via
// an OpenAI-compatible chat-completions endpoint.
type Generator struct {
	client *resty.Client
	url    string
	apiKey string
	model  string
	log    *slog.Logger
}

// NewGenerator creates an insight generator from the insights config
// section. A missing URL, key, or model yields a generator that always
// falls back.
func NewGenerator(cfg config.InsightsConfig, log *slog.Logger) *Generator {
	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetAuthToken(cfg.APIKey)

	return &Generator{
		client: client,
		url:    cfg.URL,
		apiKey: cfg.APIKey,
		model:  cfg.Model,
		log:    log,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Insight asks the backend for a recommendation. It never returns an error:
// missing configuration, transport failure, non-2xx status, and empty
// completions all degrade to a static fallback string.
func (g *Generator) Insight(ctx context.Context, current, previous PeriodData, periodHours int) string {
	if g.url == "" || g.apiKey == "" || g.model == "" {
		return fallbackUnconfigured
	}

	req := chatRequest{
		Model: g.model,
		Messages: []chatMessage{
			{Role: "system", Content: "You are a holistic health coach. Provide concise, actionable health recommendations based on biometric trends."},
			{Role: "user", Content: buildPrompt(current, previous, periodHours)},
		},
		MaxTokens:   200,
		Temperature: 0.7,
	}

	var res chatResponse
	resp, err := g.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&res).
		Post(g.url)
	if err != nil {
		g.log.Warn("insight generation failed", "error", err)
		return fallbackGeneric
	}
	if !resp.IsSuccess() {
		g.log.Warn("insight backend returned error", "status", resp.StatusCode())
		return fallbackServiceError
	}
	if len(res.Choices) == 0 {
		g.log.Warn("insight backend returned no choices")
		return fallbackGeneric
	}

	insight := strings.TrimSpace(res.Choices[0].Message.Content)
	if insight == "" {
		return fallbackGeneric
	}
	return insight
}

func buildPrompt(current, previous PeriodData, periodHours int) string {
	hrvChange := 0.0
	if previous.HRV.Avg > 0 {
		hrvChange = (current.HRV.Avg - previous.HRV.Avg) / previous.HRV.Avg * 100
	}

	return fmt.Sprintf(
		"Last %dh: HRV avg %.1fms (%+.1f%% change), Sleep avg %.1fh (efficiency %.0f%%), Workout burned %.0fkcal in %d sessions.\n\n"+
			"Previous %dh: HRV avg %.1fms, Sleep avg %.1fh (efficiency %.0f%%), Workout burned %.0fkcal in %d sessions.\n\n"+
			"Provide a single holistic health recommendation based on these trends.",
		periodHours, current.HRV.Avg, hrvChange, current.Sleep.AvgDurationHours, current.Sleep.AvgEfficiency,
		current.Workout.TotalCalories, current.Workout.SessionCount,
		periodHours, previous.HRV.Avg, previous.Sleep.AvgDurationHours, previous.Sleep.AvgEfficiency,
		previous.Workout.TotalCalories, previous.Workout.SessionCount,
	)
}
