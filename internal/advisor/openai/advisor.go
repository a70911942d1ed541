package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/finadvisorhq/advisory/internal/config"
	"github.com/finadvisorhq/advisory/pkg/models"
)

const defaultBaseURL = "https://api.openai.com/v1"

// Sentinel errors for OpenAI transport failures.
var (
	ErrUnreachable = errors.New("openai unreachable")
	ErrAPIError    = errors.New("openai api error")
	ErrTimeout     = errors.New("openai request timeout")
)

// Advisor implements models.Advisor using OpenAI chat completions.
type Advisor struct {
	style   string
	model   string
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewAdvisor creates an OpenAI-backed advisor for the given style.
func NewAdvisor(style string, cfg config.AdvisorConfig) *Advisor {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = "gpt-4o"
	}
	return &Advisor{
		style:   style,
		model:   model,
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{},
	}
}

func (a *Advisor) Name() string  { return "openai" }
func (a *Advisor) Style() string { return a.style }

func (a *Advisor) Recommend(ctx context.Context, req models.AdviceRequest) (models.AdvisorRecommendation, error) {
	body, err := json.Marshal(chatRequest{
		Model: a.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt(a.style)},
			{Role: "user", Content: userPrompt(req)},
		},
		ResponseFormat: &responseFormat{Type: "json_object"},
	})
	if err != nil {
		return models.AdvisorRecommendation{}, fmt.Errorf("encoding request: %w", err)
	}

	u := a.baseURL + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return models.AdvisorRecommendation{}, fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+a.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return models.AdvisorRecommendation{}, classifyError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.AdvisorRecommendation{}, fmt.Errorf("%w: status %d", ErrAPIError, resp.StatusCode)
	}

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return models.AdvisorRecommendation{}, fmt.Errorf("decoding response: %w", err)
	}
	if len(cr.Choices) == 0 {
		return models.AdvisorRecommendation{}, fmt.Errorf("%w: empty choices", ErrAPIError)
	}

	return parseRecommendation(cr.Choices[0].Message.Content, a.Name(), a.style)
}

// parseRecommendation decodes the model's JSON answer into a recommendation.
// The model is instructed to answer {"recommendation": ..., "confidence": ...}.
func parseRecommendation(content, name, style string) (models.AdvisorRecommendation, error) {
	var out struct {
		Recommendation string          `json:"recommendation"`
		Confidence     decimal.Decimal `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		return models.AdvisorRecommendation{}, fmt.Errorf("%w: malformed answer: %v", ErrAPIError, err)
	}
	return models.AdvisorRecommendation{
		Text:            strings.TrimSpace(out.Recommendation),
		ConfidenceScore: out.Confidence,
		Advisor:         name,
		Style:           style,
	}, nil
}

func systemPrompt(style string) string {
	if style == models.StyleAggressive {
		return "You are an aggressive financial advisor favoring growth and risk-tolerant strategies. " +
			"Answer as JSON: {\"recommendation\": string, \"confidence\": number between 0 and 1}."
	}
	return "You are a conservative financial advisor favoring capital preservation and low-risk strategies. " +
		"Answer as JSON: {\"recommendation\": string, \"confidence\": number between 0 and 1}."
}

func userPrompt(req models.AdviceRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Produce a %s financial recommendation for the user.\n", req.AnalysisType)
	if req.Context != "" {
		fmt.Fprintf(&b, "Financial context:\n%s\n", req.Context)
	}
	return b.String()
}

// classifyError maps transport-level errors to sentinel errors.
func classifyError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return fmt.Errorf("%w: %v", ErrTimeout, err)
		}
	}

	return fmt.Errorf("%w: %v", ErrUnreachable, err)
}

// --- OpenAI wire types ---

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Compile-time check that Advisor implements models.Advisor.
var _ models.Advisor = (*Advisor)(nil)
