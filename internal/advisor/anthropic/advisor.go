package anthropic

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

const (
	defaultBaseURL = "https://api.anthropic.com"
	apiVersion     = "2023-06-01"
	maxTokens      = 1024
)

// Sentinel errors for Anthropic transport failures.
var (
	ErrUnreachable = errors.New("anthropic unreachable")
	ErrAPIError    = errors.New("anthropic api error")
	ErrTimeout     = errors.New("anthropic request timeout")
)

// Advisor implements models.Advisor using the Anthropic messages API.
type Advisor struct {
	style   string
	model   string
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewAdvisor creates an Anthropic-backed advisor for the given style.
func NewAdvisor(style string, cfg config.AdvisorConfig) *Advisor {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = "claude-sonnet-4-5-20250929"
	}
	return &Advisor{
		style:   style,
		model:   model,
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{},
	}
}

func (a *Advisor) Name() string  { return "anthropic" }
func (a *Advisor) Style() string { return a.style }

func (a *Advisor) Recommend(ctx context.Context, req models.AdviceRequest) (models.AdvisorRecommendation, error) {
	body, err := json.Marshal(messagesRequest{
		Model:     a.model,
		MaxTokens: maxTokens,
		System:    systemPrompt(a.style),
		Messages: []message{
			{Role: "user", Content: userPrompt(req)},
		},
	})
	if err != nil {
		return models.AdvisorRecommendation{}, fmt.Errorf("encoding request: %w", err)
	}

	u := a.baseURL + "/v1/messages"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return models.AdvisorRecommendation{}, fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("x-api-key", a.apiKey)
	httpReq.Header.Set("anthropic-version", apiVersion)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return models.AdvisorRecommendation{}, classifyError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.AdvisorRecommendation{}, fmt.Errorf("%w: status %d", ErrAPIError, resp.StatusCode)
	}

	var mr messagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&mr); err != nil {
		return models.AdvisorRecommendation{}, fmt.Errorf("decoding response: %w", err)
	}
	if len(mr.Content) == 0 {
		return models.AdvisorRecommendation{}, fmt.Errorf("%w: empty content", ErrAPIError)
	}

	var out struct {
		Recommendation string          `json:"recommendation"`
		Confidence     decimal.Decimal `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(mr.Content[0].Text), &out); err != nil {
		return models.AdvisorRecommendation{}, fmt.Errorf("%w: malformed answer: %v", ErrAPIError, err)
	}

	return models.AdvisorRecommendation{
		Text:            strings.TrimSpace(out.Recommendation),
		ConfidenceScore: out.Confidence,
		Advisor:         a.Name(),
		Style:           a.style,
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

// --- Anthropic wire types ---

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system,omitempty"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// Compile-time check that Advisor implements models.Advisor.
var _ models.Advisor = (*Advisor)(nil)
