package mock

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/finadvisorhq/advisory/pkg/models"
)

// MockAdvisor satisfies models.Advisor for testing and local development.
type MockAdvisor struct {
	Name_         string
	Style_        string
	RecommendFunc func(ctx context.Context, req models.AdviceRequest) (models.AdvisorRecommendation, error)
}

func (m *MockAdvisor) Name() string  { return m.Name_ }
func (m *MockAdvisor) Style() string { return m.Style_ }

func (m *MockAdvisor) Recommend(ctx context.Context, req models.AdviceRequest) (models.AdvisorRecommendation, error) {
	if m.RecommendFunc != nil {
		return m.RecommendFunc(ctx, req)
	}
	return models.AdvisorRecommendation{}, nil
}

// NewAdvisor returns a MockAdvisor with a sensible default recommendation
// for the given style.
func NewAdvisor(style string) *MockAdvisor {
	text := "Hold your current allocation and keep a six-month emergency fund."
	confidence := decimal.RequireFromString("0.85")
	if style == models.StyleAggressive {
		text = "Shift a portion of cash reserves into a diversified growth fund."
		confidence = decimal.RequireFromString("0.80")
	}
	return &MockAdvisor{
		Name_:  "mock",
		Style_: style,
		RecommendFunc: func(_ context.Context, _ models.AdviceRequest) (models.AdvisorRecommendation, error) {
			return models.AdvisorRecommendation{
				Text:            text,
				ConfidenceScore: confidence,
				Advisor:         "mock",
				Style:           style,
			}, nil
		},
	}
}

// NewFixedAdvisor returns a MockAdvisor that always answers with the given
// text and confidence.
func NewFixedAdvisor(style, text string, confidence decimal.Decimal) *MockAdvisor {
	return &MockAdvisor{
		Name_:  "mock",
		Style_: style,
		RecommendFunc: func(_ context.Context, _ models.AdviceRequest) (models.AdvisorRecommendation, error) {
			return models.AdvisorRecommendation{
				Text:            text,
				ConfidenceScore: confidence,
				Advisor:         "mock",
				Style:           style,
			}, nil
		},
	}
}

// NewFailingAdvisor returns a MockAdvisor that always returns the given error.
func NewFailingAdvisor(style string, err error) *MockAdvisor {
	return &MockAdvisor{
		Name_:  "mock-failing",
		Style_: style,
		RecommendFunc: func(_ context.Context, _ models.AdviceRequest) (models.AdvisorRecommendation, error) {
			return models.AdvisorRecommendation{}, err
		},
	}
}

// NewTimeoutAdvisor returns a MockAdvisor that blocks until context is cancelled.
func NewTimeoutAdvisor(style string) *MockAdvisor {
	return &MockAdvisor{
		Name_:  "mock-timeout",
		Style_: style,
		RecommendFunc: func(ctx context.Context, _ models.AdviceRequest) (models.AdvisorRecommendation, error) {
			<-ctx.Done()
			return models.AdvisorRecommendation{}, ctx.Err()
		},
	}
}

// Compile-time check that MockAdvisor implements Advisor.
var _ models.Advisor = (*MockAdvisor)(nil)
