// Package models contains shared data models used across the advisory codebase.
package models

import (
	"context"

	"github.com/shopspring/decimal"
)

// Advisor styles. Every analysis consults one advisor per style.
const (
	StyleConservative = "conservative"
	StyleAggressive   = "aggressive"
)

// Advisor is the core capability interface for recommendation generation.
// Never call specific providers directly — always inject this interface.
type Advisor interface {
	// Recommend produces a recommendation for the given analysis request.
	Recommend(ctx context.Context, req AdviceRequest) (AdvisorRecommendation, error)
	// Name returns the provider identifier (e.g., "openai", "anthropic").
	Name() string
	// Style returns the advisor personality ("conservative" or "aggressive").
	Style() string
}

// AdviceRequest is the input to a single advisor consultation.
type AdviceRequest struct {
	UserID       string
	AnalysisType string
	Context      string // Free-form financial context supplied by the caller
}

// AdvisorRecommendation is one advisor's output. Immutable once produced;
// owned by the consensus computation that requested it and never persisted
// directly.
type AdvisorRecommendation struct {
	Text            string          `json:"text"`
	ConfidenceScore decimal.Decimal `json:"confidence_score"`
	Advisor         string          `json:"advisor"`
	Style           string          `json:"style"`
}

// ConsensusResult is the reconciled judgment over two advisor recommendations.
// Computed per analysis request, consumed immediately, never persisted.
type ConsensusResult struct {
	ConservativeAdvice      AdvisorRecommendation `json:"conservative_advice"`
	AggressiveAdvice        AdvisorRecommendation `json:"aggressive_advice"`
	ConsensusRecommendation string                `json:"consensus_recommendation"`
	AgreementScore          decimal.Decimal       `json:"agreement_score"`
	HasConsensus            bool                  `json:"has_consensus"`
}
