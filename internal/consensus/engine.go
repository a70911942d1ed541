// Package consensus reconciles two independently produced advisor
// recommendations into a single consensus judgment with a quantified
// agreement score, and gates the downstream effects on that score.
package consensus

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/finadvisorhq/advisory/pkg/models"
)

// ErrInvalidRecommendation means an advisor output violates its contract:
// confidence outside [0,1] or empty text. The engine fails fast rather than
// guessing.
var ErrInvalidRecommendation = errors.New("invalid advisor recommendation")

var (
	one = decimal.NewFromInt(1)
	two = decimal.NewFromInt(2)
)

// Engine computes consensus between a conservative and an aggressive
// recommendation. Pure: no I/O, no persistence, deterministic.
type Engine struct {
	consensusThreshold decimal.Decimal
}

// NewEngine creates an Engine with the given consensus threshold.
func NewEngine(consensusThreshold decimal.Decimal) *Engine {
	return &Engine{consensusThreshold: consensusThreshold}
}

// Compute derives the consensus result for the two recommendations.
//
// The agreement score is min(confidence) scaled by (1 + textual similarity)/2:
// the harsher confidence bounds the score, and textual divergence can discount
// it by up to half. It is 1 only when both confidences are 1 and the texts
// normalize to the same token set, and it never increases when either
// confidence decreases.
func (e *Engine) Compute(conservative, aggressive models.AdvisorRecommendation) (models.ConsensusResult, error) {
	if err := ValidateRecommendation(conservative); err != nil {
		return models.ConsensusResult{}, err
	}
	if err := ValidateRecommendation(aggressive); err != nil {
		return models.ConsensusResult{}, err
	}

	minConf := decimal.Min(conservative.ConfidenceScore, aggressive.ConfidenceScore)
	similarity := Similarity(conservative.Text, aggressive.Text)
	agreement := minConf.Mul(one.Add(similarity)).Div(two)

	return models.ConsensusResult{
		ConservativeAdvice:      conservative,
		AggressiveAdvice:        aggressive,
		ConsensusRecommendation: consensusText(conservative, aggressive),
		AgreementScore:          agreement,
		HasConsensus:            agreement.GreaterThanOrEqual(e.consensusThreshold),
	}, nil
}

// consensusText picks the higher-confidence recommendation; ties go to the
// conservative advisor.
func consensusText(conservative, aggressive models.AdvisorRecommendation) string {
	if aggressive.ConfidenceScore.GreaterThan(conservative.ConfidenceScore) {
		return aggressive.Text
	}
	return conservative.Text
}

// ValidateRecommendation enforces the advisor output contract: non-empty
// text and confidence within [0,1].
func ValidateRecommendation(rec models.AdvisorRecommendation) error {
	if rec.Text == "" {
		return fmt.Errorf("%w: empty text from %s advisor", ErrInvalidRecommendation, rec.Style)
	}
	if rec.ConfidenceScore.IsNegative() || rec.ConfidenceScore.GreaterThan(one) {
		return fmt.Errorf("%w: confidence %s from %s advisor outside [0,1]",
			ErrInvalidRecommendation, rec.ConfidenceScore, rec.Style)
	}
	return nil
}
