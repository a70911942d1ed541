package consensus

import (
	"github.com/shopspring/decimal"

	"github.com/finadvisorhq/advisory/pkg/models"
)

// Reference gate thresholds. Scores in [0.60, 0.70] fall in a deliberate dead
// zone where neither an alert nor advice is triggered: medium agreement is not
// differentiated enough to act on automatically.
const (
	DefaultAlertThreshold  = "0.60"
	DefaultAdviceThreshold = "0.70"
)

// Gate holds the decision thresholds applied to a consensus result.
// Both predicates are pure; acting on them is the caller's job.
type Gate struct {
	alertThreshold  decimal.Decimal
	adviceThreshold decimal.Decimal
}

// NewGate creates a Gate with the given thresholds.
func NewGate(alertThreshold, adviceThreshold decimal.Decimal) Gate {
	return Gate{alertThreshold: alertThreshold, adviceThreshold: adviceThreshold}
}

// DefaultGate returns a Gate with the reference thresholds.
func DefaultGate() Gate {
	return NewGate(
		decimal.RequireFromString(DefaultAlertThreshold),
		decimal.RequireFromString(DefaultAdviceThreshold),
	)
}

// ShouldGenerateAlert reports whether agreement is poor enough to flag for
// human attention. Strictly below the threshold: a score of exactly 0.60 does
// not alert.
func (g Gate) ShouldGenerateAlert(result models.ConsensusResult) bool {
	return result.AgreementScore.LessThan(g.alertThreshold)
}

// ShouldGenerateAdvice reports whether agreement is strong enough to
// auto-propose advice. Strictly above the threshold: a score of exactly 0.70
// does not generate. The analysis type is accepted for future per-category
// threshold tuning; the current policy applies one global threshold.
func (g Gate) ShouldGenerateAdvice(result models.ConsensusResult, analysisType string) bool {
	_ = analysisType
	return result.AgreementScore.GreaterThan(g.adviceThreshold)
}
