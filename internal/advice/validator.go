package advice

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finadvisorhq/advisory/pkg/models"
)

// snapshotVersion identifies the snapshot layout for downstream consumers.
const snapshotVersion = 1

// Snapshot is the audit record attached to each advice at creation. It
// captures which advisors were consulted, their confidences, the agreement
// score, and the threshold comparisons that justified generating the advice.
// Serialized once into validator_json and never mutated.
type Snapshot struct {
	Version        int              `json:"version"`
	Mode           string           `json:"mode"` // "consensus" or "basic"
	AnalysisType   string           `json:"analysis_type"`
	Advisors       []AdvisorAudit   `json:"advisors"`
	AgreementScore *decimal.Decimal `json:"agreement_score,omitempty"`
	HasConsensus   *bool            `json:"has_consensus,omitempty"`
	Thresholds     ThresholdAudit   `json:"thresholds"`
	GeneratedAt    time.Time        `json:"generated_at"`
}

// AdvisorAudit records one advisor consultation.
type AdvisorAudit struct {
	Provider   string          `json:"provider"`
	Style      string          `json:"style"`
	Confidence decimal.Decimal `json:"confidence"`
}

// ThresholdAudit records the gate configuration the decision was made under.
type ThresholdAudit struct {
	Consensus decimal.Decimal `json:"consensus"`
	Alert     decimal.Decimal `json:"alert"`
	Advice    decimal.Decimal `json:"advice"`
}

// Validator produces the serialized justification snapshot for created advice.
type Validator struct {
	thresholds ThresholdAudit
}

// NewValidator creates a Validator recording the given thresholds in every
// snapshot.
func NewValidator(consensusThreshold, alertThreshold, adviceThreshold decimal.Decimal) *Validator {
	return &Validator{thresholds: ThresholdAudit{
		Consensus: consensusThreshold,
		Alert:     alertThreshold,
		Advice:    adviceThreshold,
	}}
}

// ValidateConsensus builds the snapshot for a dual-advisor generation.
func (v *Validator) ValidateConsensus(analysisType string, result models.ConsensusResult) (string, error) {
	score := result.AgreementScore
	has := result.HasConsensus
	return v.serialize(Snapshot{
		Version:      snapshotVersion,
		Mode:         "consensus",
		AnalysisType: analysisType,
		Advisors: []AdvisorAudit{
			{Provider: result.ConservativeAdvice.Advisor, Style: result.ConservativeAdvice.Style, Confidence: result.ConservativeAdvice.ConfidenceScore},
			{Provider: result.AggressiveAdvice.Advisor, Style: result.AggressiveAdvice.Style, Confidence: result.AggressiveAdvice.ConfidenceScore},
		},
		AgreementScore: &score,
		HasConsensus:   &has,
		Thresholds:     v.thresholds,
		GeneratedAt:    time.Now().UTC(),
	})
}

// ValidateBasic builds the snapshot for a single-advisor generation.
func (v *Validator) ValidateBasic(analysisType string, rec models.AdvisorRecommendation) (string, error) {
	return v.serialize(Snapshot{
		Version:      snapshotVersion,
		Mode:         "basic",
		AnalysisType: analysisType,
		Advisors: []AdvisorAudit{
			{Provider: rec.Advisor, Style: rec.Style, Confidence: rec.ConfidenceScore},
		},
		Thresholds:  v.thresholds,
		GeneratedAt: time.Now().UTC(),
	})
}

func (v *Validator) serialize(s Snapshot) (string, error) {
	if len(s.Advisors) == 0 {
		return "", fmt.Errorf("%w: no advisors recorded", ErrValidationFailure)
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrValidationFailure, err)
	}
	out := string(raw)
	if strings.TrimSpace(out) == "" {
		return "", fmt.Errorf("%w: empty snapshot", ErrValidationFailure)
	}
	return out, nil
}
