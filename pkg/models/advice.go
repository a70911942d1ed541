package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	AdviceStatusProposed = "proposed"
	AdviceStatusAccepted = "accepted"
	AdviceStatusRejected = "rejected"
)

// Advice is a persisted, user-actionable recommendation record. It is created
// in status proposed and moves to accepted or rejected exactly once; the
// validator snapshot is written at creation and never mutated afterwards.
type Advice struct {
	ID            uuid.UUID `db:"id"             json:"id"`
	UserID        uuid.UUID `db:"user_id"        json:"user_id"`
	AnalysisType  string    `db:"analysis_type"  json:"analysis_type"`
	Status        string    `db:"status"         json:"status"`
	ConsensusText string    `db:"consensus_text" json:"consensus_text"`
	ValidatorJSON string    `db:"validator_json" json:"validator_json"`
	CreatedAt     time.Time `db:"created_at"     json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"     json:"updated_at"`
}

// Terminal reports whether the advice has reached a final state.
func (a *Advice) Terminal() bool {
	return a.Status == AdviceStatusAccepted || a.Status == AdviceStatusRejected
}
