package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Alert is an ephemeral signal raised when advisor agreement is too low to
// act on automatically. The core produces alerts but does not store them;
// delivery belongs to the receiving system.
type Alert struct {
	UserID         uuid.UUID       `json:"user_id"`
	AnalysisType   string          `json:"analysis_type"`
	AgreementScore decimal.Decimal `json:"agreement_score"`
	Reason         string          `json:"reason"`
	CreatedAt      time.Time       `json:"created_at"`
}
