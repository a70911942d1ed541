// Package advice orchestrates advisor consultations, consensus gating, and
// the lifecycle of persisted advice records. The Service is the only writer
// of the advice store.
package advice

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/finadvisorhq/advisory/internal/alert"
	"github.com/finadvisorhq/advisory/internal/cache"
	"github.com/finadvisorhq/advisory/internal/consensus"
	"github.com/finadvisorhq/advisory/internal/store"
	"github.com/finadvisorhq/advisory/pkg/models"
)

// BasicAnalysisType is recorded for single-advisor generations, which carry
// no caller-supplied analysis type.
const BasicAnalysisType = "general"

// Service composes the consensus engine, decision gate, validator, and
// lifecycle into the advice generation and transition operations.
type Service struct {
	conservative models.Advisor
	aggressive   models.Advisor
	engine       *consensus.Engine
	gate         consensus.Gate
	validator    *Validator
	lifecycle    *Lifecycle
	store        store.Store
	cache        cache.Cache
	alerts       alert.Sink
	timeout      time.Duration
}

// NewService creates a Service. The aggressive advisor may differ from the
// conservative one in provider and model; both are consulted per consensus
// generation.
func NewService(
	conservative, aggressive models.Advisor,
	engine *consensus.Engine,
	gate consensus.Gate,
	validator *Validator,
	st store.Store,
	ca cache.Cache,
	alerts alert.Sink,
	timeout time.Duration,
) *Service {
	return &Service{
		conservative: conservative,
		aggressive:   aggressive,
		engine:       engine,
		gate:         gate,
		validator:    validator,
		lifecycle:    NewLifecycle(st, ca),
		store:        st,
		cache:        ca,
		alerts:       alerts,
		timeout:      timeout,
	}
}

// GenerateBasicAdvice runs the single-advisor path: one recommendation,
// validated and persisted as proposed advice. Used when only one advisor
// capability is configured.
func (s *Service) GenerateBasicAdvice(ctx context.Context, userID uuid.UUID) (*models.Advice, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rec, err := s.conservative.Recommend(callCtx, models.AdviceRequest{
		UserID:       userID.String(),
		AnalysisType: BasicAnalysisType,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAdvisorUnavailable, err)
	}
	if err := consensus.ValidateRecommendation(rec); err != nil {
		return nil, err
	}

	snapshot, err := s.validator.ValidateBasic(BasicAnalysisType, rec)
	if err != nil {
		return nil, err
	}

	return s.persist(ctx, userID, BasicAnalysisType, rec.Text, snapshot)
}

// GenerateConsensusAdvice runs the full dual-advisor path. Both advisors are
// consulted concurrently; the engine joins their outputs into a consensus
// result. Advice is created only when the gate approves; on poor agreement an
// alert is emitted instead and (nil, nil) is returned.
func (s *Service) GenerateConsensusAdvice(ctx context.Context, userID uuid.UUID, analysisType string) (*models.Advice, error) {
	conservative, aggressive, err := s.consult(ctx, userID, analysisType)
	if err != nil {
		return nil, err
	}

	result, err := s.engine.Compute(conservative, aggressive)
	if err != nil {
		return nil, err
	}

	if !s.gate.ShouldGenerateAdvice(result, analysisType) {
		if s.gate.ShouldGenerateAlert(result) {
			s.emitAlert(ctx, userID, analysisType, result)
		}
		slog.Info("advice generation declined",
			"user_id", userID,
			"analysis_type", analysisType,
			"agreement_score", result.AgreementScore.String(),
		)
		return nil, nil
	}

	snapshot, err := s.validator.ValidateConsensus(analysisType, result)
	if err != nil {
		return nil, err
	}

	return s.persist(ctx, userID, analysisType, result.ConsensusRecommendation, snapshot)
}

// AcceptAdvice delegates to the lifecycle.
func (s *Service) AcceptAdvice(ctx context.Context, adviceID uuid.UUID) (*models.Advice, error) {
	return s.lifecycle.Accept(ctx, adviceID)
}

// RejectAdvice delegates to the lifecycle.
func (s *Service) RejectAdvice(ctx context.Context, adviceID uuid.UUID) (*models.Advice, error) {
	return s.lifecycle.Reject(ctx, adviceID)
}

// GetAdvice reads one advice record.
func (s *Service) GetAdvice(ctx context.Context, adviceID uuid.UUID) (*models.Advice, error) {
	return s.store.GetAdvice(ctx, adviceID)
}

// ListAdvice reads a page of advice records for a user.
func (s *Service) ListAdvice(ctx context.Context, filter store.AdviceFilter) ([]*models.Advice, int, error) {
	return s.store.ListAdvice(ctx, filter)
}

// consult fans out to both advisors and joins before returning. The advisors
// are independent; the join is a barrier, not a race. A failure or timeout of
// either aborts the generation.
func (s *Service) consult(ctx context.Context, userID uuid.UUID, analysisType string) (models.AdvisorRecommendation, models.AdvisorRecommendation, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req := models.AdviceRequest{
		UserID:       userID.String(),
		AnalysisType: analysisType,
	}

	type outcome struct {
		style string
		rec   models.AdvisorRecommendation
		err   error
	}

	results := make(chan outcome, 2)
	for _, adv := range []models.Advisor{s.conservative, s.aggressive} {
		go func(a models.Advisor) {
			rec, err := a.Recommend(callCtx, req)
			results <- outcome{style: a.Style(), rec: rec, err: err}
		}(adv)
	}

	var conservative, aggressive models.AdvisorRecommendation
	for i := 0; i < 2; i++ {
		out := <-results
		if out.err != nil {
			return models.AdvisorRecommendation{}, models.AdvisorRecommendation{},
				fmt.Errorf("%w: %s advisor: %v", ErrAdvisorUnavailable, out.style, out.err)
		}
		if out.style == models.StyleAggressive {
			aggressive = out.rec
		} else {
			conservative = out.rec
		}
	}

	return conservative, aggressive, nil
}

// persist writes exactly one advice row; any failure leaves no partial state.
func (s *Service) persist(ctx context.Context, userID uuid.UUID, analysisType, text, snapshot string) (*models.Advice, error) {
	now := time.Now().UTC()
	a := &models.Advice{
		ID:            uuid.New(),
		UserID:        userID,
		AnalysisType:  analysisType,
		Status:        models.AdviceStatusProposed,
		ConsensusText: text,
		ValidatorJSON: snapshot,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.store.CreateAdvice(ctx, a); err != nil {
		return nil, fmt.Errorf("creating advice: %w", err)
	}
	_ = s.cache.SetAdviceStatus(ctx, a.ID, a.Status, statusCacheTTL)

	return a, nil
}

func (s *Service) emitAlert(ctx context.Context, userID uuid.UUID, analysisType string, result models.ConsensusResult) {
	err := s.alerts.Emit(ctx, models.Alert{
		UserID:         userID,
		AnalysisType:   analysisType,
		AgreementScore: result.AgreementScore,
		Reason:         "advisor agreement below alert threshold",
		CreatedAt:      time.Now().UTC(),
	})
	if err != nil {
		// Alert delivery is best effort; the generation outcome stands.
		slog.Error("emitting alert", "error", err, "user_id", userID)
	}
}
