package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/finadvisorhq/advisory/internal/advice"
	mw "github.com/finadvisorhq/advisory/internal/api/middleware"
	"github.com/finadvisorhq/advisory/internal/api/response"
	"github.com/finadvisorhq/advisory/internal/consensus"
	"github.com/finadvisorhq/advisory/internal/store"
	"github.com/finadvisorhq/advisory/pkg/models"
)

const maxAnalysisTypeLen = 64

// AdviceService defines the interface the advice handlers depend on.
type AdviceService interface {
	GenerateBasicAdvice(ctx context.Context, userID uuid.UUID) (*models.Advice, error)
	GenerateConsensusAdvice(ctx context.Context, userID uuid.UUID, analysisType string) (*models.Advice, error)
	AcceptAdvice(ctx context.Context, adviceID uuid.UUID) (*models.Advice, error)
	RejectAdvice(ctx context.Context, adviceID uuid.UUID) (*models.Advice, error)
	GetAdvice(ctx context.Context, adviceID uuid.UUID) (*models.Advice, error)
	ListAdvice(ctx context.Context, filter store.AdviceFilter) ([]*models.Advice, int, error)
}

// NewGenerateHandler returns an http.HandlerFunc for POST /api/v1/advice.
// Runs the dual-advisor consensus path; a declined generation is a 200 with
// generated=false, not an error.
func NewGenerateHandler(svc AdviceService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := mw.GetUserID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing user", nil)
			return
		}

		var req struct {
			AnalysisType string `json:"analysis_type"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}

		if req.AnalysisType == "" {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "analysis_type is required", nil)
			return
		}
		if len(req.AnalysisType) > maxAnalysisTypeLen {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "analysis_type too long", nil)
			return
		}

		a, err := svc.GenerateConsensusAdvice(r.Context(), userID, req.AnalysisType)
		if err != nil {
			writeAdviceError(w, err)
			return
		}

		if a == nil {
			response.JSON(w, generateDeclined{
				Generated: false,
				Reason:    "advisor agreement insufficient to auto-propose advice",
			})
			return
		}

		response.Created(w, a)
	}
}

// NewGenerateBasicHandler returns an http.HandlerFunc for POST /api/v1/advice/basic.
func NewGenerateBasicHandler(svc AdviceService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := mw.GetUserID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing user", nil)
			return
		}

		a, err := svc.GenerateBasicAdvice(r.Context(), userID)
		if err != nil {
			writeAdviceError(w, err)
			return
		}

		response.Created(w, a)
	}
}

// NewAcceptHandler returns an http.HandlerFunc for POST /api/v1/advice/{adviceID}/accept.
func NewAcceptHandler(svc AdviceService) http.HandlerFunc {
	return newTransitionHandler(svc, svc.AcceptAdvice)
}

// NewRejectHandler returns an http.HandlerFunc for POST /api/v1/advice/{adviceID}/reject.
func NewRejectHandler(svc AdviceService) http.HandlerFunc {
	return newTransitionHandler(svc, svc.RejectAdvice)
}

func newTransitionHandler(svc AdviceService, transition func(ctx context.Context, adviceID uuid.UUID) (*models.Advice, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := mw.GetUserID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing user", nil)
			return
		}

		adviceID, err := uuid.Parse(chi.URLParam(r, "adviceID"))
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "adviceID must be a valid UUID", nil)
			return
		}

		// Ownership is checked before the transition so a non-owner can
		// never mutate the row. Do not leak other users' advice ids.
		a, err := svc.GetAdvice(r.Context(), adviceID)
		if err != nil {
			writeAdviceError(w, err)
			return
		}
		if a.UserID != userID {
			response.Error(w, http.StatusNotFound, "NOT_FOUND", "Advice not found", nil)
			return
		}

		updated, err := transition(r.Context(), adviceID)
		if err != nil {
			writeAdviceError(w, err)
			return
		}

		response.JSON(w, updated)
	}
}

// NewGetAdviceHandler returns an http.HandlerFunc for GET /api/v1/advice/{adviceID}.
func NewGetAdviceHandler(svc AdviceService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := mw.GetUserID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing user", nil)
			return
		}

		adviceID, err := uuid.Parse(chi.URLParam(r, "adviceID"))
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "adviceID must be a valid UUID", nil)
			return
		}

		a, err := svc.GetAdvice(r.Context(), adviceID)
		if err != nil {
			writeAdviceError(w, err)
			return
		}

		if a.UserID != userID {
			response.Error(w, http.StatusNotFound, "NOT_FOUND", "Advice not found", nil)
			return
		}

		response.JSON(w, a)
	}
}

// NewListAdviceHandler returns an http.HandlerFunc for GET /api/v1/advice.
func NewListAdviceHandler(svc AdviceService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := mw.GetUserID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing user", nil)
			return
		}

		q := r.URL.Query()

		status := q.Get("status")
		switch status {
		case "", models.AdviceStatusProposed, models.AdviceStatusAccepted, models.AdviceStatusRejected:
		default:
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
				"status must be one of proposed, accepted, rejected", nil)
			return
		}

		filter := store.AdviceFilter{
			UserID:       userID,
			Status:       status,
			AnalysisType: q.Get("analysis_type"),
			Page:         queryInt(q.Get("page"), 1),
			Limit:        queryInt(q.Get("limit"), 20),
		}

		items, total, err := svc.ListAdvice(r.Context(), filter)
		if err != nil {
			writeAdviceError(w, err)
			return
		}
		if items == nil {
			items = []*models.Advice{}
		}

		response.Collection(w, items, response.PaginationMeta{
			Page:    filter.Page,
			Limit:   filter.Limit,
			Total:   total,
			HasNext: filter.Page*filter.Limit < total,
		})
	}
}

type generateDeclined struct {
	Generated bool   `json:"generated"`
	Reason    string `json:"reason"`
}

// writeAdviceError maps core error kinds onto HTTP responses.
func writeAdviceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Advice not found", nil)
	case errors.Is(err, advice.ErrInvalidStateTransition):
		response.Error(w, http.StatusConflict, "INVALID_STATE_TRANSITION", err.Error(), nil)
	case errors.Is(err, advice.ErrAdvisorUnavailable):
		response.Error(w, http.StatusBadGateway, "ADVISOR_UNAVAILABLE",
			"Recommendation temporarily unavailable", nil)
	case errors.Is(err, consensus.ErrInvalidRecommendation):
		response.Error(w, http.StatusBadGateway, "INVALID_RECOMMENDATION",
			"Recommendation temporarily unavailable", nil)
	case errors.Is(err, advice.ErrValidationFailure):
		response.Error(w, http.StatusInternalServerError, "VALIDATION_FAILURE",
			"Advice could not be validated", nil)
	default:
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
			"An unexpected error occurred", nil)
	}
}

func queryInt(v string, defaultVal int) int {
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil || i <= 0 {
		return defaultVal
	}
	return i
}
