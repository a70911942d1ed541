package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finadvisorhq/advisory/internal/config"
	"github.com/finadvisorhq/advisory/pkg/models"
)

func chatAnswer(recommendation string, confidence string) string {
	answer, _ := json.Marshal(map[string]any{
		"recommendation": recommendation,
		"confidence":     json.Number(confidence),
	})
	body, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"role": "assistant", "content": string(answer)}},
		},
	})
	return string(body)
}

func newTestAdvisor(baseURL string) *Advisor {
	return NewAdvisor(models.StyleConservative, config.AdvisorConfig{
		Provider: "openai",
		APIKey:   "sk-test",
		Model:    "gpt-4o-mini",
		BaseURL:  baseURL,
	})
}

func TestRecommend_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o-mini", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(chatAnswer("Hold your current allocation", "0.85")))
	}))
	defer srv.Close()

	rec, err := newTestAdvisor(srv.URL).Recommend(context.Background(), models.AdviceRequest{
		UserID:       "user-1",
		AnalysisType: "retirement",
	})
	require.NoError(t, err)
	assert.Equal(t, "Hold your current allocation", rec.Text)
	assert.True(t, rec.ConfidenceScore.Equal(decimal.RequireFromString("0.85")))
	assert.Equal(t, "openai", rec.Advisor)
	assert.Equal(t, models.StyleConservative, rec.Style)
}

func TestRecommend_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newTestAdvisor(srv.URL).Recommend(context.Background(), models.AdviceRequest{})
	assert.ErrorIs(t, err, ErrAPIError)
}

func TestRecommend_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	_, err := newTestAdvisor(srv.URL).Recommend(context.Background(), models.AdviceRequest{})
	assert.ErrorIs(t, err, ErrAPIError)
}

func TestRecommend_MalformedAnswer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"not json"}}]}`))
	}))
	defer srv.Close()

	_, err := newTestAdvisor(srv.URL).Recommend(context.Background(), models.AdviceRequest{})
	assert.ErrorIs(t, err, ErrAPIError)
}

func TestRecommend_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Drain the body so the server notices the client disconnect and
		// cancels the request context; otherwise this handler never returns
		// and the deferred srv.Close deadlocks.
		io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := newTestAdvisor(srv.URL).Recommend(ctx, models.AdviceRequest{})
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestRecommend_Unreachable(t *testing.T) {
	// Closed server: connection refused.
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := newTestAdvisor(url).Recommend(context.Background(), models.AdviceRequest{})
	assert.ErrorIs(t, err, ErrUnreachable)
}

func TestNewAdvisor_Defaults(t *testing.T) {
	a := NewAdvisor(models.StyleAggressive, config.AdvisorConfig{Provider: "openai", APIKey: "sk"})
	assert.Equal(t, "gpt-4o", a.model)
	assert.Equal(t, defaultBaseURL, a.baseURL)
	assert.Equal(t, models.StyleAggressive, a.Style())
}

func TestSystemPrompt_PerStyle(t *testing.T) {
	assert.Contains(t, systemPrompt(models.StyleConservative), "conservative")
	assert.Contains(t, systemPrompt(models.StyleAggressive), "aggressive")
}
