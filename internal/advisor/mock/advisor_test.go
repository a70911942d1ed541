package mock_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finadvisorhq/advisory/internal/advisor/mock"
	"github.com/finadvisorhq/advisory/pkg/models"
)

func sampleRequest() models.AdviceRequest {
	return models.AdviceRequest{
		UserID:       "3f6d5f7a-3c2a-4c43-9ad1-6aab54c2c111",
		AnalysisType: "retirement",
	}
}

func TestNewAdvisor_Conservative(t *testing.T) {
	a := mock.NewAdvisor(models.StyleConservative)
	assert.Equal(t, "mock", a.Name())
	assert.Equal(t, models.StyleConservative, a.Style())

	rec, err := a.Recommend(context.Background(), sampleRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, rec.Text)
	assert.Equal(t, models.StyleConservative, rec.Style)
	assert.True(t, rec.ConfidenceScore.Equal(decimal.RequireFromString("0.85")))
}

func TestNewAdvisor_Aggressive(t *testing.T) {
	a := mock.NewAdvisor(models.StyleAggressive)

	rec, err := a.Recommend(context.Background(), sampleRequest())
	require.NoError(t, err)
	assert.Equal(t, models.StyleAggressive, rec.Style)
	assert.True(t, rec.ConfidenceScore.Equal(decimal.RequireFromString("0.80")))
}

func TestNewFixedAdvisor(t *testing.T) {
	conf := decimal.RequireFromString("0.42")
	a := mock.NewFixedAdvisor(models.StyleConservative, "Hold everything", conf)

	rec, err := a.Recommend(context.Background(), sampleRequest())
	require.NoError(t, err)
	assert.Equal(t, "Hold everything", rec.Text)
	assert.True(t, rec.ConfidenceScore.Equal(conf))
}

func TestNewFailingAdvisor(t *testing.T) {
	customErr := errors.New("upstream down")
	a := mock.NewFailingAdvisor(models.StyleAggressive, customErr)
	assert.Equal(t, "mock-failing", a.Name())

	_, err := a.Recommend(context.Background(), sampleRequest())
	assert.ErrorIs(t, err, customErr)
}

func TestNewTimeoutAdvisor(t *testing.T) {
	a := mock.NewTimeoutAdvisor(models.StyleConservative)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := a.Recommend(ctx, sampleRequest())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestMockAdvisor_NilFunc(t *testing.T) {
	a := &mock.MockAdvisor{Name_: "bare", Style_: models.StyleConservative}

	rec, err := a.Recommend(context.Background(), sampleRequest())
	assert.NoError(t, err)
	assert.Equal(t, models.AdvisorRecommendation{}, rec)
}
