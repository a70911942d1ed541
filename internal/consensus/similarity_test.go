package consensus_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/finadvisorhq/advisory/internal/consensus"
)

func TestSimilarity_IdenticalTexts(t *testing.T) {
	score := consensus.Similarity("Hold your bonds", "Hold your bonds")
	assert.True(t, score.Equal(decimal.NewFromInt(1)))
}

func TestSimilarity_CaseAndPunctuationInsensitive(t *testing.T) {
	score := consensus.Similarity("Hold your bonds.", "hold, your BONDS")
	assert.True(t, score.Equal(decimal.NewFromInt(1)))
}

func TestSimilarity_NumbersCollapse(t *testing.T) {
	// Different magnitudes count as the same structural token.
	a := consensus.Similarity("Save 10% of income", "Save 15% of income")
	assert.True(t, a.Equal(decimal.NewFromInt(1)))

	b := consensus.Similarity("Invest $5000 now", "Invest $12000 now")
	assert.True(t, b.Equal(decimal.NewFromInt(1)))
}

func TestSimilarity_Disjoint(t *testing.T) {
	score := consensus.Similarity("Buy equities aggressively", "Hold treasury bonds")
	assert.True(t, score.IsZero())
}

func TestSimilarity_Partial(t *testing.T) {
	score := consensus.Similarity("Hold bonds and cash", "Hold bonds and equities")
	assert.True(t, score.GreaterThan(decimal.Zero))
	assert.True(t, score.LessThan(decimal.NewFromInt(1)))
}

func TestSimilarity_EmptyInputs(t *testing.T) {
	assert.True(t, consensus.Similarity("", "").Equal(decimal.NewFromInt(1)))
	assert.True(t, consensus.Similarity("Hold", "").IsZero())
	assert.True(t, consensus.Similarity("", "Hold").IsZero())
}

func TestSimilarity_Symmetric(t *testing.T) {
	a, b := "Hold bonds and cash", "Sell bonds buy stocks"
	assert.True(t, consensus.Similarity(a, b).Equal(consensus.Similarity(b, a)))
}
