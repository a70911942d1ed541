package consensus

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Normalization regexes compiled once at package init.
var (
	rePercent    = regexp.MustCompile(`\d+(\.\d+)?%`)
	reMoney      = regexp.MustCompile(`[$€£]\s?\d[\d,]*(\.\d+)?`)
	reNumber     = regexp.MustCompile(`\b\d[\d,]*(\.\d+)?\b`)
	rePunct      = regexp.MustCompile(`[^\p{L}\p{N} ]+`)
	reWhitespace = regexp.MustCompile(`\s+`)
)

// Similarity returns the Jaccard similarity of the two recommendation texts
// over normalized token sets, as a decimal in [0,1]. Identical texts score 1;
// texts with no shared vocabulary score 0.
func Similarity(a, b string) decimal.Decimal {
	ta := tokenSet(a)
	tb := tokenSet(b)

	if len(ta) == 0 && len(tb) == 0 {
		return decimal.NewFromInt(1)
	}
	if len(ta) == 0 || len(tb) == 0 {
		return decimal.Zero
	}

	intersection := 0
	for tok := range ta {
		if _, ok := tb[tok]; ok {
			intersection++
		}
	}
	union := len(ta) + len(tb) - intersection

	return decimal.NewFromInt(int64(intersection)).Div(decimal.NewFromInt(int64(union)))
}

// tokenSet normalizes a recommendation text and returns its unique tokens.
// Concrete figures are collapsed to placeholders so two advisors proposing
// the same action with different numbers still overlap.
func tokenSet(s string) map[string]struct{} {
	s = normalize(s)
	set := make(map[string]struct{})
	for _, tok := range strings.Fields(s) {
		set[tok] = struct{}{}
	}
	return set
}

func normalize(s string) string {
	s = strings.ToLower(s)
	s = rePercent.ReplaceAllString(s, "PCT")
	s = reMoney.ReplaceAllString(s, "AMT")
	s = reNumber.ReplaceAllString(s, "N")
	s = rePunct.ReplaceAllString(s, " ")
	s = reWhitespace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
