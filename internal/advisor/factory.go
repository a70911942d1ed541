package advisor

import (
	"fmt"

	"github.com/finadvisorhq/advisory/internal/advisor/anthropic"
	"github.com/finadvisorhq/advisory/internal/advisor/mock"
	"github.com/finadvisorhq/advisory/internal/advisor/openai"
	"github.com/finadvisorhq/advisory/internal/config"
	"github.com/finadvisorhq/advisory/pkg/models"
)

// New constructs the advisor for one style based on config.
// Called once per style at server startup.
func New(style string, cfg config.AdvisorConfig) (models.Advisor, error) {
	if style != models.StyleConservative && style != models.StyleAggressive {
		return nil, fmt.Errorf("unknown advisor style %q: must be conservative or aggressive", style)
	}

	switch cfg.Provider {
	case "openai":
		return openai.NewAdvisor(style, cfg), nil
	case "anthropic":
		return anthropic.NewAdvisor(style, cfg), nil
	case "mock":
		return mock.NewAdvisor(style), nil
	default:
		return nil, fmt.Errorf("unknown advisor provider %q: must be one of openai, anthropic, mock", cfg.Provider)
	}
}
