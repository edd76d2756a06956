package scoring

import (
	"context"

	"consulting_leads_backend/internal/leads/domain"
	"consulting_leads_backend/platform/ai"
	"consulting_leads_backend/platform/logger"
)

// Service selects between the assisted and deterministic strategies.
type Service struct {
	deterministic *Deterministic
	assisted      Strategy
	log           *logger.Logger
}

// New builds a scoring service. A nil completer disables the assisted path.
func New(rules *Rules, completer ai.Completer, log *logger.Logger) *Service {
	det := NewDeterministic(rules)
	svc := &Service{deterministic: det, log: log}
	if completer != nil {
		svc.assisted = NewAssistedStrategy(completer, det)
	}
	return svc
}

// Score returns the deterministic score.
func (s *Service) Score(lead domain.Lead) int {
	return s.deterministic.Score(lead)
}

func (s *Service) Tier(score int, source string) Tier {
	return s.deterministic.Tier(score, source)
}

// Evaluate tries the assisted strategy first and falls back to the
// deterministic one on any failure. It never returns an error.
func (s *Service) Evaluate(ctx context.Context, lead domain.Lead) Result {
	if s.assisted != nil {
		res, err := s.assisted.Evaluate(ctx, lead)
		if err == nil {
			return res
		}
		if s.log != nil {
			s.log.ProviderFailure("ai", "score_lead", err)
		}
	}

	res, _ := s.deterministic.Evaluate(ctx, lead)
	res.Fallback = true
	return res
}
