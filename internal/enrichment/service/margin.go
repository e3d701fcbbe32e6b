package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"estate_portal_backend/internal/enrichment/repository"
	"estate_portal_backend/platform/apperr"
)

// Built-in negotiation-window thresholds. A MARGIN rule may override any of
// them.
const (
	defaultMarginMaxAgeDays  = 30
	defaultMarginMaxPriceGap = 0.12
)

var defaultMarginKeywords = []string{"urgent", "immediate"}

type marginParams struct {
	maxAgeDays  int
	maxPriceGap float64
	keywords    []string
}

// DetectMarginOpportunity evaluates the negotiation-window heuristic for one
// deal and persists the flag. The window opens when the deal is older than
// the age threshold, when quote and asking price sit closer together than the
// gap threshold, or when the remarks mention an urgency keyword.
func (s *Service) DetectMarginOpportunity(ctx context.Context, dealID uuid.UUID) (bool, error) {
	deal, err := s.repo.GetDeal(ctx, dealID)
	if err != nil {
		return false, err
	}

	params := s.marginParams(ctx)
	ageDays := int(time.Since(deal.CreatedAt).Hours() / 24)

	open := ageDays > params.maxAgeDays

	if !open && deal.QuotePrice != nil && deal.Price != nil && *deal.Price > 0 {
		gap := (*deal.QuotePrice - *deal.Price) / *deal.Price
		if gap < params.maxPriceGap {
			open = true
		}
	}

	if !open && deal.Remarks != nil {
		remarks := strings.ToLower(*deal.Remarks)
		for _, keyword := range params.keywords {
			if strings.Contains(remarks, keyword) {
				open = true
				break
			}
		}
	}

	if err := s.repo.UpdateDealNegotiationWindow(ctx, deal.ID, open); err != nil {
		return false, apperr.Persistence("failed to persist negotiation window", err).WithOp("detectMarginOpportunity")
	}
	return open, nil
}

// marginParams returns the effective thresholds. The first active MARGIN rule
// overrides the defaults field by field; an undecodable config falls back to
// defaults with a warning.
func (s *Service) marginParams(ctx context.Context) marginParams {
	params := marginParams{
		maxAgeDays:  defaultMarginMaxAgeDays,
		maxPriceGap: defaultMarginMaxPriceGap,
		keywords:    defaultMarginKeywords,
	}

	rules, err := s.repo.ListActiveRules(ctx, repository.RuleTypeMargin)
	if err != nil {
		s.log.DatabaseError("list_margin_rules", err)
		return params
	}
	if len(rules) == 0 {
		return params
	}

	rule := rules[0]
	cfg, err := rule.MarginConfig()
	if err != nil {
		s.log.RuleConfigInvalid(rule.ID, string(rule.Type), err)
		return params
	}
	if cfg.MaxAgeDays != nil {
		params.maxAgeDays = *cfg.MaxAgeDays
	}
	if cfg.MaxPriceGap != nil {
		params.maxPriceGap = *cfg.MaxPriceGap
	}
	if len(cfg.Keywords) > 0 {
		params.keywords = cfg.Keywords
	}
	return params
}
