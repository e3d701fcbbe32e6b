package service

import (
	"context"

	"github.com/google/uuid"

	"estate_portal_backend/internal/enrichment/repository"
	"estate_portal_backend/platform/apperr"
)

// Classification labels produced by the built-in heuristics. Admin rules may
// introduce arbitrary labels beyond these.
const (
	LabelExplorer     = "Explorer"
	LabelInvestor     = "Investor"
	LabelSeriousBuyer = "Serious Buyer"
	LabelQualified    = "Qualified"
	LabelLowIntent    = "Low Intent"
)

// ClassifyLead derives a single label from the lead's current score, tags and
// the active classification rules, then persists it. The label is a pure
// function of those three inputs.
//
// Evaluation order matters: the score thresholds run after the Investor tag
// check, so a score above 80 relabels an Investor as Serious Buyer. Admin
// rules run last; a tagRequired match sets the label and ends the iteration,
// a threshold match sets the label and keeps iterating, so a later threshold
// rule can overwrite an earlier one.
func (s *Service) ClassifyLead(ctx context.Context, leadID uuid.UUID) (string, error) {
	lead, err := s.repo.GetLead(ctx, leadID)
	if err != nil {
		return "", err
	}

	label := LabelExplorer
	if hasTag(lead.IntentTags, "ROI") || hasTag(lead.IntentTags, "Investor") {
		label = LabelInvestor
	}

	score := lead.IntentIndex
	switch {
	case score > 80:
		label = LabelSeriousBuyer
	case score > 60:
		label = LabelQualified
	case score < 40:
		label = LabelLowIntent
	}

	rules, err := s.repo.ListActiveRules(ctx, repository.RuleTypeClassification)
	if err != nil {
		return "", err
	}
	for _, rule := range rules {
		cfg, err := rule.ClassificationConfig()
		if err != nil {
			s.log.RuleConfigInvalid(rule.ID, string(rule.Type), err)
			continue
		}
		if cfg.Label == "" {
			continue
		}
		if cfg.TagRequired != "" {
			if hasTag(lead.IntentTags, cfg.TagRequired) {
				label = cfg.Label
				break
			}
			continue
		}
		if cfg.Threshold != nil && score >= *cfg.Threshold {
			label = cfg.Label
		}
	}

	if err := s.repo.UpdateLeadClassification(ctx, lead.ID, label); err != nil {
		return "", apperr.Persistence("failed to persist classification", err).WithOp("classifyLead")
	}
	return label, nil
}

func hasTag(tags []string, want string) bool {
	for _, tag := range tags {
		if tag == want {
			return true
		}
	}
	return false
}
