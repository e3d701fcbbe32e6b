package service

import (
	"context"
	"encoding/json"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"estate_portal_backend/internal/enrichment/repository"
	"estate_portal_backend/platform/apperr"
)

// Intent index factor keys. A FORMULA rule's weight map overrides any subset
// of these; unknown keys in the map are ignored.
const (
	factorRequirementDepth = "requirementDepth"
	factorTimelineUrgency  = "timelineUrgency"
	factorBudgetClarity    = "budgetClarity"
	factorVisitReadiness   = "visitReadiness"
	factorResponseSpeed    = "responseSpeed"
)

func defaultWeights() map[string]float64 {
	return map[string]float64{
		factorRequirementDepth: 25,
		factorTimelineUrgency:  25,
		factorBudgetClarity:    20,
		factorVisitReadiness:   20,
		factorResponseSpeed:    10,
	}
}

// CalculateIntentIndex recomputes the 0-100 intent index from the lead's
// structured fields and interaction history, independent of whatever the
// keyword scan wrote. Given unchanged inputs the recomputation is idempotent.
func (s *Service) CalculateIntentIndex(ctx context.Context, leadID uuid.UUID) (int, error) {
	lead, interactions, err := s.loadSignals(ctx, leadID)
	if err != nil {
		return 0, err
	}

	weights, formulaRule := s.formulaWeights(ctx)

	factors := map[string]float64{
		factorRequirementDepth: requirementDepth(lead, weights[factorRequirementDepth]),
		factorTimelineUrgency:  timelineUrgency(lead, weights[factorTimelineUrgency]),
		factorBudgetClarity:    budgetClarity(lead, weights[factorBudgetClarity]),
		factorVisitReadiness:   visitReadiness(interactions, weights[factorVisitReadiness]),
		factorResponseSpeed:    responseSpeed(lead, weights[factorResponseSpeed]),
	}

	var total float64
	for _, v := range factors {
		total += v
	}
	score := clampIndex(int(math.Round(total)))

	if err := s.repo.UpdateLeadIntentIndex(ctx, lead.ID, score, time.Now().UTC()); err != nil {
		return 0, apperr.Persistence("failed to persist intent index", err).WithOp("calculateIntentIndex")
	}

	s.logScoreRecompute(ctx, lead, score, factors, formulaRule)

	return score, nil
}

// formulaWeights returns the effective weight map. The first active FORMULA
// rule overrides the defaults key by key; an undecodable config falls back to
// defaults with a warning.
func (s *Service) formulaWeights(ctx context.Context) (map[string]float64, *repository.Rule) {
	weights := defaultWeights()

	rules, err := s.repo.ListActiveRules(ctx, repository.RuleTypeFormula)
	if err != nil {
		s.log.DatabaseError("list_formula_rules", err)
		return weights, nil
	}
	if len(rules) == 0 {
		return weights, nil
	}

	rule := rules[0]
	cfg, err := rule.FormulaConfig()
	if err != nil {
		s.log.RuleConfigInvalid(rule.ID, string(rule.Type), err)
		return weights, nil
	}
	for key, weight := range cfg.Weights {
		if _, ok := weights[key]; ok {
			weights[key] = weight
		}
	}
	return weights, &rule
}

// logScoreRecompute appends a FORMULA audit entry with the factor breakdown.
// Best effort; the score write has already committed.
func (s *Service) logScoreRecompute(ctx context.Context, lead repository.Lead, score int, factors map[string]float64, rule *repository.Rule) {
	params := repository.InsertLogParams{
		LeadID:         lead.ID,
		RuleType:       string(repository.RuleTypeFormula),
		RuleName:       "intent index recompute",
		TriggerType:    repository.RuleTypeFormula,
		AppliedTags:    []string{},
		OldIntentIndex: lead.IntentIndex,
		NewIntentIndex: score,
	}
	if rule != nil {
		ruleID := rule.ID
		params.RuleID = &ruleID
		params.RuleName = rule.Name
	}
	params.Details, _ = json.Marshal(map[string]any{"factors": factors})

	if err := s.repo.InsertLog(ctx, params); err != nil {
		s.log.DatabaseError("enrichment_log_insert", err)
	}
}

func requirementDepth(lead repository.Lead, weight float64) float64 {
	points := 0
	if lead.RequirementID != nil {
		points += 5
	}
	if len(lead.PropertyTypes) > 0 {
		points += 5
	}
	if lead.LocationID != nil {
		points += 5
	}
	if len(lead.ProjectNames) > 0 {
		points += 5
	}
	if len(lead.Description) > 50 {
		points += 5
	}
	return float64(points) / 25 * weight
}

func timelineUrgency(lead repository.Lead, weight float64) float64 {
	if lead.Timeline == nil {
		return 0
	}
	timeline := strings.ToLower(*lead.Timeline)
	switch {
	case strings.Contains(timeline, "immediate"),
		strings.Contains(timeline, "urgent"),
		strings.Contains(timeline, "this month"):
		return weight
	case strings.Contains(timeline, "1-3 months"):
		return 0.6 * weight
	case strings.Contains(timeline, "3-6 months"):
		return 0.3 * weight
	}
	return 0
}

func budgetClarity(lead repository.Lead, weight float64) float64 {
	if lead.BudgetMin != nil || lead.BudgetMax != nil {
		return weight
	}
	if lead.BudgetRefID != nil {
		return 0.7 * weight
	}
	return 0
}

func visitReadiness(interactions []repository.Interaction, weight float64) float64 {
	for _, item := range interactions {
		if item.Type == repository.InteractionSiteVisit || item.Type == repository.InteractionMeeting {
			return weight
		}
	}
	return 0
}

func responseSpeed(lead repository.Lead, weight float64) float64 {
	if lead.IsContacted {
		return weight
	}
	return 0
}
