package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"estate_portal_backend/internal/enrichment/repository"
	"estate_portal_backend/platform/apperr"
)

// ScanResult describes the persisted outcome of one keyword scan.
type ScanResult struct {
	LeadID       uuid.UUID
	MatchedRules int
	Tags         []string
	RoleType     string
	IntentIndex  int
}

// ScanKeywords matches every active keyword rule against the lead's scan
// buffer and persists the resulting tags, role and intent index.
//
// Per matching rule: the auto tag joins the lead's tag set if absent, the
// rule's role is taken only while the lead still carries the default Buyer
// role, and the rule's impact is counted once no matter how often the keyword
// occurs. Each match appends one audit entry whose newIntentIndex is the
// clamped running total at that point in the scan, which can differ from the
// final persisted index when later rules shift the total back inside range.
func (s *Service) ScanKeywords(ctx context.Context, leadID uuid.UUID) (ScanResult, error) {
	lead, interactions, err := s.loadSignals(ctx, leadID)
	if err != nil {
		return ScanResult{}, err
	}
	rules, err := s.repo.ListActiveKeywordRules(ctx)
	if err != nil {
		return ScanResult{}, err
	}

	buffer := buildScanBuffer(lead, interactions)

	tags := make([]string, 0, len(lead.IntentTags))
	seen := make(map[string]struct{}, len(lead.IntentTags))
	for _, tag := range lead.IntentTags {
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}

	role := lead.RoleType
	oldIndex := lead.IntentIndex
	totalImpact := 0
	matched := 0

	for _, rule := range rules {
		if rule.Keyword == "" || !strings.Contains(buffer, strings.ToLower(rule.Keyword)) {
			continue
		}
		matched++

		applied := []string{}
		if rule.AutoTag != "" {
			if _, ok := seen[rule.AutoTag]; !ok {
				seen[rule.AutoTag] = struct{}{}
				tags = append(tags, rule.AutoTag)
				applied = append(applied, rule.AutoTag)
			}
		}

		if rule.RoleType != "" && (role == "" || role == repository.RoleBuyer) {
			role = rule.RoleType
		}

		totalImpact += rule.IntentImpact

		ruleID := rule.ID
		details, _ := json.Marshal(map[string]any{
			"keyword":      rule.Keyword,
			"roleType":     rule.RoleType,
			"intentImpact": rule.IntentImpact,
		})
		logErr := s.repo.InsertLog(ctx, repository.InsertLogParams{
			LeadID:         lead.ID,
			RuleID:         &ruleID,
			RuleType:       string(repository.RuleTypeKeyword),
			RuleName:       rule.Keyword,
			TriggerType:    repository.RuleTypeKeyword,
			AppliedTags:    applied,
			OldIntentIndex: oldIndex,
			NewIntentIndex: clampIndex(oldIndex + totalImpact),
			Details:        details,
		})
		if logErr != nil {
			// Best effort. The scan's own writes still commit.
			s.log.DatabaseError("enrichment_log_insert", logErr)
		}
	}

	finalIndex := clampIndex(oldIndex + totalImpact)
	if err := s.repo.UpdateLeadScan(ctx, lead.ID, tags, role, finalIndex, time.Now().UTC()); err != nil {
		return ScanResult{}, apperr.Persistence("failed to persist scan output", err).WithOp("scanKeywords")
	}

	return ScanResult{
		LeadID:       lead.ID,
		MatchedRules: matched,
		Tags:         tags,
		RoleType:     role,
		IntentIndex:  finalIndex,
	}, nil
}
