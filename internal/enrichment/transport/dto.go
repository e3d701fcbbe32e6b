package transport

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"estate_portal_backend/internal/enrichment/repository"
	"estate_portal_backend/internal/enrichment/service"
)

// RunResultResponse is the outcome of a full pipeline run.
type RunResultResponse struct {
	LeadID         uuid.UUID `json:"leadId"`
	MatchedRules   int       `json:"matchedRules"`
	AppliedTags    []string  `json:"appliedTags"`
	IntentIndex    int       `json:"intentIndex"`
	Classification string    `json:"classification"`
	FailedStage    string    `json:"failedStage,omitempty"`
	Error          string    `json:"error,omitempty"`
}

func FromRunResult(r service.RunResult) RunResultResponse {
	resp := RunResultResponse{
		LeadID:         r.LeadID,
		MatchedRules:   r.MatchedRules,
		AppliedTags:    r.AppliedTags,
		IntentIndex:    r.IntentIndex,
		Classification: r.Classification,
		FailedStage:    r.FailedStage,
	}
	if r.Err != nil {
		resp.Error = r.Err.Error()
	}
	return resp
}

// ScanResponse is the outcome of a standalone keyword scan.
type ScanResponse struct {
	LeadID       uuid.UUID `json:"leadId"`
	MatchedRules int       `json:"matchedRules"`
	Tags         []string  `json:"tags"`
	RoleType     string    `json:"roleType"`
	IntentIndex  int       `json:"intentIndex"`
}

func FromScanResult(r service.ScanResult) ScanResponse {
	return ScanResponse{
		LeadID:       r.LeadID,
		MatchedRules: r.MatchedRules,
		Tags:         r.Tags,
		RoleType:     r.RoleType,
		IntentIndex:  r.IntentIndex,
	}
}

// ScoreResponse is the outcome of a standalone intent index recomputation.
type ScoreResponse struct {
	LeadID      uuid.UUID `json:"leadId"`
	IntentIndex int       `json:"intentIndex"`
}

// ClassifyResponse is the outcome of a standalone classification.
type ClassifyResponse struct {
	LeadID         uuid.UUID `json:"leadId"`
	Classification string    `json:"classification"`
}

// MarginCheckResponse is the outcome of a negotiation-window evaluation.
type MarginCheckResponse struct {
	DealID            uuid.UUID `json:"dealId"`
	NegotiationWindow bool      `json:"negotiationWindow"`
}

// ListLogsQuery filters the audit trail listing.
type ListLogsQuery struct {
	LeadID string `form:"leadId" validate:"omitempty,uuid"`
	Limit  int    `form:"limit" validate:"omitempty,min=1,max=200"`
}

// LogEntryResponse is one audit trail record.
type LogEntryResponse struct {
	ID             uuid.UUID       `json:"id"`
	LeadID         uuid.UUID       `json:"leadId"`
	RuleID         *uuid.UUID      `json:"ruleId,omitempty"`
	RuleType       string          `json:"ruleType"`
	RuleName       string          `json:"ruleName"`
	TriggerType    string          `json:"triggerType"`
	AppliedTags    []string        `json:"appliedTags"`
	OldIntentIndex int             `json:"oldIntentIndex"`
	NewIntentIndex int             `json:"newIntentIndex"`
	Details        json.RawMessage `json:"details,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
}

func FromLogEntries(entries []repository.EnrichmentLog) []LogEntryResponse {
	out := make([]LogEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, LogEntryResponse{
			ID:             e.ID,
			LeadID:         e.LeadID,
			RuleID:         e.RuleID,
			RuleType:       e.RuleType,
			RuleName:       e.RuleName,
			TriggerType:    string(e.TriggerType),
			AppliedTags:    e.AppliedTags,
			OldIntentIndex: e.OldIntentIndex,
			NewIntentIndex: e.NewIntentIndex,
			Details:        e.Details,
			CreatedAt:      e.CreatedAt,
		})
	}
	return out
}

// KeywordRuleResponse mirrors an active keyword rule.
type KeywordRuleResponse struct {
	ID           uuid.UUID `json:"id"`
	Keyword      string    `json:"keyword"`
	AutoTag      string    `json:"autoTag"`
	RoleType     string    `json:"roleType"`
	IntentImpact int       `json:"intentImpact"`
	CreatedAt    time.Time `json:"createdAt"`
}

func FromKeywordRules(rules []repository.KeywordRule) []KeywordRuleResponse {
	out := make([]KeywordRuleResponse, 0, len(rules))
	for _, r := range rules {
		out = append(out, KeywordRuleResponse{
			ID:           r.ID,
			Keyword:      r.Keyword,
			AutoTag:      r.AutoTag,
			RoleType:     r.RoleType,
			IntentImpact: r.IntentImpact,
			CreatedAt:    r.CreatedAt,
		})
	}
	return out
}

// RuleResponse mirrors an active generic rule. Config is passed through as
// stored.
type RuleResponse struct {
	ID        uuid.UUID       `json:"id"`
	Type      string          `json:"type"`
	Name      string          `json:"name"`
	Config    json.RawMessage `json:"config"`
	CreatedAt time.Time       `json:"createdAt"`
}

func FromRules(rules []repository.Rule) []RuleResponse {
	out := make([]RuleResponse, 0, len(rules))
	for _, r := range rules {
		out = append(out, RuleResponse{
			ID:        r.ID,
			Type:      string(r.Type),
			Name:      r.Name,
			Config:    r.Config,
			CreatedAt: r.CreatedAt,
		})
	}
	return out
}
