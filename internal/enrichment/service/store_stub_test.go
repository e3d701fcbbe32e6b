package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"estate_portal_backend/internal/enrichment/repository"
	"estate_portal_backend/platform/logger"
)

// stubStore is an in-memory Store used by the pipeline tests. Error fields
// inject failures per operation.
type stubStore struct {
	leads        map[uuid.UUID]repository.Lead
	interactions map[uuid.UUID][]repository.Interaction
	deals        map[uuid.UUID]repository.Deal
	keywordRules []repository.KeywordRule
	rules        map[repository.RuleType][]repository.Rule
	logs         []repository.EnrichmentLog

	getLeadErr        error
	updateScanErr     error
	updateIndexErr    error
	updateClassifyErr error
	updateDealErr     error
	insertLogErr      error
	listRulesErr      error
}

func newStubStore() *stubStore {
	return &stubStore{
		leads:        make(map[uuid.UUID]repository.Lead),
		interactions: make(map[uuid.UUID][]repository.Interaction),
		deals:        make(map[uuid.UUID]repository.Deal),
		rules:        make(map[repository.RuleType][]repository.Rule),
	}
}

func newTestService(store *stubStore) *Service {
	return New(store, logger.New("test"))
}

func (s *stubStore) GetLead(_ context.Context, id uuid.UUID) (repository.Lead, error) {
	if s.getLeadErr != nil {
		return repository.Lead{}, s.getLeadErr
	}
	lead, ok := s.leads[id]
	if !ok {
		return repository.Lead{}, repository.ErrLeadNotFound
	}
	return lead, nil
}

func (s *stubStore) UpdateLeadScan(_ context.Context, id uuid.UUID, tags []string, roleType string, intentIndex int, lastRun time.Time) error {
	if s.updateScanErr != nil {
		return s.updateScanErr
	}
	lead, ok := s.leads[id]
	if !ok {
		return repository.ErrLeadNotFound
	}
	lead.IntentTags = tags
	lead.RoleType = roleType
	lead.IntentIndex = intentIndex
	lead.EnrichmentLastRun = &lastRun
	s.leads[id] = lead
	return nil
}

func (s *stubStore) UpdateLeadIntentIndex(_ context.Context, id uuid.UUID, intentIndex int, lastRun time.Time) error {
	if s.updateIndexErr != nil {
		return s.updateIndexErr
	}
	lead, ok := s.leads[id]
	if !ok {
		return repository.ErrLeadNotFound
	}
	lead.IntentIndex = intentIndex
	lead.EnrichmentLastRun = &lastRun
	s.leads[id] = lead
	return nil
}

func (s *stubStore) UpdateLeadClassification(_ context.Context, id uuid.UUID, classification string) error {
	if s.updateClassifyErr != nil {
		return s.updateClassifyErr
	}
	lead, ok := s.leads[id]
	if !ok {
		return repository.ErrLeadNotFound
	}
	lead.Classification = classification
	s.leads[id] = lead
	return nil
}

func (s *stubStore) ListInteractions(_ context.Context, leadID uuid.UUID) ([]repository.Interaction, error) {
	return s.interactions[leadID], nil
}

func (s *stubStore) GetDeal(_ context.Context, id uuid.UUID) (repository.Deal, error) {
	deal, ok := s.deals[id]
	if !ok {
		return repository.Deal{}, repository.ErrDealNotFound
	}
	return deal, nil
}

func (s *stubStore) UpdateDealNegotiationWindow(_ context.Context, id uuid.UUID, open bool) error {
	if s.updateDealErr != nil {
		return s.updateDealErr
	}
	deal, ok := s.deals[id]
	if !ok {
		return repository.ErrDealNotFound
	}
	deal.NegotiationWindow = open
	s.deals[id] = deal
	return nil
}

func (s *stubStore) ListActiveKeywordRules(_ context.Context) ([]repository.KeywordRule, error) {
	if s.listRulesErr != nil {
		return nil, s.listRulesErr
	}
	return s.keywordRules, nil
}

func (s *stubStore) ListActiveRules(_ context.Context, ruleType repository.RuleType) ([]repository.Rule, error) {
	if s.listRulesErr != nil {
		return nil, s.listRulesErr
	}
	return s.rules[ruleType], nil
}

func (s *stubStore) InsertLog(_ context.Context, params repository.InsertLogParams) error {
	if s.insertLogErr != nil {
		return s.insertLogErr
	}
	s.logs = append(s.logs, repository.EnrichmentLog{
		ID:             uuid.New(),
		LeadID:         params.LeadID,
		RuleID:         params.RuleID,
		RuleType:       params.RuleType,
		RuleName:       params.RuleName,
		TriggerType:    params.TriggerType,
		AppliedTags:    params.AppliedTags,
		OldIntentIndex: params.OldIntentIndex,
		NewIntentIndex: params.NewIntentIndex,
		Details:        params.Details,
		CreatedAt:      time.Now(),
	})
	return nil
}

func (s *stubStore) ListLogs(_ context.Context, filter repository.LogFilter, limit int) ([]repository.EnrichmentLog, error) {
	out := make([]repository.EnrichmentLog, 0, len(s.logs))
	for i := len(s.logs) - 1; i >= 0; i-- {
		entry := s.logs[i]
		if filter.LeadID != nil && entry.LeadID != *filter.LeadID {
			continue
		}
		out = append(out, entry)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// keywordLogs filters the captured entries down to scanner output.
func (s *stubStore) keywordLogs() []repository.EnrichmentLog {
	out := make([]repository.EnrichmentLog, 0, len(s.logs))
	for _, entry := range s.logs {
		if entry.TriggerType == repository.RuleTypeKeyword {
			out = append(out, entry)
		}
	}
	return out
}

var _ repository.Store = (*stubStore)(nil)
