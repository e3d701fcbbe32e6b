package service

import (
	"context"

	"github.com/google/uuid"

	"estate_portal_backend/internal/enrichment/repository"
	"estate_portal_backend/platform/logger"
)

// Pipeline stage names used in failure results and logs.
const (
	StageScan     = "scan"
	StageScore    = "score"
	StageClassify = "classify"
)

// Service runs the enrichment pipeline over leads and the negotiation-window
// heuristic over deals.
type Service struct {
	repo repository.Store
	log  *logger.Logger
}

func New(repo repository.Store, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// RunResult is the outcome of one full pipeline run. FailedStage is empty on
// success; when set, Err carries the stage error and the earlier stages'
// writes remain committed.
type RunResult struct {
	LeadID         uuid.UUID
	MatchedRules   int
	AppliedTags    []string
	IntentIndex    int
	Classification string
	FailedStage    string
	Err            error
}

// RunFullEnrichment executes scan, score and classify sequentially for one
// lead. Stage errors are caught and logged; the method never returns an
// error. Callers that need to surface the failure inspect FailedStage.
func (s *Service) RunFullEnrichment(ctx context.Context, leadID uuid.UUID) RunResult {
	result := RunResult{LeadID: leadID}

	scan, err := s.ScanKeywords(ctx, leadID)
	if err != nil {
		s.log.EnrichmentStageFailed(StageScan, leadID, err)
		result.FailedStage = StageScan
		result.Err = err
		return result
	}
	result.MatchedRules = scan.MatchedRules
	result.AppliedTags = scan.Tags

	score, err := s.CalculateIntentIndex(ctx, leadID)
	if err != nil {
		s.log.EnrichmentStageFailed(StageScore, leadID, err)
		result.FailedStage = StageScore
		result.Err = err
		return result
	}
	result.IntentIndex = score

	label, err := s.ClassifyLead(ctx, leadID)
	if err != nil {
		s.log.EnrichmentStageFailed(StageClassify, leadID, err)
		result.FailedStage = StageClassify
		result.Err = err
		return result
	}
	result.Classification = label

	return result
}

// ListLogs exposes the audit trail, newest entries first.
func (s *Service) ListLogs(ctx context.Context, filter repository.LogFilter, limit int) ([]repository.EnrichmentLog, error) {
	return s.repo.ListLogs(ctx, filter, limit)
}

// ListKeywordRules exposes the active keyword rule set in scan order.
func (s *Service) ListKeywordRules(ctx context.Context) ([]repository.KeywordRule, error) {
	return s.repo.ListActiveKeywordRules(ctx)
}

// ListRules exposes the active generic rules of one type.
func (s *Service) ListRules(ctx context.Context, ruleType repository.RuleType) ([]repository.Rule, error) {
	return s.repo.ListActiveRules(ctx, ruleType)
}

func clampIndex(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
