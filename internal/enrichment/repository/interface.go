package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store is the persistence surface the enrichment service depends on.
type Store interface {
	GetLead(ctx context.Context, id uuid.UUID) (Lead, error)
	UpdateLeadScan(ctx context.Context, id uuid.UUID, tags []string, roleType string, intentIndex int, lastRun time.Time) error
	UpdateLeadIntentIndex(ctx context.Context, id uuid.UUID, intentIndex int, lastRun time.Time) error
	UpdateLeadClassification(ctx context.Context, id uuid.UUID, classification string) error
	ListInteractions(ctx context.Context, leadID uuid.UUID) ([]Interaction, error)

	GetDeal(ctx context.Context, id uuid.UUID) (Deal, error)
	UpdateDealNegotiationWindow(ctx context.Context, id uuid.UUID, open bool) error

	ListActiveKeywordRules(ctx context.Context) ([]KeywordRule, error)
	ListActiveRules(ctx context.Context, ruleType RuleType) ([]Rule, error)

	InsertLog(ctx context.Context, params InsertLogParams) error
	ListLogs(ctx context.Context, filter LogFilter, limit int) ([]EnrichmentLog, error)
}

var _ Store = (*Repository)(nil)
