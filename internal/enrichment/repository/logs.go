package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// maxLogListLimit caps how many audit entries a single read may return.
const maxLogListLimit = 200

// EnrichmentLog is one immutable audit record of a rule application.
// Entries are inserted and read; there is no update or delete path.
type EnrichmentLog struct {
	ID             uuid.UUID
	LeadID         uuid.UUID
	RuleID         *uuid.UUID
	RuleType       string
	RuleName       string
	TriggerType    RuleType
	AppliedTags    []string
	OldIntentIndex int
	NewIntentIndex int
	Details        json.RawMessage
	CreatedAt      time.Time
}

// InsertLogParams carries the fields for a new audit entry.
type InsertLogParams struct {
	LeadID         uuid.UUID
	RuleID         *uuid.UUID
	RuleType       string
	RuleName       string
	TriggerType    RuleType
	AppliedTags    []string
	OldIntentIndex int
	NewIntentIndex int
	Details        json.RawMessage
}

// LogFilter narrows a log listing. A nil LeadID lists across all leads.
type LogFilter struct {
	LeadID *uuid.UUID
}

// InsertLog appends one audit entry.
func (r *Repository) InsertLog(ctx context.Context, params InsertLogParams) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO enrichment_logs (
			lead_id, rule_id, rule_type, rule_name, trigger_type,
			applied_tags, old_intent_index, new_intent_index, details
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		params.LeadID, params.RuleID, params.RuleType, params.RuleName, string(params.TriggerType),
		params.AppliedTags, params.OldIntentIndex, params.NewIntentIndex, params.Details,
	)
	return err
}

// ListLogs returns audit entries newest-first, optionally filtered by lead.
func (r *Repository) ListLogs(ctx context.Context, filter LogFilter, limit int) ([]EnrichmentLog, error) {
	if limit < 1 || limit > maxLogListLimit {
		limit = maxLogListLimit
	}

	query := `
		SELECT id, lead_id, rule_id, rule_type, rule_name, trigger_type,
			applied_tags, old_intent_index, new_intent_index, details, created_at
		FROM enrichment_logs`
	args := []any{}
	if filter.LeadID != nil {
		query += ` WHERE lead_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2`
		args = append(args, *filter.LeadID, limit)
	} else {
		query += ` ORDER BY created_at DESC, id DESC LIMIT $1`
		args = append(args, limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]EnrichmentLog, 0)
	for rows.Next() {
		var entry EnrichmentLog
		if err := rows.Scan(
			&entry.ID, &entry.LeadID, &entry.RuleID, &entry.RuleType, &entry.RuleName,
			&entry.TriggerType, &entry.AppliedTags, &entry.OldIntentIndex,
			&entry.NewIntentIndex, &entry.Details, &entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}
