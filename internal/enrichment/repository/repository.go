package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrLeadNotFound = errors.New("lead not found")
	ErrDealNotFound = errors.New("deal not found")

	errEmptyRuleConfig = errors.New("rule config is empty")
)

// DB is the subset of pgxpool.Pool the repository uses. Declared as an
// interface so tests can substitute a pgxmock pool.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Repository provides read/write access to the enrichment surface of leads,
// interactions, deals, rules and the audit log. Ownership of leads and deals
// lives with the wider CRM; only enrichment-specific columns are ever written
// here.
type Repository struct {
	pool DB
}

// New creates a new repository over the given pool.
func New(pool DB) *Repository {
	return &Repository{pool: pool}
}

// Lead roles recognized by keyword rules. RoleBuyer is the default a new
// lead carries; the scanner treats it as "no role assigned yet".
const (
	RoleBuyer       = "Buyer"
	RoleSeller      = "Seller"
	RoleInvestor    = "Investor"
	RoleDeveloper   = "Developer"
	RoleDirectOwner = "DirectOwner"
	RoleBankAuction = "BankAuction"
)

// Lead is the enrichment view of a lead: the derived fields this module owns
// plus the read-only structured fields scoring consumes.
type Lead struct {
	ID                uuid.UUID
	Description       string
	Notes             *string
	IntentTags        []string
	RoleType          string
	IntentIndex       int
	Classification    string
	EnrichmentLastRun *time.Time
	RequirementID     *uuid.UUID
	PropertyTypes     []string
	LocationID        *uuid.UUID
	ProjectNames      []string
	BudgetMin         *int64
	BudgetMax         *int64
	BudgetRefID       *uuid.UUID
	Timeline          *string
	IsContacted       bool
	CreatedAt         time.Time
}

// Interaction is a read-only activity record logged against a lead.
type Interaction struct {
	ID          uuid.UUID
	LeadID      uuid.UUID
	Type        string
	Subject     string
	Description *string
	CreatedAt   time.Time
}

// Interaction types the calculator treats as visit readiness.
const (
	InteractionSiteVisit = "Site-Visit"
	InteractionMeeting   = "Meeting"
)

// Deal is the read view consumed by the margin detector.
type Deal struct {
	ID                uuid.UUID
	QuotePrice        *float64
	Price             *float64
	Remarks           *string
	NegotiationWindow bool
	CreatedAt         time.Time
}

const leadColumns = `id, description, notes, intent_tags, role_type, intent_index,
		classification, enrichment_last_run, requirement_id, property_types,
		location_id, project_names, budget_min, budget_max, budget_ref_id,
		timeline, is_contacted, created_at`

// GetLead loads the enrichment view of a lead.
func (r *Repository) GetLead(ctx context.Context, id uuid.UUID) (Lead, error) {
	var lead Lead
	err := r.pool.QueryRow(ctx, `
		SELECT `+leadColumns+`
		FROM leads WHERE id = $1 AND deleted_at IS NULL
	`, id).Scan(
		&lead.ID, &lead.Description, &lead.Notes, &lead.IntentTags, &lead.RoleType,
		&lead.IntentIndex, &lead.Classification, &lead.EnrichmentLastRun,
		&lead.RequirementID, &lead.PropertyTypes, &lead.LocationID, &lead.ProjectNames,
		&lead.BudgetMin, &lead.BudgetMax, &lead.BudgetRefID,
		&lead.Timeline, &lead.IsContacted, &lead.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrLeadNotFound
	}
	return lead, err
}

// UpdateLeadScan persists the keyword scanner's output. Only enrichment-owned
// columns are touched; concurrent CRM edits to other columns are unaffected.
// Two concurrent pipeline runs over the same lead still race last-write-wins.
func (r *Repository) UpdateLeadScan(ctx context.Context, id uuid.UUID, tags []string, roleType string, intentIndex int, lastRun time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE leads
		SET intent_tags = $2, role_type = $3, intent_index = $4,
			enrichment_last_run = $5, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
	`, id, tags, roleType, intentIndex, lastRun)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrLeadNotFound
	}
	return nil
}

// UpdateLeadIntentIndex persists a recomputed intent index.
func (r *Repository) UpdateLeadIntentIndex(ctx context.Context, id uuid.UUID, intentIndex int, lastRun time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE leads
		SET intent_index = $2, enrichment_last_run = $3, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
	`, id, intentIndex, lastRun)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrLeadNotFound
	}
	return nil
}

// UpdateLeadClassification persists the classifier's label.
func (r *Repository) UpdateLeadClassification(ctx context.Context, id uuid.UUID, classification string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE leads
		SET classification = $2, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
	`, id, classification)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrLeadNotFound
	}
	return nil
}

// ListInteractions returns all interaction records for a lead, oldest first.
func (r *Repository) ListInteractions(ctx context.Context, leadID uuid.UUID) ([]Interaction, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, lead_id, type, subject, description, created_at
		FROM interactions
		WHERE lead_id = $1
		ORDER BY created_at ASC, id ASC
	`, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Interaction, 0)
	for rows.Next() {
		var item Interaction
		if err := rows.Scan(&item.ID, &item.LeadID, &item.Type, &item.Subject, &item.Description, &item.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

// GetDeal loads the margin-detector view of a deal.
func (r *Repository) GetDeal(ctx context.Context, id uuid.UUID) (Deal, error) {
	var deal Deal
	err := r.pool.QueryRow(ctx, `
		SELECT id, quote_price, price, remarks, negotiation_window, created_at
		FROM deals WHERE id = $1 AND deleted_at IS NULL
	`, id).Scan(&deal.ID, &deal.QuotePrice, &deal.Price, &deal.Remarks, &deal.NegotiationWindow, &deal.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Deal{}, ErrDealNotFound
	}
	return deal, err
}

// UpdateDealNegotiationWindow persists the margin detector's flag.
func (r *Repository) UpdateDealNegotiationWindow(ctx context.Context, id uuid.UUID, open bool) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE deals
		SET negotiation_window = $2, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
	`, id, open)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrDealNotFound
	}
	return nil
}
