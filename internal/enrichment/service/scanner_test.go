package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"estate_portal_backend/internal/enrichment/repository"
)

func keywordRule(keyword, autoTag, roleType string, impact int, createdAt time.Time) repository.KeywordRule {
	return repository.KeywordRule{
		ID:           uuid.New(),
		Keyword:      keyword,
		AutoTag:      autoTag,
		RoleType:     roleType,
		IntentImpact: impact,
		IsActive:     true,
		CreatedAt:    createdAt,
	}
}

func TestScanKeywordsCommercialInvestmentLead(t *testing.T) {
	store := newStubStore()
	leadID := uuid.New()
	store.leads[leadID] = repository.Lead{
		ID:          leadID,
		Description: "Looking for Commercial Investment properties",
		RoleType:    repository.RoleBuyer,
	}
	store.keywordRules = []repository.KeywordRule{
		keywordRule("Commercial Investment", "Investor", "Investor", 30, time.Now()),
	}

	result, err := newTestService(store).ScanKeywords(context.Background(), leadID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.MatchedRules != 1 {
		t.Fatalf("expected 1 matched rule, got %d", result.MatchedRules)
	}
	if len(result.Tags) != 1 || result.Tags[0] != "Investor" {
		t.Fatalf("expected tags [Investor], got %v", result.Tags)
	}
	if result.RoleType != "Investor" {
		t.Fatalf("expected roleType Investor, got %q", result.RoleType)
	}
	if result.IntentIndex != 30 {
		t.Fatalf("expected intentIndex 30, got %d", result.IntentIndex)
	}

	logs := store.keywordLogs()
	if len(logs) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(logs))
	}
	if logs[0].OldIntentIndex != 0 || logs[0].NewIntentIndex != 30 {
		t.Fatalf("expected log old=0 new=30, got old=%d new=%d", logs[0].OldIntentIndex, logs[0].NewIntentIndex)
	}

	persisted := store.leads[leadID]
	if persisted.IntentIndex != 30 || persisted.EnrichmentLastRun == nil {
		t.Fatalf("expected persisted scan output, got index=%d lastRun=%v", persisted.IntentIndex, persisted.EnrichmentLastRun)
	}
}

func TestScanKeywordsImpactCountedOncePerScan(t *testing.T) {
	store := newStubStore()
	leadID := uuid.New()
	store.leads[leadID] = repository.Lead{
		ID:          leadID,
		Description: "urgent urgent urgent sale, very urgent",
		RoleType:    repository.RoleBuyer,
	}
	store.keywordRules = []repository.KeywordRule{
		keywordRule("urgent", "Hot", repository.RoleBuyer, 10, time.Now()),
	}

	result, err := newTestService(store).ScanKeywords(context.Background(), leadID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IntentIndex != 10 {
		t.Fatalf("expected impact applied once, got intentIndex %d", result.IntentIndex)
	}
}

func TestScanKeywordsTagsNeverDuplicated(t *testing.T) {
	store := newStubStore()
	leadID := uuid.New()
	store.leads[leadID] = repository.Lead{
		ID:          leadID,
		Description: "plot for resale",
		IntentTags:  []string{"Resale"},
		RoleType:    repository.RoleBuyer,
	}
	store.keywordRules = []repository.KeywordRule{
		keywordRule("resale", "Resale", repository.RoleSeller, 5, time.Now()),
	}

	svc := newTestService(store)
	for i := 0; i < 3; i++ {
		if _, err := svc.ScanKeywords(context.Background(), leadID); err != nil {
			t.Fatalf("scan %d: unexpected error: %v", i, err)
		}
	}

	tags := store.leads[leadID].IntentTags
	if len(tags) != 1 || tags[0] != "Resale" {
		t.Fatalf("expected tags [Resale] after repeated scans, got %v", tags)
	}
}

func TestScanKeywordsFirstMatchingRoleWins(t *testing.T) {
	base := time.Now()
	store := newStubStore()
	leadID := uuid.New()
	store.leads[leadID] = repository.Lead{
		ID:          leadID,
		Description: "bank auction flat for a developer",
		RoleType:    repository.RoleBuyer,
	}
	store.keywordRules = []repository.KeywordRule{
		keywordRule("bank auction", "Auction", repository.RoleBankAuction, 5, base),
		keywordRule("developer", "Builder", repository.RoleDeveloper, 5, base.Add(time.Minute)),
	}

	result, err := newTestService(store).ScanKeywords(context.Background(), leadID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.RoleType != repository.RoleBankAuction {
		t.Fatalf("expected first matching rule's role to stick, got %q", result.RoleType)
	}
}

func TestScanKeywordsAssignedRoleNotOverwritten(t *testing.T) {
	store := newStubStore()
	leadID := uuid.New()
	store.leads[leadID] = repository.Lead{
		ID:          leadID,
		Description: "developer enquiry",
		RoleType:    repository.RoleSeller,
	}
	store.keywordRules = []repository.KeywordRule{
		keywordRule("developer", "Builder", repository.RoleDeveloper, 5, time.Now()),
	}

	result, err := newTestService(store).ScanKeywords(context.Background(), leadID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.RoleType != repository.RoleSeller {
		t.Fatalf("expected existing Seller role to survive, got %q", result.RoleType)
	}
}

func TestScanKeywordsLogPreviewIsRunningTotal(t *testing.T) {
	base := time.Now()
	store := newStubStore()
	leadID := uuid.New()
	store.leads[leadID] = repository.Lead{
		ID:          leadID,
		Description: "premium penthouse, flexible budget",
		RoleType:    repository.RoleBuyer,
	}
	store.keywordRules = []repository.KeywordRule{
		keywordRule("premium penthouse", "Premium", repository.RoleBuyer, 150, base),
		keywordRule("flexible budget", "Flexible", repository.RoleBuyer, -100, base.Add(time.Minute)),
	}

	result, err := newTestService(store).ScanKeywords(context.Background(), leadID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	logs := store.keywordLogs()
	if len(logs) != 2 {
		t.Fatalf("expected 2 log entries, got %d", len(logs))
	}
	// Each entry previews the clamped cumulative total at that point, so the
	// first entry can exceed the scan's final persisted index.
	if logs[0].NewIntentIndex != 100 {
		t.Fatalf("expected first preview clamped to 100, got %d", logs[0].NewIntentIndex)
	}
	if logs[1].NewIntentIndex != 50 {
		t.Fatalf("expected second preview 50, got %d", logs[1].NewIntentIndex)
	}
	if result.IntentIndex != 50 {
		t.Fatalf("expected final index 50, got %d", result.IntentIndex)
	}
}

func TestScanKeywordsClampsToLowerBound(t *testing.T) {
	store := newStubStore()
	leadID := uuid.New()
	store.leads[leadID] = repository.Lead{
		ID:          leadID,
		Description: "just browsing",
		IntentIndex: 10,
		RoleType:    repository.RoleBuyer,
	}
	store.keywordRules = []repository.KeywordRule{
		keywordRule("just browsing", "Casual", repository.RoleBuyer, -50, time.Now()),
	}

	result, err := newTestService(store).ScanKeywords(context.Background(), leadID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IntentIndex != 0 {
		t.Fatalf("expected index clamped to 0, got %d", result.IntentIndex)
	}
}

func TestScanKeywordsMatchesInteractionText(t *testing.T) {
	store := newStubStore()
	leadID := uuid.New()
	store.leads[leadID] = repository.Lead{
		ID:          leadID,
		Description: "generic enquiry",
		RoleType:    repository.RoleBuyer,
	}
	followUp := "asked about NRI investment options"
	store.interactions[leadID] = []repository.Interaction{
		{ID: uuid.New(), LeadID: leadID, Type: "Call", Subject: "Follow-up", Description: &followUp},
	}
	store.keywordRules = []repository.KeywordRule{
		keywordRule("nri investment", "NRI", repository.RoleInvestor, 20, time.Now()),
	}

	result, err := newTestService(store).ScanKeywords(context.Background(), leadID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.MatchedRules != 1 || result.IntentIndex != 20 {
		t.Fatalf("expected interaction text to match, got matched=%d index=%d", result.MatchedRules, result.IntentIndex)
	}
}

func TestScanKeywordsMissingLead(t *testing.T) {
	store := newStubStore()
	_, err := newTestService(store).ScanKeywords(context.Background(), uuid.New())
	if !errors.Is(err, repository.ErrLeadNotFound) {
		t.Fatalf("expected ErrLeadNotFound, got %v", err)
	}
}

func TestScanKeywordsLogFailureDoesNotBlockScan(t *testing.T) {
	store := newStubStore()
	leadID := uuid.New()
	store.leads[leadID] = repository.Lead{
		ID:          leadID,
		Description: "site visit requested",
		RoleType:    repository.RoleBuyer,
	}
	store.keywordRules = []repository.KeywordRule{
		keywordRule("site visit", "Visit", repository.RoleBuyer, 15, time.Now()),
	}
	store.insertLogErr = errors.New("log table unavailable")

	result, err := newTestService(store).ScanKeywords(context.Background(), leadID)
	if err != nil {
		t.Fatalf("expected scan to commit despite log failure, got %v", err)
	}
	if result.IntentIndex != 15 {
		t.Fatalf("expected intentIndex 15, got %d", result.IntentIndex)
	}
	if store.leads[leadID].IntentIndex != 15 {
		t.Fatalf("expected persisted index 15, got %d", store.leads[leadID].IntentIndex)
	}
}
