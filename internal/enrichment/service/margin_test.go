package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"estate_portal_backend/internal/enrichment/repository"
)

func float64Ptr(v float64) *float64 { return &v }

func detect(t *testing.T, store *stubStore, dealID uuid.UUID) bool {
	t.Helper()
	open, err := newTestService(store).DetectMarginOpportunity(context.Background(), dealID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return open
}

func TestDetectMarginOldDealOpensWindow(t *testing.T) {
	store := newStubStore()
	dealID := uuid.New()
	store.deals[dealID] = repository.Deal{
		ID:        dealID,
		CreatedAt: time.Now().AddDate(0, 0, -40),
	}

	if !detect(t, store, dealID) {
		t.Fatal("expected 40 day old deal to open the window")
	}
	if !store.deals[dealID].NegotiationWindow {
		t.Fatal("expected persisted negotiationWindow=true")
	}
}

func TestDetectMarginNarrowPriceGapOpensWindow(t *testing.T) {
	store := newStubStore()
	dealID := uuid.New()
	store.deals[dealID] = repository.Deal{
		ID:         dealID,
		QuotePrice: float64Ptr(1000000),
		Price:      float64Ptr(950000),
		CreatedAt:  time.Now().AddDate(0, 0, -5),
	}

	// gap ~5.3%, under the 12% threshold
	if !detect(t, store, dealID) {
		t.Fatal("expected narrow price gap to open the window")
	}
}

func TestDetectMarginWidePriceGapKeepsWindowClosed(t *testing.T) {
	store := newStubStore()
	dealID := uuid.New()
	store.deals[dealID] = repository.Deal{
		ID:         dealID,
		QuotePrice: float64Ptr(1000000),
		Price:      float64Ptr(800000),
		CreatedAt:  time.Now().AddDate(0, 0, -5),
	}

	if detect(t, store, dealID) {
		t.Fatal("expected 25% gap to keep the window closed")
	}
}

func TestDetectMarginFreshStandardDealStaysClosed(t *testing.T) {
	store := newStubStore()
	dealID := uuid.New()
	remarks := "standard inquiry"
	store.deals[dealID] = repository.Deal{
		ID:        dealID,
		Remarks:   &remarks,
		CreatedAt: time.Now().AddDate(0, 0, -5),
	}

	if detect(t, store, dealID) {
		t.Fatal("expected fresh standard deal to keep the window closed")
	}
	if store.deals[dealID].NegotiationWindow {
		t.Fatal("expected persisted negotiationWindow=false")
	}
}

func TestDetectMarginUrgentRemarksOpenWindow(t *testing.T) {
	store := newStubStore()
	dealID := uuid.New()
	remarks := "Owner needs an URGENT sale"
	store.deals[dealID] = repository.Deal{
		ID:        dealID,
		Remarks:   &remarks,
		CreatedAt: time.Now().AddDate(0, 0, -2),
	}

	if !detect(t, store, dealID) {
		t.Fatal("expected urgent remarks to open the window")
	}
}

func TestDetectMarginZeroPriceSkipsGapCheck(t *testing.T) {
	store := newStubStore()
	dealID := uuid.New()
	store.deals[dealID] = repository.Deal{
		ID:         dealID,
		QuotePrice: float64Ptr(100000),
		Price:      float64Ptr(0),
		CreatedAt:  time.Now().AddDate(0, 0, -2),
	}

	if detect(t, store, dealID) {
		t.Fatal("expected zero price to skip the gap check")
	}
}

func TestDetectMarginRuleOverridesThresholds(t *testing.T) {
	store := newStubStore()
	dealID := uuid.New()
	store.deals[dealID] = repository.Deal{
		ID:        dealID,
		CreatedAt: time.Now().AddDate(0, 0, -15),
	}
	config, _ := json.Marshal(map[string]any{"maxAgeDays": 10})
	store.rules[repository.RuleTypeMargin] = []repository.Rule{
		{ID: uuid.New(), Type: repository.RuleTypeMargin, Name: "fast market", Config: config, IsActive: true, CreatedAt: time.Now()},
	}

	if !detect(t, store, dealID) {
		t.Fatal("expected lowered age threshold to open the window")
	}
}

func TestDetectMarginInvalidRuleConfigFallsBack(t *testing.T) {
	store := newStubStore()
	dealID := uuid.New()
	store.deals[dealID] = repository.Deal{
		ID:        dealID,
		CreatedAt: time.Now().AddDate(0, 0, -15),
	}
	store.rules[repository.RuleTypeMargin] = []repository.Rule{
		{ID: uuid.New(), Type: repository.RuleTypeMargin, Name: "broken", Config: json.RawMessage(`{"maxAgeDays": "soon"}`), IsActive: true, CreatedAt: time.Now()},
	}

	if detect(t, store, dealID) {
		t.Fatal("expected default 30 day threshold after config fallback")
	}
}

func TestDetectMarginMissingDeal(t *testing.T) {
	store := newStubStore()
	_, err := newTestService(store).DetectMarginOpportunity(context.Background(), uuid.New())
	if !errors.Is(err, repository.ErrDealNotFound) {
		t.Fatalf("expected ErrDealNotFound, got %v", err)
	}
}
