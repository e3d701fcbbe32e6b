// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"estate_portal_backend/platform/events"
	"estate_portal_backend/platform/logger"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// NewInMemoryBus creates a new in-memory event bus.
// This is a convenience re-export from platform/events.
func NewInMemoryBus(log *logger.Logger) *events.InMemoryBus {
	return events.NewInMemoryBus(log)
}

// =============================================================================
// Lead Domain Events
// =============================================================================

// LeadCreated is published by the lead-intake collaborator when a new lead
// is stored. The enrichment module reacts with a detached pipeline run.
type LeadCreated struct {
	BaseEvent
	LeadID uuid.UUID `json:"leadId"`
	Source string    `json:"source,omitempty"`
}

func (e LeadCreated) EventName() string { return "leads.created" }

// LeadFormSubmitted is published when a public enquiry form creates or
// updates a lead.
type LeadFormSubmitted struct {
	BaseEvent
	LeadID uuid.UUID `json:"leadId"`
	FormID string    `json:"formId,omitempty"`
}

func (e LeadFormSubmitted) EventName() string { return "leads.form.submitted" }

// LeadSignalsChanged is published when lead text or interaction records
// change in a way that can affect enrichment output.
type LeadSignalsChanged struct {
	BaseEvent
	LeadID uuid.UUID `json:"leadId"`
	Source string    `json:"source"` // "description", "note", "interaction"
}

func (e LeadSignalsChanged) EventName() string { return "leads.signals.changed" }

// =============================================================================
// Deal Domain Events
// =============================================================================

// DealUpdated is published when a deal's price fields or remarks change.
// The enrichment module reacts with a margin check.
type DealUpdated struct {
	BaseEvent
	DealID uuid.UUID `json:"dealId"`
}

func (e DealUpdated) EventName() string { return "deals.updated" }
