// Package enrichment provides the prospect enrichment and scoring bounded
// context module: keyword scanning, intent index calculation, classification,
// margin detection and the audit log.
package enrichment

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"estate_portal_backend/internal/enrichment/handler"
	"estate_portal_backend/internal/enrichment/repository"
	"estate_portal_backend/internal/enrichment/service"
	"estate_portal_backend/internal/events"
	apphttp "estate_portal_backend/internal/http"
	"estate_portal_backend/platform/config"
	"estate_portal_backend/platform/logger"
	"estate_portal_backend/platform/validator"
)

// Module is the enrichment bounded context module implementing http.Module.
type Module struct {
	handler    *handler.Handler
	svc        *service.Service
	dispatcher Dispatcher
	log        *logger.Logger
}

// NewModule wires the enrichment module and subscribes it to the lead and
// deal events that trigger background runs.
func NewModule(pool *pgxpool.Pool, eventBus events.Bus, dispatcher Dispatcher, val *validator.Validator, cfg config.EnrichmentConfig, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, log)
	if dispatcher == nil {
		dispatcher = NewLocalDispatcher(svc, log, int64(cfg.GetEnrichmentMaxInflight()))
	}

	m := &Module{
		handler:    handler.New(svc, val),
		svc:        svc,
		dispatcher: dispatcher,
		log:        log,
	}
	m.subscribe(eventBus)
	return m
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "enrichment"
}

// Service returns the pipeline service for external use (worker, backfill).
func (m *Module) Service() *service.Service {
	return m.svc
}

// RegisterRoutes mounts enrichment routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterLeadRoutes(ctx.Protected.Group("/leads"))
	m.handler.RegisterDealRoutes(ctx.Protected.Group("/deals"))
	m.handler.RegisterEnrichmentRoutes(ctx.Protected.Group("/enrichment"))
}

func (m *Module) subscribe(eventBus events.Bus) {
	leadHandler := func(leadID uuid.UUID) {
		if err := m.dispatcher.DispatchLeadEnrichment(context.Background(), leadID); err != nil {
			m.log.Error("enrichment_dispatch_failed", "lead_id", leadID.String(), "error", err.Error())
		}
	}

	eventBus.Subscribe(events.LeadCreated{}.EventName(), events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		if e, ok := event.(events.LeadCreated); ok {
			leadHandler(e.LeadID)
		}
		return nil
	}))
	eventBus.Subscribe(events.LeadFormSubmitted{}.EventName(), events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		if e, ok := event.(events.LeadFormSubmitted); ok {
			leadHandler(e.LeadID)
		}
		return nil
	}))
	eventBus.Subscribe(events.LeadSignalsChanged{}.EventName(), events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		if e, ok := event.(events.LeadSignalsChanged); ok {
			leadHandler(e.LeadID)
		}
		return nil
	}))
	eventBus.Subscribe(events.DealUpdated{}.EventName(), events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		if e, ok := event.(events.DealUpdated); ok {
			if err := m.dispatcher.DispatchDealMarginCheck(context.Background(), e.DealID); err != nil {
				m.log.Error("margin_dispatch_failed", "deal_id", e.DealID.String(), "error", err.Error())
			}
		}
		return nil
	}))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
