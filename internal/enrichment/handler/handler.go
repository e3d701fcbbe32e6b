package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"estate_portal_backend/internal/enrichment/repository"
	"estate_portal_backend/internal/enrichment/service"
	"estate_portal_backend/internal/enrichment/transport"
	"estate_portal_backend/platform/apperr"
	"estate_portal_backend/platform/httpkit"
	"estate_portal_backend/platform/validator"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	defaultLogLimit     = 50
)

type Handler struct {
	svc *service.Service
	val *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterLeadRoutes mounts the per-lead pipeline triggers.
func (h *Handler) RegisterLeadRoutes(rg *gin.RouterGroup) {
	rg.POST("/:id/enrichment/run", h.Run)
	rg.POST("/:id/enrichment/scan", h.Scan)
	rg.POST("/:id/enrichment/score", h.Score)
	rg.POST("/:id/enrichment/classify", h.Classify)
}

// RegisterDealRoutes mounts the per-deal margin trigger.
func (h *Handler) RegisterDealRoutes(rg *gin.RouterGroup) {
	rg.POST("/:id/margin-check", h.MarginCheck)
}

// RegisterEnrichmentRoutes mounts the log and rule read endpoints.
func (h *Handler) RegisterEnrichmentRoutes(rg *gin.RouterGroup) {
	rg.GET("/logs", h.ListLogs)
	rg.GET("/rules/keyword", h.ListKeywordRules)
	rg.GET("/rules", h.ListRules)
}

// Run triggers the full pipeline synchronously. A stage failure surfaces as
// 500 with the failed stage named; earlier stages' writes remain committed.
func (h *Handler) Run(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	result := h.svc.RunFullEnrichment(c.Request.Context(), id)
	if result.FailedStage != "" {
		if errors.Is(result.Err, repository.ErrLeadNotFound) {
			httpkit.Error(c, http.StatusNotFound, result.Err.Error(), nil)
			return
		}
		httpkit.JSON(c, http.StatusInternalServerError, transport.FromRunResult(result))
		return
	}

	httpkit.OK(c, transport.FromRunResult(result))
}

func (h *Handler) Scan(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	result, err := h.svc.ScanKeywords(c.Request.Context(), id)
	if err != nil {
		respondStageError(c, err)
		return
	}
	httpkit.OK(c, transport.FromScanResult(result))
}

func (h *Handler) Score(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	score, err := h.svc.CalculateIntentIndex(c.Request.Context(), id)
	if err != nil {
		respondStageError(c, err)
		return
	}
	httpkit.OK(c, transport.ScoreResponse{LeadID: id, IntentIndex: score})
}

func (h *Handler) Classify(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	label, err := h.svc.ClassifyLead(c.Request.Context(), id)
	if err != nil {
		respondStageError(c, err)
		return
	}
	httpkit.OK(c, transport.ClassifyResponse{LeadID: id, Classification: label})
}

func (h *Handler) MarginCheck(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	open, err := h.svc.DetectMarginOpportunity(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrDealNotFound) {
			httpkit.Error(c, http.StatusNotFound, err.Error(), nil)
			return
		}
		httpkit.Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	httpkit.OK(c, transport.MarginCheckResponse{DealID: id, NegotiationWindow: open})
}

func (h *Handler) ListLogs(c *gin.Context) {
	var query transport.ListLogsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(query); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	var filter repository.LogFilter
	if query.LeadID != "" {
		leadID, err := uuid.Parse(query.LeadID)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
			return
		}
		filter.LeadID = &leadID
	}

	limit := defaultLogLimit
	if query.Limit > 0 {
		limit = query.Limit
	}

	entries, err := h.svc.ListLogs(c.Request.Context(), filter, limit)
	if err != nil {
		httpkit.Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	httpkit.OK(c, transport.FromLogEntries(entries))
}

func (h *Handler) ListKeywordRules(c *gin.Context) {
	rules, err := h.svc.ListKeywordRules(c.Request.Context())
	if err != nil {
		httpkit.Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	httpkit.OK(c, transport.FromKeywordRules(rules))
}

func (h *Handler) ListRules(c *gin.Context) {
	ruleType := repository.RuleType(c.Query("type"))
	switch ruleType {
	case repository.RuleTypeKeyword, repository.RuleTypeFormula,
		repository.RuleTypeClassification, repository.RuleTypeMargin:
	default:
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, "unknown rule type")
		return
	}

	rules, err := h.svc.ListRules(c.Request.Context(), ruleType)
	if err != nil {
		httpkit.Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	httpkit.OK(c, transport.FromRules(rules))
}

func respondStageError(c *gin.Context, err error) {
	if errors.Is(err, repository.ErrLeadNotFound) {
		httpkit.Error(c, http.StatusNotFound, err.Error(), nil)
		return
	}
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		httpkit.Error(c, appErr.HTTPStatus(), appErr.Error(), nil)
		return
	}
	httpkit.Error(c, http.StatusInternalServerError, err.Error(), nil)
}
