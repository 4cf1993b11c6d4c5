package handlers

import (
	"net/http"
	"strings"

	"github.com/wonny/billflow/backend/internal/intelligence"
	"github.com/wonny/billflow/backend/pkg/logger"
)

// RevenueHandler handles the revenue intelligence endpoints
// ⭐ SSOT: /api/revenue 핸들러는 이 구조체에서만
type RevenueHandler struct {
	service *intelligence.Service
	logger  *logger.Logger
}

// NewRevenueHandler creates a new revenue handler
func NewRevenueHandler(svc *intelligence.Service, log *logger.Logger) *RevenueHandler {
	return &RevenueHandler{
		service: svc,
		logger:  log,
	}
}

// GetCommandCenter returns the revenue dashboard bundle
// GET /api/revenue/command-center
func (h *RevenueHandler) GetCommandCenter(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.service.CommandCenter())
}

// GetExecutiveSummary returns the headline and top-line numbers
// GET /api/revenue/executive-summary
func (h *RevenueHandler) GetExecutiveSummary(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.service.ExecutiveSummary())
}

// GetLeakage returns the leakage report
// GET /api/revenue/leakage
func (h *RevenueHandler) GetLeakage(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.service.LeakageReport())
}

// GetOpportunities returns the opportunity report
// GET /api/revenue/opportunities
func (h *RevenueHandler) GetOpportunities(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.service.OpportunityReport())
}

// GetSignals returns the signal report
// GET /api/revenue/signals
func (h *RevenueHandler) GetSignals(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.service.SignalReport())
}

// GetActions returns the prioritized action queue
// GET /api/revenue/actions
func (h *RevenueHandler) GetActions(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.service.ActionReport())
}

// GetGenomes returns the portfolio genome report
// GET /api/revenue/genome
func (h *RevenueHandler) GetGenomes(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.service.GenomeReport())
}

// GetContractGenome returns one contract's genome
// GET /api/revenue/genome/{id}
func (h *RevenueHandler) GetContractGenome(w http.ResponseWriter, r *http.Request) {
	id, err := contractID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	g, err := h.service.ContractGenome(id)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, g)
}

// OutreachRequest represents an outreach generation request
type OutreachRequest struct {
	ActionID string `json:"action_id"`
}

// GenerateOutreach drafts an outreach script for a queued action.
// 생성 실패는 200 + "Script generation failed: ..." 스크립트로 응답
// POST /api/revenue/generate-outreach
func (h *RevenueHandler) GenerateOutreach(w http.ResponseWriter, r *http.Request) {
	var req OutreachRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.ActionID = strings.TrimSpace(req.ActionID)
	if req.ActionID == "" {
		respondError(w, http.StatusBadRequest, "action_id is required")
		return
	}

	result, err := h.service.GenerateOutreach(r.Context(), req.ActionID)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}
