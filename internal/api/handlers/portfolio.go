package handlers

import (
	"net/http"

	"github.com/wonny/billflow/backend/internal/intelligence"
	"github.com/wonny/billflow/backend/internal/scenario"
	"github.com/wonny/billflow/backend/pkg/logger"
)

// PortfolioHandler handles contract browsing, metrics and the simple scenario endpoint
type PortfolioHandler struct {
	service *intelligence.Service
	logger  *logger.Logger
}

// NewPortfolioHandler creates a new portfolio handler
func NewPortfolioHandler(svc *intelligence.Service, log *logger.Logger) *PortfolioHandler {
	return &PortfolioHandler{
		service: svc,
		logger:  log,
	}
}

// GetContracts returns lightweight contract metadata
// GET /api/contracts
func (h *PortfolioHandler) GetContracts(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.service.Contracts())
}

// GetMetrics returns portfolio dashboard metrics
// GET /api/metrics
func (h *PortfolioHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.service.Metrics())
}

// ScenarioRequest represents the early-termination scenario request
type ScenarioRequest struct {
	Scenario    string   `json:"scenario"`
	Month       *int     `json:"month"`
	ClientNames []string `json:"client_names"`
}

// RunScenario computes early-termination costs for named clients
// POST /api/scenario
func (h *PortfolioHandler) RunScenario(w http.ResponseWriter, r *http.Request) {
	var req ScenarioRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.Scenario != scenario.TypeEarlyTermination {
		respondError(w, http.StatusBadRequest, "Unsupported scenario type")
		return
	}
	if req.Month == nil {
		respondError(w, http.StatusBadRequest, "month is required")
		return
	}

	params := scenario.Params{
		"month":        *req.Month,
		"client_names": req.ClientNames,
	}
	if req.ClientNames == nil {
		params["client_names"] = []string{}
	}

	result, err := h.service.Simulate(scenario.TypeEarlyTermination, params)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}
