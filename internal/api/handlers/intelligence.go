package handlers

import (
	"net/http"

	"github.com/wonny/billflow/backend/internal/intelligence"
	"github.com/wonny/billflow/backend/internal/scenario"
	"github.com/wonny/billflow/backend/pkg/logger"
)

// IntelligenceHandler handles risk, churn, scenario, comparison and refresh endpoints
// ⭐ SSOT: /api/intelligence 핸들러는 이 구조체에서만
type IntelligenceHandler struct {
	service *intelligence.Service
	logger  *logger.Logger
}

// NewIntelligenceHandler creates a new intelligence handler
func NewIntelligenceHandler(svc *intelligence.Service, log *logger.Logger) *IntelligenceHandler {
	return &IntelligenceHandler{
		service: svc,
		logger:  log,
	}
}

// GetRisk returns the portfolio risk analysis
// GET /api/intelligence/risk
func (h *IntelligenceHandler) GetRisk(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.service.RiskAnalysis())
}

// GetContractRisk returns one contract's risk score
// GET /api/intelligence/risk/{id}
func (h *IntelligenceHandler) GetContractRisk(w http.ResponseWriter, r *http.Request) {
	id, err := contractID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	score, err := h.service.ContractRisk(id)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, score)
}

// GetChurn returns churn predictions for the portfolio
// GET /api/intelligence/churn
func (h *IntelligenceHandler) GetChurn(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.service.ChurnAnalysis())
}

// GetContractChurn returns one contract's churn prediction
// GET /api/intelligence/churn/{id}
func (h *IntelligenceHandler) GetContractChurn(w http.ResponseWriter, r *http.Request) {
	id, err := contractID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	prediction, err := h.service.ContractChurn(id)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, prediction)
}

// SimulateRequest represents a what-if scenario request
type SimulateRequest struct {
	ScenarioType string          `json:"scenario_type"`
	Params       scenario.Params `json:"params"`
}

// Simulate runs a named scenario
// POST /api/intelligence/simulate
func (h *IntelligenceHandler) Simulate(w http.ResponseWriter, r *http.Request) {
	var req SimulateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.service.Simulate(req.ScenarioType, req.Params)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// CompareRequest represents a contract comparison request
type CompareRequest struct {
	ContractIDA *int `json:"contract_id_a"`
	ContractIDB *int `json:"contract_id_b"`
}

// Compare diffs two contracts
// POST /api/intelligence/compare
func (h *IntelligenceHandler) Compare(w http.ResponseWriter, r *http.Request) {
	var req CompareRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.ContractIDA == nil || req.ContractIDB == nil {
		respondError(w, http.StatusBadRequest, "contract_id_a and contract_id_b are required")
		return
	}

	result, err := h.service.Compare(*req.ContractIDA, *req.ContractIDB)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetBenchmarks returns portfolio benchmarks
// GET /api/intelligence/benchmarks
func (h *IntelligenceHandler) GetBenchmarks(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.service.Benchmarks())
}

// Refresh reloads contracts and recomputes benchmarks
// POST /api/intelligence/refresh
func (h *IntelligenceHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Refresh(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to refresh contracts")
		respondError(w, http.StatusInternalServerError, "Failed to refresh contracts")
		return
	}

	respondJSON(w, http.StatusOK, result)
}
