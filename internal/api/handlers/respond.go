// Package handlers adapts the intelligence service to HTTP.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/wonny/billflow/backend/internal/intelligence"
	"github.com/wonny/billflow/backend/internal/scenario"
	"github.com/wonny/billflow/backend/pkg/logger"
)

// maxBodyBytes 요청 body 상한
const maxBodyBytes = 1 << 20

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// respondServiceError maps the service error taxonomy onto status codes
// ⭐ SSOT: 에러 -> HTTP 상태 매핑은 여기서만
func respondServiceError(w http.ResponseWriter, log *logger.Logger, err error) {
	switch {
	case errors.Is(err, intelligence.ErrContractNotFound),
		errors.Is(err, intelligence.ErrActionNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, scenario.ErrUnknownScenario),
		errors.Is(err, scenario.ErrInvalidParams):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		log.WithError(err).Error("Request failed")
		respondError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// decodeJSON reads a JSON body into dest; numbers stay float64 for scenario params
func decodeJSON(r *http.Request, dest interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// contractID parses the {id} path variable
func contractID(r *http.Request) (int, error) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid contract id: %q", raw)
	}
	return id, nil
}
