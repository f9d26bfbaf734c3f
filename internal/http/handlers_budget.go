package http

import (
	"net/http"

	"fintrack/internal/core"
)

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	budgets, err := s.ledger.ListBudgets(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]budgetResponse, len(budgets))
	for i, b := range budgets {
		out[i] = budgetResponse{ID: b.ID, Category: b.Category, Limit: b.Limit}
	}
	writeJSON(w, http.StatusOK, out)
}

// handleUpsertBudget creates the budget or replaces the limit when the
// category already has one.
func (s *Server) handleUpsertBudget(w http.ResponseWriter, r *http.Request) {
	var payload budgetPayload
	if err := decodeBody(r, &payload); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	b, err := s.ledger.UpsertBudget(r.Context(), core.Budget{Category: payload.Category, Limit: payload.Limit})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, budgetResponse{ID: b.ID, Category: b.Category, Limit: b.Limit})
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if err := s.ledger.DeleteBudget(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
