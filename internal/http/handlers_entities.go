package http

import (
	"net/http"

	"fintrack/internal/core"
)

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.ledger.ListAccounts(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]accountResponse, len(accounts))
	for i, a := range accounts {
		out[i] = accountResponse{ID: a.ID, Name: a.Name}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	created, err := s.ledger.CreateAccount(r.Context(), core.Account{Name: req.Name})
	if err != nil {
		writeError(w, err)
		return
	}
	// New accounts appear in the balances report with a zero balance
	s.invalidateReports()
	writeJSON(w, http.StatusCreated, accountResponse{ID: created.ID, Name: created.Name})
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if err := s.ledger.DeleteAccount(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	s.invalidateReports()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.ledger.ListCategories(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]categoryResponse, len(categories))
	for i, c := range categories {
		out[i] = categoryResponse{ID: c.ID, Name: c.Name, Type: c.Type}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string               `json:"name"`
		Type core.TransactionType `json:"type"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	created, err := s.ledger.CreateCategory(r.Context(), core.Category{Name: req.Name, Type: req.Type})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, categoryResponse{ID: created.ID, Name: created.Name, Type: created.Type})
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if err := s.ledger.DeleteCategory(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
