package http

import (
	"net/http"
	"time"
)

func (s *Server) handleListRecurring(w http.ResponseWriter, r *http.Request) {
	rules, err := s.ledger.ListRecurring(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]recurringResponse, len(rules))
	for i, rt := range rules {
		out[i] = toRecurringResponse(rt)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateRecurring(w http.ResponseWriter, r *http.Request) {
	var payload recurringPayload
	if err := decodeBody(r, &payload); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	created, err := s.ledger.CreateRecurring(r.Context(), payload.toDomain())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toRecurringResponse(created))
}

func (s *Server) handleUpdateRecurring(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	var payload recurringPayload
	if err := decodeBody(r, &payload); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	rt := payload.toDomain()
	rt.ID = id

	updated, err := s.ledger.UpdateRecurring(r.Context(), rt)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRecurringResponse(updated))
}

func (s *Server) handleDeleteRecurring(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if err := s.ledger.DeleteRecurring(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleProcessRecurring triggers rule materialization for today. The same
// operation runs at startup and from the worker; this endpoint exists for
// manual runs.
func (s *Server) handleProcessRecurring(w http.ResponseWriter, r *http.Request) {
	created, err := s.recurring.Process(r.Context(), time.Now().UTC())
	if err != nil {
		writeError(w, err)
		return
	}
	if created > 0 {
		s.invalidateReports()
	}
	writeJSON(w, http.StatusOK, map[string]int{"created": created})
}
