package http

import (
	"net/http"

	"fintrack/internal/storage"
)

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	start, err := parseDate(q.Get("start"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	end, err := parseDate(q.Get("end"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	offset, err := parseIntParam(r, "offset", 0)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	limit, err := parseIntParam(r, "limit", 100)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	f := storage.TransactionFilter{
		Category: q.Get("category"),
		Account:  q.Get("account"),
		Start:    start,
		End:      end,
		Offset:   offset,
		Limit:    limit,
	}
	if raw := q.Get("type"); raw != "" {
		typ, err := parseTypeParam(r)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		f.Type = typ
	}

	transactions, err := s.ledger.ListTransactions(r.Context(), f)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionResponses(transactions))
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var payload transactionPayload
	if err := decodeBody(r, &payload); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	t, err := payload.toDomain()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	created, err := s.ledger.CreateTransaction(r.Context(), t)
	if err != nil {
		writeError(w, err)
		return
	}
	s.invalidateReports()
	writeJSON(w, http.StatusCreated, toTransactionResponse(created))
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	t, err := s.ledger.GetTransaction(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionResponse(t))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	var payload transactionPayload
	if err := decodeBody(r, &payload); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	t, err := payload.toDomain()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	t.ID = id

	updated, err := s.ledger.UpdateTransaction(r.Context(), t)
	if err != nil {
		writeError(w, err)
		return
	}
	s.invalidateReports()
	writeJSON(w, http.StatusOK, toTransactionResponse(updated))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if err := s.ledger.DeleteTransaction(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	s.invalidateReports()
	w.WriteHeader(http.StatusNoContent)
}
