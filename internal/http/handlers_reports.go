package http

import (
	"encoding/json"
	"net/http"
	"time"

	"fintrack/internal/core"
)

// serveCached renders fn's result as JSON, memoizing the encoded payload by
// request URI until the next write or TTL expiry.
func (s *Server) serveCached(w http.ResponseWriter, r *http.Request, fn func() (any, error)) {
	key := r.URL.RequestURI()
	if body, ok := s.reportCache.Get(key); ok {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
		return
	}

	v, err := fn()
	if err != nil {
		writeError(w, err)
		return
	}
	body, err := json.Marshal(v)
	if err != nil {
		writeError(w, err)
		return
	}
	s.reportCache.Set(key, body)

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(body)
}

func (s *Server) handleBalances(w http.ResponseWriter, r *http.Request) {
	s.serveCached(w, r, func() (any, error) {
		return s.balances.Balances(r.Context())
	})
}

func (s *Server) handleByCategory(w http.ResponseWriter, r *http.Request) {
	start, err := parseDate(r.URL.Query().Get("start"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	end, err := parseDate(r.URL.Query().Get("end"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	typ, err := parseTypeParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	s.serveCached(w, r, func() (any, error) {
		totals, err := s.agg.ByCategory(r.Context(), start, end, typ)
		if err != nil {
			return nil, err
		}
		out := make([]categoryTotalResponse, len(totals))
		for i, ct := range totals {
			out[i] = categoryTotalResponse{Category: ct.Category, Total: ct.Total}
		}
		return out, nil
	})
}

func (s *Server) handleByMonth(w http.ResponseWriter, r *http.Request) {
	start, err := parseDate(r.URL.Query().Get("start"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	end, err := parseDate(r.URL.Query().Get("end"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	typ, err := parseTypeParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	s.serveCached(w, r, func() (any, error) {
		totals, err := s.agg.ByMonth(r.Context(), start, end, typ)
		if err != nil {
			return nil, err
		}
		out := make([]monthTotalResponse, len(totals))
		for i, mt := range totals {
			out[i] = monthTotalResponse{Month: mt.Month, Total: mt.Total}
		}
		return out, nil
	})
}

// handleMonthSummary is the month-to-date expense breakdown the dashboard
// polls.
func (s *Server) handleMonthSummary(w http.ResponseWriter, r *http.Request) {
	s.serveCached(w, r, func() (any, error) {
		totals, err := s.agg.MonthToDateByCategory(r.Context(), time.Now().UTC(), core.Expense)
		if err != nil {
			return nil, err
		}
		out := make([]categoryTotalResponse, len(totals))
		for i, ct := range totals {
			out[i] = categoryTotalResponse{Category: ct.Category, Total: ct.Total}
		}
		return out, nil
	})
}

func (s *Server) handleBudgetStatus(w http.ResponseWriter, r *http.Request) {
	statuses, err := s.budgets.Status(r.Context(), time.Now().UTC())
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]budgetStatusResponse, len(statuses))
	for i, st := range statuses {
		out[i] = budgetStatusResponse{
			Category:   st.Category,
			Limit:      st.Limit,
			Spent:      st.Spent,
			Remaining:  st.Remaining,
			OverBudget: st.OverBudget,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleNetWorthHistory(w http.ResponseWriter, r *http.Request) {
	start, err := parseDate(r.URL.Query().Get("start"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	end, err := parseDate(r.URL.Query().Get("end"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	points, err := s.snapshots.History(r.Context(), start, end)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]netWorthPointResponse, len(points))
	for i, p := range points {
		out[i] = netWorthPointResponse{Day: core.DayKey(p.Day), Value: p.Value}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleRecordSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := s.snapshots.RecordSnapshot(r.Context(), time.Now().UTC())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, netWorthPointResponse{Day: core.DayKey(snap.Day), Value: snap.Value})
}
