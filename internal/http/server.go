// Package http wires the core services to a JSON API. It is plumbing: every
// handler parses, delegates to internal/services, and renders.
package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"fintrack/internal/cache"
	"fintrack/internal/middleware/trace"
	"fintrack/internal/services"
)

type Server struct {
	ledger    *services.Ledger
	balances  *services.BalanceCalculator
	agg       *services.Aggregator
	snapshots *services.Snapshotter
	recurring *services.RecurringProcessor
	budgets   *services.BudgetEvaluator

	// reportCache holds rendered report payloads keyed by request URI. Any
	// ledger write clears it wholesale.
	reportCache *cache.LRUCache[[]byte]
}

// Deps carries the service set the server exposes.
type Deps struct {
	Ledger    *services.Ledger
	Balances  *services.BalanceCalculator
	Agg       *services.Aggregator
	Snapshots *services.Snapshotter
	Recurring *services.RecurringProcessor
	Budgets   *services.BudgetEvaluator
}

// NewServer builds the HTTP server with routing, CORS and trace middleware
// and conservative timeouts.
func NewServer(addr string, deps Deps, corsOrigins []string) *http.Server {
	s := &Server{
		ledger:      deps.Ledger,
		balances:    deps.Balances,
		agg:         deps.Agg,
		snapshots:   deps.Snapshots,
		recurring:   deps.Recurring,
		budgets:     deps.Budgets,
		reportCache: cache.NewLRUCache[[]byte](64, 30*time.Second),
	}

	r := chi.NewRouter()
	r.Use(trace.Middleware)
	r.Use(corsMiddleware(corsOrigins))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", s.handleListTransactions)
			r.Post("/", s.handleCreateTransaction)
			r.Get("/{id}", s.handleGetTransaction)
			r.Put("/{id}", s.handleUpdateTransaction)
			r.Delete("/{id}", s.handleDeleteTransaction)
		})

		r.Route("/accounts", func(r chi.Router) {
			r.Get("/", s.handleListAccounts)
			r.Post("/", s.handleCreateAccount)
			r.Delete("/{id}", s.handleDeleteAccount)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", s.handleListCategories)
			r.Post("/", s.handleCreateCategory)
			r.Delete("/{id}", s.handleDeleteCategory)
		})

		r.Route("/recurring", func(r chi.Router) {
			r.Get("/", s.handleListRecurring)
			r.Post("/", s.handleCreateRecurring)
			r.Put("/{id}", s.handleUpdateRecurring)
			r.Delete("/{id}", s.handleDeleteRecurring)
			r.Post("/process", s.handleProcessRecurring)
		})

		r.Route("/budgets", func(r chi.Router) {
			r.Get("/", s.handleListBudgets)
			r.Post("/", s.handleUpsertBudget)
			r.Delete("/{id}", s.handleDeleteBudget)
			r.Get("/status", s.handleBudgetStatus)
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/balances", s.handleBalances)
			r.Get("/by-category", s.handleByCategory)
			r.Get("/by-month", s.handleByMonth)
			r.Get("/summary", s.handleMonthSummary)
		})

		r.Route("/networth", func(r chi.Router) {
			r.Get("/history", s.handleNetWorthHistory)
			r.Post("/snapshot", s.handleRecordSnapshot)
		})
	})

	return &http.Server{
		Addr:           addr,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 16, // 64KB
	}
}

// invalidateReports drops cached report payloads after any write.
func (s *Server) invalidateReports() {
	s.reportCache.Clear()
}
