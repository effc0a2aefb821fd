// Package httpapi exposes the engine's operations as a JSON HTTP API with
// bearer-token auth, a server-sent-events contribution stream and Prometheus
// instrumentation.
package httpapi

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/arueda/gestion/internal/auth"
	"github.com/arueda/gestion/internal/service"
)

// Server bundles the services behind the HTTP surface.
type Server struct {
	authenticator *auth.PasswordAuthenticator
	tokens        *auth.JWTManager
	plans         *service.PlanService
	ledger        *service.LedgerService
	settlements   *service.SettlementService
	leave         *service.LeaveService
}

// NewServer wires routes for all exposed operations and returns the root
// handler with logging, CORS and metrics middleware applied.
func NewServer(
	authenticator *auth.PasswordAuthenticator,
	tokens *auth.JWTManager,
	plans *service.PlanService,
	ledger *service.LedgerService,
	settlements *service.SettlementService,
	leave *service.LeaveService,
) http.Handler {
	s := &Server{
		authenticator: authenticator,
		tokens:        tokens,
		plans:         plans,
		ledger:        ledger,
		settlements:   settlements,
		leave:         leave,
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)

	mux.HandleFunc("POST /api/plans", s.requireAuth(s.handleCreatePlan))
	mux.HandleFunc("GET /api/plans", s.requireAuth(s.handleListPlans))
	mux.HandleFunc("GET /api/plans/{planID}", s.requireAuth(s.handleGetPlan))
	mux.HandleFunc("DELETE /api/plans/{planID}", s.requireAuth(s.handleDeletePlan))
	mux.HandleFunc("POST /api/plans/{planID}/members", s.requireAuth(s.handleAddMember))
	mux.HandleFunc("GET /api/plans/{planID}/balances", s.requireAuth(s.handleBalances))

	mux.HandleFunc("POST /api/plans/{planID}/contributions", s.requireAuth(s.handleAddContribution))
	mux.HandleFunc("GET /api/plans/{planID}/contributions", s.requireAuth(s.handleListContributions))
	mux.HandleFunc("GET /api/plans/{planID}/contributions/stream", s.requireAuth(s.handleStreamContributions))
	mux.HandleFunc("PATCH /api/contributions/{recordID}", s.requireAuth(s.handleUpdateContribution))
	mux.HandleFunc("DELETE /api/contributions/{recordID}", s.requireAuth(s.handleDeleteContribution))

	mux.HandleFunc("GET /api/plans/{planID}/settlements", s.requireAuth(s.handleSuggestSettlements))
	mux.HandleFunc("POST /api/plans/{planID}/settlements", s.requireAuth(s.handleSettlePayment))
	mux.HandleFunc("GET /api/plans/{planID}/pending", s.requireAuth(s.handlePendingTransactions))

	mux.HandleFunc("GET /api/plans/{planID}/persons/{personID}/leave", s.requireAuth(s.handlePreviewLeave))
	mux.HandleFunc("POST /api/plans/{planID}/persons/{personID}/leave", s.requireAuth(s.handleLeave))

	return instrument(cors(mux))
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
