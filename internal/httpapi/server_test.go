package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/arueda/gestion/internal/auth"
	"github.com/arueda/gestion/internal/service"
	"github.com/arueda/gestion/internal/storage/sqlite"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return NewServer(
		auth.NewPasswordAuthenticator(store),
		auth.NewJWTManager("test-secret", time.Hour),
		service.NewPlanService(store, store),
		service.NewLedgerService(store, nil),
		service.NewSettlementService(store, store, nil),
		service.NewLeaveService(store, nil),
	)
}

func doJSON(t *testing.T, handler http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
	return v
}

func registerUser(t *testing.T, handler http.Handler, email, name string) sessionResponse {
	t.Helper()
	rec := doJSON(t, handler, http.MethodPost, "/api/auth/register", "", registerRequest{
		Email:       email,
		DisplayName: name,
		Password:    "correct horse",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register returned %d: %s", rec.Code, rec.Body.String())
	}
	return decodeBody[sessionResponse](t, rec)
}

func TestAuthEndpoints(t *testing.T) {
	handler := newTestServer(t)

	session := registerUser(t, handler, "alice@example.com", "Alice")
	if session.Token == "" || session.User.Email != "alice@example.com" {
		t.Fatalf("unexpected session: %+v", session)
	}

	rec := doJSON(t, handler, http.MethodPost, "/api/auth/register", "", registerRequest{
		Email:       "alice@example.com",
		DisplayName: "Alice Again",
		Password:    "correct horse",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("duplicate register returned %d, want 400", rec.Code)
	}

	rec = doJSON(t, handler, http.MethodPost, "/api/auth/login", "", loginRequest{
		Email:    "alice@example.com",
		Password: "correct horse",
	})
	if rec.Code != http.StatusOK {
		t.Errorf("login returned %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, handler, http.MethodPost, "/api/auth/login", "", loginRequest{
		Email:    "alice@example.com",
		Password: "wrong",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bad login returned %d, want 401", rec.Code)
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/plans", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated request returned %d, want 401", rec.Code)
	}
}

func TestPlanLifecycle(t *testing.T) {
	handler := newTestServer(t)
	alice := registerUser(t, handler, "alice@example.com", "Alice")

	rec := doJSON(t, handler, http.MethodPost, "/api/plans", alice.Token, createPlanRequest{Title: "House"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create plan returned %d: %s", rec.Code, rec.Body.String())
	}
	plan := decodeBody[planView](t, rec)

	rec = doJSON(t, handler, http.MethodPost, "/api/plans/"+plan.ID+"/members", alice.Token,
		addMemberRequest{DisplayName: "Bob"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("add member returned %d: %s", rec.Code, rec.Body.String())
	}
	bob := decodeBody[personView](t, rec)

	rec = doJSON(t, handler, http.MethodGet, "/api/plans/"+plan.ID, alice.Token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get plan returned %d", rec.Code)
	}
	detail := decodeBody[planDetailResponse](t, rec)
	if len(detail.Persons) != 2 {
		t.Errorf("expected 2 persons, got %d", len(detail.Persons))
	}

	// Only members see a plan.
	mallory := registerUser(t, handler, "mallory@example.com", "Mallory")
	rec = doJSON(t, handler, http.MethodGet, "/api/plans/"+plan.ID, mallory.Token, nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("non-member get plan returned %d, want 403", rec.Code)
	}

	// Record a contribution by Bob and check the derived balances.
	rec = doJSON(t, handler, http.MethodPost, "/api/plans/"+plan.ID+"/contributions", alice.Token,
		addContributionRequest{PayerID: bob.ID, Amount: 100, Description: "groceries"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("add contribution returned %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/plans/"+plan.ID+"/balances", alice.Token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("balances returned %d", rec.Code)
	}
	balances := decodeBody[[]balanceView](t, rec)
	if len(balances) != 2 {
		t.Fatalf("expected 2 balances, got %d", len(balances))
	}
	for _, b := range balances {
		want := 50.0
		if b.PersonID == bob.ID {
			want = -50.0
		}
		if b.Balance != want {
			t.Errorf("balance for %s = %v, want %v", b.DisplayName, b.Balance, want)
		}
	}

	// The advisory settlement should point Alice's person at Bob.
	rec = doJSON(t, handler, http.MethodGet, "/api/plans/"+plan.ID+"/settlements", alice.Token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("suggest returned %d", rec.Code)
	}
	payments := decodeBody[[]paymentView](t, rec)
	if len(payments) != 1 || payments[0].ToID != bob.ID || payments[0].Amount != 50 {
		t.Fatalf("unexpected suggestion: %+v", payments)
	}

	// Settle it: Bob is unregistered, so a pending transaction is parked.
	rec = doJSON(t, handler, http.MethodPost, "/api/plans/"+plan.ID+"/settlements", alice.Token,
		settleRequest{FromID: payments[0].FromID, ToID: bob.ID, Amount: 50})
	if rec.Code != http.StatusCreated {
		t.Fatalf("settle returned %d: %s", rec.Code, rec.Body.String())
	}
	settled := decodeBody[settleResponse](t, rec)
	if settled.Pending == nil || settled.MirrorRecord != nil {
		t.Errorf("expected pending-only settlement, got %+v", settled)
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/plans/"+plan.ID+"/pending", alice.Token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("pending returned %d", rec.Code)
	}
	if pendings := decodeBody[[]pendingView](t, rec); len(pendings) != 1 {
		t.Errorf("expected 1 pending transaction, got %d", len(pendings))
	}
}

func TestLeaveEndpoint(t *testing.T) {
	handler := newTestServer(t)
	alice := registerUser(t, handler, "alice@example.com", "Alice")

	rec := doJSON(t, handler, http.MethodPost, "/api/plans", alice.Token, createPlanRequest{Title: "Trip"})
	plan := decodeBody[planView](t, rec)
	rec = doJSON(t, handler, http.MethodPost, "/api/plans/"+plan.ID+"/members", alice.Token,
		addMemberRequest{DisplayName: "Bob"})
	bob := decodeBody[personView](t, rec)

	rec = doJSON(t, handler, http.MethodPost, "/api/plans/"+plan.ID+"/contributions", alice.Token,
		addContributionRequest{PayerID: bob.ID, Amount: 80})
	if rec.Code != http.StatusCreated {
		t.Fatalf("add contribution returned %d", rec.Code)
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/plans/"+plan.ID+"/persons/"+bob.ID+"/leave", alice.Token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("leave preview returned %d: %s", rec.Code, rec.Body.String())
	}
	preview := decodeBody[leavePreviewResponse](t, rec)
	if preview.State != "confirm" || preview.Total != 80 || len(preview.Candidates) != 1 {
		t.Fatalf("unexpected preview: %+v", preview)
	}

	rec = doJSON(t, handler, http.MethodPost, "/api/plans/"+plan.ID+"/persons/"+bob.ID+"/leave", alice.Token,
		leaveRequest{Action: "transfer", DestinationID: preview.Candidates[0].ID})
	if rec.Code != http.StatusOK {
		t.Fatalf("leave returned %d: %s", rec.Code, rec.Body.String())
	}
	done := decodeBody[leavePreviewResponse](t, rec)
	if done.State != "done" {
		t.Errorf("state = %s, want done", done.State)
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/plans/"+plan.ID, alice.Token, nil)
	detail := decodeBody[planDetailResponse](t, rec)
	if len(detail.Persons) != 1 {
		t.Errorf("expected 1 person after leave, got %d", len(detail.Persons))
	}
}

func TestLeavePreviewIsReadOnly(t *testing.T) {
	handler := newTestServer(t)
	alice := registerUser(t, handler, "alice@example.com", "Alice")

	rec := doJSON(t, handler, http.MethodPost, "/api/plans", alice.Token, createPlanRequest{Title: "Trip"})
	plan := decodeBody[planView](t, rec)
	rec = doJSON(t, handler, http.MethodPost, "/api/plans/"+plan.ID+"/members", alice.Token,
		addMemberRequest{DisplayName: "Bob"})
	bob := decodeBody[personView](t, rec)

	// Bob has no contributions. The POST path would remove him outright; a
	// GET preview must not.
	rec = doJSON(t, handler, http.MethodGet, "/api/plans/"+plan.ID+"/persons/"+bob.ID+"/leave", alice.Token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("leave preview returned %d: %s", rec.Code, rec.Body.String())
	}
	preview := decodeBody[leavePreviewResponse](t, rec)
	if preview.State != "confirm" || preview.Total != 0 {
		t.Fatalf("unexpected preview: %+v", preview)
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/plans/"+plan.ID, alice.Token, nil)
	detail := decodeBody[planDetailResponse](t, rec)
	if len(detail.Persons) != 2 {
		t.Errorf("expected 2 persons after preview, got %d", len(detail.Persons))
	}
}
