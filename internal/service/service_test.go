package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/arueda/gestion/internal/models"
	"github.com/arueda/gestion/internal/storage/sqlite"
)

// newTestStore creates a store backed by a throwaway database file.
func newTestStore(t *testing.T) *sqlite.SQLiteStore {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func createUser(t *testing.T, store *sqlite.SQLiteStore, email, name string) *models.User {
	t.Helper()
	user := models.NewUser(email, name, "test-hash")
	if err := store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("failed to create user %s: %v", email, err)
	}
	return user
}

// fixture is a plan with one registered owner and a mix of registered and
// unregistered members.
type fixture struct {
	store   *sqlite.SQLiteStore
	plan    *models.Plan
	owner   *models.User
	persons map[string]*models.Person // keyed by display name
	users   map[string]*models.User   // keyed by display name, registered only
}

// newFixture creates a plan owned by the first name; every name prefixed with
// "+" becomes a registered member, the rest stay unregistered.
func newFixture(t *testing.T, names ...string) *fixture {
	t.Helper()
	ctx := context.Background()
	store := newTestStore(t)

	owner := createUser(t, store, names[0]+"@example.com", names[0])
	planSvc := NewPlanService(store, store)
	plan, err := planSvc.CreatePlan(ctx, owner.ID, "Shared pool", "")
	if err != nil {
		t.Fatalf("failed to create plan: %v", err)
	}

	f := &fixture{
		store:   store,
		plan:    plan,
		owner:   owner,
		persons: make(map[string]*models.Person),
		users:   map[string]*models.User{names[0]: owner},
	}

	persons, err := store.ListPersons(ctx, plan.ID)
	if err != nil {
		t.Fatalf("failed to list persons: %v", err)
	}
	f.persons[names[0]] = persons[0]

	for _, name := range names[1:] {
		registered := false
		if name[0] == '+' {
			registered = true
			name = name[1:]
		}
		userID := ""
		if registered {
			user := createUser(t, store, name+"@example.com", name)
			f.users[name] = user
			userID = user.ID
		}
		person, err := planSvc.AddMember(ctx, owner.ID, plan.ID, userID, name)
		if err != nil {
			t.Fatalf("failed to add member %s: %v", name, err)
		}
		f.persons[name] = person
	}
	return f
}

func (f *fixture) addContribution(t *testing.T, name string, amount float64) *models.ContributionRecord {
	t.Helper()
	svc := NewLedgerService(f.store, nil)
	record, err := svc.AddContribution(context.Background(), f.owner.ID, f.plan.ID,
		f.persons[name].ID, amount, "seed", 0)
	if err != nil {
		t.Fatalf("failed to add contribution for %s: %v", name, err)
	}
	return record
}
