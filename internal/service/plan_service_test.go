package service

import (
	"context"
	"testing"

	"github.com/arueda/gestion/internal/apperr"
)

func TestCreatePlan(t *testing.T) {
	store := newTestStore(t)
	svc := NewPlanService(store, store)
	ctx := context.Background()
	owner := createUser(t, store, "alice@example.com", "Alice")

	if _, err := svc.CreatePlan(ctx, owner.ID, "", ""); !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("expected validation error for empty title, got %v", err)
	}
	if _, err := svc.CreatePlan(ctx, owner.ID, "Trip", "weighted"); !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("expected validation error for unknown distribution, got %v", err)
	}

	plan, err := svc.CreatePlan(ctx, owner.ID, "Trip", "")
	if err != nil {
		t.Fatalf("CreatePlan failed: %v", err)
	}
	if !plan.HasMember(owner.ID) {
		t.Error("owner missing from member set")
	}

	// The owner gets a person identity carrying their display name.
	persons, err := store.ListPersons(ctx, plan.ID)
	if err != nil {
		t.Fatalf("ListPersons failed: %v", err)
	}
	if len(persons) != 1 || !persons[0].IsOwner || persons[0].DisplayName != "Alice" {
		t.Errorf("unexpected owner person: %+v", persons)
	}
}

func TestAddMember(t *testing.T) {
	f := newFixture(t, "alice", "+bob")
	svc := NewPlanService(f.store, f.store)
	ctx := context.Background()

	if _, err := svc.AddMember(ctx, f.users["bob"].ID, f.plan.ID, "", "Carol"); !apperr.IsKind(err, apperr.KindPermission) {
		t.Errorf("expected permission error for non-owner, got %v", err)
	}
	if _, err := svc.AddMember(ctx, f.owner.ID, f.plan.ID, "", ""); !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("expected validation error for nameless unregistered member, got %v", err)
	}
	if _, err := svc.AddMember(ctx, f.owner.ID, f.plan.ID, f.users["bob"].ID, ""); !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("expected validation error for duplicate member, got %v", err)
	}

	// Registered members default to their account display name.
	dave := createUser(t, f.store, "dave@example.com", "Dave")
	person, err := svc.AddMember(ctx, f.owner.ID, f.plan.ID, dave.ID, "")
	if err != nil {
		t.Fatalf("AddMember failed: %v", err)
	}
	if person.DisplayName != "Dave" || !person.Registered() {
		t.Errorf("unexpected person: %+v", person)
	}

	plan, err := f.store.GetPlan(ctx, f.plan.ID)
	if err != nil {
		t.Fatalf("GetPlan failed: %v", err)
	}
	if !plan.HasMember(dave.ID) {
		t.Error("registered member missing from member set")
	}
}

func TestDeletePlan(t *testing.T) {
	f := newFixture(t, "alice", "+bob")
	svc := NewPlanService(f.store, f.store)
	ctx := context.Background()

	if err := svc.DeletePlan(ctx, f.users["bob"].ID, f.plan.ID); !apperr.IsKind(err, apperr.KindPermission) {
		t.Errorf("expected permission error for non-owner, got %v", err)
	}
	if err := svc.DeletePlan(ctx, f.owner.ID, f.plan.ID); err != nil {
		t.Fatalf("DeletePlan failed: %v", err)
	}
	if _, err := f.store.GetPlan(ctx, f.plan.ID); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Errorf("expected plan gone, got %v", err)
	}
}
