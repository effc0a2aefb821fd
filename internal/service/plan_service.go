// Package service implements the engine's exposed operations: plan
// membership, the contribution ledger, settlement execution and the leave
// flow. Services validate, delegate persistence to storage.Store and emit
// change events; all failures are classified through apperr.
package service

import (
	"context"
	"log/slog"

	"github.com/arueda/gestion/internal/accounts"
	"github.com/arueda/gestion/internal/apperr"
	"github.com/arueda/gestion/internal/calculator"
	"github.com/arueda/gestion/internal/events"
	"github.com/arueda/gestion/internal/models"
	"github.com/arueda/gestion/internal/storage"
)

// PlanService manages plans and their member identities.
type PlanService struct {
	store     storage.Store
	directory accounts.Directory
}

// NewPlanService creates a new PlanService.
func NewPlanService(store storage.Store, directory accounts.Directory) *PlanService {
	return &PlanService{store: store, directory: directory}
}

// CreatePlan creates a plan owned by ownerID, with the owner as first member.
func (s *PlanService) CreatePlan(ctx context.Context, ownerID, title, distribution string) (*models.Plan, error) {
	if title == "" {
		return nil, apperr.Validation("plan title required")
	}
	switch distribution {
	case "":
		distribution = models.DistributionEqual
	case models.DistributionEqual, models.DistributionCustom:
	default:
		return nil, apperr.Validation("unknown distribution mode: %s", distribution)
	}

	plan := &models.Plan{
		Title:        title,
		OwnerID:      ownerID,
		MemberIDs:    []string{ownerID},
		Distribution: distribution,
	}
	if err := s.store.CreatePlan(ctx, plan); err != nil {
		return nil, err
	}

	ownerName := ownerID
	if name, err := s.directory.DisplayName(ctx, ownerID); err == nil {
		ownerName = name
	}
	owner := &models.Person{
		PlanID:      plan.ID,
		UserID:      ownerID,
		DisplayName: ownerName,
		IsOwner:     true,
	}
	if err := s.store.CreatePerson(ctx, owner); err != nil {
		return nil, err
	}

	slog.Info("plan created", "plan_id", plan.ID, "owner_id", ownerID)
	return plan, nil
}

// GetPlan returns the plan and its member identities. The actor must be a
// plan member.
func (s *PlanService) GetPlan(ctx context.Context, actorID, planID string) (*models.Plan, []*models.Person, error) {
	plan, err := s.store.GetPlan(ctx, planID)
	if err != nil {
		return nil, nil, err
	}
	if !plan.HasMember(actorID) {
		return nil, nil, apperr.Permission("you must be a member of this plan")
	}
	persons, err := s.store.ListPersons(ctx, planID)
	if err != nil {
		return nil, nil, err
	}
	return plan, persons, nil
}

// ListPlans returns the plans the actor is a member of.
func (s *PlanService) ListPlans(ctx context.Context, actorID string) ([]*models.Plan, error) {
	return s.store.ListPlans(ctx, actorID)
}

// AddMember adds a member to the plan (owner-only). userID may be empty for
// unregistered members, in which case displayName is required.
func (s *PlanService) AddMember(ctx context.Context, actorID, planID, userID, displayName string) (*models.Person, error) {
	plan, err := s.store.GetPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	if plan.OwnerID != actorID {
		return nil, apperr.Permission("only the plan owner can add members")
	}

	if userID == "" && displayName == "" {
		return nil, apperr.Validation("unregistered members need a display name")
	}
	if userID != "" {
		if plan.HasMember(userID) {
			return nil, apperr.Validation("user is already a plan member")
		}
		if displayName == "" {
			name, err := s.directory.DisplayName(ctx, userID)
			if err != nil {
				return nil, apperr.Validation("unknown user: %s", userID)
			}
			displayName = name
		}
		if err := s.store.AddPlanMember(ctx, planID, userID); err != nil {
			return nil, err
		}
	}

	person := &models.Person{
		PlanID:      planID,
		UserID:      userID,
		DisplayName: displayName,
	}
	if err := s.store.CreatePerson(ctx, person); err != nil {
		return nil, err
	}

	slog.Info("member added", "plan_id", planID, "person_id", person.ID, "registered", userID != "")
	return person, nil
}

// DeletePlan removes a plan and everything recorded under it (owner-only).
func (s *PlanService) DeletePlan(ctx context.Context, actorID, planID string) error {
	plan, err := s.store.GetPlan(ctx, planID)
	if err != nil {
		return err
	}
	if plan.OwnerID != actorID {
		return apperr.Permission("only the plan owner can delete the plan")
	}
	if err := s.store.DeletePlan(ctx, planID); err != nil {
		return err
	}
	slog.Info("plan deleted", "plan_id", planID)
	return nil
}

// Balances recomputes the per-person balance snapshot from the full ledger.
// No incremental caching: full recomputation on every read trades CPU for
// eliminated staleness bugs.
func (s *PlanService) Balances(ctx context.Context, actorID, planID string) ([]calculator.Balance, error) {
	plan, err := s.store.GetPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	if !plan.HasMember(actorID) {
		return nil, apperr.Permission("you must be a member of this plan")
	}

	persons, err := s.store.ListPersons(ctx, planID)
	if err != nil {
		return nil, err
	}
	records, err := s.store.ListRecords(ctx, planID)
	if err != nil {
		return nil, err
	}
	return calculator.ComputeBalances(persons, records), nil
}

// publish emits a ledger event, logging and swallowing failures: event
// delivery is best-effort and never fails the originating operation.
func publish(ctx context.Context, publisher events.Publisher, event events.Event) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, event); err != nil {
		slog.Warn("failed to publish event",
			"type", event.Type,
			"plan_id", event.PlanID,
			"error", err,
		)
	}
}
