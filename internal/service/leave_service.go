package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/arueda/gestion/internal/apperr"
	"github.com/arueda/gestion/internal/calculator"
	"github.com/arueda/gestion/internal/events"
	"github.com/arueda/gestion/internal/metrics"
	"github.com/arueda/gestion/internal/models"
	"github.com/arueda/gestion/internal/storage"
)

// LeaveState is the position of a leave flow in its state machine.
type LeaveState int

const (
	// StateConfirm awaits the member's choice between transfer and delete.
	StateConfirm LeaveState = iota
	// StateTransfer has a destination and amount picked, not yet applied.
	StateTransfer
	// StateDelete is the discard path, not yet applied.
	StateDelete
	// StateDone means membership has been removed.
	StateDone
)

func (s LeaveState) String() string {
	switch s {
	case StateConfirm:
		return "confirm"
	case StateTransfer:
		return "transfer"
	case StateDelete:
		return "delete"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// LeaveService drives the membership transition of a departing member:
// their contributions are transferred or deleted before membership is removed.
type LeaveService struct {
	store     storage.Store
	publisher events.Publisher
}

// NewLeaveService creates a new LeaveService. publisher may be nil.
func NewLeaveService(store storage.Store, publisher events.Publisher) *LeaveService {
	return &LeaveService{store: store, publisher: publisher}
}

// LeaveFlow is one member's exit in progress. Abandoning a flow before
// ConfirmTransfer/ConfirmDelete leaves the ledger untouched: every state
// before Done is a safe cancellation point.
type LeaveFlow struct {
	svc        *LeaveService
	state      LeaveState
	actorID    string
	plan       *models.Plan
	leaver     *models.Person
	records    []*models.ContributionRecord
	total      float64
	candidates []*models.Person
	destID     string
	amount     float64
}

// State returns the flow's current state.
func (f *LeaveFlow) State() LeaveState { return f.state }

// Total is the leaving member's non-settlement contribution total at confirm
// time.
func (f *LeaveFlow) Total() float64 { return f.total }

// Candidates are the possible transfer destinations; the leaving member is
// always excluded. An empty list means only the delete path is offered.
func (f *LeaveFlow) Candidates() []*models.Person { return f.candidates }

// Records are the leaving member's non-settlement contributions at confirm
// time.
func (f *LeaveFlow) Records() []*models.ContributionRecord { return f.records }

// PreviewLeave loads the leaving member's position and opens a flow without
// writing anything: callers can render totals and transfer candidates and
// walk away. Only the member themselves or the plan owner may open it.
func (s *LeaveService) PreviewLeave(ctx context.Context, actorID, planID, personID string) (*LeaveFlow, error) {
	plan, err := s.store.GetPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	leaver, err := s.store.GetPerson(ctx, personID)
	if err != nil {
		return nil, err
	}
	if leaver.PlanID != planID {
		return nil, apperr.NotFound("person %s does not belong to plan %s", personID, planID)
	}
	if actorID != leaver.UserID && actorID != plan.OwnerID {
		return nil, apperr.Permission("only the member or the plan owner can start a leave")
	}

	persons, err := s.store.ListPersons(ctx, planID)
	if err != nil {
		return nil, err
	}
	var candidates []*models.Person
	for _, p := range persons {
		if p.ID != personID {
			candidates = append(candidates, p)
		}
	}

	all, err := s.store.ListRecords(ctx, planID)
	if err != nil {
		return nil, err
	}
	var records []*models.ContributionRecord
	var total float64
	for _, r := range all {
		if r.PayerID == personID && !r.Settlement {
			records = append(records, r)
			total += r.Amount
		}
	}

	return &LeaveFlow{
		svc:        s,
		state:      StateConfirm,
		actorID:    actorID,
		plan:       plan,
		leaver:     leaver,
		records:    records,
		total:      total,
		candidates: candidates,
	}, nil
}

// ConfirmLeave opens a flow and commits to it. A member with no contributions
// skips straight to Done: membership is removed with no ledger writes.
func (s *LeaveService) ConfirmLeave(ctx context.Context, actorID, planID, personID string) (*LeaveFlow, error) {
	flow, err := s.PreviewLeave(ctx, actorID, planID, personID)
	if err != nil {
		return nil, err
	}
	if math.Abs(flow.total) <= calculator.Epsilon {
		if err := s.finishLeave(ctx, flow); err != nil {
			return nil, err
		}
		metrics.MembersLeft.WithLabelValues("direct").Inc()
	}
	return flow, nil
}

// StartTransfer picks the transfer destination and amount. An amount of 0
// defaults to the full total; amounts above the total are treated as full
// transfers. The destination must be one of the flow's candidates.
func (f *LeaveFlow) StartTransfer(destID string, amount float64) error {
	if f.state != StateConfirm {
		return apperr.Conflict("leave flow is in state %s, expected confirm", f.state)
	}
	if len(f.candidates) == 0 {
		return apperr.Validation("no transfer candidates: only delete is available")
	}
	if amount < 0 {
		return apperr.Validation("amount must not be negative, got %v", amount)
	}
	if amount == 0 {
		amount = f.total
	}

	found := false
	for _, c := range f.candidates {
		if c.ID == destID {
			found = true
			break
		}
	}
	if !found {
		return apperr.Validation("destination %s is not a transfer candidate", destID)
	}

	f.destID = destID
	f.amount = amount
	f.state = StateTransfer
	return nil
}

// ConfirmTransfer applies the chosen transfer in one atomic batch, then
// removes membership. A full transfer (amount >= total) reassigns every
// record to the destination in place; a partial transfer writes one
// settlement-type credit for the destination and scales the remaining
// records by (total-amount)/total, preserving each record's relative share.
func (f *LeaveFlow) ConfirmTransfer(ctx context.Context) error {
	if f.state != StateTransfer {
		return apperr.Conflict("leave flow is in state %s, expected transfer", f.state)
	}

	s := f.svc
	err := s.store.RunBatch(ctx, f.plan.ID, func(b storage.Batch) error {
		if _, err := b.GetPlan(f.plan.ID); err != nil {
			return asConflict(err, "plan %s deleted during leave", f.plan.ID)
		}
		if _, err := b.GetPerson(f.destID); err != nil {
			return asConflict(err, "destination %s removed during leave", f.destID)
		}

		// Re-read inside the transaction: the confirm-time snapshot may be
		// stale under concurrent writers.
		all, err := b.ListRecordsByPayer(f.plan.ID, f.leaver.ID)
		if err != nil {
			return err
		}
		var records []*models.ContributionRecord
		var total float64
		for _, r := range all {
			if !r.Settlement {
				records = append(records, r)
				total += r.Amount
			}
		}
		if math.Abs(total) <= calculator.Epsilon {
			return nil
		}

		if f.amount >= total-calculator.Epsilon {
			// Full transfer: reassign ownership, never duplicate.
			for _, r := range records {
				r.PayerID = f.destID
				if err := b.UpdateRecord(r); err != nil {
					return err
				}
			}
			return nil
		}

		credit := &models.ContributionRecord{
			PlanID:      f.plan.ID,
			PayerID:     f.destID,
			Amount:      f.amount,
			Description: fmt.Sprintf("Transfer from %s", f.leaver.DisplayName),
			Date:        time.Now().Unix(),
			CreatedBy:   f.actorID,
			Settlement:  true,
			ReceiverID:  f.leaver.ID,
		}
		if err := b.CreateRecord(credit); err != nil {
			return err
		}

		ratio := (total - f.amount) / total
		for _, r := range records {
			scaled := r.Amount * ratio
			if scaled <= calculator.Epsilon {
				if err := b.DeleteRecord(r.ID); err != nil {
					return err
				}
				continue
			}
			r.Amount = scaled
			if err := b.UpdateRecord(r); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	// Membership removal is a separate batch. A crash here is safe: the next
	// ConfirmLeave sees a zero total and takes the direct path.
	if err := s.finishLeave(ctx, f); err != nil {
		return err
	}
	metrics.MembersLeft.WithLabelValues("transfer").Inc()
	slog.Info("leave transfer applied",
		"plan_id", f.plan.ID,
		"person_id", f.leaver.ID,
		"destination_id", f.destID,
		"amount", f.amount,
		"total", f.total,
	)
	return nil
}

// ConfirmDelete discards every non-settlement record of the leaving member in
// one atomic batch, then removes membership. Settlement records are
// preserved: they represent already-cleared debt, not collectible balance.
func (f *LeaveFlow) ConfirmDelete(ctx context.Context) error {
	if f.state != StateConfirm {
		return apperr.Conflict("leave flow is in state %s, expected confirm", f.state)
	}
	f.state = StateDelete

	s := f.svc
	err := s.store.RunBatch(ctx, f.plan.ID, func(b storage.Batch) error {
		if _, err := b.GetPlan(f.plan.ID); err != nil {
			return asConflict(err, "plan %s deleted during leave", f.plan.ID)
		}
		all, err := b.ListRecordsByPayer(f.plan.ID, f.leaver.ID)
		if err != nil {
			return err
		}
		for _, r := range all {
			if r.Settlement {
				continue
			}
			if err := b.DeleteRecord(r.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		f.state = StateConfirm
		return err
	}

	if err := s.finishLeave(ctx, f); err != nil {
		return err
	}
	metrics.MembersLeft.WithLabelValues("delete").Inc()
	slog.Info("leave delete applied", "plan_id", f.plan.ID, "person_id", f.leaver.ID)
	return nil
}

func (s *LeaveService) finishLeave(ctx context.Context, f *LeaveFlow) error {
	err := s.store.RunBatch(ctx, f.plan.ID, func(b storage.Batch) error {
		return b.RemoveMember(f.plan.ID, f.leaver.ID)
	})
	if err != nil {
		return err
	}
	f.state = StateDone

	publish(ctx, s.publisher, events.Event{
		Type:       events.TypeMemberLeft,
		PlanID:     f.plan.ID,
		PersonID:   f.leaver.ID,
		OccurredAt: time.Now(),
	})
	return nil
}
