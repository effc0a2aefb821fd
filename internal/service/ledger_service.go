package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/arueda/gestion/internal/apperr"
	"github.com/arueda/gestion/internal/events"
	"github.com/arueda/gestion/internal/metrics"
	"github.com/arueda/gestion/internal/models"
	"github.com/arueda/gestion/internal/storage"
	"github.com/arueda/gestion/internal/stream"
)

// LedgerService owns the contribution ledger: append, update, delete, list
// and live streaming of a plan's records.
type LedgerService struct {
	store     storage.Store
	publisher events.Publisher
}

// NewLedgerService creates a new LedgerService. publisher may be nil.
func NewLedgerService(store storage.Store, publisher events.Publisher) *LedgerService {
	return &LedgerService{store: store, publisher: publisher}
}

// AddContribution appends a pool contribution to the plan ledger.
func (s *LedgerService) AddContribution(ctx context.Context, actorID, planID, payerID string, amount float64, description string, date int64) (*models.ContributionRecord, error) {
	if amount <= 0 {
		return nil, apperr.Validation("amount must be positive, got %v", amount)
	}

	plan, err := s.store.GetPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	if !plan.HasMember(actorID) {
		return nil, apperr.Permission("you must be a member of this plan")
	}

	payer, err := s.store.GetPerson(ctx, payerID)
	if err != nil || payer.PlanID != planID {
		return nil, apperr.Validation("unknown payer: %s", payerID)
	}

	record := &models.ContributionRecord{
		PlanID:      planID,
		PayerID:     payerID,
		Amount:      amount,
		Description: description,
		Date:        date,
		CreatedBy:   actorID,
	}
	if err := s.store.CreateRecord(ctx, record); err != nil {
		return nil, err
	}

	metrics.ContributionsRecorded.Inc()
	publish(ctx, s.publisher, events.Event{
		Type:       events.TypeContributionAdded,
		PlanID:     planID,
		RecordID:   record.ID,
		PersonID:   payerID,
		Amount:     amount,
		OccurredAt: time.Now(),
	})
	slog.Info("contribution added", "plan_id", planID, "record_id", record.ID, "amount", amount)
	return record, nil
}

// ListContributions returns the plan's full record set, most recent first.
func (s *LedgerService) ListContributions(ctx context.Context, actorID, planID string) ([]*models.ContributionRecord, error) {
	plan, err := s.store.GetPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	if !plan.HasMember(actorID) {
		return nil, apperr.Permission("you must be a member of this plan")
	}
	return s.store.ListRecords(ctx, planID)
}

// StreamContributions returns a live stream of the plan's ordered record set.
// The first snapshot is pushed immediately; a fresh snapshot follows every
// committed change. The subscription ends when the caller cancels the stream,
// the context is done, or the store shuts down; resubscribing restarts it.
func (s *LedgerService) StreamContributions(ctx context.Context, actorID, planID string) (*stream.Stream[[]*models.ContributionRecord], error) {
	records, err := s.ListContributions(ctx, actorID, planID)
	if err != nil {
		return nil, err
	}

	changes, cancelWatch := s.store.Watch(planID)
	st := stream.New[[]*models.ContributionRecord]()
	st.Push(records)

	go func() {
		defer cancelWatch()
		for {
			select {
			case <-ctx.Done():
				st.Cancel()
				return
			case <-st.Done():
				return
			case _, ok := <-changes:
				if !ok {
					st.Cancel()
					return
				}
				snapshot, err := s.store.ListRecords(ctx, planID)
				if err != nil {
					slog.Warn("stream snapshot failed", "plan_id", planID, "error", err)
					continue
				}
				st.Push(snapshot)
			}
		}
	}()
	return st, nil
}

// ContributionUpdate carries the mutable fields of a record; nil fields are
// left unchanged.
type ContributionUpdate struct {
	Amount      *float64
	Description *string
	Date        *int64
}

// UpdateContribution mutates a record in place. Only the record's creator or
// the plan owner may update it.
func (s *LedgerService) UpdateContribution(ctx context.Context, actorID, recordID string, update ContributionUpdate) (*models.ContributionRecord, error) {
	record, plan, err := s.recordWithPlan(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if actorID != record.CreatedBy && actorID != plan.OwnerID {
		return nil, apperr.Permission("only the record creator or plan owner can update it")
	}

	if update.Amount != nil {
		if *update.Amount <= 0 {
			return nil, apperr.Validation("amount must be positive, got %v", *update.Amount)
		}
		record.Amount = *update.Amount
	}
	if update.Description != nil {
		record.Description = *update.Description
	}
	if update.Date != nil {
		record.Date = *update.Date
	}

	if err := s.store.UpdateRecord(ctx, record); err != nil {
		return nil, err
	}
	publish(ctx, s.publisher, events.Event{
		Type:       events.TypeContributionUpdated,
		PlanID:     record.PlanID,
		RecordID:   record.ID,
		PersonID:   record.PayerID,
		Amount:     record.Amount,
		OccurredAt: time.Now(),
	})
	return record, nil
}

// DeleteContribution removes a record. Only the record's creator or the plan
// owner may delete it.
func (s *LedgerService) DeleteContribution(ctx context.Context, actorID, recordID string) error {
	record, plan, err := s.recordWithPlan(ctx, recordID)
	if err != nil {
		return err
	}
	if actorID != record.CreatedBy && actorID != plan.OwnerID {
		return apperr.Permission("only the record creator or plan owner can delete it")
	}

	if err := s.store.DeleteRecord(ctx, recordID); err != nil {
		return err
	}
	publish(ctx, s.publisher, events.Event{
		Type:       events.TypeContributionDeleted,
		PlanID:     record.PlanID,
		RecordID:   record.ID,
		PersonID:   record.PayerID,
		OccurredAt: time.Now(),
	})
	slog.Info("contribution deleted", "plan_id", record.PlanID, "record_id", recordID)
	return nil
}

func (s *LedgerService) recordWithPlan(ctx context.Context, recordID string) (*models.ContributionRecord, *models.Plan, error) {
	record, err := s.store.GetRecord(ctx, recordID)
	if err != nil {
		return nil, nil, err
	}
	plan, err := s.store.GetPlan(ctx, record.PlanID)
	if err != nil {
		return nil, nil, err
	}
	return record, plan, nil
}
