package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/arueda/gestion/internal/accounts"
	"github.com/arueda/gestion/internal/apperr"
	"github.com/arueda/gestion/internal/calculator"
	"github.com/arueda/gestion/internal/events"
	"github.com/arueda/gestion/internal/metrics"
	"github.com/arueda/gestion/internal/models"
	"github.com/arueda/gestion/internal/storage"
)

// SettlementService executes debt-clearing payments and computes advisory
// settlement suggestions.
type SettlementService struct {
	store     storage.Store
	directory accounts.Directory
	publisher events.Publisher
}

// NewSettlementService creates a new SettlementService. publisher may be nil.
func NewSettlementService(store storage.Store, directory accounts.Directory, publisher events.Publisher) *SettlementService {
	return &SettlementService{store: store, directory: directory, publisher: publisher}
}

// SettlementResult is the write set of one executed payment: the payer's
// settlement record plus either a mirrored record (receiver has a linked
// account) or a pending external transaction (receiver has none).
type SettlementResult struct {
	PayerRecord  *models.ContributionRecord
	MirrorRecord *models.ContributionRecord
	Pending      *models.PendingTransaction
}

// Suggest computes the minimal advisory payment list for the plan's current
// balance snapshot. It never mutates the ledger.
func (s *SettlementService) Suggest(ctx context.Context, actorID, planID string) ([]calculator.Payment, error) {
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

	payments := calculator.MatchSettlements(calculator.ComputeBalances(persons, records))
	metrics.PaymentsSuggested.Add(float64(len(payments)))
	return payments, nil
}

// SettlePayment applies one payment from fromID to toID. All writes land in a
// single atomic batch: partial application is impossible. The caller owns
// retry and surfacing of failures.
func (s *SettlementService) SettlePayment(ctx context.Context, actorID, planID, fromID, toID string, amount float64) (*SettlementResult, error) {
	if amount <= 0 {
		return nil, apperr.Validation("amount must be positive, got %v", amount)
	}
	if fromID == toID {
		return nil, apperr.Validation("payer and receiver must differ")
	}

	plan, err := s.store.GetPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	if !plan.HasMember(actorID) {
		return nil, apperr.Permission("you must be a member of this plan")
	}

	from, err := s.personInPlan(ctx, planID, fromID)
	if err != nil {
		return nil, err
	}
	to, err := s.personInPlan(ctx, planID, toID)
	if err != nil {
		return nil, err
	}

	// Account lookup happens before the batch; the collaborator is external
	// and must not extend the write transaction.
	linked := false
	if to.Registered() {
		linked, err = s.directory.HasLinkedAccount(ctx, to.UserID)
		if err != nil {
			return nil, apperr.Store("account lookup failed", err)
		}
	}

	receiverName := s.resolveName(ctx, to)
	payerName := s.resolveName(ctx, from)
	now := time.Now().Unix()

	result := &SettlementResult{}
	err = s.store.RunBatch(ctx, planID, func(b storage.Batch) error {
		// Re-check preconditions inside the transaction so a lost race
		// surfaces as a conflict instead of a half-valid write.
		if _, err := b.GetPlan(planID); err != nil {
			return asConflict(err, "plan %s deleted during settlement", planID)
		}
		for _, personID := range []string{fromID, toID} {
			if _, err := b.GetPerson(personID); err != nil {
				return asConflict(err, "person %s removed during settlement", personID)
			}
		}

		payerRecord := &models.ContributionRecord{
			PlanID:      planID,
			PayerID:     fromID,
			Amount:      amount,
			Description: fmt.Sprintf("Settlement to %s", receiverName),
			Date:        now,
			CreatedBy:   actorID,
			Settlement:  true,
			ReceiverID:  toID,
		}
		if err := b.CreateRecord(payerRecord); err != nil {
			return err
		}
		result.PayerRecord = payerRecord

		if linked {
			mirror := &models.ContributionRecord{
				PlanID:      planID,
				PayerID:     toID,
				Amount:      -amount,
				Description: fmt.Sprintf("Settlement from %s", payerName),
				Date:        now,
				CreatedBy:   actorID,
				Settlement:  true,
				ReceiverID:  fromID,
			}
			if err := b.CreateRecord(mirror); err != nil {
				return err
			}
			result.MirrorRecord = mirror
			return nil
		}

		pending := &models.PendingTransaction{
			PlanID:      planID,
			PersonID:    toID,
			UserID:      to.UserID,
			Amount:      amount,
			Description: fmt.Sprintf("Settlement from %s awaiting reconciliation", payerName),
			Pending:     true,
		}
		if err := b.CreatePendingTransaction(pending); err != nil {
			return err
		}
		result.Pending = pending
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.SettlementsExecuted.Inc()
	publish(ctx, s.publisher, events.Event{
		Type:       events.TypeSettlementExecuted,
		PlanID:     planID,
		RecordID:   result.PayerRecord.ID,
		PersonID:   fromID,
		ReceiverID: toID,
		Amount:     amount,
		OccurredAt: time.Now(),
	})
	if result.Pending != nil {
		metrics.PendingTransactionsCreated.Inc()
		publish(ctx, s.publisher, events.Event{
			Type:       events.TypePendingCreated,
			PlanID:     planID,
			PersonID:   toID,
			Amount:     amount,
			OccurredAt: time.Now(),
		})
	}

	slog.Info("settlement executed",
		"plan_id", planID,
		"from", fromID,
		"to", toID,
		"amount", amount,
		"mirrored", result.MirrorRecord != nil,
	)
	return result, nil
}

// PendingTransactions lists the plan's unreconciled payouts.
func (s *SettlementService) PendingTransactions(ctx context.Context, actorID, planID string) ([]*models.PendingTransaction, error) {
	plan, err := s.store.GetPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	if !plan.HasMember(actorID) {
		return nil, apperr.Permission("you must be a member of this plan")
	}
	return s.store.ListPendingTransactions(ctx, planID)
}

func (s *SettlementService) personInPlan(ctx context.Context, planID, personID string) (*models.Person, error) {
	person, err := s.store.GetPerson(ctx, personID)
	if err != nil {
		return nil, err
	}
	if person.PlanID != planID {
		return nil, apperr.NotFound("person %s does not belong to plan %s", personID, planID)
	}
	return person, nil
}

func (s *SettlementService) resolveName(ctx context.Context, person *models.Person) string {
	if person.Registered() {
		if name, err := s.directory.DisplayName(ctx, person.UserID); err == nil {
			return name
		}
	}
	return person.DisplayName
}

// asConflict reclassifies a mid-batch NotFound as a conflict: the service
// already verified existence before the batch, so a vanished document means a
// concurrent writer won.
func asConflict(err error, format string, args ...any) error {
	if apperr.IsKind(err, apperr.KindNotFound) {
		return apperr.Conflict(format, args...)
	}
	return err
}
