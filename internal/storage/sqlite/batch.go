package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/arueda/gestion/internal/apperr"
	"github.com/arueda/gestion/internal/models"
	"github.com/arueda/gestion/internal/storage"
)

var _ storage.Batch = (*sqlBatch)(nil)

// sqlBatch implements storage.Batch over a single transaction. Reads see the
// transaction's snapshot, so they double as precondition re-checks.
type sqlBatch struct {
	ctx context.Context
	tx  *sql.Tx
}

func (b *sqlBatch) GetPlan(planID string) (*models.Plan, error) {
	plan := &models.Plan{}
	err := b.tx.QueryRowContext(b.ctx,
		"SELECT id, title, owner_id, distribution, created_at FROM plans WHERE id = ?",
		planID,
	).Scan(&plan.ID, &plan.Title, &plan.OwnerID, &plan.Distribution, &plan.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("plan not found: %s", planID)
	}
	if err != nil {
		return nil, apperr.Store("failed to get plan", err)
	}
	return plan, nil
}

func (b *sqlBatch) GetPerson(personID string) (*models.Person, error) {
	return scanPerson(b.tx.QueryRowContext(b.ctx,
		"SELECT id, plan_id, user_id, display_name, is_owner FROM persons WHERE id = ?",
		personID,
	), personID)
}

func (b *sqlBatch) ListRecordsByPayer(planID, payerID string) ([]*models.ContributionRecord, error) {
	rows, err := b.tx.QueryContext(b.ctx,
		"SELECT "+recordColumns+" FROM contribution_records WHERE plan_id = ? AND payer_id = ? ORDER BY date DESC, created_at DESC, id",
		planID, payerID,
	)
	if err != nil {
		return nil, apperr.Store("failed to list records by payer", err)
	}
	return collectRecords(rows)
}

func (b *sqlBatch) CreateRecord(record *models.ContributionRecord) error {
	fillRecordDefaults(record)
	return insertRecord(b.ctx, b.tx, record)
}

func (b *sqlBatch) UpdateRecord(record *models.ContributionRecord) error {
	return execUpdateRecord(b.ctx, b.tx, record)
}

func (b *sqlBatch) DeleteRecord(recordID string) error {
	res, err := b.tx.ExecContext(b.ctx, "DELETE FROM contribution_records WHERE id = ?", recordID)
	if err != nil {
		return apperr.Store("failed to delete record", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return apperr.Store("failed to delete record", err)
	}
	if n == 0 {
		return apperr.NotFound("record not found: %s", recordID)
	}
	return nil
}

func (b *sqlBatch) CreatePendingTransaction(ptx *models.PendingTransaction) error {
	if ptx.ID == "" {
		ptx.ID = uuid.New().String()
	}
	if ptx.CreatedAt == 0 {
		ptx.CreatedAt = time.Now().Unix()
	}
	var userID any
	if ptx.UserID != "" {
		userID = ptx.UserID
	}
	_, err := b.tx.ExecContext(b.ctx,
		`INSERT INTO pending_transactions (id, plan_id, person_id, user_id, amount, description, pending, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		ptx.ID, ptx.PlanID, ptx.PersonID, userID, ptx.Amount, ptx.Description, ptx.Pending, ptx.CreatedAt,
	)
	if err != nil {
		return apperr.Store("failed to insert pending transaction", err)
	}
	return nil
}

func (b *sqlBatch) RemoveMember(planID, personID string) error {
	person, err := b.GetPerson(personID)
	if err != nil {
		return err
	}
	if person.PlanID != planID {
		return apperr.NotFound("person %s does not belong to plan %s", personID, planID)
	}

	if _, err := b.tx.ExecContext(b.ctx, "DELETE FROM persons WHERE id = ?", personID); err != nil {
		return apperr.Store("failed to delete person", err)
	}
	if person.UserID != "" {
		_, err := b.tx.ExecContext(b.ctx,
			"DELETE FROM plan_members WHERE plan_id = ? AND user_id = ?",
			planID, person.UserID,
		)
		if err != nil {
			return apperr.Store("failed to remove plan member", err)
		}
	}
	return nil
}
