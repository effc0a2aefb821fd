package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/arueda/gestion/internal/apperr"
	"github.com/arueda/gestion/internal/models"
)

const recordColumns = "id, plan_id, payer_id, amount, description, date, created_by, settlement, receiver_id, created_at"

// CreateRecord persists a new contribution or settlement record.
func (s *SQLiteStore) CreateRecord(ctx context.Context, record *models.ContributionRecord) error {
	fillRecordDefaults(record)
	if err := insertRecord(ctx, s.db, record); err != nil {
		return err
	}
	s.hub.notify(record.PlanID)
	return nil
}

// GetRecord retrieves a record by ID.
func (s *SQLiteStore) GetRecord(ctx context.Context, recordID string) (*models.ContributionRecord, error) {
	return scanRecord(s.db.QueryRowContext(ctx,
		"SELECT "+recordColumns+" FROM contribution_records WHERE id = ?",
		recordID,
	), recordID)
}

// ListRecords retrieves all records of a plan, most recent first.
func (s *SQLiteStore) ListRecords(ctx context.Context, planID string) ([]*models.ContributionRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+recordColumns+" FROM contribution_records WHERE plan_id = ? ORDER BY date DESC, created_at DESC, id",
		planID,
	)
	if err != nil {
		return nil, apperr.Store("failed to list records", err)
	}
	return collectRecords(rows)
}

// UpdateRecord rewrites an existing record.
func (s *SQLiteStore) UpdateRecord(ctx context.Context, record *models.ContributionRecord) error {
	if err := execUpdateRecord(ctx, s.db, record); err != nil {
		return err
	}
	s.hub.notify(record.PlanID)
	return nil
}

// DeleteRecord removes a record by ID.
func (s *SQLiteStore) DeleteRecord(ctx context.Context, recordID string) error {
	record, err := s.GetRecord(ctx, recordID)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM contribution_records WHERE id = ?", recordID); err != nil {
		return apperr.Store("failed to delete record", err)
	}
	s.hub.notify(record.PlanID)
	return nil
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func fillRecordDefaults(record *models.ContributionRecord) {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	now := time.Now().Unix()
	if record.CreatedAt == 0 {
		record.CreatedAt = now
	}
	if record.Date == 0 {
		record.Date = now
	}
}

func insertRecord(ctx context.Context, db execer, record *models.ContributionRecord) error {
	var receiver any
	if record.ReceiverID != "" {
		receiver = record.ReceiverID
	}
	_, err := db.ExecContext(ctx,
		`INSERT INTO contribution_records (`+recordColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.PlanID, record.PayerID, record.Amount, record.Description,
		record.Date, record.CreatedBy, record.Settlement, receiver, record.CreatedAt,
	)
	if err != nil {
		return apperr.Store("failed to insert record", err)
	}
	return nil
}

func execUpdateRecord(ctx context.Context, db execer, record *models.ContributionRecord) error {
	var receiver any
	if record.ReceiverID != "" {
		receiver = record.ReceiverID
	}
	res, err := db.ExecContext(ctx,
		`UPDATE contribution_records
		 SET payer_id = ?, amount = ?, description = ?, date = ?, settlement = ?, receiver_id = ?
		 WHERE id = ?`,
		record.PayerID, record.Amount, record.Description, record.Date,
		record.Settlement, receiver, record.ID,
	)
	if err != nil {
		return apperr.Store("failed to update record", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return apperr.Store("failed to update record", err)
	}
	if n == 0 {
		return apperr.NotFound("record not found: %s", record.ID)
	}
	return nil
}

func scanRecord(row rowScanner, recordID string) (*models.ContributionRecord, error) {
	record := &models.ContributionRecord{}
	var receiver sql.NullString
	err := row.Scan(&record.ID, &record.PlanID, &record.PayerID, &record.Amount,
		&record.Description, &record.Date, &record.CreatedBy, &record.Settlement,
		&receiver, &record.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("record not found: %s", recordID)
	}
	if err != nil {
		return nil, apperr.Store("failed to get record", err)
	}
	record.ReceiverID = receiver.String
	return record, nil
}

func collectRecords(rows *sql.Rows) ([]*models.ContributionRecord, error) {
	defer rows.Close()

	var records []*models.ContributionRecord
	for rows.Next() {
		record := &models.ContributionRecord{}
		var receiver sql.NullString
		if err := rows.Scan(&record.ID, &record.PlanID, &record.PayerID, &record.Amount,
			&record.Description, &record.Date, &record.CreatedBy, &record.Settlement,
			&receiver, &record.CreatedAt); err != nil {
			return nil, apperr.Store("failed to scan record", err)
		}
		record.ReceiverID = receiver.String
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Store("failed to iterate records", err)
	}
	return records, nil
}
