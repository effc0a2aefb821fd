package sqlite

import (
	"context"
	"database/sql"

	"github.com/arueda/gestion/internal/apperr"
	"github.com/arueda/gestion/internal/models"
)

// ListPendingTransactions retrieves unreconciled payouts for a plan, most
// recent first.
func (s *SQLiteStore) ListPendingTransactions(ctx context.Context, planID string) ([]*models.PendingTransaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, plan_id, person_id, user_id, amount, description, pending, created_at
		 FROM pending_transactions WHERE plan_id = ? AND pending = 1
		 ORDER BY created_at DESC, id`,
		planID,
	)
	if err != nil {
		return nil, apperr.Store("failed to list pending transactions", err)
	}
	defer rows.Close()

	var txs []*models.PendingTransaction
	for rows.Next() {
		ptx := &models.PendingTransaction{}
		var userID sql.NullString
		if err := rows.Scan(&ptx.ID, &ptx.PlanID, &ptx.PersonID, &userID,
			&ptx.Amount, &ptx.Description, &ptx.Pending, &ptx.CreatedAt); err != nil {
			return nil, apperr.Store("failed to scan pending transaction", err)
		}
		ptx.UserID = userID.String
		txs = append(txs, ptx)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Store("failed to iterate pending transactions", err)
	}
	return txs, nil
}
