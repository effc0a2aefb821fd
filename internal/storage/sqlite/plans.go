package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/arueda/gestion/internal/apperr"
	"github.com/arueda/gestion/internal/models"
)

// CreatePlan persists a new plan together with its member set.
func (s *SQLiteStore) CreatePlan(ctx context.Context, plan *models.Plan) error {
	if plan.ID == "" {
		plan.ID = uuid.New().String()
	}
	if plan.CreatedAt == 0 {
		plan.CreatedAt = time.Now().Unix()
	}
	if plan.Distribution == "" {
		plan.Distribution = models.DistributionEqual
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperr.Store("failed to begin transaction", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO plans (id, title, owner_id, distribution, created_at) VALUES (?, ?, ?, ?, ?)",
		plan.ID, plan.Title, plan.OwnerID, plan.Distribution, plan.CreatedAt,
	)
	if err != nil {
		return apperr.Store("failed to insert plan", err)
	}

	for _, userID := range plan.MemberIDs {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO plan_members (plan_id, user_id) VALUES (?, ?)",
			plan.ID, userID,
		)
		if err != nil {
			return apperr.Store("failed to insert plan member", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return apperr.Store("failed to commit transaction", err)
	}
	return nil
}

// GetPlan retrieves a plan by ID, including its member set.
func (s *SQLiteStore) GetPlan(ctx context.Context, planID string) (*models.Plan, error) {
	plan := &models.Plan{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, title, owner_id, distribution, created_at FROM plans WHERE id = ?",
		planID,
	).Scan(&plan.ID, &plan.Title, &plan.OwnerID, &plan.Distribution, &plan.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("plan not found: %s", planID)
	}
	if err != nil {
		return nil, apperr.Store("failed to get plan", err)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT user_id FROM plan_members WHERE plan_id = ? ORDER BY user_id",
		planID,
	)
	if err != nil {
		return nil, apperr.Store("failed to get plan members", err)
	}
	defer rows.Close()

	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, apperr.Store("failed to scan plan member", err)
		}
		plan.MemberIDs = append(plan.MemberIDs, userID)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Store("failed to iterate plan members", err)
	}
	return plan, nil
}

// ListPlans retrieves the plans a user is a member of, newest first.
func (s *SQLiteStore) ListPlans(ctx context.Context, userID string) ([]*models.Plan, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT p.id FROM plans p
		 JOIN plan_members m ON m.plan_id = p.id
		 WHERE m.user_id = ? ORDER BY p.created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, apperr.Store("failed to list plans", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, apperr.Store("failed to scan plan id", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Store("failed to iterate plans", err)
	}

	plans := make([]*models.Plan, 0, len(ids))
	for _, id := range ids {
		plan, err := s.GetPlan(ctx, id)
		if err != nil {
			return nil, err
		}
		plans = append(plans, plan)
	}
	return plans, nil
}

// AddPlanMember adds a registered user to the plan member set.
func (s *SQLiteStore) AddPlanMember(ctx context.Context, planID, userID string) error {
	res, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO plan_members (plan_id, user_id) VALUES (?, ?)",
		planID, userID,
	)
	if err != nil {
		return apperr.Store("failed to add plan member", err)
	}
	if _, err := res.RowsAffected(); err != nil {
		return apperr.Store("failed to add plan member", err)
	}
	s.hub.notify(planID)
	return nil
}

// DeletePlan removes a plan and everything owned by it.
func (s *SQLiteStore) DeletePlan(ctx context.Context, planID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM plans WHERE id = ?", planID)
	if err != nil {
		return apperr.Store("failed to delete plan", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return apperr.Store("failed to delete plan", err)
	}
	if n == 0 {
		return apperr.NotFound("plan not found: %s", planID)
	}
	s.hub.notify(planID)
	return nil
}
