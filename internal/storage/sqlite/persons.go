package sqlite

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/arueda/gestion/internal/apperr"
	"github.com/arueda/gestion/internal/models"
)

// CreatePerson persists a new plan member identity.
func (s *SQLiteStore) CreatePerson(ctx context.Context, person *models.Person) error {
	if person.ID == "" {
		person.ID = uuid.New().String()
	}

	var userID any
	if person.UserID != "" {
		userID = person.UserID
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO persons (id, plan_id, user_id, display_name, is_owner) VALUES (?, ?, ?, ?, ?)",
		person.ID, person.PlanID, userID, person.DisplayName, person.IsOwner,
	)
	if err != nil {
		return apperr.Store("failed to insert person", err)
	}
	s.hub.notify(person.PlanID)
	return nil
}

// GetPerson retrieves a person by ID.
func (s *SQLiteStore) GetPerson(ctx context.Context, personID string) (*models.Person, error) {
	return scanPerson(s.db.QueryRowContext(ctx,
		"SELECT id, plan_id, user_id, display_name, is_owner FROM persons WHERE id = ?",
		personID,
	), personID)
}

// ListPersons retrieves all persons of a plan, owner first then by name.
func (s *SQLiteStore) ListPersons(ctx context.Context, planID string) ([]*models.Person, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, plan_id, user_id, display_name, is_owner FROM persons
		 WHERE plan_id = ? ORDER BY is_owner DESC, display_name, id`,
		planID,
	)
	if err != nil {
		return nil, apperr.Store("failed to list persons", err)
	}
	defer rows.Close()

	var persons []*models.Person
	for rows.Next() {
		person := &models.Person{}
		var userID sql.NullString
		if err := rows.Scan(&person.ID, &person.PlanID, &userID, &person.DisplayName, &person.IsOwner); err != nil {
			return nil, apperr.Store("failed to scan person", err)
		}
		person.UserID = userID.String
		persons = append(persons, person)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Store("failed to iterate persons", err)
	}
	return persons, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPerson(row rowScanner, personID string) (*models.Person, error) {
	person := &models.Person{}
	var userID sql.NullString
	err := row.Scan(&person.ID, &person.PlanID, &userID, &person.DisplayName, &person.IsOwner)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("person not found: %s", personID)
	}
	if err != nil {
		return nil, apperr.Store("failed to get person", err)
	}
	person.UserID = userID.String
	return person, nil
}
