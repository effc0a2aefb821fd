// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/arueda/gestion/internal/models"
)

// Store defines the document-store capabilities the ledger engine consumes:
// typed CRUD, atomic multi-document batches and live change notification.
// This abstraction allows swapping backends (SQLite here, Firestore in the
// hosted app) without changing the service layer.
type Store interface {
	// CreatePlan persists a new plan together with its member set.
	// Plan.ID is populated by the store when empty.
	CreatePlan(ctx context.Context, plan *models.Plan) error

	// GetPlan retrieves a plan by ID, including its member set.
	GetPlan(ctx context.Context, planID string) (*models.Plan, error)

	// ListPlans retrieves the plans a user is a member of, newest first.
	ListPlans(ctx context.Context, userID string) ([]*models.Plan, error)

	// AddPlanMember adds a registered user to the plan member set.
	AddPlanMember(ctx context.Context, planID, userID string) error

	// DeletePlan removes a plan and everything owned by it.
	DeletePlan(ctx context.Context, planID string) error

	// CreatePerson persists a new plan member identity.
	CreatePerson(ctx context.Context, person *models.Person) error

	// GetPerson retrieves a person by ID.
	GetPerson(ctx context.Context, personID string) (*models.Person, error)

	// ListPersons retrieves all persons of a plan, owner first then by name.
	ListPersons(ctx context.Context, planID string) ([]*models.Person, error)

	// CreateRecord persists a new contribution or settlement record.
	// Record.ID and CreatedAt are populated by the store when empty.
	CreateRecord(ctx context.Context, record *models.ContributionRecord) error

	// GetRecord retrieves a record by ID.
	GetRecord(ctx context.Context, recordID string) (*models.ContributionRecord, error)

	// ListRecords retrieves all records of a plan, most recent first.
	ListRecords(ctx context.Context, planID string) ([]*models.ContributionRecord, error)

	// UpdateRecord rewrites an existing record.
	UpdateRecord(ctx context.Context, record *models.ContributionRecord) error

	// DeleteRecord removes a record by ID.
	DeleteRecord(ctx context.Context, recordID string) error

	// ListPendingTransactions retrieves unreconciled payouts for a plan.
	ListPendingTransactions(ctx context.Context, planID string) ([]*models.PendingTransaction, error)

	// RunBatch executes fn against a Batch whose writes land atomically:
	// either the full set of writes commits, or none does. Reads inside the
	// batch see a consistent snapshot and serve as precondition re-checks.
	RunBatch(ctx context.Context, planID string, fn func(b Batch) error) error

	// Watch returns a channel that receives a signal after every committed
	// change to the plan's documents, plus a cancel func that releases the
	// subscription. The channel is coalescing: a slow consumer sees at least
	// one signal for any burst of changes. Resubscribing restarts the watch.
	Watch(planID string) (<-chan struct{}, func())

	// Close releases any resources held by the store.
	Close() error
}

// Batch is the write set of one atomic operation. All mutations are applied
// together on commit; any error aborts the whole batch.
type Batch interface {
	GetPlan(planID string) (*models.Plan, error)
	GetPerson(personID string) (*models.Person, error)
	ListRecordsByPayer(planID, payerID string) ([]*models.ContributionRecord, error)

	CreateRecord(record *models.ContributionRecord) error
	UpdateRecord(record *models.ContributionRecord) error
	DeleteRecord(recordID string) error
	CreatePendingTransaction(tx *models.PendingTransaction) error

	// RemoveMember deletes the person and drops their user (if registered)
	// from the plan member set.
	RemoveMember(planID, personID string) error
}
