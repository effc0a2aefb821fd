package models

// PendingTransaction is a placeholder payout for a settlement receiver who has
// no linked financial account. It lives outside the plan ledger and awaits
// manual reconciliation.
type PendingTransaction struct {
	// ID is the unique identifier for the transaction (UUID format).
	ID string

	// PlanID is the plan the originating settlement belongs to.
	PlanID string

	// PersonID is the receiving Person.
	PersonID string

	// UserID is the receiving user account, when the person is registered.
	UserID string

	// Amount is the payout amount owed to the receiver.
	Amount float64

	// Description is a short human-readable note.
	Description string

	// Pending is true until the payout has been reconciled manually.
	Pending bool

	// CreatedAt is the Unix timestamp when the transaction was created.
	CreatedAt int64
}
