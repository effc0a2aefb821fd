package models

// Person is a plan member's ledger identity. It is owned by the Plan: created
// when a member joins and deleted when the member leaves.
type Person struct {
	// ID is the unique identifier for the person (UUID format).
	ID string

	// PlanID is the plan this person belongs to.
	PlanID string

	// UserID is the registered account behind this person.
	// Empty for unregistered members (invited by name only).
	UserID string

	// DisplayName is the name shown in ledgers and settlement descriptions.
	DisplayName string

	// IsOwner marks the plan owner's person record.
	IsOwner bool
}

// Registered reports whether the person is backed by a user account.
func (p *Person) Registered() bool {
	return p.UserID != ""
}
