package models

// ContributionRecord is one entry in a plan's ledger. Non-settlement records
// represent pool contributions; settlement records represent debt-clearing
// payments between members. Settlement amounts may be negative: the mirrored
// half of a settlement pair lowers the receiver's effective contribution need.
type ContributionRecord struct {
	// ID is the unique identifier for the record (UUID format).
	ID string

	// PlanID is the plan this record belongs to.
	PlanID string

	// PayerID is the Person the record is booked against.
	PayerID string

	// Amount is the record value. Positive for contributions and for the
	// paying half of a settlement; negative only for the mirrored half.
	Amount float64

	// Description is a short human-readable note.
	Description string

	// Date is the Unix timestamp the contribution or payment is dated at.
	Date int64

	// CreatedBy is the user ID that recorded the entry.
	CreatedBy string

	// Settlement marks debt-clearing payments as opposed to pool contributions.
	Settlement bool

	// ReceiverID is the Person on the other side of a settlement payment.
	// Empty on plain contributions.
	ReceiverID string

	// CreatedAt is the Unix timestamp when the record was written.
	CreatedAt int64
}
