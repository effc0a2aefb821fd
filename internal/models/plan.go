package models

// Distribution modes for a plan's per-head share.
const (
	DistributionEqual  = "equal"
	DistributionCustom = "custom"
)

// Plan represents a shared-expense plan with multiple contributing members.
type Plan struct {
	// ID is the unique identifier for the plan (UUID format).
	ID string

	// Title is the display name of the plan (e.g. "Trip to Lisbon").
	Title string

	// OwnerID is the user ID of the plan owner.
	OwnerID string

	// MemberIDs is the set of registered user IDs belonging to the plan.
	// Unregistered members exist only as Person records.
	MemberIDs []string

	// Distribution is the share mode: DistributionEqual or DistributionCustom.
	Distribution string

	// CreatedAt is the Unix timestamp when the plan was created.
	CreatedAt int64
}

// HasMember reports whether the given user ID is in the plan member set.
func (p *Plan) HasMember(userID string) bool {
	for _, id := range p.MemberIDs {
		if id == userID {
			return true
		}
	}
	return false
}
