// Package accounts defines the account-lookup and identity-lookup
// collaborators the settlement executor depends on. The interfaces stay small
// so the hosted app can plug in its real account service; the sqlite store
// implements both for self-contained deployments.
package accounts

import "context"

// Lookup answers whether a user identity has at least one linked financial
// account. The settlement executor uses it to decide between mirroring a
// payout into the plan ledger and parking it as a pending transaction.
type Lookup interface {
	HasLinkedAccount(ctx context.Context, userID string) (bool, error)
}

// Profiles resolves user IDs to display names for settlement descriptions.
// Cosmetic only: failures never abort a settlement.
type Profiles interface {
	DisplayName(ctx context.Context, userID string) (string, error)
}

// Directory bundles both collaborators.
type Directory interface {
	Lookup
	Profiles
}
