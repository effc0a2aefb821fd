// Package calculator contains the pure ledger math: per-person balance
// computation and the greedy settlement matcher. Both functions take immutable
// snapshots and return fresh slices; they hold no state between calls and are
// re-run in full on every ledger change.
package calculator

import "github.com/arueda/gestion/internal/models"

// Balance is the derived financial position of one plan member.
type Balance struct {
	PersonID    string
	DisplayName string

	// Actual is the sum of the person's non-settlement record amounts.
	Actual float64

	// Adjustment is the sum of the person's settlement record amounts.
	// Paying off a debt counts as if the payer had contributed that amount,
	// so a settlement raises the payer's effective contribution; the mirrored
	// negative record lowers the receiver's.
	Adjustment float64

	// Effective is Actual + Adjustment.
	Effective float64

	// Balance is perHead - Effective.
	// Positive = debtor (owes money), negative = creditor (is owed).
	Balance float64
}

// ComputeBalances turns (people, records) into per-person balances.
//
//   - actual[p]     = sum of non-settlement amounts with payer p
//   - adjustment[p] = sum of settlement amounts with payer p
//   - perHead       = total actual / people count (0 when there are no people)
//   - balance[p]    = perHead - (actual[p] + adjustment[p])
//
// The result preserves the order of people. Records booked against a person
// not in the list do not count toward the pool total.
func ComputeBalances(people []*models.Person, records []*models.ContributionRecord) []Balance {
	actual := make(map[string]float64, len(people))
	adjustment := make(map[string]float64, len(people))
	for _, r := range records {
		if r.Settlement {
			adjustment[r.PayerID] += r.Amount
		} else {
			actual[r.PayerID] += r.Amount
		}
	}

	var total float64
	for _, p := range people {
		total += actual[p.ID]
	}

	perHead := 0.0
	if len(people) > 0 {
		perHead = total / float64(len(people))
	}

	balances := make([]Balance, len(people))
	for i, p := range people {
		effective := actual[p.ID] + adjustment[p.ID]
		balances[i] = Balance{
			PersonID:    p.ID,
			DisplayName: p.DisplayName,
			Actual:      actual[p.ID],
			Adjustment:  adjustment[p.ID],
			Effective:   effective,
			Balance:     perHead - effective,
		}
	}
	return balances
}

// PoolTotal sums the non-settlement record amounts.
func PoolTotal(records []*models.ContributionRecord) float64 {
	var total float64
	for _, r := range records {
		if !r.Settlement {
			total += r.Amount
		}
	}
	return total
}
