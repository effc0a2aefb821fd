package calculator

import (
	"math"
	"sort"
)

// Epsilon is the float-noise threshold: residual balances at or below it are
// rounding noise and never produce payments.
const Epsilon = 0.01

// Payment is one advisory debt-clearing transfer. The matcher never mutates
// the ledger; executing a payment is the settlement executor's job.
type Payment struct {
	FromID   string
	FromName string
	ToID     string
	ToName   string
	Amount   float64
}

// MatchSettlements turns a balance snapshot into a minimal payment list using
// greedy two-pointer matching: largest debtor against largest creditor until
// one side is exhausted.
//
// The input is not mutated. For a fixed snapshot the output is deterministic:
// debtors sort by balance descending, creditors by magnitude descending, ties
// broken by original list order. At most debtors+creditors-1 payments are
// emitted.
func MatchSettlements(balances []Balance) []Payment {
	var debtors, creditors []Balance
	for _, b := range balances {
		switch {
		case b.Balance > Epsilon:
			debtors = append(debtors, b)
		case b.Balance < -Epsilon:
			creditors = append(creditors, b)
		}
	}

	sort.SliceStable(debtors, func(i, j int) bool {
		return debtors[i].Balance > debtors[j].Balance
	})
	sort.SliceStable(creditors, func(i, j int) bool {
		return -creditors[i].Balance > -creditors[j].Balance
	})

	// Local counters so the caller's snapshot stays untouched.
	owed := make([]float64, len(debtors))
	for i, d := range debtors {
		owed[i] = d.Balance
	}
	due := make([]float64, len(creditors))
	for j, c := range creditors {
		due[j] = -c.Balance
	}

	var payments []Payment
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		pay := math.Min(owed[i], due[j])
		if pay > Epsilon {
			payments = append(payments, Payment{
				FromID:   debtors[i].PersonID,
				FromName: debtors[i].DisplayName,
				ToID:     creditors[j].PersonID,
				ToName:   creditors[j].DisplayName,
				Amount:   pay,
			})
		}
		owed[i] -= pay
		due[j] -= pay
		if owed[i] <= Epsilon {
			i++
		}
		if due[j] <= Epsilon {
			j++
		}
	}
	return payments
}

// Balanced reports whether every balance is within Epsilon of zero, i.e. the
// matcher would emit no payments.
func Balanced(balances []Balance) bool {
	for _, b := range balances {
		if math.Abs(b.Balance) > Epsilon {
			return false
		}
	}
	return true
}
