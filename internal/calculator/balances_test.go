package calculator

import (
	"math"
	"testing"

	"github.com/arueda/gestion/internal/models"
)

func people(names ...string) []*models.Person {
	out := make([]*models.Person, len(names))
	for i, n := range names {
		out[i] = &models.Person{ID: n, PlanID: "plan", DisplayName: n}
	}
	return out
}

func contribution(payer string, amount float64) *models.ContributionRecord {
	return &models.ContributionRecord{PlanID: "plan", PayerID: payer, Amount: amount}
}

func settlement(payer string, amount float64) *models.ContributionRecord {
	return &models.ContributionRecord{PlanID: "plan", PayerID: payer, Amount: amount, Settlement: true}
}

func balanceOf(t *testing.T, balances []Balance, personID string) Balance {
	t.Helper()
	for _, b := range balances {
		if b.PersonID == personID {
			return b
		}
	}
	t.Fatalf("no balance for %s", personID)
	return Balance{}
}

func TestComputeBalances(t *testing.T) {
	tests := []struct {
		name     string
		people   []*models.Person
		records  []*models.ContributionRecord
		validate func(t *testing.T, balances []Balance)
	}{
		{
			name:   "three members uneven contributions",
			people: people("P1", "P2", "P3"),
			records: []*models.ContributionRecord{
				contribution("P1", 200),
				contribution("P2", 100),
			},
			validate: func(t *testing.T, balances []Balance) {
				// total=300, perHead=100 => P1:-100, P2:0, P3:+100
				if got := balanceOf(t, balances, "P1").Balance; math.Abs(got-(-100)) > Epsilon {
					t.Errorf("P1 balance = %v, want -100", got)
				}
				if got := balanceOf(t, balances, "P2").Balance; math.Abs(got) > Epsilon {
					t.Errorf("P2 balance = %v, want 0", got)
				}
				if got := balanceOf(t, balances, "P3").Balance; math.Abs(got-100) > Epsilon {
					t.Errorf("P3 balance = %v, want +100", got)
				}
			},
		},
		{
			name:   "settlement raises payer effective contribution",
			people: people("A", "B"),
			records: []*models.ContributionRecord{
				contribution("A", 100),
				settlement("B", 50),
				settlement("A", -50),
			},
			validate: func(t *testing.T, balances []Balance) {
				a := balanceOf(t, balances, "A")
				b := balanceOf(t, balances, "B")
				// Pool total stays 100, perHead 50. A: effective 100-50=50,
				// B: effective 0+50=50. Both settle to zero.
				if math.Abs(a.Effective-50) > Epsilon || math.Abs(b.Effective-50) > Epsilon {
					t.Errorf("effective = %v/%v, want 50/50", a.Effective, b.Effective)
				}
				if math.Abs(a.Balance) > Epsilon || math.Abs(b.Balance) > Epsilon {
					t.Errorf("balances = %v/%v, want 0/0", a.Balance, b.Balance)
				}
			},
		},
		{
			name:    "no people yields no balances",
			people:  nil,
			records: []*models.ContributionRecord{contribution("ghost", 40)},
			validate: func(t *testing.T, balances []Balance) {
				if len(balances) != 0 {
					t.Errorf("expected empty balances, got %d", len(balances))
				}
			},
		},
		{
			name:    "single member carries the whole pool",
			people:  people("solo"),
			records: []*models.ContributionRecord{contribution("solo", 75)},
			validate: func(t *testing.T, balances []Balance) {
				b := balanceOf(t, balances, "solo")
				if math.Abs(b.Balance) > Epsilon {
					t.Errorf("solo balance = %v, want 0", b.Balance)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			balances := ComputeBalances(tt.people, tt.records)
			tt.validate(t, balances)
		})
	}
}

// Sum of effective contributions must equal pool total plus total adjustments,
// and balances must sum to ~0, for any snapshot.
func TestComputeBalances_ConservationProperties(t *testing.T) {
	members := people("A", "B", "C", "D")
	records := []*models.ContributionRecord{
		contribution("A", 120.33),
		contribution("B", 19.99),
		contribution("C", 0.45),
		contribution("A", 33.33),
		settlement("D", 40),
		settlement("A", -40),
		settlement("C", 12.5),
	}

	balances := ComputeBalances(members, records)

	var sumEffective, sumAdjustment, sumBalance float64
	for _, b := range balances {
		sumEffective += b.Effective
		sumAdjustment += b.Adjustment
		sumBalance += b.Balance
	}
	total := PoolTotal(records)

	if math.Abs(sumEffective-(total+sumAdjustment)) > Epsilon {
		t.Errorf("sum(effective) = %v, want total+adjustments = %v", sumEffective, total+sumAdjustment)
	}
	// Balances only sum to zero when adjustments cancel pairwise; here the
	// unpaired C settlement shifts the sum by exactly -12.5.
	if math.Abs(sumBalance-(-12.5)) > Epsilon {
		t.Errorf("sum(balance) = %v, want -12.5", sumBalance)
	}
}

func TestComputeBalances_PairedSettlementsSumToZero(t *testing.T) {
	members := people("A", "B", "C")
	records := []*models.ContributionRecord{
		contribution("A", 90),
		contribution("B", 30),
		settlement("C", 40),
		settlement("A", -40),
	}

	var sum float64
	for _, b := range ComputeBalances(members, records) {
		sum += b.Balance
	}
	if math.Abs(sum) > Epsilon {
		t.Errorf("sum(balance) = %v, want ~0", sum)
	}
}

func TestComputeBalances_DoesNotMutateInputs(t *testing.T) {
	members := people("A", "B")
	records := []*models.ContributionRecord{contribution("A", 10)}

	_ = ComputeBalances(members, records)

	if records[0].Amount != 10 || records[0].Settlement {
		t.Errorf("input record mutated: %+v", records[0])
	}
}
