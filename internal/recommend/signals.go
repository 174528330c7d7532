package recommend

import (
	"sort"

	"github.com/gastosmart/backend/internal/domain"
)

// Signals are the aggregates the rules evaluate. Category and merchant
// groupings retain first-seen order; together with the ranker's stable sort
// that makes a rerun over identical input byte-identical.
type Signals struct {
	Income  float64
	Expense float64
	Balance float64

	Categories []CategoryTotal
	Merchants  []MerchantCharges

	SmallExpenseCount int
	SmallExpenseSum   float64

	// TransactionCount counts raw records, classified or not. The no-data
	// rule keys off it, not off the classified subset.
	TransactionCount int
}

// CategoryTotal is the summed expense for one category.
type CategoryTotal struct {
	Name   string
	Amount float64
}

// MerchantCharges collects the expense amounts seen for one merchant key.
type MerchantCharges struct {
	Key     string
	Amounts []float64
}

// BuildSignals normalizes and aggregates raw records in a single pass.
// Records that classify as neither income nor expense contribute nothing
// beyond the raw count.
func BuildSignals(raw []map[string]interface{}, smallExpenseThreshold float64) Signals {
	s := Signals{TransactionCount: len(raw)}

	catIndex := make(map[string]int)
	merchantIndex := make(map[string]int)

	for _, record := range raw {
		t := domain.Normalize(record)
		switch t.Kind {
		case domain.KindIncome:
			s.Income += t.Amount
		case domain.KindExpense:
			s.Expense += t.Amount

			cat := t.Category
			if cat == "" {
				cat = domain.FallbackCategory
			}
			if i, ok := catIndex[cat]; ok {
				s.Categories[i].Amount += t.Amount
			} else {
				catIndex[cat] = len(s.Categories)
				s.Categories = append(s.Categories, CategoryTotal{Name: cat, Amount: t.Amount})
			}

			if t.Merchant != "" {
				if i, ok := merchantIndex[t.Merchant]; ok {
					s.Merchants[i].Amounts = append(s.Merchants[i].Amounts, t.Amount)
				} else {
					merchantIndex[t.Merchant] = len(s.Merchants)
					s.Merchants = append(s.Merchants, MerchantCharges{Key: t.Merchant, Amounts: []float64{t.Amount}})
				}
			}

			if t.Amount <= smallExpenseThreshold {
				s.SmallExpenseCount++
				s.SmallExpenseSum += t.Amount
			}
		}
	}

	s.Balance = s.Income - s.Expense
	return s
}

// TopCategories returns up to n categories sorted by amount descending.
// Equal amounts keep first-seen order.
func (s Signals) TopCategories(n int) []CategoryTotal {
	sorted := make([]CategoryTotal, len(s.Categories))
	copy(sorted, s.Categories)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Amount > sorted[j].Amount
	})
	if n > 0 && n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}
