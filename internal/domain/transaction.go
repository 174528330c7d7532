package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// FallbackCategory groups expense records that carry no usable category.
const FallbackCategory = "Sin categoría"

// Kind classifies a transaction for aggregation purposes.
type Kind string

const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
	// KindOther marks records whose type label matches neither vocabulary.
	// They are kept out of every aggregate.
	KindOther Kind = "other"
)

// Type labels recognized by the classifier. Matching is done on the
// lowercased label; labels outside both sets classify as KindOther.
var (
	incomeLabels  = map[string]bool{"ingreso": true, "income": true, "in": true, "deposit": true}
	expenseLabels = map[string]bool{"gasto": true, "expense": true, "out": true, "withdrawal": true}
)

// Transaction is the canonical shape produced by Normalize. Raw records come
// out of the document store as loose maps with no schema guarantee; every
// field here is defaulted rather than required.
type Transaction struct {
	Kind        Kind
	Type        string // raw type label as stored
	Amount      float64
	Category    string // may be empty, grouping applies the fallback
	Merchant    string // trimmed, lowercased merchant-or-description key
	Description string
}

// Normalize converts a raw transaction record into a Transaction. It never
// fails: missing fields default to zero values and unparseable amounts
// degrade to 0.
func Normalize(raw map[string]interface{}) Transaction {
	if raw == nil {
		return Transaction{Kind: KindOther}
	}

	label := strings.ToLower(stringField(raw, "type"))

	merchant := stringField(raw, "merchant")
	if merchant == "" {
		merchant = stringField(raw, "description")
	}

	return Transaction{
		Kind:        classify(label),
		Type:        label,
		Amount:      ParseAmount(raw["amount"]),
		Category:    stringField(raw, "category"),
		Merchant:    strings.ToLower(strings.TrimSpace(merchant)),
		Description: stringField(raw, "description"),
	}
}

func classify(label string) Kind {
	switch {
	case incomeLabels[label]:
		return KindIncome
	case expenseLabels[label]:
		return KindExpense
	default:
		return KindOther
	}
}

// IsIncome reports whether the record classified as income.
func (t Transaction) IsIncome() bool { return t.Kind == KindIncome }

// IsExpense reports whether the record classified as expense.
func (t Transaction) IsExpense() bool { return t.Kind == KindExpense }

// ParseAmount coerces an amount value of unknown type to a float64. Strings
// are tried as-is first, then with thousands separators stripped. Anything
// unparseable yields 0 so that one malformed record never poisons a batch.
func ParseAmount(v interface{}) float64 {
	switch val := v.(type) {
	case nil:
		return 0
	case float64:
		return val
	case float32:
		return float64(val)
	case int:
		return float64(val)
	case int64:
		return float64(val)
	case json.Number:
		if f, err := val.Float64(); err == nil {
			return f
		}
		f, _ := parseAmountString(val.String())
		return f
	case string:
		f, _ := parseAmountString(val)
		return f
	default:
		f, _ := parseAmountString(fmt.Sprint(val))
		return f
	}
}

func parseAmountString(s string) (float64, bool) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// stringField reads m[key] as a string. Non-string values are rendered with
// their default formatting instead of being dropped, matching the tolerance
// the rest of normalization has for loosely typed documents.
func stringField(m map[string]interface{}, key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
