package recommend

import (
	"fmt"
	"math"

	"github.com/gastosmart/backend/internal/domain"
)

const (
	// Only the top spending categories are checked for concentration.
	topCategoryCount = 5
	// Charges from the same merchant key needed to flag a subscription.
	minSubscriptionCharges = 3
)

// rule produces zero or more candidates from the aggregated signals. Rules
// share nothing but the signals; their registration order in rules() is the
// tie-break order for equal scores under the stable sort.
type rule func(s Signals, prefs domain.UserSettings) []domain.Recommendation

func (e *Engine) rules() []rule {
	return []rule{
		e.balanceRule,
		e.categoryConcentrationRule,
		e.subscriptionRule,
		e.smallExpensesRule,
		e.expenseRatioRule,
		e.spendingLimitRule,
		e.suggestGoalRule,
		e.savingGoalRule,
		e.tipsRule,
	}
}

// balanceRule emits exactly one of no_income, negative_balance,
// low_saving_margin or healthy_balance.
func (e *Engine) balanceRule(s Signals, prefs domain.UserSettings) []domain.Recommendation {
	switch {
	case s.Income == 0 && s.Expense > 0:
		return []domain.Recommendation{candidate(
			"no_income",
			"No se detectaron ingresos",
			"Registra tus ingresos para obtener recomendaciones más precisas.",
			1.0,
			"Registrar ingreso",
		)}
	case s.Balance < 0:
		return []domain.Recommendation{candidate(
			"negative_balance",
			"Gastas más de lo que ingresas",
			fmt.Sprintf("Tus gastos (%.0f) superan tus ingresos (%.0f). Considera reducir gastos.", s.Expense, s.Income),
			0.98,
			"Revisar presupuesto",
		)}
	case s.Income > 0 && s.Balance/s.Income < 0.05:
		return []domain.Recommendation{candidate(
			"low_saving_margin",
			"Margen de ahorro bajo",
			fmt.Sprintf("Tu ahorro es %.1f%% de tus ingresos. Intenta ahorrar al menos 5-10%%.", s.Balance/s.Income*100),
			0.9,
			"Crear meta de ahorro",
		)}
	default:
		return []domain.Recommendation{candidate(
			"healthy_balance",
			"Balance saludable",
			"Tu balance es positivo. Considera crear o aumentar metas de ahorro.",
			0.2,
			"Crear o aumentar meta",
		)}
	}
}

// categoryConcentrationRule flags categories eating a large share of total
// expense. Only the top categories by amount are considered, each emitting
// its own candidate.
func (e *Engine) categoryConcentrationRule(s Signals, prefs domain.UserSettings) []domain.Recommendation {
	if s.Expense <= 0 {
		return nil
	}

	var out []domain.Recommendation
	for _, cat := range s.TopCategories(topCategoryCount) {
		pct := cat.Amount / s.Expense * 100
		switch {
		case pct >= 30:
			out = append(out, candidate(
				"reduce_category",
				fmt.Sprintf("Reduce gastos en %s", cat.Name),
				fmt.Sprintf("Has gastado %.1f%% en %s (%.0f). Revisa suscripciones y hábitos.", pct, cat.Name, cat.Amount),
				0.95,
				fmt.Sprintf("Revisar gastos en %s", cat.Name),
			))
		case pct >= 15:
			out = append(out, candidate(
				"monitor_category",
				fmt.Sprintf("Vigila %s", cat.Name),
				fmt.Sprintf("%.1f%% de tus gastos están en %s. Considera reducir un 10%% para ahorrar.", pct, cat.Name),
				0.6,
				fmt.Sprintf("Reducir gastos en %s", cat.Name),
			))
		}
	}
	return out
}

// subscriptionRule flags merchant keys with repeated charges, one candidate
// per merchant, amount shown as the average charge.
func (e *Engine) subscriptionRule(s Signals, prefs domain.UserSettings) []domain.Recommendation {
	var out []domain.Recommendation
	for _, m := range s.Merchants {
		if len(m.Amounts) < minSubscriptionCharges {
			continue
		}
		var sum float64
		for _, a := range m.Amounts {
			sum += a
		}
		avg := sum / float64(len(m.Amounts))
		out = append(out, candidate(
			"possible_subscription",
			fmt.Sprintf("Revisa posible suscripción: %s", m.Key),
			fmt.Sprintf("Se detectaron %d cargos frecuentes (~%.0f) en %s.", len(m.Amounts), avg, m.Key),
			0.85,
			"Revisar suscripción",
		))
	}
	return out
}

func (e *Engine) smallExpensesRule(s Signals, prefs domain.UserSettings) []domain.Recommendation {
	if s.Income <= 0 || s.SmallExpenseCount < 3 || s.SmallExpenseSum <= s.Income*0.10 {
		return nil
	}
	return []domain.Recommendation{candidate(
		"many_small_expenses",
		"Gastos pequeños que suman mucho",
		fmt.Sprintf("Tienes %d gastos pequeños que suman %.0f, más del 10%% de tus ingresos.", s.SmallExpenseCount, s.SmallExpenseSum),
		0.8,
		"Consolidar o reducir gastos pequeños",
	)}
}

func (e *Engine) expenseRatioRule(s Signals, prefs domain.UserSettings) []domain.Recommendation {
	if s.Income <= 0 || s.Expense <= s.Income*0.7 {
		return nil
	}
	return []domain.Recommendation{candidate(
		"high_expense_ratio",
		"Gastos muy altos en relación a ingresos",
		"Tus gastos superan el 70% de tus ingresos. Revisa prioridades y reduce gastos no esenciales.",
		0.9,
		"Reducir gastos no esenciales",
	)}
}

// spendingLimitRule compares expense against the configured limit. An unset
// limit emits nothing; a set limit always emits one of the pair. The
// within_limit candidate carries no suggested action.
func (e *Engine) spendingLimitRule(s Signals, prefs domain.UserSettings) []domain.Recommendation {
	if prefs.SpendingLimit == nil {
		return nil
	}
	limit := *prefs.SpendingLimit
	if s.Expense > limit {
		return []domain.Recommendation{candidate(
			"over_limit",
			"Has superado tu límite de gastos",
			fmt.Sprintf("Tus gastos (%.0f) exceden el límite configurado (%.0f).", s.Expense, limit),
			0.92,
			"Revisar límite o reducir gastos",
		)}
	}
	return []domain.Recommendation{candidate(
		"within_limit",
		"Dentro del límite",
		fmt.Sprintf("Estás dentro del límite mensual (%.0f).", limit),
		0.25,
		"",
	)}
}

func (e *Engine) suggestGoalRule(s Signals, prefs domain.UserSettings) []domain.Recommendation {
	if prefs.SavingsGoal != nil || s.Income <= 0 {
		return nil
	}
	suggested := math.Round(s.Income * e.goalFraction)
	return []domain.Recommendation{candidate(
		"suggest_goal",
		"Crea una meta de ahorro",
		fmt.Sprintf("Sugerimos una meta inicial de %s mensuales (≈10%% de tus ingresos).", e.format.GroupedAmount(suggested)),
		0.7,
		"Crear meta",
	)}
}

// savingGoalRule is the mutually exclusive missed/achieved pair, armed only
// when a savings goal is set. Neither side carries a suggested action.
func (e *Engine) savingGoalRule(s Signals, prefs domain.UserSettings) []domain.Recommendation {
	if prefs.SavingsGoal == nil {
		return nil
	}
	goal := *prefs.SavingsGoal
	if s.Balance < goal {
		return []domain.Recommendation{candidate(
			"miss_saving_goal",
			"No alcanzas la meta de ahorro",
			fmt.Sprintf("No alcanzaste la meta de ahorro mensual (%.0f). Reduce gastos no esenciales.", goal),
			0.85,
			"",
		)}
	}
	return []domain.Recommendation{candidate(
		"achieved_saving_goal",
		"Meta de ahorro cumplida",
		fmt.Sprintf("Has alcanzado o superado la meta de ahorro (%.0f). ¡Buen trabajo!", goal),
		0.4,
		"",
	)}
}

// tipsRule always emits the two low-priority habit tips.
func (e *Engine) tipsRule(s Signals, prefs domain.UserSettings) []domain.Recommendation {
	return []domain.Recommendation{
		candidate(
			"daily_tracking",
			"Registra tus movimientos",
			"Llevar control diario ayuda a identificar fugas de dinero.",
			0.05,
			"Registrar diariamente",
		),
		candidate(
			"automate_saving",
			"Ahorro automático",
			"Automatiza un porcentaje (ej. 5-20%) para construir el hábito de ahorrar.",
			0.04,
			"Configurar transferencia automática",
		),
	}
}

// noDataCandidate is prepended when the user has no transactions at all.
func noDataCandidate() domain.Recommendation {
	return candidate(
		"no_data",
		"No hay datos suficientes",
		"Registra ingresos y gastos para obtener recomendaciones personalizadas.",
		1.0,
		"Registrar transacciones",
	)
}

// candidate builds a Recommendation; an empty action becomes a null
// suggested_action in the payload.
func candidate(recType, title, detail string, score float64, action string) domain.Recommendation {
	c := domain.Recommendation{
		Type:   recType,
		Title:  title,
		Detail: detail,
		Score:  &score,
	}
	if action != "" {
		c.SuggestedAction = &action
	}
	return c
}
