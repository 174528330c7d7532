// Package regional carries the market configuration (currency, locale,
// category taxonomy) and the locale-aware number formatting built on it.
// The engine is handed a Formatter at construction; it never reads locale
// state on its own.
package regional

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Currency describes the display currency.
type Currency struct {
	Code   string `json:"code" yaml:"code"`
	Symbol string `json:"symbol" yaml:"symbol"`
	Name   string `json:"name" yaml:"name"`
}

// Settings is the regional configuration served at /api/config/regional and
// used for amount formatting.
type Settings struct {
	Country           string   `json:"country" yaml:"country"`
	Currency          Currency `json:"currency" yaml:"currency"`
	Timezone          string   `json:"timezone" yaml:"timezone"`
	DateFormat        string   `json:"date_format" yaml:"date_format"`
	NumberFormat      string   `json:"number_format" yaml:"number_format"`
	ExpenseCategories []string `json:"expense_categories" yaml:"expense_categories"`
}

// Default returns the Colombian market configuration the product ships
// with.
func Default() Settings {
	return Settings{
		Country: "Colombia",
		Currency: Currency{
			Code:   "COP",
			Symbol: "$",
			Name:   "Peso colombiano",
		},
		Timezone:     "America/Bogota",
		DateFormat:   "DD/MM/YYYY",
		NumberFormat: "es-CO",
		ExpenseCategories: []string{
			"Alimentación",
			"Transporte",
			"Vivienda",
			"Servicios",
			"Entretenimiento",
			"Salud",
			"Educación",
			"Ropa",
			"Otros",
		},
	}
}

// Formatter renders amounts under the configured locale.
type Formatter struct {
	printer  *message.Printer
	settings Settings
}

// NewFormatter builds a Formatter for the settings locale. An unparseable
// locale falls back to es.
func NewFormatter(s Settings) *Formatter {
	tag, err := language.Parse(s.NumberFormat)
	if err != nil {
		tag = language.Spanish
	}
	return &Formatter{printer: message.NewPrinter(tag), settings: s}
}

// Settings returns the configuration the formatter was built with.
func (f *Formatter) Settings() Settings {
	return f.settings
}

// GroupedAmount renders an amount rounded to whole units with locale
// grouping separators: 50000 becomes "50.000" under es-CO.
func (f *Formatter) GroupedAmount(v float64) string {
	return f.printer.Sprint(number.Decimal(math.Round(v), number.MaxFractionDigits(0)))
}
