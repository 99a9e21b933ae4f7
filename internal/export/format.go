// Package export renders a computed budget and its narrative as plain text,
// PDF and XLSX.
package export

import (
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/Simplici0/discovery/internal/pricing"
)

// Document is everything an export needs. Exports never recalculate: the
// budget is rendered exactly as stored.
type Document struct {
	Title         string
	CompanyName   string
	Sector        string
	Date          time.Time
	Currency      string
	TariffVersion string
	Budget        pricing.BudgetResult
	Report        string
}

func (d Document) title() string {
	if d.Title != "" {
		return d.Title
	}
	if d.CompanyName != "" {
		return "Propuesta " + d.CompanyName
	}
	return "Propuesta"
}

// Money formats a whole-unit amount the Spanish way: "13.120 €".
func Money(amount float64, currency string) string {
	return humanize.FormatFloat("#.###,", amount) + " " + currencySymbol(currency)
}

func currencySymbol(currency string) string {
	switch strings.ToUpper(currency) {
	case "", "EUR":
		return "€"
	case "USD":
		return "$"
	case "GBP":
		return "£"
	default:
		return currency
	}
}
