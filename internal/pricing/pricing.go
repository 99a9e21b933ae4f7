// Package pricing turns a discovery profile into an itemised budget using a
// versioned, data-driven tariff.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/Simplici0/discovery/internal/profile"
)

// BudgetLineItem is one labelled charge. Both amounts are always present;
// the one that does not apply is zero.
type BudgetLineItem struct {
	Concept   string  `json:"concept"`
	OneTime   float64 `json:"oneTime"`
	Recurring float64 `json:"recurring"`
}

// BudgetResult groups the one-time service lines, the recurring lines and
// their totals. It is always recomputed from scratch.
type BudgetResult struct {
	Services             []BudgetLineItem `json:"services"`
	Recurring            []BudgetLineItem `json:"recurring"`
	TotalOneTime         float64          `json:"totalOneTime"`
	TotalRecurringYearly float64          `json:"totalRecurringYearly"`
}

// CalculateBudget prices p with the embedded canonical tariff.
func CalculateBudget(p profile.ClientProfile) BudgetResult {
	return Default().Calculate(p)
}

// budgetBuilder accumulates rounded lines and keeps totals in decimal so
// they equal the sum of the lines exactly.
type budgetBuilder struct {
	services       []BudgetLineItem
	recurring      []BudgetLineItem
	totalOneTime   decimal.Decimal
	totalRecurring decimal.Decimal
}

func newBudgetBuilder() *budgetBuilder {
	return &budgetBuilder{
		services:  make([]BudgetLineItem, 0, 3),
		recurring: make([]BudgetLineItem, 0),
	}
}

func (b *budgetBuilder) addService(concept string, amount decimal.Decimal) {
	amount = roundCurrency(amount)
	b.totalOneTime = b.totalOneTime.Add(amount)
	b.services = append(b.services, BudgetLineItem{Concept: concept, OneTime: amount.InexactFloat64()})
}

func (b *budgetBuilder) addRecurring(concept string, amount decimal.Decimal) {
	amount = roundCurrency(amount)
	b.totalRecurring = b.totalRecurring.Add(amount)
	b.recurring = append(b.recurring, BudgetLineItem{Concept: concept, Recurring: amount.InexactFloat64()})
}

func (b *budgetBuilder) result() BudgetResult {
	return BudgetResult{
		Services:             b.services,
		Recurring:            b.recurring,
		TotalOneTime:         b.totalOneTime.InexactFloat64(),
		TotalRecurringYearly: b.totalRecurring.InexactFloat64(),
	}
}

// roundCurrency rounds to whole currency units, half away from zero.
func roundCurrency(d decimal.Decimal) decimal.Decimal {
	return d.Round(0)
}
