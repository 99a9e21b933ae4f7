package export

import (
	"fmt"
	"strings"

	"github.com/Simplici0/discovery/internal/pricing"
)

// BudgetText renders the itemised budget as plain text, one line per item,
// services first.
func BudgetText(b pricing.BudgetResult, currency string) string {
	var sb strings.Builder

	sb.WriteString("SERVICIOS DE IMPLANTACIÓN (pago único)\n")
	writeLines(&sb, b.Services, currency, func(l pricing.BudgetLineItem) float64 { return l.OneTime })
	fmt.Fprintf(&sb, "Total inversión inicial: %s\n", Money(b.TotalOneTime, currency))

	sb.WriteString("\nCUOTAS RECURRENTES (anuales)\n")
	writeLines(&sb, b.Recurring, currency, func(l pricing.BudgetLineItem) float64 { return l.Recurring })
	fmt.Fprintf(&sb, "Total recurrente anual: %s\n", Money(b.TotalRecurringYearly, currency))

	return sb.String()
}

func writeLines(sb *strings.Builder, lines []pricing.BudgetLineItem, currency string, amount func(pricing.BudgetLineItem) float64) {
	if len(lines) == 0 {
		sb.WriteString("- (sin conceptos)\n")
		return
	}
	for _, l := range lines {
		fmt.Fprintf(sb, "- %s: %s\n", l.Concept, Money(amount(l), currency))
	}
}

// DocumentText is the full plain-text export: header, budget and report.
func DocumentText(d Document) string {
	var sb strings.Builder
	sb.WriteString(d.title())
	sb.WriteString("\n")
	if !d.Date.IsZero() {
		fmt.Fprintf(&sb, "Fecha: %s\n", d.Date.Format("02/01/2006"))
	}
	if d.TariffVersion != "" {
		fmt.Fprintf(&sb, "Tarifa: %s\n", d.TariffVersion)
	}
	sb.WriteString("\n")
	sb.WriteString(BudgetText(d.Budget, d.Currency))
	if strings.TrimSpace(d.Report) != "" {
		sb.WriteString("\nRESUMEN DE LA PROPUESTA\n")
		sb.WriteString(strings.TrimSpace(d.Report))
		sb.WriteString("\n")
	}
	return sb.String()
}
