package export

import (
	"fmt"
	"strings"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/Simplici0/discovery/internal/pricing"
)

// reportLineWidth is roughly how many characters of 9pt text fit across an
// A4 page with 10mm margins.
const reportLineWidth = 105

var (
	grey        = &props.Color{Red: 100, Green: 100, Blue: 100}
	headerColor = &props.Color{Red: 33, Green: 37, Blue: 41}
)

// PDF renders d as an A4 proposal.
func PDF(d Document) ([]byte, error) {
	cfg := config.NewBuilder().
		WithOrientation(orientation.Vertical).
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).
		WithTopMargin(10).
		WithRightMargin(10).
		WithPageNumber(props.PageNumber{
			Pattern: "Página {current} de {total}",
			Place:   props.RightBottom,
			Size:    7,
			Color:   &props.Color{Red: 120, Green: 120, Blue: 120},
		}).
		Build()

	m := maroto.New(cfg)

	addHeader(m, d)
	addSection(m, "SERVICIOS DE IMPLANTACIÓN (pago único)", d.Budget.Services, d.Currency,
		func(l pricing.BudgetLineItem) float64 { return l.OneTime })
	addTotal(m, "Total inversión inicial", d.Budget.TotalOneTime, d.Currency)
	addSection(m, "CUOTAS RECURRENTES (anuales)", d.Budget.Recurring, d.Currency,
		func(l pricing.BudgetLineItem) float64 { return l.Recurring })
	addTotal(m, "Total recurrente anual", d.Budget.TotalRecurringYearly, d.Currency)
	addReport(m, d.Report)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate proposal pdf: %w", err)
	}
	return doc.GetBytes(), nil
}

func addHeader(m core.Maroto, d Document) {
	m.AddRows(
		row.New(10).Add(
			col.New(8).Add(text.New(d.title(), props.Text{
				Size:  14,
				Style: fontstyle.Bold,
				Align: align.Left,
				Color: headerColor,
			})),
			col.New(4).Add(text.New("PROPUESTA ECONÓMICA", props.Text{
				Size:  10,
				Style: fontstyle.Bold,
				Align: align.Right,
			})),
		),
	)

	meta := make([]string, 0, 3)
	if d.Sector != "" {
		meta = append(meta, "Sector: "+d.Sector)
	}
	if !d.Date.IsZero() {
		meta = append(meta, "Fecha: "+d.Date.Format("02/01/2006"))
	}
	if d.TariffVersion != "" {
		meta = append(meta, "Tarifa "+d.TariffVersion)
	}
	if len(meta) > 0 {
		m.AddRows(row.New(6).Add(
			col.New(12).Add(text.New(strings.Join(meta, " | "), props.Text{Size: 8, Color: grey})),
		))
	}
	m.AddRows(row.New(4))
}

func addSection(m core.Maroto, title string, lines []pricing.BudgetLineItem, currency string, amount func(pricing.BudgetLineItem) float64) {
	label := props.Text{Size: 8, Style: fontstyle.Bold, Align: align.Left, Color: grey}
	m.AddRows(row.New(7).Add(
		col.New(9).Add(text.New(title, label)),
		col.New(3).Add(text.New("Importe", props.Text{Size: 8, Style: fontstyle.Bold, Align: align.Right, Color: grey})),
	))

	if len(lines) == 0 {
		m.AddRows(row.New(6).Add(col.New(12).Add(text.New("Sin conceptos", props.Text{Size: 8, Color: grey}))))
		return
	}
	for _, l := range lines {
		m.AddRows(row.New(6).Add(
			col.New(9).Add(text.New(l.Concept, props.Text{Size: 9, Align: align.Left})),
			col.New(3).Add(text.New(Money(amount(l), currency), props.Text{Size: 9, Align: align.Right})),
		))
	}
}

func addTotal(m core.Maroto, label string, value float64, currency string) {
	bold := props.Text{Size: 10, Style: fontstyle.Bold, Align: align.Right}
	m.AddRows(
		row.New(8).Add(
			col.New(9).Add(text.New(label, bold)),
			col.New(3).Add(text.New(Money(value, currency), bold)),
		),
		row.New(4),
	)
}

func addReport(m core.Maroto, report string) {
	report = strings.TrimSpace(report)
	if report == "" {
		return
	}

	m.AddRows(row.New(8).Add(col.New(12).Add(text.New("RESUMEN DE LA PROPUESTA", props.Text{
		Size:  10,
		Style: fontstyle.Bold,
		Color: headerColor,
	}))))

	style := props.Text{Size: 9, Align: align.Left}
	for _, line := range wrapLines(report, reportLineWidth) {
		if line == "" {
			m.AddRows(row.New(2))
			continue
		}
		m.AddRows(row.New(5).Add(col.New(12).Add(text.New(line, style))))
	}
}

// wrapLines splits s on newlines and breaks long lines at word boundaries so
// each fits a fixed-height row.
func wrapLines(s string, width int) []string {
	var out []string
	for _, para := range strings.Split(s, "\n") {
		para = strings.TrimRight(para, " \t\r")
		if para == "" {
			out = append(out, "")
			continue
		}

		var cur []rune
		for _, word := range strings.Fields(para) {
			w := []rune(word)
			if len(cur) > 0 && len(cur)+1+len(w) > width {
				out = append(out, string(cur))
				cur = cur[:0]
			}
			if len(cur) > 0 {
				cur = append(cur, ' ')
			}
			cur = append(cur, w...)
		}
		out = append(out, string(cur))
	}
	return out
}
