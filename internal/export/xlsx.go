package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/Simplici0/discovery/internal/pricing"
)

// SheetName is the worksheet the budget is written to.
const SheetName = "Presupuesto"

// numFmtThousands is the built-in "#,##0" format; the spreadsheet applies
// the reader's locale separators.
const numFmtThousands = 3

// XLSX renders d as a single-sheet workbook: header rows, the services
// section, the recurring section and both totals. Amounts are numeric cells.
func XLSX(d Document) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}
	if err := f.SetColWidth(SheetName, "A", "A", 60); err != nil {
		return nil, fmt.Errorf("set col width: %w", err)
	}
	if err := f.SetColWidth(SheetName, "B", "B", 18); err != nil {
		return nil, fmt.Errorf("set col width: %w", err)
	}

	styles, err := newSheetStyles(f)
	if err != nil {
		return nil, err
	}

	w := &sheetWriter{f: f, styles: styles, row: 1}
	w.cell("A", sanitizeCell(d.title()), styles.title)
	w.next()
	if !d.Date.IsZero() {
		w.cell("A", "Fecha: "+d.Date.Format("02/01/2006"), 0)
		w.next()
	}
	if d.TariffVersion != "" {
		w.cell("A", "Tarifa: "+d.TariffVersion, 0)
		w.next()
	}
	w.cell("A", "Moneda: "+currencySymbol(d.Currency), 0)
	w.next()
	w.next()

	w.section("Servicios de implantación (pago único)", d.Budget.Services,
		func(l pricing.BudgetLineItem) float64 { return l.OneTime })
	w.total("Total inversión inicial", d.Budget.TotalOneTime)
	w.next()
	w.section("Cuotas recurrentes (anuales)", d.Budget.Recurring,
		func(l pricing.BudgetLineItem) float64 { return l.Recurring })
	w.total("Total recurrente anual", d.Budget.TotalRecurringYearly)

	if w.err != nil {
		return nil, w.err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

type sheetStyles struct {
	title, header, line, amount, totalLabel, totalAmount int
}

func newSheetStyles(f *excelize.File) (sheetStyles, error) {
	var s sheetStyles
	defs := []struct {
		dst   *int
		style *excelize.Style
	}{
		{&s.title, &excelize.Style{Font: &excelize.Font{Bold: true, Size: 16}}},
		{&s.header, &excelize.Style{
			Font:   &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
			Fill:   excelize.Fill{Type: "pattern", Color: []string{"#333333"}, Pattern: 1},
			Border: thinBorders(),
		}},
		{&s.line, &excelize.Style{Font: &excelize.Font{Size: 10}, Border: thinBorders()}},
		{&s.amount, &excelize.Style{Font: &excelize.Font{Size: 10}, Border: thinBorders(), NumFmt: numFmtThousands}},
		{&s.totalLabel, &excelize.Style{
			Font:      &excelize.Font{Bold: true, Size: 11},
			Alignment: &excelize.Alignment{Horizontal: "right"},
		}},
		{&s.totalAmount, &excelize.Style{Font: &excelize.Font{Bold: true, Size: 11}, NumFmt: numFmtThousands}},
	}
	for _, def := range defs {
		id, err := f.NewStyle(def.style)
		if err != nil {
			return sheetStyles{}, fmt.Errorf("create style: %w", err)
		}
		*def.dst = id
	}
	return s, nil
}

// sheetWriter walks down the sheet one row at a time and keeps the first
// error so callers can check once.
type sheetWriter struct {
	f      *excelize.File
	styles sheetStyles
	row    int
	err    error
}

func (w *sheetWriter) next() { w.row++ }

func (w *sheetWriter) cell(col string, value any, style int) {
	if w.err != nil {
		return
	}
	ref := fmt.Sprintf("%s%d", col, w.row)
	if err := w.f.SetCellValue(SheetName, ref, value); err != nil {
		w.err = fmt.Errorf("set %s: %w", ref, err)
		return
	}
	if style != 0 {
		if err := w.f.SetCellStyle(SheetName, ref, ref, style); err != nil {
			w.err = fmt.Errorf("style %s: %w", ref, err)
		}
	}
}

func (w *sheetWriter) section(title string, lines []pricing.BudgetLineItem, amount func(pricing.BudgetLineItem) float64) {
	w.cell("A", title, w.styles.header)
	w.cell("B", "Importe", w.styles.header)
	w.next()
	for _, l := range lines {
		w.cell("A", sanitizeCell(l.Concept), w.styles.line)
		w.cell("B", amount(l), w.styles.amount)
		w.next()
	}
}

func (w *sheetWriter) total(label string, value float64) {
	w.cell("A", label, w.styles.totalLabel)
	w.cell("B", value, w.styles.totalAmount)
	w.next()
}

// sanitizeCell stops spreadsheet apps from reading free text as a formula.
func sanitizeCell(s string) string {
	if s == "" {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r', '|':
		return "'" + s
	}
	return s
}

func thinBorders() []excelize.Border {
	sides := []string{"left", "top", "bottom", "right"}
	borders := make([]excelize.Border, len(sides))
	for i, side := range sides {
		borders[i] = excelize.Border{Type: side, Color: "#000000", Style: 1}
	}
	return borders
}
