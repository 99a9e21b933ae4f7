package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/Simplici0/discovery/internal/profile"
)

// Engine prices profiles against one tariff. It holds no mutable state and
// is safe for concurrent use.
type Engine struct {
	tariff Tariff
}

// NewEngine validates t and returns an engine bound to it.
func NewEngine(t Tariff) (*Engine, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &Engine{tariff: t}, nil
}

// Tariff returns the rate table the engine prices with. Callers must treat
// it as read-only.
func (e *Engine) Tariff() Tariff {
	return e.tariff
}

// ProfileCount resolves the user count used for tier lookup. An explicit
// currentUsers wins over the size bucket; negatives clamp to zero.
func (e *Engine) ProfileCount(p profile.ClientProfile) int {
	count := 0
	if p.CurrentUsers != nil {
		count = *p.CurrentUsers
	} else {
		count = e.tariff.SizeBuckets.Count(p.Size)
	}
	return max(count, 0)
}

// Calculate builds the budget for p. It never fails: missing details fall
// back to defaults and out-of-range counts are clamped.
func (e *Engine) Calculate(p profile.ClientProfile) BudgetResult {
	b := newBudgetBuilder()
	count := e.ProfileCount(p)

	active := p.Products.Active()
	for _, m := range active {
		rate, ok := e.tariff.Rate(m)
		if !ok {
			continue
		}
		e.addModule(b, rate, p.Details.For(m), count)
	}

	if len(active) > 0 {
		e.addServices(b, p, len(active), count)
	}
	return b.result()
}

func (e *Engine) addModule(b *budgetBuilder, r ModuleRate, d profile.ModuleDetail, profileCount int) {
	count := profileCount
	if r.CountField != "" {
		count = d.CountOr(r.CountField, profileCount)
	}
	count = max(count, r.MinCount, 0)

	license := roundCurrency(r.License.Amount(count))
	b.addRecurring(r.Label, license)

	if r.Maintenance != nil {
		b.addRecurring(r.Maintenance.Label, r.Maintenance.Apply(license))
	}

	for _, s := range r.Surcharges {
		if amount, ok := s.Amount(d); ok {
			b.addRecurring(s.Label, amount)
		}
	}

	for _, rd := range r.Riders {
		if !d.Flag(rd.Flag) {
			continue
		}
		if rd.Fixed > 0 {
			b.addRecurring(rd.FixedLabel, decimal.NewFromFloat(rd.Fixed))
		}
		if len(rd.Tiered) > 0 {
			b.addRecurring(rd.TieredLabel, rd.Tiered.Amount(count))
		}
	}
}

// Apply returns the maintenance share of a license figure.
func (m Maintenance) Apply(license decimal.Decimal) decimal.Decimal {
	return license.Mul(decimal.NewFromFloat(m.Percent))
}

// Amount prices the billable units of s for detail d. ok is false when no
// units are billable.
func (s Surcharge) Amount(d profile.ModuleDetail) (decimal.Decimal, bool) {
	units := d.CountOr(s.Field, s.Default) - s.Included
	if units <= 0 {
		return decimal.Zero, false
	}
	if s.BlockSize > 1 {
		units = (units + s.BlockSize - 1) / s.BlockSize
	}
	return decimal.NewFromFloat(s.PerUnit).Mul(decimal.NewFromInt(int64(units))), true
}

func (e *Engine) addServices(b *budgetBuilder, p profile.ClientProfile, active, count int) {
	s := e.tariff.Services
	modules := decimal.NewFromInt(int64(active))
	custom := p.Products.Selected(s.CustomDevelopment.Module)

	analysisHours := dec(s.Analysis.BaseHours).Add(modules.Mul(dec(s.Analysis.HoursPerModule)))
	implementationHours := modules.
		Mul(dec(s.Implementation.HoursPerModule)).
		Mul(decimal.NewFromInt(1).Add(e.complexity(p.DigitalMaturity, active)))
	if custom {
		analysisHours = analysisHours.Add(dec(s.CustomDevelopment.AnalysisBonusHours))
		implementationHours = implementationHours.Add(dec(s.CustomDevelopment.ImplementationBonusHours))
	}

	training := modules.Mul(dec(s.Training.FeePerModule))
	if count > s.Training.LargeTeamThreshold {
		training = training.Mul(dec(s.Training.LargeTeamMultiplier))
	}

	b.addService(s.Analysis.Label, analysisHours.Mul(dec(s.ConsultantHourly)))
	b.addService(s.Implementation.Label, implementationHours.Mul(dec(s.TechnicianHourly)))
	b.addService(s.Training.Label, training)
}

// complexity grows as digital maturity falls and as more modules are sold.
func (e *Engine) complexity(maturity, active int) decimal.Decimal {
	c := e.tariff.Services.Complexity
	if maturity == 0 {
		maturity = c.DefaultMaturity
	}
	maturity = min(max(maturity, c.MinMaturity), c.MaxMaturity)

	return dec(c.MaturityCeiling).Sub(decimal.NewFromInt(int64(maturity))).Mul(dec(c.MaturityWeight)).
		Add(decimal.NewFromInt(int64(active)).Mul(dec(c.ModuleWeight)))
}

func dec(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}
