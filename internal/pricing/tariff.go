package pricing

import (
	"errors"
	"fmt"

	"github.com/Simplici0/discovery/internal/profile"
)

// ErrInvalidTariff is returned when a rate table cannot be used by the engine.
var ErrInvalidTariff = errors.New("invalid tariff")

// Tariff is the canonical, versioned rate table. Tariff updates are data
// changes: every figure the engine uses lives here.
type Tariff struct {
	Version     string       `mapstructure:"version" json:"version"`
	Currency    string       `mapstructure:"currency" json:"currency"`
	SizeBuckets SizeBuckets  `mapstructure:"sizeBuckets" json:"sizeBuckets"`
	Modules     []ModuleRate `mapstructure:"modules" json:"modules"`
	Services    ServiceRates `mapstructure:"services" json:"services"`
}

// SizeBuckets maps the wizard's company-size labels to a representative
// user count. Labels not listed use Fallback.
type SizeBuckets struct {
	Fallback int          `mapstructure:"fallback" json:"fallback"`
	Buckets  []SizeBucket `mapstructure:"buckets" json:"buckets"`
}

type SizeBucket struct {
	Label string `mapstructure:"label" json:"label"`
	Count int    `mapstructure:"count" json:"count"`
}

// Count returns the representative count for label.
func (s SizeBuckets) Count(label string) int {
	for _, b := range s.Buckets {
		if b.Label == label {
			return b.Count
		}
	}
	return s.Fallback
}

// ModuleRate holds the recurring-cost rules for one module.
type ModuleRate struct {
	Module profile.Module `mapstructure:"module" json:"module"`
	Label  string         `mapstructure:"label" json:"label"`
	// CountField names the detail count that overrides the profile count.
	CountField  string       `mapstructure:"countField" json:"countField,omitempty"`
	MinCount    int          `mapstructure:"minCount" json:"minCount,omitempty"`
	License     Tier         `mapstructure:"license" json:"license"`
	Maintenance *Maintenance `mapstructure:"maintenance" json:"maintenance,omitempty"`
	Surcharges  []Surcharge  `mapstructure:"surcharges" json:"surcharges,omitempty"`
	Riders      []Rider      `mapstructure:"riders" json:"riders,omitempty"`
}

// Maintenance bills a percentage of the license figure as its own line.
type Maintenance struct {
	Percent float64 `mapstructure:"percent" json:"percent"`
	Label   string  `mapstructure:"label" json:"label"`
}

// Surcharge is a flat per-unit adder keyed on a detail count. Units above
// Included are billed; with BlockSize > 1 each started block is one unit.
type Surcharge struct {
	Field     string  `mapstructure:"field" json:"field"`
	Label     string  `mapstructure:"label" json:"label"`
	PerUnit   float64 `mapstructure:"perUnit" json:"perUnit"`
	Included  int     `mapstructure:"included" json:"included,omitempty"`
	Default   int     `mapstructure:"default" json:"default,omitempty"`
	BlockSize int     `mapstructure:"blockSize" json:"blockSize,omitempty"`
}

// Rider is a recurring charge gated by a detail flag: a fixed fee, a
// count-tiered fee, or both.
type Rider struct {
	Flag        string  `mapstructure:"flag" json:"flag"`
	FixedLabel  string  `mapstructure:"fixedLabel" json:"fixedLabel,omitempty"`
	Fixed       float64 `mapstructure:"fixed" json:"fixed,omitempty"`
	TieredLabel string  `mapstructure:"tieredLabel" json:"tieredLabel,omitempty"`
	Tiered      Tier    `mapstructure:"tiered" json:"tiered,omitempty"`
}

// ServiceRates drives the one-time implementation lines.
type ServiceRates struct {
	ConsultantHourly  float64            `mapstructure:"consultantHourly" json:"consultantHourly"`
	TechnicianHourly  float64            `mapstructure:"technicianHourly" json:"technicianHourly"`
	Analysis          AnalysisRate       `mapstructure:"analysis" json:"analysis"`
	Implementation    ImplementationRate `mapstructure:"implementation" json:"implementation"`
	Training          TrainingRate       `mapstructure:"training" json:"training"`
	CustomDevelopment CustomDevelopment  `mapstructure:"customDevelopment" json:"customDevelopment"`
	Complexity        Complexity         `mapstructure:"complexity" json:"complexity"`
}

type AnalysisRate struct {
	Label          string  `mapstructure:"label" json:"label"`
	BaseHours      float64 `mapstructure:"baseHours" json:"baseHours"`
	HoursPerModule float64 `mapstructure:"hoursPerModule" json:"hoursPerModule"`
}

type ImplementationRate struct {
	Label          string  `mapstructure:"label" json:"label"`
	HoursPerModule float64 `mapstructure:"hoursPerModule" json:"hoursPerModule"`
}

type TrainingRate struct {
	Label               string  `mapstructure:"label" json:"label"`
	FeePerModule        float64 `mapstructure:"feePerModule" json:"feePerModule"`
	LargeTeamThreshold  int     `mapstructure:"largeTeamThreshold" json:"largeTeamThreshold"`
	LargeTeamMultiplier float64 `mapstructure:"largeTeamMultiplier" json:"largeTeamMultiplier"`
}

// CustomDevelopment adds fixed hours when its module is selected.
type CustomDevelopment struct {
	Module                   profile.Module `mapstructure:"module" json:"module"`
	AnalysisBonusHours       float64        `mapstructure:"analysisBonusHours" json:"analysisBonusHours"`
	ImplementationBonusHours float64        `mapstructure:"implementationBonusHours" json:"implementationBonusHours"`
}

// Complexity computes (Ceiling - maturity)*MaturityWeight + modules*ModuleWeight.
type Complexity struct {
	MaturityCeiling float64 `mapstructure:"maturityCeiling" json:"maturityCeiling"`
	MaturityWeight  float64 `mapstructure:"maturityWeight" json:"maturityWeight"`
	ModuleWeight    float64 `mapstructure:"moduleWeight" json:"moduleWeight"`
	DefaultMaturity int     `mapstructure:"defaultMaturity" json:"defaultMaturity"`
	MinMaturity     int     `mapstructure:"minMaturity" json:"minMaturity"`
	MaxMaturity     int     `mapstructure:"maxMaturity" json:"maxMaturity"`
}

// Rate returns the module rate, if the tariff prices m.
func (t Tariff) Rate(m profile.Module) (ModuleRate, bool) {
	for _, r := range t.Modules {
		if r.Module == m {
			return r, true
		}
	}
	return ModuleRate{}, false
}

// Validate checks every table in the tariff.
func (t Tariff) Validate() error {
	if t.Version == "" {
		return fmt.Errorf("%w: missing version", ErrInvalidTariff)
	}

	seen := make(map[profile.Module]bool, len(t.Modules))
	for _, r := range t.Modules {
		if !r.Module.Known() {
			return fmt.Errorf("%w: unknown module %q", ErrInvalidTariff, r.Module)
		}
		if seen[r.Module] {
			return fmt.Errorf("%w: module %q priced twice", ErrInvalidTariff, r.Module)
		}
		seen[r.Module] = true

		if err := r.License.Validate(); err != nil {
			return fmt.Errorf("%w: %s license: %w", ErrInvalidTariff, r.Module, err)
		}
		if r.Maintenance != nil && r.Maintenance.Percent < 0 {
			return fmt.Errorf("%w: %s maintenance percent is negative", ErrInvalidTariff, r.Module)
		}
		for _, s := range r.Surcharges {
			if s.Field == "" || s.PerUnit < 0 || s.Included < 0 || s.BlockSize < 0 {
				return fmt.Errorf("%w: %s surcharge %q is malformed", ErrInvalidTariff, r.Module, s.Label)
			}
		}
		for _, rd := range r.Riders {
			if rd.Flag == "" || rd.Fixed < 0 {
				return fmt.Errorf("%w: %s rider %q is malformed", ErrInvalidTariff, r.Module, rd.Flag)
			}
			if len(rd.Tiered) > 0 {
				if err := rd.Tiered.Validate(); err != nil {
					return fmt.Errorf("%w: %s rider %s: %w", ErrInvalidTariff, r.Module, rd.Flag, err)
				}
			}
		}
	}

	c := t.Services.Complexity
	if c.MinMaturity > c.MaxMaturity {
		return fmt.Errorf("%w: maturity range %d..%d is empty", ErrInvalidTariff, c.MinMaturity, c.MaxMaturity)
	}
	return nil
}
