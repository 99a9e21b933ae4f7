package pricing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrInvalidTier is returned when a rate table breaks the band invariants.
var ErrInvalidTier = errors.New("invalid tier")

// Band is one slice of the count domain. Max is inclusive; a nil Max marks
// the unbounded top band. The band amount is Flat + PerUnit*count.
type Band struct {
	Max     *int    `mapstructure:"max" json:"max,omitempty"`
	PerUnit float64 `mapstructure:"perUnit" json:"perUnit,omitempty"`
	Flat    float64 `mapstructure:"flat" json:"flat,omitempty"`
}

// Amount prices count units inside this band.
func (b Band) Amount(count int) decimal.Decimal {
	return decimal.NewFromFloat(b.Flat).
		Add(decimal.NewFromFloat(b.PerUnit).Mul(decimal.NewFromInt(int64(count))))
}

// Tier is an ordered, non-overlapping partition of the count domain.
type Tier []Band

// Lookup returns the first band whose Max is >= count, else the top band.
// Callers must only use validated tiers.
func (t Tier) Lookup(count int) Band {
	for _, b := range t {
		if b.Max == nil || *b.Max >= count {
			return b
		}
	}
	return t[len(t)-1]
}

// Amount prices count with the band that covers it.
func (t Tier) Amount(count int) decimal.Decimal {
	if count < 0 {
		count = 0
	}
	return t.Lookup(count).Amount(count)
}

// Validate checks ordering, coverage and that prices never drop when a
// count crosses into the next band.
func (t Tier) Validate() error {
	if len(t) == 0 {
		return fmt.Errorf("%w: no bands", ErrInvalidTier)
	}

	prev := -1
	for i, b := range t {
		if b.PerUnit < 0 || b.Flat < 0 {
			return fmt.Errorf("%w: band %d has a negative rate", ErrInvalidTier, i)
		}

		last := i == len(t)-1
		if b.Max == nil {
			if !last {
				return fmt.Errorf("%w: band %d is unbounded but not the top band", ErrInvalidTier, i)
			}
			continue
		}
		if last {
			return fmt.Errorf("%w: top band must be unbounded", ErrInvalidTier)
		}
		if *b.Max <= prev {
			return fmt.Errorf("%w: band %d bound %d does not increase", ErrInvalidTier, i, *b.Max)
		}
		prev = *b.Max

		edge := *b.Max
		if t[i+1].Amount(edge + 1).LessThan(b.Amount(edge)) {
			return fmt.Errorf("%w: price drops between %d and %d", ErrInvalidTier, edge, edge+1)
		}
	}
	return nil
}

// Upto is a convenience for building bounded bands in code.
func Upto(max int) *int {
	return &max
}
