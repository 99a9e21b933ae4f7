package profile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// maxCount caps decoded counts so arithmetic downstream cannot overflow.
const maxCount = math.MaxInt32

// ModuleDetail is the per-module configuration record. On the wire it is a
// flat JSON object mixing booleans, numbers and strings.
type ModuleDetail struct {
	Flags  map[string]bool
	Counts map[string]int
	Text   map[string]string
}

// Flag returns the named sub-feature flag, false when absent.
func (d ModuleDetail) Flag(name string) bool {
	return d.Flags[name]
}

// Count returns the named numeric field and whether it was supplied.
func (d ModuleDetail) Count(name string) (int, bool) {
	v, ok := d.Counts[name]
	return v, ok
}

// CountOr returns the named numeric field or def when it is absent.
func (d ModuleDetail) CountOr(name string, def int) int {
	if v, ok := d.Counts[name]; ok {
		return v
	}
	return def
}

// SetFlag sets a boolean field, allocating the map as needed.
func (d *ModuleDetail) SetFlag(name string, v bool) {
	if d.Flags == nil {
		d.Flags = make(map[string]bool)
	}
	d.Flags[name] = v
}

// SetCount sets a numeric field, clamping it to the valid range.
func (d *ModuleDetail) SetCount(name string, v int) {
	if d.Counts == nil {
		d.Counts = make(map[string]int)
	}
	d.Counts[name] = clampCount(float64(v))
}

// SetText sets a free-text field.
func (d *ModuleDetail) SetText(name, v string) {
	if d.Text == nil {
		d.Text = make(map[string]string)
	}
	d.Text[name] = v
}

// UnmarshalJSON splits the flat wizard object into flags, counts and text.
func (d *ModuleDetail) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("decode module detail: %w", err)
	}

	*d = ModuleDetail{}
	for key, value := range raw {
		switch v := value.(type) {
		case bool:
			d.SetFlag(key, v)
		case json.Number:
			f, err := v.Float64()
			if err != nil {
				f = 0
			}
			d.setClamped(key, f)
		case string:
			d.SetText(key, v)
			if n, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
				d.setClamped(key, n)
			}
		}
	}
	return nil
}

// MarshalJSON flattens the record back into the wizard shape. Text wins over
// a count parsed from it so numeric strings round-trip unchanged.
func (d ModuleDetail) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(d.Flags)+len(d.Counts)+len(d.Text))
	for k, v := range d.Flags {
		out[k] = v
	}
	for k, v := range d.Counts {
		out[k] = v
	}
	for k, v := range d.Text {
		out[k] = v
	}
	return json.Marshal(out)
}

func (d *ModuleDetail) setClamped(key string, f float64) {
	if d.Counts == nil {
		d.Counts = make(map[string]int)
	}
	d.Counts[key] = clampCount(f)
}

// clampCount maps negative, non-finite and oversized values into [0, maxCount]
// and truncates fractions.
func clampCount(f float64) int {
	if math.IsNaN(f) || f <= 0 {
		return 0
	}
	if f >= maxCount {
		return maxCount
	}
	return int(f)
}

// ModuleDetails maps each module to its configuration record.
type ModuleDetails map[Module]ModuleDetail

// For returns the record for m, or an empty record when not configured.
func (d ModuleDetails) For(m Module) ModuleDetail {
	return d[m]
}
