package ratetable

import (
	"github.com/shopspring/decimal"

	"sitecost/core/determinism"
	"sitecost/core/types"
	"sitecost/internal/errors"
)

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// Validate checks the structural invariants of a definition:
//   - every project type has at least one tier with positive base hours
//   - all five axes are present and every factor is non-negative
//   - phase shares add up to exactly 100
//   - maintenance never allocates as many hours as the smallest project
//   - retainer packages strictly increase in share and minimum hours
func Validate(def Definition) error {
	if def.OverheadFactor.LessThan(one) {
		return invalid("overhead factor must be at least 1, got %s", def.OverheadFactor)
	}
	if len(def.Projects) == 0 {
		return invalid("at least one project type is required")
	}

	minBase := decimal.Zero
	for _, pt := range determinism.SortedKeys(def.Projects) {
		spec := def.Projects[pt]
		if len(spec.Tiers) == 0 {
			return invalid("project type %q has no tiers", pt)
		}
		for _, tier := range determinism.SortedKeys(spec.Tiers) {
			ts := spec.Tiers[tier]
			if !ts.BaseHours.IsPositive() {
				return invalid("base hours for %s/%s must be positive, got %s", pt, tier, ts.BaseHours)
			}
			if ts.BufferPercent.IsNegative() || !ts.BufferPercent.LessThan(hundred) {
				return invalid("buffer percent for %s/%s must be in [0, 100), got %s", pt, tier, ts.BufferPercent)
			}
			if minBase.IsZero() || ts.BaseHours.LessThan(minBase) {
				minBase = ts.BaseHours
			}
		}
		seen := make(map[string]bool, len(spec.Addons))
		for _, addon := range spec.Addons {
			if addon.Key == "" {
				return invalid("project type %q has an addon without a key", pt)
			}
			if seen[addon.Key] {
				return invalid("project type %q lists addon %q twice", pt, addon.Key)
			}
			seen[addon.Key] = true
			if !addon.Hours.IsPositive() {
				return invalid("addon %s/%s must have positive hours", pt, addon.Key)
			}
		}
	}

	for _, axis := range types.Axes {
		options, ok := def.Factors[axis]
		if !ok || len(options) == 0 {
			return invalid("multiplier axis %q has no options", axis)
		}
		for _, opt := range determinism.SortedKeys(options) {
			f := options[opt]
			if f.Hours.IsNegative() {
				return invalid("factor for %s/%s must not be negative, got %s", axis, opt, f.Hours)
			}
			if !f.Rate.IsPositive() {
				return invalid("rate factor for %s/%s must be positive, got %s", axis, opt, f.Rate)
			}
		}
	}

	if err := validateMaintenance(def.Maintenance, minBase); err != nil {
		return err
	}
	if err := validatePhases(def.Phases); err != nil {
		return err
	}
	return validateRetainers(def.Retainers)
}

func validateMaintenance(tiers map[types.MaintenanceTier]MaintenanceSpec, minBase decimal.Decimal) error {
	none, ok := tiers[types.MaintenanceNone]
	if !ok {
		return invalid("maintenance tier %q is required", types.MaintenanceNone)
	}
	if !none.Percent.IsZero() || !none.FlatHours.IsZero() {
		return invalid("maintenance tier %q must allocate no hours", types.MaintenanceNone)
	}

	for _, tier := range determinism.SortedKeys(tiers) {
		if tier == types.MaintenanceNone {
			continue
		}
		if tier.Rank() < 0 {
			return invalid("unknown maintenance tier %q", tier)
		}
		spec := tiers[tier]
		hasPercent := spec.Percent.IsPositive()
		hasFlat := spec.FlatHours.IsPositive()
		if hasPercent == hasFlat {
			return invalid("maintenance tier %q needs exactly one of percent or flat hours", tier)
		}
		if spec.Percent.IsNegative() || spec.FlatHours.IsNegative() {
			return invalid("maintenance tier %q must not be negative", tier)
		}
		if hasPercent && !spec.Percent.LessThan(hundred) {
			return invalid("maintenance tier %q percent must be below 100, got %s", tier, spec.Percent)
		}
		if hasFlat && !spec.FlatHours.LessThan(minBase) {
			return invalid("maintenance tier %q flat hours %s must stay below the smallest base hours %s", tier, spec.FlatHours, minBase)
		}
	}
	return nil
}

func validatePhases(phases []Phase) error {
	if len(phases) == 0 {
		return invalid("at least one phase is required")
	}
	total := decimal.Zero
	seen := make(map[string]bool, len(phases))
	for _, p := range phases {
		if p.Key == "" || p.Label == "" {
			return invalid("phases need a key and a label")
		}
		if seen[p.Key] {
			return invalid("phase %q listed twice", p.Key)
		}
		seen[p.Key] = true
		if !p.Share.IsPositive() {
			return invalid("phase %q share must be positive", p.Key)
		}
		total = total.Add(p.Share)
	}
	if !total.Equal(hundred) {
		return invalid("phase shares must add up to 100, got %s", total)
	}
	return nil
}

func validateRetainers(retainers []RetainerSpec) error {
	if len(retainers) < 1 || len(retainers) > 3 {
		return invalid("between 1 and 3 retainer packages are required, got %d", len(retainers))
	}
	for i, r := range retainers {
		if r.Name == "" {
			return invalid("retainer package %d has no name", i)
		}
		if !r.SharePercent.IsPositive() || !r.MinHours.IsPositive() {
			return invalid("retainer %q needs positive share and minimum hours", r.Name)
		}
		if r.DiscountPercent.IsNegative() || !r.DiscountPercent.LessThan(hundred) {
			return invalid("retainer %q discount must be in [0, 100)", r.Name)
		}
		if i == 0 {
			continue
		}
		prev := retainers[i-1]
		if !r.SharePercent.GreaterThan(prev.SharePercent) || !r.MinHours.GreaterThan(prev.MinHours) {
			return invalid("retainer %q must offer more than %q", r.Name, prev.Name)
		}
		// fee per hour may drop by the discount step but total fee must still rise
		prevFee := prev.MinHours.Mul(hundred.Sub(prev.DiscountPercent))
		fee := r.MinHours.Mul(hundred.Sub(r.DiscountPercent))
		if !fee.GreaterThan(prevFee) {
			return invalid("retainer %q minimum fee must exceed %q", r.Name, prev.Name)
		}
	}
	return nil
}

func invalid(format string, args ...interface{}) error {
	return errors.Newf(errors.TypeConfig, "rate table: "+format, args...)
}
