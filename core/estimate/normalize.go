package estimate

import (
	"sort"
	"strings"

	"sitecost/core/types"
)

// Normalize returns the canonical form of req. Enumerated values are trimmed
// and lower-cased, and addons are de-duplicated and sorted, so requests that
// price identically also hash identically. req is not modified.
func Normalize(req Request) Request {
	in := req.Input
	out := Request{
		Input: types.CalculationInput{
			ProjectType: types.ProjectType(normalizeKey(string(in.ProjectType))),
			Tier:        types.Tier(normalizeKey(string(in.Tier))),
			HourlyRate:  in.HourlyRate,
			Multipliers: types.ComplexityMultipliers{
				Design:        normalizeOption(in.Multipliers.Design),
				Functionality: normalizeOption(in.Multipliers.Functionality),
				Content:       normalizeOption(in.Multipliers.Content),
				Technical:     normalizeOption(in.Multipliers.Technical),
				Timeline:      normalizeOption(in.Multipliers.Timeline),
			},
			Maintenance: normalizeMaintenance(in.Maintenance),
			Assumptions: strings.TrimSpace(in.Assumptions),
			Addons:      normalizeAddons(in.Addons),
		},
		Currency: types.NormalizeCurrency(string(req.Currency)),
		Rates:    req.Rates,
	}
	return out
}

func normalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// An omitted maintenance tier prices as none
func normalizeMaintenance(m types.MaintenanceTier) types.MaintenanceTier {
	key := types.MaintenanceTier(normalizeKey(string(m)))
	if key == "" {
		return types.MaintenanceNone
	}
	return key
}

func normalizeOption(o types.Option) types.Option {
	return types.Option(normalizeKey(string(o)))
}

func normalizeAddons(addons []string) []string {
	if len(addons) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(addons))
	out := make([]string, 0, len(addons))
	for _, a := range addons {
		key := normalizeKey(a)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}
