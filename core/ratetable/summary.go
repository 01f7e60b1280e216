package ratetable

import (
	"github.com/shopspring/decimal"

	"sitecost/core/types"
)

// Summary is a serializable view of a table for listing endpoints
type Summary struct {
	Version        string               `json:"version"`
	OverheadFactor decimal.Decimal      `json:"overheadFactor"`
	Projects       []ProjectSummary     `json:"projects"`
	Axes           []AxisSummary        `json:"axes"`
	Maintenance    []MaintenanceSummary `json:"maintenance"`
	Phases         []PhaseSummary       `json:"phases"`
}

// ProjectSummary lists the tiers and addons of a project type
type ProjectSummary struct {
	Key    types.ProjectType `json:"key"`
	Label  string            `json:"label"`
	Tiers  []TierSummary     `json:"tiers"`
	Addons []AddonSummary    `json:"addons"`
}

// TierSummary is one tier row
type TierSummary struct {
	Key           types.Tier      `json:"key"`
	BaseHours     decimal.Decimal `json:"baseHours"`
	BufferPercent decimal.Decimal `json:"bufferPercent"`
}

// AddonSummary is one addon row
type AddonSummary struct {
	Key     string          `json:"key"`
	Label   string          `json:"label"`
	Hours   decimal.Decimal `json:"hours"`
	Default bool            `json:"default"`
}

// AxisSummary lists the options of one complexity axis
type AxisSummary struct {
	Axis    types.Axis      `json:"axis"`
	Options []OptionSummary `json:"options"`
}

// OptionSummary is one option with its factors
type OptionSummary struct {
	Key         types.Option    `json:"key"`
	HoursFactor decimal.Decimal `json:"hoursFactor"`
	RateFactor  decimal.Decimal `json:"rateFactor"`
}

// MaintenanceSummary is one maintenance tier
type MaintenanceSummary struct {
	Tier      types.MaintenanceTier `json:"tier"`
	Percent   decimal.Decimal       `json:"percent"`
	FlatHours decimal.Decimal       `json:"flatHours"`
}

// PhaseSummary is one phase and its share of total hours
type PhaseSummary struct {
	Key   string          `json:"key"`
	Label string          `json:"label"`
	Share decimal.Decimal `json:"share"`
}

// Summarize returns the table in deterministic order
func (t *Table) Summarize() Summary {
	s := Summary{
		Version:        t.version,
		OverheadFactor: t.overhead,
	}

	for _, pt := range t.ProjectTypes() {
		project := t.projects[pt]
		ps := ProjectSummary{Key: pt, Label: t.ProjectLabel(pt)}
		for _, tier := range t.Tiers(pt) {
			spec := project.Tiers[tier]
			ps.Tiers = append(ps.Tiers, TierSummary{Key: tier, BaseHours: spec.BaseHours, BufferPercent: spec.BufferPercent})
		}
		for _, a := range project.Addons {
			ps.Addons = append(ps.Addons, AddonSummary{Key: a.Key, Label: a.Label, Hours: a.Hours, Default: a.Default})
		}
		s.Projects = append(s.Projects, ps)
	}

	for _, axis := range types.Axes {
		as := AxisSummary{Axis: axis}
		for _, opt := range t.Options(axis) {
			f := t.factors[axis][opt]
			as.Options = append(as.Options, OptionSummary{Key: opt, HoursFactor: f.Hours, RateFactor: f.Rate})
		}
		s.Axes = append(s.Axes, as)
	}

	for _, tier := range t.MaintenanceTiers() {
		m := t.maintenance[tier]
		s.Maintenance = append(s.Maintenance, MaintenanceSummary{Tier: tier, Percent: m.Percent, FlatHours: m.FlatHours})
	}

	for _, p := range t.phases {
		s.Phases = append(s.Phases, PhaseSummary{Key: p.Key, Label: p.Label, Share: p.Share})
	}
	return s
}
