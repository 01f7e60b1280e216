// Package ratetable holds the static estimation tables: base hours per
// (project type, tier), factor tables per complexity axis, maintenance tiers,
// the phase split and the retainer menu.
//
// A Table is validated once when it is built and is immutable afterwards, so
// an invalid key surfaces as an error at lookup time instead of a silent zero.
package ratetable

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"sitecost/core/determinism"
	"sitecost/core/types"
	"sitecost/internal/errors"
)

// TierSpec describes one delivery tier of a project type
type TierSpec struct {
	BaseHours     decimal.Decimal
	BufferPercent decimal.Decimal
}

// AddonSpec describes an addon offered for a project type
type AddonSpec struct {
	Key     string
	Label   string
	Hours   decimal.Decimal
	Default bool
}

// ProjectSpec groups the tiers and addons of a project type
type ProjectSpec struct {
	Label  string
	Tiers  map[types.Tier]TierSpec
	Addons []AddonSpec
}

// Factor is the resolved value of one axis option. Rate is 1 except on
// the timeline axis, where rush work is billed at a surcharge.
type Factor struct {
	Hours decimal.Decimal
	Rate  decimal.Decimal
}

// MaintenanceSpec is either a percentage of base hours per month or a flat
// monthly allocation. The none tier has both zero.
type MaintenanceSpec struct {
	Percent   decimal.Decimal
	FlatHours decimal.Decimal
}

// Phase is one canonical work phase and its share (percent) of total hours
type Phase struct {
	Key   string
	Label string
	Share decimal.Decimal
}

// RetainerSpec configures one advisory retainer package
type RetainerSpec struct {
	Name            string
	SharePercent    decimal.Decimal
	MinHours        decimal.Decimal
	DiscountPercent decimal.Decimal
}

// Definition is the mutable description a Table is built from
type Definition struct {
	Version        string
	OverheadFactor decimal.Decimal
	Projects       map[types.ProjectType]ProjectSpec
	Factors        map[types.Axis]map[types.Option]Factor
	Maintenance    map[types.MaintenanceTier]MaintenanceSpec
	Phases         []Phase
	Retainers      []RetainerSpec
}

// Table is an immutable, validated set of estimation tables.
// It is safe for concurrent use.
type Table struct {
	version     string
	overhead    decimal.Decimal
	projects    map[types.ProjectType]ProjectSpec
	factors     map[types.Axis]map[types.Option]Factor
	maintenance map[types.MaintenanceTier]MaintenanceSpec
	phases      []Phase
	retainers   []RetainerSpec
}

// New validates def and returns a Table holding a private copy of it
func New(def Definition) (*Table, error) {
	if err := Validate(def); err != nil {
		return nil, err
	}

	t := &Table{
		version:     def.Version,
		overhead:    def.OverheadFactor,
		projects:    make(map[types.ProjectType]ProjectSpec, len(def.Projects)),
		factors:     make(map[types.Axis]map[types.Option]Factor, len(def.Factors)),
		maintenance: make(map[types.MaintenanceTier]MaintenanceSpec, len(def.Maintenance)),
		phases:      append([]Phase(nil), def.Phases...),
		retainers:   append([]RetainerSpec(nil), def.Retainers...),
	}
	for pt, spec := range def.Projects {
		tiers := make(map[types.Tier]TierSpec, len(spec.Tiers))
		for tier, ts := range spec.Tiers {
			tiers[tier] = ts
		}
		t.projects[pt] = ProjectSpec{
			Label:  spec.Label,
			Tiers:  tiers,
			Addons: append([]AddonSpec(nil), spec.Addons...),
		}
	}
	for axis, options := range def.Factors {
		copied := make(map[types.Option]Factor, len(options))
		for opt, f := range options {
			copied[opt] = f
		}
		t.factors[axis] = copied
	}
	for tier, spec := range def.Maintenance {
		t.maintenance[tier] = spec
	}
	return t, nil
}

// MustNew is like New but panics on an invalid definition
func MustNew(def Definition) *Table {
	t, err := New(def)
	if err != nil {
		panic(fmt.Sprintf("invalid rate table: %v", err))
	}
	return t
}

// Version returns the table version label
func (t *Table) Version() string {
	return t.version
}

// OverheadFactor returns the project management and QA overhead applied to
// every composite multiplier
func (t *Table) OverheadFactor() decimal.Decimal {
	return t.overhead
}

// Tier returns the spec for a (project type, tier) pair
func (t *Table) Tier(pt types.ProjectType, tier types.Tier) (TierSpec, error) {
	project, ok := t.projects[pt]
	if !ok {
		return TierSpec{}, errors.Inputf("unknown project type %q", string(pt))
	}
	spec, ok := project.Tiers[tier]
	if !ok {
		return TierSpec{}, errors.TierMismatch(string(tier), string(pt))
	}
	return spec, nil
}

// Factor returns the factor of an option on an axis
func (t *Table) Factor(axis types.Axis, option types.Option) (Factor, error) {
	options, ok := t.factors[axis]
	if !ok {
		return Factor{}, errors.Inputf("unknown multiplier axis %q", string(axis))
	}
	f, ok := options[option]
	if !ok {
		return Factor{}, errors.Inputf("unknown %s option %q", string(axis), string(option)).
			WithContext("axis", string(axis))
	}
	return f, nil
}

// Maintenance returns the spec of a maintenance tier. An empty tier is none.
func (t *Table) Maintenance(tier types.MaintenanceTier) (MaintenanceSpec, error) {
	if tier == "" {
		tier = types.MaintenanceNone
	}
	spec, ok := t.maintenance[tier]
	if !ok {
		return MaintenanceSpec{}, errors.Inputf("unknown maintenance tier %q", string(tier))
	}
	return spec, nil
}

// Addons returns the addons offered for a project type in table order
func (t *Table) Addons(pt types.ProjectType) []AddonSpec {
	return append([]AddonSpec(nil), t.projects[pt].Addons...)
}

// Phases returns the canonical phases in order
func (t *Table) Phases() []Phase {
	return append([]Phase(nil), t.phases...)
}

// Retainers returns the retainer menu configuration in order
func (t *Table) Retainers() []RetainerSpec {
	return append([]RetainerSpec(nil), t.retainers...)
}

// ProjectTypes returns all project types, sorted
func (t *Table) ProjectTypes() []types.ProjectType {
	return determinism.SortedKeys(t.projects)
}

// ProjectLabel returns the display label of a project type
func (t *Table) ProjectLabel(pt types.ProjectType) string {
	if label := t.projects[pt].Label; label != "" {
		return label
	}
	return string(pt)
}

// Tiers returns the valid tiers of a project type ordered by base hours
func (t *Table) Tiers(pt types.ProjectType) []types.Tier {
	project := t.projects[pt]
	tiers := determinism.SortedKeys(project.Tiers)
	sort.SliceStable(tiers, func(i, j int) bool {
		return project.Tiers[tiers[i]].BaseHours.LessThan(project.Tiers[tiers[j]].BaseHours)
	})
	return tiers
}

// Options returns the options of an axis ordered by hours factor
func (t *Table) Options(axis types.Axis) []types.Option {
	options := t.factors[axis]
	keys := determinism.SortedKeys(options)
	sort.SliceStable(keys, func(i, j int) bool {
		return options[keys[i]].Hours.LessThan(options[keys[j]].Hours)
	})
	return keys
}

// MaintenanceTiers returns the configured maintenance tiers in rank order
func (t *Table) MaintenanceTiers() []types.MaintenanceTier {
	tiers := determinism.SortedKeys(t.maintenance)
	sort.SliceStable(tiers, func(i, j int) bool {
		return tiers[i].Rank() < tiers[j].Rank()
	})
	return tiers
}

// Definition returns a copy of the definition the table was built from
func (t *Table) Definition() Definition {
	def := Definition{
		Version:        t.version,
		OverheadFactor: t.overhead,
		Projects:       make(map[types.ProjectType]ProjectSpec, len(t.projects)),
		Factors:        make(map[types.Axis]map[types.Option]Factor, len(t.factors)),
		Maintenance:    make(map[types.MaintenanceTier]MaintenanceSpec, len(t.maintenance)),
		Phases:         t.Phases(),
		Retainers:      t.Retainers(),
	}
	for pt, spec := range t.projects {
		tiers := make(map[types.Tier]TierSpec, len(spec.Tiers))
		for tier, ts := range spec.Tiers {
			tiers[tier] = ts
		}
		def.Projects[pt] = ProjectSpec{Label: spec.Label, Tiers: tiers, Addons: t.Addons(pt)}
	}
	for axis, options := range t.factors {
		copied := make(map[types.Option]Factor, len(options))
		for opt, f := range options {
			copied[opt] = f
		}
		def.Factors[axis] = copied
	}
	for tier, spec := range t.maintenance {
		def.Maintenance[tier] = spec
	}
	return def
}
