package ratetable

import (
	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/shopspring/decimal"

	"sitecost/core/types"
	"sitecost/internal/errors"
)

// The HCL document layout:
//
//	version         = "2024.1"
//	overhead_factor = 1.1
//
//	project_type "landing_page" {
//	  label = "Landing page"
//	  tier "simple" {
//	    base_hours     = 24
//	    buffer_percent = 5
//	  }
//	  addon "analytics_setup" {
//	    label = "Analytics & tracking setup"
//	    hours = 3
//	  }
//	}
//
//	multiplier "timeline" {
//	  option "rush" {
//	    factor      = 1.1
//	    rate_factor = 1.25
//	  }
//	}
//
//	maintenance "light" { percent = 5 }
//	phase "design" {
//	  label = "Design"
//	  share = 20
//	}
//	retainer "Basic" {
//	  share     = 5
//	  min_hours = 2
//	  discount  = 5
//	}
type fileDefinition struct {
	Version        string          `hcl:"version,optional"`
	OverheadFactor *float64        `hcl:"overhead_factor,optional"`
	Projects       []projectBlock  `hcl:"project_type,block"`
	Multipliers    []axisBlock     `hcl:"multiplier,block"`
	Maintenance    []maintBlock    `hcl:"maintenance,block"`
	Phases         []phaseBlock    `hcl:"phase,block"`
	Retainers      []retainerBlock `hcl:"retainer,block"`
}

type projectBlock struct {
	Name   string       `hcl:"name,label"`
	Label  string       `hcl:"label,optional"`
	Tiers  []tierBlock  `hcl:"tier,block"`
	Addons []addonBlock `hcl:"addon,block"`
}

type tierBlock struct {
	Name          string  `hcl:"name,label"`
	BaseHours     float64 `hcl:"base_hours"`
	BufferPercent float64 `hcl:"buffer_percent,optional"`
}

type addonBlock struct {
	Key     string  `hcl:"key,label"`
	Label   string  `hcl:"label"`
	Hours   float64 `hcl:"hours"`
	Default bool    `hcl:"default,optional"`
}

type axisBlock struct {
	Axis    string        `hcl:"axis,label"`
	Options []optionBlock `hcl:"option,block"`
}

type optionBlock struct {
	Name       string   `hcl:"name,label"`
	Factor     float64  `hcl:"factor"`
	RateFactor *float64 `hcl:"rate_factor,optional"`
}

type maintBlock struct {
	Name      string  `hcl:"name,label"`
	Percent   float64 `hcl:"percent,optional"`
	FlatHours float64 `hcl:"flat_hours,optional"`
}

type phaseBlock struct {
	Key   string  `hcl:"key,label"`
	Label string  `hcl:"label"`
	Share float64 `hcl:"share"`
}

type retainerBlock struct {
	Name     string  `hcl:"name,label"`
	Share    float64 `hcl:"share"`
	MinHours float64 `hcl:"min_hours"`
	Discount float64 `hcl:"discount,optional"`
}

// LoadFile reads a complete table from an HCL (.hcl) or HCL JSON (.json) file
func LoadFile(path string) (*Table, error) {
	var file fileDefinition
	if err := hclsimple.DecodeFile(path, nil, &file); err != nil {
		return nil, errors.Parsing("decode rate table "+path, err)
	}
	return New(file.definition())
}

// Parse reads a complete table from source. The filename extension selects
// native HCL or HCL JSON syntax.
func Parse(filename string, src []byte) (*Table, error) {
	var file fileDefinition
	if err := hclsimple.Decode(filename, src, nil, &file); err != nil {
		return nil, errors.Parsing("decode rate table "+filename, err)
	}
	return New(file.definition())
}

func (f fileDefinition) definition() Definition {
	def := Definition{
		Version:        f.Version,
		OverheadFactor: one,
		Projects:       make(map[types.ProjectType]ProjectSpec, len(f.Projects)),
		Factors:        make(map[types.Axis]map[types.Option]Factor, len(f.Multipliers)),
		Maintenance:    make(map[types.MaintenanceTier]MaintenanceSpec, len(f.Maintenance)),
	}
	if f.OverheadFactor != nil {
		def.OverheadFactor = decimal.NewFromFloat(*f.OverheadFactor)
	}

	for _, p := range f.Projects {
		spec := ProjectSpec{Label: p.Label, Tiers: make(map[types.Tier]TierSpec, len(p.Tiers))}
		for _, t := range p.Tiers {
			spec.Tiers[types.Tier(t.Name)] = TierSpec{
				BaseHours:     decimal.NewFromFloat(t.BaseHours),
				BufferPercent: decimal.NewFromFloat(t.BufferPercent),
			}
		}
		for _, a := range p.Addons {
			spec.Addons = append(spec.Addons, AddonSpec{
				Key:     a.Key,
				Label:   a.Label,
				Hours:   decimal.NewFromFloat(a.Hours),
				Default: a.Default,
			})
		}
		def.Projects[types.ProjectType(p.Name)] = spec
	}

	for _, m := range f.Multipliers {
		axis := types.Axis(m.Axis)
		options, ok := def.Factors[axis]
		if !ok {
			options = make(map[types.Option]Factor, len(m.Options))
			def.Factors[axis] = options
		}
		for _, o := range m.Options {
			rate := one
			if o.RateFactor != nil {
				rate = decimal.NewFromFloat(*o.RateFactor)
			}
			options[types.Option(o.Name)] = Factor{Hours: decimal.NewFromFloat(o.Factor), Rate: rate}
		}
	}

	for _, m := range f.Maintenance {
		def.Maintenance[types.MaintenanceTier(m.Name)] = MaintenanceSpec{
			Percent:   decimal.NewFromFloat(m.Percent),
			FlatHours: decimal.NewFromFloat(m.FlatHours),
		}
	}

	for _, p := range f.Phases {
		def.Phases = append(def.Phases, Phase{Key: p.Key, Label: p.Label, Share: decimal.NewFromFloat(p.Share)})
	}

	for _, r := range f.Retainers {
		def.Retainers = append(def.Retainers, RetainerSpec{
			Name:            r.Name,
			SharePercent:    decimal.NewFromFloat(r.Share),
			MinHours:        decimal.NewFromFloat(r.MinHours),
			DiscountPercent: decimal.NewFromFloat(r.Discount),
		})
	}
	return def
}
