package multiplier

import (
	"testing"

	"github.com/shopspring/decimal"

	"sitecost/core/ratetable"
	"sitecost/core/types"
	"sitecost/internal/errors"
)

func TestResolveBaselineIsOverheadOnly(t *testing.T) {
	r := NewResolver(ratetable.Default())

	c, err := r.Resolve(types.BaselineMultipliers())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !c.Hours.Equal(decimal.RequireFromString("1.1")) {
		t.Errorf("expected composite 1.1, got %s", c.Hours)
	}
	if !c.Rate.Equal(decimal.NewFromInt(1)) {
		t.Errorf("expected rate factor 1, got %s", c.Rate)
	}
	if len(c.Axes) != 5 {
		t.Fatalf("expected 5 axes, got %d", len(c.Axes))
	}
	for i, axis := range types.Axes {
		if c.Axes[i].Axis != axis {
			t.Errorf("axis %d: expected %s, got %s", i, axis, c.Axes[i].Axis)
		}
	}
}

func TestResolveMultipliesAxes(t *testing.T) {
	r := NewResolver(ratetable.Default())

	c, err := r.Resolve(types.ComplexityMultipliers{
		Design:        types.DesignCustom,          // 1.25
		Functionality: types.FunctionalityModerate, // 1.2
		Content:       types.ContentExisting,       // 1.0
		Technical:     types.TechnicalBasic,        // 1.0
		Timeline:      types.TimelineRush,          // 1.1, rate 1.25
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 1.1 * 1.25 * 1.2 * 1.1 = 1.815
	if !c.Hours.Equal(decimal.RequireFromString("1.815")) {
		t.Errorf("expected composite 1.815, got %s", c.Hours)
	}
	if !c.Rate.Equal(decimal.RequireFromString("1.25")) {
		t.Errorf("expected rate factor 1.25, got %s", c.Rate)
	}
}

func TestResolveCompositeNeverBelowOneWithDefaults(t *testing.T) {
	table := ratetable.Default()
	r := NewResolver(table)
	one := decimal.NewFromInt(1)

	for _, design := range table.Options(types.AxisDesign) {
		for _, timeline := range table.Options(types.AxisTimeline) {
			m := types.BaselineMultipliers()
			m.Design = design
			m.Timeline = timeline

			c, err := r.Resolve(m)
			if err != nil {
				t.Fatalf("%s/%s: %v", design, timeline, err)
			}
			if c.Hours.LessThan(one) {
				t.Errorf("%s/%s: composite %s below 1", design, timeline, c.Hours)
			}
		}
	}
}

func TestResolveUnknownOption(t *testing.T) {
	r := NewResolver(ratetable.Default())

	m := types.BaselineMultipliers()
	m.Technical = "quantum"

	_, err := r.Resolve(m)
	if !errors.IsType(err, errors.TypeInput) {
		t.Fatalf("expected INPUT_ERROR, got %v", err)
	}
}
