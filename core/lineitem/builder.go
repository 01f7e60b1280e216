// Package lineitem allocates total hours across the canonical work phases.
package lineitem

import (
	"github.com/shopspring/decimal"

	"sitecost/core/determinism"
	"sitecost/core/ratetable"
	"sitecost/core/types"
)

// Builder splits hours by fixed phase shares
type Builder struct {
	phases []ratetable.Phase
	anchor int
}

// NewBuilder creates a builder for the given phases. The phase with the
// largest share (first one on ties) absorbs the rounding remainder.
func NewBuilder(phases []ratetable.Phase) *Builder {
	anchor := 0
	for i, p := range phases {
		if p.Share.GreaterThan(phases[anchor].Share) {
			anchor = i
		}
	}
	return &Builder{phases: append([]ratetable.Phase(nil), phases...), anchor: anchor}
}

// Build returns one line item per phase, in phase order. Hours are rounded
// to the quarter hour and always add up to totalHours exactly without any
// phase going negative. Each cost is hours × rate rounded to cents.
func (b *Builder) Build(totalHours, rate decimal.Decimal) []types.LineItem {
	items := make([]types.LineItem, len(b.phases))
	allocated := decimal.Zero

	for i, p := range b.phases {
		if i == b.anchor {
			continue
		}
		hours := determinism.RoundToStep(totalHours.Mul(determinism.Percent(p.Share)), determinism.QuarterHour)
		items[i] = types.LineItem{Label: p.Label, Hours: hours}
		allocated = allocated.Add(hours)
	}

	// Many small phases can round up past the total. Take the excess back
	// from the trailing phases so the anchor never goes negative.
	excess := allocated.Sub(totalHours)
	for i := len(items) - 1; i >= 0 && excess.IsPositive(); i-- {
		if i == b.anchor {
			continue
		}
		cut := decimal.Min(items[i].Hours, excess)
		items[i].Hours = items[i].Hours.Sub(cut)
		allocated = allocated.Sub(cut)
		excess = excess.Sub(cut)
	}

	items[b.anchor] = types.LineItem{
		Label: b.phases[b.anchor].Label,
		Hours: totalHours.Sub(allocated),
	}

	for i := range items {
		items[i].Cost = determinism.RoundCents(items[i].Hours.Mul(rate))
	}
	return items
}

// Subtotal sums line item costs
func Subtotal(items []types.LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Cost)
	}
	return total
}
