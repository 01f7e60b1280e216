package determinism

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestRoundToStep(t *testing.T) {
	tests := []struct {
		value string
		step  decimal.Decimal
		want  string
	}{
		{"26.4", HalfHour, "26.5"},
		{"26.24", HalfHour, "26"},
		{"26.25", HalfHour, "26.5"},
		{"10.12", QuarterHour, "10"},
		{"10.13", QuarterHour, "10.25"},
		{"7", decimal.Zero, "7"},
	}

	for _, tt := range tests {
		got := RoundToStep(decimal.RequireFromString(tt.value), tt.step)
		if !got.Equal(decimal.RequireFromString(tt.want)) {
			t.Errorf("RoundToStep(%s, %s) = %s, want %s", tt.value, tt.step, got, tt.want)
		}
	}
}

func TestRoundCentsIsHalfAwayFromZero(t *testing.T) {
	got := RoundCents(decimal.RequireFromString("2.345"))
	if got.String() != "2.35" {
		t.Errorf("expected 2.35, got %s", got)
	}
}

func TestPercent(t *testing.T) {
	got := Percent(decimal.NewFromInt(15))
	if !got.Equal(decimal.RequireFromString("0.15")) {
		t.Errorf("expected 0.15, got %s", got)
	}
}

func TestSortedKeys(t *testing.T) {
	m := map[string]int{"web_app": 1, "ecommerce": 2, "landing_page": 3}
	keys := SortedKeys(m)
	want := []string{"ecommerce", "landing_page", "web_app"}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, keys)
		}
	}
}

func TestHashJSONStable(t *testing.T) {
	type payload struct {
		Tier  string            `json:"tier"`
		Rates map[string]string `json:"rates"`
	}
	a := payload{Tier: "simple", Rates: map[string]string{"usd": "1", "eur": "0.92"}}
	b := payload{Tier: "simple", Rates: map[string]string{"eur": "0.92", "usd": "1"}}

	ha, err := HashJSON(a)
	if err != nil {
		t.Fatalf("hash a: %v", err)
	}
	hb, err := HashJSON(b)
	if err != nil {
		t.Fatalf("hash b: %v", err)
	}
	if ha != hb {
		t.Errorf("expected equal hashes, got %s and %s", ha.Hex(), hb.Hex())
	}
	if len(ha.Short()) != 16 {
		t.Errorf("expected 16 char short hash, got %q", ha.Short())
	}
}
