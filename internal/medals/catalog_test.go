package medals

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func ids(ts []Tier) []string {
	out := make([]string, 0, len(ts))
	for _, t := range ts {
		out = append(out, t.ID)
	}
	return out
}

func TestDefaultCatalog(t *testing.T) {
	c := DefaultCatalog()
	tiers := c.Tiers()
	if len(tiers) != 10 {
		t.Fatalf("expected 10 tiers, got %d", len(tiers))
	}
	if tiers[0].ID != "bronze" || tiers[0].RequiredCompletions != 10 {
		t.Errorf("unexpected first tier %+v", tiers[0])
	}
	if tiers[9].ID != "obsediana" || tiers[9].RequiredCompletions != 100 {
		t.Errorf("unexpected last tier %+v", tiers[9])
	}
}

func TestTiersEarned_MatchesThresholdsAndIsMonotone(t *testing.T) {
	c := DefaultCatalog()
	prev := 0
	for count := 0; count <= 120; count++ {
		got := c.TiersEarned(count)
		if len(got) < prev {
			t.Fatalf("TiersEarned(%d) shrank from %d to %d", count, prev, len(got))
		}
		prev = len(got)

		want := []string{}
		for _, tier := range c.Tiers() {
			if tier.RequiredCompletions <= count {
				want = append(want, tier.ID)
			}
		}
		if diff := cmp.Diff(want, ids(got)); diff != "" {
			t.Fatalf("TiersEarned(%d) mismatch (-want +got):\n%s", count, diff)
		}
	}
}

func TestNewlyCrossed(t *testing.T) {
	c, err := NewCatalog([]Tier{
		{ID: "a", RequiredCompletions: 1},
		{ID: "b", RequiredCompletions: 3},
		{ID: "c", RequiredCompletions: 7},
		{ID: "d", RequiredCompletions: 50},
	})
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}

	tests := []struct {
		prev, next int
		want       string
	}{
		{0, 1, "a"},
		{1, 2, ""},
		{2, 3, "b"},
		{0, 7, "c"},
		{3, 49, "c"},
		{6, 100, "d"},
		{7, 7, ""},
		{10, 5, ""},
		{50, 51, ""},
	}
	for _, tt := range tests {
		tier, ok := c.NewlyCrossed(tt.prev, tt.next)
		got := ""
		if ok {
			got = tier.ID
		}
		if got != tt.want {
			t.Errorf("NewlyCrossed(%d, %d) = %q, want %q", tt.prev, tt.next, got, tt.want)
		}
	}
}

func TestNextAndHighest(t *testing.T) {
	c := DefaultCatalog()

	next, ok := c.Next(15)
	if !ok || next.ID != "prata" {
		t.Errorf("Next(15) = %v, %v; want prata", next.ID, ok)
	}
	if _, ok := c.Next(100); ok {
		t.Error("Next(100) should report no further tier")
	}

	hi, ok := c.Highest(c.TiersEarned(35))
	if !ok || hi.ID != "ouro" {
		t.Errorf("Highest = %v, %v; want ouro", hi.ID, ok)
	}
	if _, ok := c.Highest(nil); ok {
		t.Error("Highest(nil) should report nothing")
	}
}

func TestNewCatalog_Rejects(t *testing.T) {
	tests := map[string][]Tier{
		"empty":          nil,
		"missing id":     {{RequiredCompletions: 1}},
		"duplicate id":   {{ID: "a", RequiredCompletions: 1}, {ID: "a", RequiredCompletions: 2}},
		"not ascending":  {{ID: "a", RequiredCompletions: 5}, {ID: "b", RequiredCompletions: 5}},
		"zero threshold": {{ID: "a", RequiredCompletions: 0}},
	}
	for name, tiers := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := NewCatalog(tiers); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestParseCatalog(t *testing.T) {
	c, err := ParseCatalog([]byte(`
tiers:
  - id: first
    name: First
    icon: "1"
    required_completions: 2
  - id: second
    name: Second
    icon: "2"
    required_completions: 9
`))
	if err != nil {
		t.Fatalf("ParseCatalog: %v", err)
	}
	if diff := cmp.Diff([]string{"first"}, ids(c.TiersEarned(8))); diff != "" {
		t.Errorf("TiersEarned(8) mismatch (-want +got):\n%s", diff)
	}

	if _, err := ParseCatalog([]byte("tiers: [")); err == nil {
		t.Error("expected parse error for malformed yaml")
	}
}
