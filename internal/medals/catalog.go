// Package medals derives standard medal tiers from completion counts, records
// earned and custom medals, and resolves the badge a user displays.
package medals

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed tiers.yaml
var defaultTiersYAML []byte

type Tier struct {
	ID                  string `yaml:"id" json:"id"`
	Name                string `yaml:"name" json:"name"`
	Icon                string `yaml:"icon" json:"icon"`
	RequiredCompletions int    `yaml:"required_completions" json:"required_completions"`
}

// Catalog is an immutable ladder of tiers in strictly ascending threshold
// order. Thresholds need not be evenly spaced.
type Catalog struct {
	tiers []Tier
	byID  map[string]int
}

func NewCatalog(tiers []Tier) (*Catalog, error) {
	if len(tiers) == 0 {
		return nil, fmt.Errorf("medal catalog is empty")
	}
	c := &Catalog{tiers: make([]Tier, len(tiers)), byID: make(map[string]int, len(tiers))}
	copy(c.tiers, tiers)
	for i, t := range c.tiers {
		if t.ID == "" {
			return nil, fmt.Errorf("tier %d has no id", i)
		}
		if _, dup := c.byID[t.ID]; dup {
			return nil, fmt.Errorf("duplicate tier id %q", t.ID)
		}
		if t.RequiredCompletions <= 0 {
			return nil, fmt.Errorf("tier %q: required completions must be positive", t.ID)
		}
		if i > 0 && t.RequiredCompletions <= c.tiers[i-1].RequiredCompletions {
			return nil, fmt.Errorf("tier %q: threshold %d is not above %d", t.ID, t.RequiredCompletions, c.tiers[i-1].RequiredCompletions)
		}
		c.byID[t.ID] = i
	}
	return c, nil
}

func ParseCatalog(data []byte) (*Catalog, error) {
	var doc struct {
		Tiers []Tier `yaml:"tiers"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse medal catalog: %w", err)
	}
	return NewCatalog(doc.Tiers)
}

// LoadCatalog reads a YAML ladder from path, or the built-in ladder when path is empty.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read medal catalog: %w", err)
	}
	return ParseCatalog(data)
}

func DefaultCatalog() *Catalog {
	c, err := ParseCatalog(defaultTiersYAML)
	if err != nil {
		panic(err)
	}
	return c
}

// Tiers returns a copy of the ladder, lowest first.
func (c *Catalog) Tiers() []Tier {
	out := make([]Tier, len(c.tiers))
	copy(out, c.tiers)
	return out
}

func (c *Catalog) Lookup(id string) (Tier, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Tier{}, false
	}
	return c.tiers[i], true
}

// earnedCount is the number of tiers whose threshold is <= count.
func (c *Catalog) earnedCount(count int) int {
	return sort.Search(len(c.tiers), func(i int) bool {
		return c.tiers[i].RequiredCompletions > count
	})
}

// TiersEarned returns every tier with RequiredCompletions <= count, lowest first.
func (c *Catalog) TiersEarned(count int) []Tier {
	n := c.earnedCount(count)
	out := make([]Tier, n)
	copy(out, c.tiers[:n])
	return out
}

// NewlyCrossed returns the highest tier whose threshold lies in (prev, next].
func (c *Catalog) NewlyCrossed(prev, next int) (Tier, bool) {
	if next <= prev {
		return Tier{}, false
	}
	lo, hi := c.earnedCount(prev), c.earnedCount(next)
	if hi <= lo {
		return Tier{}, false
	}
	return c.tiers[hi-1], true
}

// Next returns the lowest tier not yet reached at count.
func (c *Catalog) Next(count int) (Tier, bool) {
	n := c.earnedCount(count)
	if n >= len(c.tiers) {
		return Tier{}, false
	}
	return c.tiers[n], true
}

// Highest picks the tier with the largest threshold among ts.
func (c *Catalog) Highest(ts []Tier) (Tier, bool) {
	best, found := -1, false
	for _, t := range ts {
		if i, ok := c.byID[t.ID]; ok && i > best {
			best, found = i, true
		}
	}
	if !found {
		return Tier{}, false
	}
	return c.tiers[best], true
}
