package object

import (
	"errors"
	"fmt"
	"io"
	"math/rand"
	"time"

	"gopkg.in/yaml.v3"
)

// Entry describes one kind in the spawn table.
type Entry struct {
	Kind        Kind
	Weight      float64
	Points      int
	TimeBonus   time.Duration
	Description string
}

// Catalog is the ordered spawn table. Entry order matters for Pick.
type Catalog struct {
	entries []Entry
	index   [kindCount]int // position in entries, -1 when absent
}

var defaultEntries = []Entry{
	{Kind: Champignon, Weight: 0.15, Points: 10, TimeBonus: 1500 * time.Millisecond, Description: "+10 points, +1.5 s"},
	{Kind: Cucumber, Weight: 0.10, Points: 15, TimeBonus: 1300 * time.Millisecond, Description: "+15 points, +1.3 s"},
	{Kind: Eggplant, Weight: 0.10, Points: 5, TimeBonus: 1700 * time.Millisecond, Description: "+5 points, +1.7 s"},
	{Kind: Kebab, Weight: 0.20, Points: 20, TimeBonus: 2 * time.Second, Description: "+20 points, +2 s"},
	{Kind: Salad, Weight: 0.10, Points: 10, TimeBonus: time.Second, Description: "+10 points, +1 s"},
	{Kind: Anvil, Weight: 0.09, Description: "Ends the run unless a shield is up"},
	{Kind: Puffer, Weight: 0.07, Description: "Food falls at half speed for 3.1 s"},
	{Kind: Sock, Weight: 0.05, Description: "Halves the basket for 3.2 s and takes 2 s"},
	{Kind: Drop, Weight: 0.02, Description: "Food rain for 4 s, hazards harmless"},
	{Kind: Shield, Weight: 0.03, Description: "Wider basket and anvil immunity for 2.1 s"},
	{Kind: Magnet, Weight: 0.03, Description: "Food flies into the basket for 3.2 s"},
	{Kind: Boot, Weight: 0.03, Description: "Everything turns into boots for 3 s"},
	{Kind: Ticket, Weight: 0.003, Description: "Collect tickets to unlock prizes"},
}

// DefaultCatalog returns the built-in spawn table.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(defaultEntries)
	if err != nil {
		panic(err)
	}
	return c
}

// NewCatalog validates entries and builds a catalog. Kinds must be unique,
// weights non-negative and at least one reward kind must have weight.
func NewCatalog(entries []Entry) (*Catalog, error) {
	c := &Catalog{entries: make([]Entry, 0, len(entries))}
	for i := range c.index {
		c.index[i] = -1
	}
	rewards := 0.0
	for _, e := range entries {
		if !e.Kind.Valid() {
			return nil, fmt.Errorf("%w: %d", ErrUnknownKind, uint8(e.Kind))
		}
		if c.index[e.Kind] >= 0 {
			return nil, fmt.Errorf("catalog: duplicate kind %s", e.Kind)
		}
		if e.Weight < 0 || !finite(e.Weight) {
			return nil, fmt.Errorf("catalog: invalid weight %v for %s", e.Weight, e.Kind)
		}
		if e.Kind.IsReward() {
			rewards += e.Weight
		}
		c.index[e.Kind] = len(c.entries)
		c.entries = append(c.entries, e)
	}
	if rewards <= 0 {
		return nil, errors.New("catalog: no reward kind with positive weight")
	}
	return c, nil
}

// Entries returns a copy of the table in pick order.
func (c *Catalog) Entries() []Entry {
	return append([]Entry(nil), c.entries...)
}

// Lookup returns the entry for k.
func (c *Catalog) Lookup(k Kind) (Entry, bool) {
	if !k.Valid() || c.index[k] < 0 {
		return Entry{}, false
	}
	return c.entries[c.index[k]], true
}

// Total sums the weights of the candidate set. rewardsOnly restricts the
// candidates to reward kinds, as during rain.
func (c *Catalog) Total(rewardsOnly bool) float64 {
	total := 0.0
	for _, e := range c.entries {
		if rewardsOnly && !e.Kind.IsReward() {
			continue
		}
		total += e.Weight
	}
	return total
}

// Pick maps u in [0, Total(rewardsOnly)) to a kind by walking cumulative
// weights. u = 0 selects the first entry with nonzero weight. Values that fall
// through the table select Salad.
func (c *Catalog) Pick(u float64, rewardsOnly bool) Kind {
	cum := 0.0
	for _, e := range c.entries {
		if rewardsOnly && !e.Kind.IsReward() {
			continue
		}
		if e.Weight <= 0 {
			continue
		}
		cum += e.Weight
		if u < cum {
			return e.Kind
		}
	}
	return Salad
}

// Draw picks a kind with probability proportional to its weight.
func (c *Catalog) Draw(rng *rand.Rand, rewardsOnly bool) Kind {
	return c.Pick(rng.Float64()*c.Total(rewardsOnly), rewardsOnly)
}

// Chance returns the spawn probability of k outside of rain, in percent.
func (c *Catalog) Chance(k Kind) float64 {
	e, ok := c.Lookup(k)
	total := c.Total(false)
	if !ok || total <= 0 {
		return 0
	}
	return e.Weight / total * 100
}

type catalogFile struct {
	Items []struct {
		Kind        string  `yaml:"kind"`
		Weight      float64 `yaml:"weight"`
		Points      int     `yaml:"points"`
		TimeBonus   string  `yaml:"time_bonus"`
		Description string  `yaml:"description"`
	} `yaml:"items"`
}

// LoadCatalog decodes a YAML spawn table:
//
//	items:
//	  - kind: kebab
//	    weight: 0.2
//	    points: 20
//	    time_bonus: 2s
func LoadCatalog(r io.Reader) (*Catalog, error) {
	var f catalogFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	entries := make([]Entry, 0, len(f.Items))
	for _, it := range f.Items {
		k, err := ParseKind(it.Kind)
		if err != nil {
			return nil, err
		}
		var bonus time.Duration
		if it.TimeBonus != "" {
			bonus, err = time.ParseDuration(it.TimeBonus)
			if err != nil {
				return nil, fmt.Errorf("catalog: %s time_bonus: %w", k, err)
			}
		}
		entries = append(entries, Entry{
			Kind:        k,
			Weight:      it.Weight,
			Points:      it.Points,
			TimeBonus:   bonus,
			Description: it.Description,
		})
	}
	return NewCatalog(entries)
}
