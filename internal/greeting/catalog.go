// Package greeting holds the configured message pools and broadcasts a
// random message from a pool when a tracked key changes.
package greeting

import (
	"github.com/talgya/almanac/internal/sampler"
)

// Pools maps a key (a day phase, weather type, season, zodiac sign or
// "month-day") to its message templates.
type Pools map[string][]string

// Catalog is the immutable set of pools per category. A reload builds a new
// Catalog instead of editing the old one.
type Catalog struct {
	pools map[sampler.Category]Pools
}

// NewCatalog copies pools into a Catalog, dropping empty pools.
func NewCatalog(pools map[sampler.Category]Pools) *Catalog {
	cat := &Catalog{pools: make(map[sampler.Category]Pools, len(pools))}
	for c, byKey := range pools {
		copied := make(Pools, len(byKey))
		for key, msgs := range byKey {
			if len(msgs) == 0 {
				continue
			}
			copied[key] = append([]string(nil), msgs...)
		}
		cat.pools[c] = copied
	}
	return cat
}

// Messages returns the templates for key in category c, or nil.
func (cat *Catalog) Messages(c sampler.Category, key string) []string {
	if cat == nil {
		return nil
	}
	return cat.pools[c][key]
}

// Size returns the number of non-empty pools in category c.
func (cat *Catalog) Size(c sampler.Category) int {
	if cat == nil {
		return 0
	}
	return len(cat.pools[c])
}
