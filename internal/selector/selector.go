// Package selector filters and ranks the fetched repository list down to the
// bounded set of projects shown on the portfolio page.
package selector

import (
	"sort"

	"github.com/joaosnet/gitfolio/internal/models"
)

// Selector applies the fixed selection policy: no forks, no self-listing,
// third-party repositories need a description, newest activity first.
type Selector struct {
	// PrimaryAccount is the portfolio owner's login; their repositories
	// stay eligible even without a description.
	PrimaryAccount string
	// SelfRepo is the repository hosting the generated page, excluded to
	// avoid the portfolio listing itself.
	SelfRepo string
}

// Select filters records and returns at most limit of them, ordered by
// pushed_at descending (updated_at when pushed_at is absent). The sort is
// stable so ties keep their original API order. Fewer surviving records than
// limit is not an error; an empty input yields an empty output.
func (s Selector) Select(records []models.RepositoryRecord, limit int) []models.RepositoryRecord {
	eligible := make([]models.RepositoryRecord, 0, len(records))
	for _, r := range records {
		if r.Fork {
			continue
		}
		if r.Name == s.SelfRepo {
			continue
		}
		if r.Description == "" && r.Owner != s.PrimaryAccount {
			continue
		}
		eligible = append(eligible, r)
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].EffectiveTimestamp().After(eligible[j].EffectiveTimestamp())
	})

	if limit >= 0 && len(eligible) > limit {
		eligible = eligible[:limit]
	}
	return eligible
}
