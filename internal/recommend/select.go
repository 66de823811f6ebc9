package recommend

import (
	"strings"
)

// rule is one step of the fallback chain. A rule is consulted only when
// enabled reports true for the criteria, and wins when at least one candidate
// matches.
type rule struct {
	tier    Tier
	enabled func(Criteria) bool
	match   func(Candidate, Criteria) bool
}

var chain = []rule{
	{
		tier:    TierExact,
		enabled: func(Criteria) bool { return true },
		match: func(c Candidate, cr Criteria) bool {
			return matchesYear(c, cr) && matchesGenre(c, cr)
		},
	},
	{
		tier:    TierGenreOnly,
		enabled: func(cr Criteria) bool { return !cr.Empty() },
		match:   matchesGenre,
	},
}

// Select de-duplicates candidates against base and applies the fallback
// chain. The returned slice never aliases candidates.
func Select(base Base, candidates []Candidate, criteria Criteria) Selection {
	unique := Deduplicate(base.Title, candidates)
	for _, r := range chain {
		if !r.enabled(criteria) {
			continue
		}
		matched := filter(unique, func(c Candidate) bool { return r.match(c, criteria) })
		if len(matched) > 0 {
			return Selection{Tier: r.tier, Candidates: matched}
		}
	}
	return Selection{Tier: TierUnfiltered, Candidates: unique}
}

// Deduplicate drops candidates whose title contains baseTitle, ignoring case.
// baseTitle is used as given: an empty title is contained in every title and
// drops everything. The result may be empty.
func Deduplicate(baseTitle string, candidates []Candidate) []Candidate {
	needle := strings.ToLower(baseTitle)
	return filter(candidates, func(c Candidate) bool {
		return !strings.Contains(strings.ToLower(c.Title), needle)
	})
}

// matchesYear is a substring test against the full release date; candidates
// without a date never match a year criterion.
func matchesYear(c Candidate, cr Criteria) bool {
	year := strings.TrimSpace(cr.Year)
	if year == "" {
		return true
	}
	return c.ReleaseDate != "" && strings.Contains(c.ReleaseDate, year)
}

func matchesGenre(c Candidate, cr Criteria) bool {
	if cr.GenreID == 0 {
		return true
	}
	return c.HasGenre(cr.GenreID)
}

func filter(candidates []Candidate, keep func(Candidate) bool) []Candidate {
	out := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}
