package recommend

import (
	"encoding/json"
	"slices"
	"strings"
)

// Tier classifies how specific a Selection's filter ended up being.
type Tier string

const (
	TierExact      Tier = "EXACT"
	TierGenreOnly  Tier = "GENRE_ONLY"
	TierUnfiltered Tier = "UNFILTERED"
)

// Base is the anchor title recommendations were fetched for.
type Base struct {
	ID       int64    `json:"id"`
	Title    string   `json:"title"`
	GenreIDs []int64  `json:"genre_ids,omitempty"`
	Genres   []string `json:"genres,omitempty"`
}

// Candidate is one recommendation record. Raw holds the upstream document it
// was decoded from.
type Candidate struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	ReleaseDate string          `json:"release_date,omitempty"`
	GenreIDs    []int64         `json:"genre_ids,omitempty"`
	Genres      []string        `json:"genres,omitempty"`
	Rating      float64         `json:"rating"`
	Overview    string          `json:"overview,omitempty"`
	Popularity  float64         `json:"popularity,omitempty"`
	Raw         json.RawMessage `json:"-"`
}

// Year returns the first four characters of the release date, or "".
func (c Candidate) Year() string {
	if len(c.ReleaseDate) < 4 {
		return ""
	}
	return c.ReleaseDate[:4]
}

// HasGenre reports whether id is among the candidate's genre ids.
func (c Candidate) HasGenre(id int64) bool {
	return slices.Contains(c.GenreIDs, id)
}

// Criteria are the optional user filters. Year "" and GenreID 0 mean unset.
// GenreID may carry a TMDB keyword id; the selector does not distinguish.
type Criteria struct {
	Year    string `json:"year,omitempty"`
	GenreID int64  `json:"genre_id,omitempty"`
}

// Empty reports whether neither criterion was supplied.
func (c Criteria) Empty() bool {
	return strings.TrimSpace(c.Year) == "" && c.GenreID == 0
}

// Selection is the outcome of Select.
type Selection struct {
	Tier       Tier        `json:"tier"`
	Candidates []Candidate `json:"candidates"`
}
