package recommend

import (
	"encoding/json"
)

type tmdbRecord struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Name        string  `json:"name"`
	ReleaseDate string  `json:"release_date"`
	GenreIDs    []int64 `json:"genre_ids"`
	VoteAverage float64 `json:"vote_average"`
	Overview    string  `json:"overview"`
	Popularity  float64 `json:"popularity"`
}

// DecodeCandidates decodes TMDB recommendation records. Records that are not
// JSON objects, or carry neither id nor title, are skipped and counted; the
// rest keep their upstream order.
func DecodeCandidates(records []json.RawMessage) ([]Candidate, int) {
	out := make([]Candidate, 0, len(records))
	skipped := 0
	for _, raw := range records {
		var rec tmdbRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			skipped++
			continue
		}
		title := rec.Title
		if title == "" {
			title = rec.Name
		}
		if rec.ID == 0 && title == "" {
			skipped++
			continue
		}
		out = append(out, Candidate{
			ID:          rec.ID,
			Title:       title,
			ReleaseDate: rec.ReleaseDate,
			GenreIDs:    rec.GenreIDs,
			Rating:      rec.VoteAverage,
			Overview:    rec.Overview,
			Popularity:  rec.Popularity,
			Raw:         raw,
		})
	}
	return out, skipped
}
