package anilist

import "strings"

type Title struct {
	Romaji  string `json:"romaji"`
	English string `json:"english"`
}

// Display prefers the English title and falls back to romaji.
func (t Title) Display() string {
	if strings.TrimSpace(t.English) != "" {
		return t.English
	}
	return t.Romaji
}

// Full renders "English (Romaji)" when the two differ.
func (t Title) Full() string {
	if t.English != "" && t.Romaji != "" && !strings.EqualFold(t.English, t.Romaji) {
		return t.English + " (" + t.Romaji + ")"
	}
	return t.Display()
}

type CoverImage struct {
	Large string `json:"large"`
}

type recommendationNode struct {
	MediaRecommendation *Media `json:"mediaRecommendation"`
}

type Recommendations struct {
	Nodes []recommendationNode `json:"nodes"`
}

// Media is an anime entry. AverageScore is 0 when AniList has no score.
type Media struct {
	ID              int64            `json:"id"`
	Title           Title            `json:"title"`
	Genres          []string         `json:"genres"`
	AverageScore    int              `json:"averageScore"`
	Description     string           `json:"description"`
	Format          string           `json:"format"`
	SeasonYear      int              `json:"seasonYear"`
	CoverImage      CoverImage       `json:"coverImage"`
	Recommendations *Recommendations `json:"recommendations,omitempty"`
}

// Recommended returns the non-null recommendation targets in upstream order.
func (m Media) Recommended() []Media {
	if m.Recommendations == nil {
		return nil
	}
	out := make([]Media, 0, len(m.Recommendations.Nodes))
	for _, node := range m.Recommendations.Nodes {
		if node.MediaRecommendation != nil {
			out = append(out, *node.MediaRecommendation)
		}
	}
	return out
}

// PageURL is the public AniList page for the entry.
func (m Media) PageURL() string {
	return PageURL(m.ID)
}

// SearchOptions maps onto the media search variables; zero values are sent
// as null so AniList ignores them.
type SearchOptions struct {
	Search string
	Genre  string
	Year   int
}

type StaffName struct {
	Full string `json:"full"`
}

type Staff struct {
	Name               StaffName `json:"name"`
	PrimaryOccupations []string  `json:"primaryOccupations"`
}

// Role returns the first listed occupation, or "Staff".
func (s Staff) Role() string {
	if len(s.PrimaryOccupations) == 0 || s.PrimaryOccupations[0] == "" {
		return "Staff"
	}
	return s.PrimaryOccupations[0]
}

type Studio struct {
	Name       string `json:"name"`
	Favourites int    `json:"favourites"`
}

// Collections summarizes AniList's genre and tag vocabularies.
type Collections struct {
	Genres   []string
	TagCount int
}
