package tmdb

import "encoding/json"

// Movie is a TMDB movie as returned by search, discover and details.
type Movie struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Overview    string  `json:"overview"`
	ReleaseDate string  `json:"release_date"`
	GenreIDs    []int64 `json:"genre_ids"`
	Genres      []Genre `json:"genres,omitempty"`
	Popularity  float64 `json:"popularity"`
	VoteAverage float64 `json:"vote_average"`
	VoteCount   int64   `json:"vote_count"`
}

// Year returns the four-digit release year or "" when the date is missing.
func (m Movie) Year() string {
	if len(m.ReleaseDate) < 4 {
		return ""
	}
	return m.ReleaseDate[:4]
}

// AllGenreIDs merges the list-style genre_ids with the nested genres array
// returned by the details endpoint.
func (m Movie) AllGenreIDs() []int64 {
	if len(m.Genres) == 0 {
		return m.GenreIDs
	}
	ids := make([]int64, 0, len(m.GenreIDs)+len(m.Genres))
	seen := make(map[int64]struct{}, cap(ids))
	for _, id := range m.GenreIDs {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	for _, g := range m.Genres {
		if _, ok := seen[g.ID]; !ok {
			seen[g.ID] = struct{}{}
			ids = append(ids, g.ID)
		}
	}
	return ids
}

// Response models a paginated movie list.
type Response struct {
	Page         int     `json:"page"`
	Results      []Movie `json:"results"`
	TotalPages   int     `json:"total_pages"`
	TotalResults int     `json:"total_results"`
}

// rawPage keeps result records undecoded so they can be cached verbatim.
type rawPage struct {
	Page    int               `json:"page"`
	Results []json.RawMessage `json:"results"`
}

type Keyword struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type KeywordResponse struct {
	Page    int       `json:"page"`
	Results []Keyword `json:"results"`
}

// KnownFor is a movie or TV credit attached to a person; TV entries use Name.
type KnownFor struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Name      string `json:"name"`
	MediaType string `json:"media_type"`
}

// DisplayTitle returns Title, falling back to Name for TV credits.
func (k KnownFor) DisplayTitle() string {
	if k.Title != "" {
		return k.Title
	}
	return k.Name
}

type Person struct {
	ID                 int64      `json:"id"`
	Name               string     `json:"name"`
	KnownForDepartment string     `json:"known_for_department"`
	Popularity         float64    `json:"popularity"`
	KnownFor           []KnownFor `json:"known_for"`
}

type PersonResponse struct {
	Page    int      `json:"page"`
	Results []Person `json:"results"`
}

type CastMember struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Character string `json:"character"`
	Order     int    `json:"order"`
}

type Credits struct {
	ID   int64        `json:"id"`
	Cast []CastMember `json:"cast"`
}

// TopCast returns at most n cast names in billing order.
func (c Credits) TopCast(n int) []string {
	names := make([]string, 0, n)
	for _, member := range c.Cast {
		if len(names) >= n {
			break
		}
		names = append(names, member.Name)
	}
	return names
}

type Video struct {
	Key  string `json:"key"`
	Name string `json:"name"`
	Site string `json:"site"`
	Type string `json:"type"`
}

type VideoResponse struct {
	ID      int64   `json:"id"`
	Results []Video `json:"results"`
}

// TrailerKey returns the key of the first video typed "Trailer", or "".
func (v VideoResponse) TrailerKey() string {
	for _, video := range v.Results {
		if video.Type == "Trailer" && video.Key != "" {
			return video.Key
		}
	}
	return ""
}

type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type genreList struct {
	Genres []Genre `json:"genres"`
}

// APIConfiguration is the subset of /configuration the explorer reports.
type APIConfiguration struct {
	Images struct {
		SecureBaseURL string   `json:"secure_base_url"`
		PosterSizes   []string `json:"poster_sizes"`
		BackdropSizes []string `json:"backdrop_sizes"`
	} `json:"images"`
	ChangeKeys []string `json:"change_keys"`
}

type Language struct {
	ISO6391     string `json:"iso_639_1"`
	EnglishName string `json:"english_name"`
	Name        string `json:"name"`
}

type Country struct {
	ISO31661    string `json:"iso_3166_1"`
	EnglishName string `json:"english_name"`
}

// DiscoverOptions filters /discover/movie. Zero values are omitted.
type DiscoverOptions struct {
	Year      string
	CastID    int64
	GenreID   int64
	KeywordID int64
	Page      int
}
