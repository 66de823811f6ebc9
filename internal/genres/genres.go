// Package genres maps free-text theme input onto TMDB genre ids, falling back
// to TMDB keyword search, and canonicalizes AniList genre names.
package genres

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/yu-a0/discovery-engine-suite/internal/logging"
	"github.com/yu-a0/discovery-engine-suite/internal/services"
	"github.com/yu-a0/discovery-engine-suite/internal/tmdb"
)

// movieGenres is TMDB's movie genre table keyed by the lower-case name users
// type.
var movieGenres = map[string]int64{
	"action":      28,
	"adventure":   12,
	"animation":   16,
	"comedy":      35,
	"crime":       80,
	"documentary": 99,
	"drama":       18,
	"family":      10751,
	"fantasy":     14,
	"history":     36,
	"horror":      27,
	"music":       10402,
	"mystery":     9648,
	"romance":     10749,
	"sci-fi":      878,
	"tv movie":    10770,
	"thriller":    53,
	"war":         10752,
	"western":     37,
}

var aliases = map[string]string{
	"science fiction": "sci-fi",
	"scifi":           "sci-fi",
	"sf":              "sci-fi",
}

var genreNames = func() map[int64]string {
	caser := cases.Title(language.English)
	names := make(map[int64]string, len(movieGenres))
	for key, id := range movieGenres {
		names[id] = caser.String(key)
	}
	return names
}()

func normalizeKey(input string) string {
	key := strings.Join(strings.Fields(strings.ToLower(input)), " ")
	if alias, ok := aliases[key]; ok {
		return alias
	}
	return key
}

// Lookup returns the TMDB genre id for a case-insensitive genre name.
func Lookup(name string) (int64, bool) {
	id, ok := movieGenres[normalizeKey(name)]
	return id, ok
}

// Name returns the display name for a genre id, or "" when unknown.
func Name(id int64) string {
	return genreNames[id]
}

// Names maps ids to display names, skipping ids outside the table.
func Names(ids []int64) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if name := Name(id); name != "" {
			out = append(out, name)
		}
	}
	return out
}

// Known returns the genre names accepted by Lookup in alphabetical order.
func Known() []string {
	keys := make([]string, 0, len(movieGenres))
	for key := range movieGenres {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Kind says which TMDB vocabulary a Token id belongs to.
type Kind string

const (
	KindGenre   Kind = "genre"
	KindKeyword Kind = "keyword"
)

// Token is a resolved theme filter. The recommender treats ID as an opaque
// genre token; discover queries need Kind to pick with_genres or with_keywords.
type Token struct {
	ID    int64
	Kind  Kind
	Input string
}

// IsZero reports whether no filter was resolved.
func (t Token) IsZero() bool {
	return t.ID == 0
}

// KeywordSearcher is the TMDB call used for the keyword fallback.
type KeywordSearcher interface {
	SearchKeyword(ctx context.Context, query string) (*tmdb.KeywordResponse, error)
}

// Resolver turns theme input into a Token.
type Resolver struct {
	keywords KeywordSearcher
	logger   *slog.Logger
}

func NewResolver(keywords KeywordSearcher, logger *slog.Logger) *Resolver {
	return &Resolver{keywords: keywords, logger: logging.NewComponentLogger(logger, "genres")}
}

// Resolve looks input up in the static table and, on a miss, takes the first
// TMDB keyword match. Empty input and keyword searches with no hits both
// yield a zero Token and no error.
func (r *Resolver) Resolve(ctx context.Context, input string) (Token, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return Token{}, nil
	}
	if id, ok := Lookup(input); ok {
		r.logger.Debug("theme resolved", logging.Args(logging.DecisionAttrs("theme_filter", "genre", input)...)...)
		return Token{ID: id, Kind: KindGenre, Input: input}, nil
	}
	if r.keywords == nil {
		return Token{}, nil
	}
	resp, err := r.keywords.SearchKeyword(ctx, strings.ToLower(input))
	if err != nil {
		return Token{}, services.Wrap(services.ErrUpstreamUnavailable, "genres", "keyword fallback", input, err)
	}
	if len(resp.Results) == 0 {
		logging.WarnWithContext(r.logger, "theme matched no genre or keyword", "theme_unresolved",
			logging.String("theme", input),
			logging.String(logging.FieldImpact, "results are not filtered by theme"),
			logging.String(logging.FieldErrorHint, "try one of: "+strings.Join(Known(), ", ")),
		)
		return Token{}, nil
	}
	kw := resp.Results[0]
	r.logger.Debug("theme resolved", logging.Args(logging.DecisionAttrs("theme_filter", "keyword", kw.Name)...)...)
	return Token{ID: kw.ID, Kind: KindKeyword, Input: input}, nil
}

// aniListGenres is AniList's GenreCollection with its exact casing.
var aniListGenres = []string{
	"Action", "Adventure", "Comedy", "Drama", "Ecchi", "Fantasy", "Hentai",
	"Horror", "Mahou Shoujo", "Mecha", "Music", "Mystery", "Psychological",
	"Romance", "Sci-Fi", "Slice of Life", "Sports", "Supernatural", "Thriller",
}

// AniListGenre returns input in AniList's canonical casing. Unknown genres
// get their first letter upper-cased and the rest lowered.
func AniListGenre(input string) string {
	input = strings.Join(strings.Fields(input), " ")
	if input == "" {
		return ""
	}
	for _, genre := range aniListGenres {
		if strings.EqualFold(genre, input) {
			return genre
		}
	}
	lower := strings.ToLower(input)
	runes := []rune(lower)
	first := cases.Upper(language.Und).String(string(runes[0]))
	return first + string(runes[1:])
}
