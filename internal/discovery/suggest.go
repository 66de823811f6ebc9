package discovery

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/yu-a0/discovery-engine-suite/internal/anilist"
	"github.com/yu-a0/discovery-engine-suite/internal/services"
	"github.com/yu-a0/discovery-engine-suite/internal/tmdb"
)

// MinSuggestionLength is the shortest prefix worth a suggestion request.
const MinSuggestionLength = 3

type MovieSearcher interface {
	SearchMovie(ctx context.Context, query string) (*tmdb.Response, error)
}

type AnimeSuggester interface {
	Suggest(ctx context.Context, prefix string, limit int) ([]anilist.Media, error)
}

func checkPrefix(prefix string, minLen int) (string, error) {
	prefix = strings.TrimSpace(prefix)
	if minLen <= 0 {
		minLen = MinSuggestionLength
	}
	if utf8.RuneCountInString(prefix) < minLen {
		return "", services.Wrap(services.ErrValidation, "discovery", "suggest",
			fmt.Sprintf("type at least %d characters", minLen), nil)
	}
	return prefix, nil
}

// SuggestMovies returns up to limit TMDB titles for prefix, formatted
// "Title (YYYY)" when the year is known.
func SuggestMovies(ctx context.Context, src MovieSearcher, prefix string, limit, minLen int) ([]string, error) {
	prefix, err := checkPrefix(prefix, minLen)
	if err != nil {
		return nil, err
	}
	resp, err := src.SearchMovie(ctx, prefix)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, limit)
	for _, movie := range resp.Results {
		if len(out) >= limit {
			break
		}
		if year := movie.Year(); year != "" {
			out = append(out, fmt.Sprintf("%s (%s)", movie.Title, year))
		} else {
			out = append(out, movie.Title)
		}
	}
	return out, nil
}

// SuggestAnime returns up to limit AniList display titles for prefix.
func SuggestAnime(ctx context.Context, src AnimeSuggester, prefix string, limit, minLen int) ([]string, error) {
	prefix, err := checkPrefix(prefix, minLen)
	if err != nil {
		return nil, err
	}
	media, err := src.Suggest(ctx, prefix, limit)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(media))
	for _, m := range media {
		if title := m.Title.Display(); title != "" {
			out = append(out, title)
		}
	}
	return out, nil
}
