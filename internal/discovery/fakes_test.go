package discovery

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/yu-a0/discovery-engine-suite/internal/anilist"
	"github.com/yu-a0/discovery-engine-suite/internal/tmdb"
)

type fakeTMDB struct {
	movies          map[string][]tmdb.Movie
	people          map[string][]tmdb.Person
	keywords        map[string][]tmdb.Keyword
	recommendations map[int64][]json.RawMessage
	discover        []tmdb.Movie
	credits         map[int64]tmdb.Credits
	videos          map[int64]tmdb.VideoResponse

	recCalls     int
	lastDiscover tmdb.DiscoverOptions
	failRecs     error
}

func (f *fakeTMDB) SearchMovie(_ context.Context, query string) (*tmdb.Response, error) {
	return &tmdb.Response{Results: f.movies[query]}, nil
}

func (f *fakeTMDB) SearchPerson(_ context.Context, query string) (*tmdb.PersonResponse, error) {
	return &tmdb.PersonResponse{Results: f.people[query]}, nil
}

func (f *fakeTMDB) SearchKeyword(_ context.Context, query string) (*tmdb.KeywordResponse, error) {
	return &tmdb.KeywordResponse{Results: f.keywords[query]}, nil
}

func (f *fakeTMDB) MovieRecommendations(_ context.Context, id int64) ([]json.RawMessage, error) {
	f.recCalls++
	if f.failRecs != nil {
		return nil, f.failRecs
	}
	return f.recommendations[id], nil
}

func (f *fakeTMDB) DiscoverMovies(_ context.Context, opts tmdb.DiscoverOptions) (*tmdb.Response, error) {
	f.lastDiscover = opts
	return &tmdb.Response{Results: f.discover}, nil
}

func (f *fakeTMDB) MovieCredits(_ context.Context, id int64) (*tmdb.Credits, error) {
	credits := f.credits[id]
	return &credits, nil
}

func (f *fakeTMDB) MovieVideos(_ context.Context, id int64) (*tmdb.VideoResponse, error) {
	videos := f.videos[id]
	return &videos, nil
}

func rec(id int64, title, date string, genreIDs ...int64) json.RawMessage {
	ids, _ := json.Marshal(genreIDs)
	if genreIDs == nil {
		ids = []byte("[]")
	}
	return json.RawMessage(fmt.Sprintf(`{"id":%d,"title":%q,"release_date":%q,"genre_ids":%s,"vote_average":7.5}`, id, title, date, ids))
}

type fakeAniList struct {
	media    []anilist.Media
	lastOpts anilist.SearchOptions
	suggest  []anilist.Media
}

func (f *fakeAniList) SearchMedia(_ context.Context, opts anilist.SearchOptions) ([]anilist.Media, error) {
	f.lastOpts = opts
	return f.media, nil
}

func (f *fakeAniList) Suggest(_ context.Context, _ string, limit int) ([]anilist.Media, error) {
	if len(f.suggest) > limit {
		return f.suggest[:limit], nil
	}
	return f.suggest, nil
}

type fixedSource int

func (s fixedSource) IntN(n int) int { return int(s) % n }
