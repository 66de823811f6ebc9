package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/cobra"

	"github.com/yu-a0/discovery-engine-suite/internal/config"
	"github.com/yu-a0/discovery-engine-suite/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
	tmdbHits   *hitCounter
}

// hitCounter counts fake TMDB requests per path.
type hitCounter struct {
	mu     sync.Mutex
	counts map[string]int
}

func (h *hitCounter) add(path string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.counts[path]++
}

func (h *hitCounter) get(path string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.counts[path]
}

type cliTestOption func(*config.Config)

func withoutTMDB() cliTestOption {
	return func(cfg *config.Config) {
		cfg.TMDB.Token = ""
		cfg.TMDB.APIKey = ""
	}
}

func setupCLITestEnv(t *testing.T, opts ...cliTestOption) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("TMDB_TOKEN", "")
	t.Setenv("TMDB_API_KEY", "")
	t.Setenv("BASE_URL", "")
	t.Setenv("ANILIST_URL", "")

	env := &cliTestEnv{tmdbHits: &hitCounter{counts: make(map[string]int)}}
	tmdbServer := httptest.NewServer(fakeTMDBHandler(t, env.tmdbHits))
	t.Cleanup(tmdbServer.Close)
	anilistServer := httptest.NewServer(fakeAniListHandler(t))
	t.Cleanup(anilistServer.Close)

	cfg := testsupport.NewConfig(t,
		testsupport.WithTMDBServer(tmdbServer.URL),
		testsupport.WithAniListServer(anilistServer.URL),
	)
	cfg.AniList.RequestsPerMinute = 60000
	cfg.Logging.Level = "error"
	for _, opt := range opts {
		opt(cfg)
	}

	env.cfg = cfg
	env.configPath = testsupport.WriteConfigFile(t, cfg)
	env.baseDir = testsupport.BaseDir(cfg)
	return env
}

// runCLI executes the root command with args plus --config and returns
// stdout, stderr and the command error.
func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()

	cmd := newRootCommand()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	fullArgs := append([]string{"--config", configPath}, args...)
	cmd.SetArgs(fullArgs)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substring string) {
	t.Helper()
	if !strings.Contains(output, substring) {
		t.Fatalf("expected output to contain %q\n%s", substring, output)
	}
}

func requireNotContains(t *testing.T, output, substring string) {
	t.Helper()
	if strings.Contains(output, substring) {
		t.Fatalf("expected output not to contain %q\n%s", substring, output)
	}
}

// stubOpenURL records URLs instead of launching a browser.
func stubOpenURL(t *testing.T) *[]string {
	t.Helper()
	var opened []string
	previous := openURL
	openURL = func(_ *cobra.Command, url string) error {
		opened = append(opened, url)
		return nil
	}
	t.Cleanup(func() { openURL = previous })
	return &opened
}

func writeBody(t *testing.T, w http.ResponseWriter, body string) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write([]byte(body)); err != nil {
		t.Errorf("write response: %v", err)
	}
}

const duneRecommendations = `{"page":1,"results":[
  {"id":693134,"title":"Dune: Part Two","release_date":"2024-02-27","genre_ids":[878,12],"vote_average":8.2},
  {"id":335984,"title":"Blade Runner 2049","release_date":"2017-10-04","genre_ids":[878,18],"vote_average":7.5,"overview":"A young blade runner unearths a secret."},
  {"id":157336,"title":"Interstellar","release_date":"2014-11-05","genre_ids":[12,18,878],"vote_average":8.4},
  {"id":1,"title":"Drama Only","release_date":"2021-01-01","genre_ids":[18],"vote_average":6.1}
]}`

func fakeTMDBHandler(t *testing.T, hits *hitCounter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-token" {
			w.WriteHeader(http.StatusUnauthorized)
			writeBody(t, w, `{"status_message":"Invalid API key"}`)
			return
		}
		hits.add(r.URL.Path)
		switch r.URL.Path {
		case "/search/movie":
			if strings.HasPrefix(strings.ToLower(r.URL.Query().Get("query")), "dun") {
				writeBody(t, w, `{"page":1,"results":[
  {"id":438631,"title":"Dune","release_date":"2021-09-15","genre_ids":[878,12],"vote_average":7.8},
  {"id":841,"title":"Dune","release_date":"1984-12-14","genre_ids":[878,12]}
]}`)
				return
			}
			writeBody(t, w, `{"page":1,"results":[]}`)
		case "/search/keyword", "/search/person":
			writeBody(t, w, `{"page":1,"results":[]}`)
		case "/movie/438631/recommendations":
			writeBody(t, w, duneRecommendations)
		case "/movie/335984/credits":
			writeBody(t, w, `{"id":335984,"cast":[{"name":"Ryan Gosling"},{"name":"Harrison Ford"},{"name":"Ana de Armas"},{"name":"Sylvia Hoeks"}]}`)
		case "/movie/335984/videos":
			writeBody(t, w, `{"id":335984,"results":[{"key":"gCcx85zbxz4","site":"YouTube","type":"Trailer"}]}`)
		case "/movie/157336/credits":
			writeBody(t, w, `{"id":157336,"cast":[]}`)
		case "/movie/157336/videos":
			writeBody(t, w, `{"id":157336,"results":[]}`)
		case "/discover/movie":
			writeBody(t, w, `{"page":1,"results":[{"id":27205,"title":"Inception","release_date":"2010-07-15","genre_ids":[28,878,12],"vote_average":8.4}]}`)
		case "/genre/movie/list":
			writeBody(t, w, `{"genres":[{"id":28,"name":"Action"},{"id":878,"name":"Science Fiction"}]}`)
		case "/person/popular":
			writeBody(t, w, `{"page":1,"results":[{"id":505710,"name":"Zendaya","known_for":[{"id":438631,"title":"Dune","media_type":"movie"},{"id":1,"name":"Euphoria","media_type":"tv"}]}]}`)
		case "/movie/now_playing":
			writeBody(t, w, `{"page":1,"results":[{"id":693134,"title":"Dune: Part Two","release_date":"2024-02-27"}]}`)
		case "/configuration":
			writeBody(t, w, `{"images":{"secure_base_url":"https://image.tmdb.org/t/p/","poster_sizes":["w92","original"]},"change_keys":[]}`)
		case "/configuration/languages":
			writeBody(t, w, `[{"iso_639_1":"en","english_name":"English"},{"iso_639_1":"ja","english_name":"Japanese"}]`)
		case "/configuration/countries":
			writeBody(t, w, `[{"iso_3166_1":"US","english_name":"United States of America"}]`)
		default:
			w.WriteHeader(http.StatusNotFound)
			writeBody(t, w, `{"status_message":"not found"}`)
		}
	}
}

const attackOnTitanPage = `{"data":{"Page":{"media":[
  {
    "id": 16498,
    "title": {"romaji": "Shingeki no Kyojin", "english": "Attack on Titan"},
    "genres": ["Action", "Drama", "Fantasy"],
    "averageScore": 85,
    "description": "Humanity<br>fights back.",
    "recommendations": {"nodes": [
      {"mediaRecommendation": {"id": 20958, "title": {"romaji": "Shingeki no Kyojin 2", "english": "Attack on Titan Season 2"}, "genres": ["Action", "Drama"]}},
      {"mediaRecommendation": {"id": 1535, "title": {"romaji": "Death Note", "english": "Death Note"}, "genres": ["Mystery", "Psychological", "Drama"], "averageScore": 84, "description": "<i>Light</i> finds a notebook."}},
      {"mediaRecommendation": {"id": 11061, "title": {"romaji": "Hunter x Hunter (2011)", "english": "Hunter x Hunter"}, "genres": ["Action", "Adventure", "Fantasy"]}}
    ]}
  }
]}}}`

func fakeAniListHandler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		var req struct {
			Query     string         `json:"query"`
			Variables map[string]any `json:"variables"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode graphql request: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		switch {
		case strings.Contains(req.Query, "GenreCollection"):
			writeBody(t, w, `{"data":{"GenreCollection":["Action","Drama","Slice of Life"],"MediaTagCollection":[{"name":"Isekai"},{"name":"Mecha"}]}}`)
		case strings.Contains(req.Query, "TRENDING_DESC"):
			writeBody(t, w, `{"data":{"Page":{"media":[{"id":1,"title":{"english":"Frieren"},"averageScore":91,"format":"TV"}]}}}`)
		case strings.Contains(req.Query, "staff("):
			writeBody(t, w, `{"data":{"Page":{"staff":[{"name":{"full":"Hayao Miyazaki"},"primaryOccupations":["Director"]}]}}}`)
		case strings.Contains(req.Query, "studios("):
			writeBody(t, w, `{"data":{"Page":{"studios":[{"name":"Kyoto Animation","favourites":40000}]}}}`)
		case strings.Contains(req.Query, "recommendations"):
			search, _ := req.Variables["search"].(string)
			if strings.Contains(strings.ToLower(search), "titan") {
				writeBody(t, w, attackOnTitanPage)
				return
			}
			writeBody(t, w, `{"data":{"Page":{"media":[]}}}`)
		case strings.Contains(req.Query, "$s"):
			prefix, _ := req.Variables["s"].(string)
			writeBody(t, w, fmt.Sprintf(`{"data":{"Page":{"media":[{"id":16498,"title":{"english":"Attack on Titan","romaji":"Shingeki no Kyojin"}},{"id":2,"title":{"romaji":%q}}]}}}`, prefix+" Romaji"))
		default:
			t.Errorf("unexpected graphql query %q", req.Query)
			w.WriteHeader(http.StatusBadRequest)
		}
	}
}
