package recommend

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/yu-a0/discovery-engine-suite/internal/services"
)

func duneBase() Base {
	return Base{ID: 438631, Title: "Dune", GenreIDs: []int64{878, 12}}
}

func duneRecs() []Candidate {
	return []Candidate{
		{ID: 693134, Title: "Dune Part Two", GenreIDs: []int64{878}},
		{ID: 329865, Title: "Arrival", GenreIDs: []int64{878, 18}},
		{ID: 157336, Title: "Interstellar", GenreIDs: []int64{878, 12}},
	}
}

func titles(cs []Candidate) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.Title)
	}
	return out
}

func assertTitles(t *testing.T, got []Candidate, want ...string) {
	t.Helper()
	if strings.Join(titles(got), "|") != strings.Join(want, "|") {
		t.Fatalf("titles = %v, want %v", titles(got), want)
	}
}

func TestSelectDuneGenreOnlyCriterion(t *testing.T) {
	sel := Select(duneBase(), duneRecs(), Criteria{GenreID: 878})
	if sel.Tier != TierExact {
		t.Fatalf("tier = %s, want EXACT", sel.Tier)
	}
	assertTitles(t, sel.Candidates, "Arrival", "Interstellar")
}

func TestSelectDuneYearMissFallsBackToGenre(t *testing.T) {
	sel := Select(duneBase(), duneRecs(), Criteria{Year: "1999", GenreID: 878})
	if sel.Tier != TierGenreOnly {
		t.Fatalf("tier = %s, want GENRE_ONLY", sel.Tier)
	}
	assertTitles(t, sel.Candidates, "Arrival", "Interstellar")
}

func TestSelectNoCriteriaIsExact(t *testing.T) {
	sel := Select(duneBase(), duneRecs(), Criteria{})
	if sel.Tier != TierExact {
		t.Fatalf("tier = %s, want EXACT", sel.Tier)
	}
	assertTitles(t, sel.Candidates, "Arrival", "Interstellar")
}

func TestSelectNothingMatchesIsUnfiltered(t *testing.T) {
	sel := Select(duneBase(), duneRecs(), Criteria{Year: "1999", GenreID: 27})
	if sel.Tier != TierUnfiltered {
		t.Fatalf("tier = %s, want UNFILTERED", sel.Tier)
	}
	assertTitles(t, sel.Candidates, "Arrival", "Interstellar")
}

func TestSelectYearOnlyMissFallsBackToGenreOnly(t *testing.T) {
	recs := []Candidate{
		{Title: "Arrival", ReleaseDate: "2016-11-10", GenreIDs: []int64{878}},
		{Title: "Sicario", ReleaseDate: "2015-09-17", GenreIDs: []int64{80}},
	}
	// Without a genre the GENRE_ONLY rule keeps everything.
	sel := Select(Base{Title: "Dune"}, recs, Criteria{Year: "1999"})
	if sel.Tier != TierGenreOnly {
		t.Fatalf("tier = %s, want GENRE_ONLY", sel.Tier)
	}
	assertTitles(t, sel.Candidates, "Arrival", "Sicario")
}

func TestSelectYearIsSubstringOfReleaseDate(t *testing.T) {
	recs := []Candidate{
		{Title: "A", ReleaseDate: "2016-11-10"},
		{Title: "B"},
		{Title: "C", ReleaseDate: "1999-03-31"},
	}
	sel := Select(Base{Title: "Dune"}, recs, Criteria{Year: "2016"})
	if sel.Tier != TierExact {
		t.Fatalf("tier = %s, want EXACT", sel.Tier)
	}
	assertTitles(t, sel.Candidates, "A")

	// "11" appears in the month part of A's date; substring semantics keep it.
	sel = Select(Base{Title: "Dune"}, recs, Criteria{Year: "11"})
	assertTitles(t, sel.Candidates, "A")
}

func TestSelectEmptyAfterDedup(t *testing.T) {
	recs := []Candidate{{Title: "Dune: Part Two"}, {Title: "DUNE (1984)"}}
	sel := Select(duneBase(), recs, Criteria{GenreID: 878})
	if sel.Tier != TierUnfiltered || len(sel.Candidates) != 0 {
		t.Fatalf("expected empty UNFILTERED selection, got %s %v", sel.Tier, titles(sel.Candidates))
	}
}

func TestSelectDoesNotAliasInput(t *testing.T) {
	recs := duneRecs()
	sel := Select(Base{Title: "Arrival"}, recs, Criteria{})
	sel.Candidates[0].Title = "changed"
	if recs[0].Title != "Dune Part Two" {
		t.Fatal("Select result aliases its input")
	}
}

func TestDeduplicateEmptyBaseDropsAll(t *testing.T) {
	recs := []Candidate{{Title: "Arrival"}, {Title: "Interstellar"}}
	if got := Deduplicate("", recs); len(got) != 0 {
		t.Fatalf("expected every candidate dropped, got %v", titles(got))
	}
	sel := Select(Base{}, recs, Criteria{})
	if sel.Tier != TierUnfiltered || len(sel.Candidates) != 0 {
		t.Fatalf("expected empty UNFILTERED selection, got %s %v", sel.Tier, titles(sel.Candidates))
	}
}

func TestDeduplicateDoesNotTrimBase(t *testing.T) {
	got := Deduplicate("Dune ", []Candidate{{Title: "Dune"}, {Title: "Dune Part Two"}})
	assertTitles(t, got, "Dune")
}

var vocabulary = []string{"dune", "Dune", "arrival", "the", "Part", "two", "star", "wars", "DUNE", "ar", "", "dune "}

func randomTitle(r *rand.Rand) string {
	n := 1 + r.IntN(4)
	words := make([]string, n)
	for i := range words {
		words[i] = vocabulary[r.IntN(len(vocabulary))]
	}
	return strings.Join(words, " ")
}

func randomCandidates(r *rand.Rand) []Candidate {
	n := r.IntN(8)
	out := make([]Candidate, n)
	for i := range out {
		genres := make([]int64, r.IntN(3))
		for j := range genres {
			genres[j] = []int64{12, 18, 27, 878}[r.IntN(4)]
		}
		date := ""
		if r.IntN(4) > 0 {
			date = fmt.Sprintf("%d-0%d-1%d", 1995+r.IntN(30), 1+r.IntN(9), r.IntN(10))
		}
		out[i] = Candidate{ID: int64(i + 1), Title: randomTitle(r), ReleaseDate: date, GenreIDs: genres}
	}
	return out
}

func randomCriteria(r *rand.Rand) Criteria {
	var cr Criteria
	if r.IntN(2) == 0 {
		cr.Year = fmt.Sprint(1995 + r.IntN(30))
	}
	if r.IntN(2) == 0 {
		cr.GenreID = []int64{12, 18, 27, 878}[r.IntN(4)]
	}
	return cr
}

func TestSelectProperties(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 2000; i++ {
		base := Base{Title: vocabulary[r.IntN(len(vocabulary))]}
		recs := randomCandidates(r)
		cr := randomCriteria(r)
		sel := Select(base, recs, cr)
		unique := Deduplicate(base.Title, recs)

		for _, c := range sel.Candidates {
			if strings.Contains(strings.ToLower(c.Title), strings.ToLower(base.Title)) {
				t.Fatalf("case %d: duplicate %q survived base %q", i, c.Title, base.Title)
			}
		}
		if cr.Empty() && len(unique) > 0 && sel.Tier != TierExact {
			t.Fatalf("case %d: no criteria but tier %s", i, sel.Tier)
		}

		anyExact, anyGenre := false, false
		for _, c := range unique {
			if matchesYear(c, cr) && matchesGenre(c, cr) {
				anyExact = true
			}
			if matchesGenre(c, cr) {
				anyGenre = true
			}
		}
		switch {
		case anyExact:
			if sel.Tier != TierExact {
				t.Fatalf("case %d: expected EXACT, got %s", i, sel.Tier)
			}
		case anyGenre && !cr.Empty():
			if sel.Tier != TierGenreOnly {
				t.Fatalf("case %d: expected GENRE_ONLY, got %s", i, sel.Tier)
			}
		default:
			if sel.Tier != TierUnfiltered || len(sel.Candidates) != len(unique) {
				t.Fatalf("case %d: expected full UNFILTERED set, got %s with %d of %d", i, sel.Tier, len(sel.Candidates), len(unique))
			}
		}

		// Order is preserved: selected ids appear in increasing upstream position.
		var last int64
		for _, c := range sel.Candidates {
			if c.ID <= last {
				t.Fatalf("case %d: order not preserved: %v", i, titles(sel.Candidates))
			}
			last = c.ID
		}
	}
}

func TestRandomPickCoversEveryElement(t *testing.T) {
	items := duneRecs()
	src := rand.New(rand.NewPCG(7, 11))
	counts := make(map[int64]int)
	const trials = 3000
	for i := 0; i < trials; i++ {
		got, err := RandomPick(items, src)
		if err != nil {
			t.Fatalf("RandomPick returned error: %v", err)
		}
		counts[got.ID]++
	}
	for _, c := range items {
		// Uniform expectation is 1000 per element; allow a wide margin.
		if counts[c.ID] < trials/len(items)/2 {
			t.Fatalf("element %q picked %d times out of %d", c.Title, counts[c.ID], trials)
		}
	}
}

type fixedSource int

func (f fixedSource) IntN(int) int { return int(f) }

func TestRandomPickUsesSource(t *testing.T) {
	got, err := RandomPick(duneRecs(), fixedSource(2))
	if err != nil || got.Title != "Interstellar" {
		t.Fatalf("RandomPick = %q, %v", got.Title, err)
	}
}

func TestRandomPickEmpty(t *testing.T) {
	_, err := RandomPick([]Candidate{}, nil)
	if !errors.Is(err, ErrEmptySelection) || !errors.Is(err, services.ErrInvalidSelection) {
		t.Fatalf("expected ErrEmptySelection, got %v", err)
	}
}

func TestLimitAndAt(t *testing.T) {
	recs := duneRecs()
	if got := Limit(recs, 2); len(got) != 2 || got[1].Title != "Arrival" {
		t.Fatalf("Limit = %v", titles(got))
	}
	if got := Limit(recs, 0); len(got) != 3 {
		t.Fatalf("Limit(0) = %v", titles(got))
	}
	if got, err := At(recs, 3); err != nil || got.Title != "Interstellar" {
		t.Fatalf("At(3) = %q, %v", got.Title, err)
	}
	for _, idx := range []int{0, 4, -1} {
		if _, err := At(recs, idx); !errors.Is(err, services.ErrInvalidSelection) {
			t.Fatalf("At(%d) expected ErrInvalidSelection, got %v", idx, err)
		}
	}
}

func TestSharedGenres(t *testing.T) {
	got := SharedGenres(duneBase(), Candidate{GenreIDs: []int64{18, 12, 878}})
	if len(got) != 2 || got[0] != 12 || got[1] != 878 {
		t.Fatalf("SharedGenres = %v", got)
	}
	names := SharedGenreNames(Base{Genres: []string{"Action", "Sci-Fi"}}, Candidate{Genres: []string{"Drama", "Sci-Fi"}})
	if len(names) != 1 || names[0] != "Sci-Fi" {
		t.Fatalf("SharedGenreNames = %v", names)
	}
}

func TestDecodeCandidates(t *testing.T) {
	records := []json.RawMessage{
		json.RawMessage(`{"id":329865,"title":"Arrival","release_date":"2016-11-10","genre_ids":[878,18],"vote_average":7.6,"overview":"x"}`),
		json.RawMessage(`"not an object"`),
		json.RawMessage(`null`),
		json.RawMessage(`{"id":1,"name":"Show Title"}`),
	}
	got, skipped := DecodeCandidates(records)
	if skipped != 2 || len(got) != 2 {
		t.Fatalf("decoded %d, skipped %d", len(got), skipped)
	}
	if got[0].Year() != "2016" || got[0].Rating != 7.6 || !got[0].HasGenre(18) {
		t.Fatalf("unexpected candidate %+v", got[0])
	}
	if string(got[0].Raw) != string(records[0]) {
		t.Fatal("expected raw record to be kept")
	}
	if got[1].Title != "Show Title" {
		t.Fatalf("expected name fallback, got %q", got[1].Title)
	}
}
