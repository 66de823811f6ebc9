package recommend

import (
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/yu-a0/discovery-engine-suite/internal/services"
)

// ErrEmptySelection is returned by RandomPick when there is nothing to pick.
var ErrEmptySelection = fmt.Errorf("%w: no candidates to pick from", services.ErrInvalidSelection)

// Source yields uniform integers in [0, n). *rand.Rand satisfies it.
type Source interface {
	IntN(n int) int
}

type globalSource struct{}

func (globalSource) IntN(n int) int { return rand.IntN(n) }

// RandomPick returns one element of items chosen uniformly by src. A nil src
// uses the process-wide generator.
func RandomPick[T any](items []T, src Source) (T, error) {
	var zero T
	if len(items) == 0 {
		return zero, ErrEmptySelection
	}
	if src == nil {
		src = globalSource{}
	}
	return items[src.IntN(len(items))], nil
}

// Limit returns at most n leading items. n <= 0 returns all of them.
func Limit[T any](items []T, n int) []T {
	if n <= 0 || len(items) <= n {
		return slices.Clone(items)
	}
	return slices.Clone(items[:n])
}

// At returns the item at 1-based position index, as shown in numbered lists.
func At[T any](items []T, index int) (T, error) {
	var zero T
	if index < 1 || index > len(items) {
		return zero, fmt.Errorf("%w: %d is not between 1 and %d", services.ErrInvalidSelection, index, len(items))
	}
	return items[index-1], nil
}

// SharedGenres returns the candidate's genre ids that the base also has, in
// candidate order.
func SharedGenres(base Base, c Candidate) []int64 {
	out := make([]int64, 0, len(c.GenreIDs))
	for _, id := range c.GenreIDs {
		if slices.Contains(base.GenreIDs, id) {
			out = append(out, id)
		}
	}
	return out
}

// SharedGenreNames is SharedGenres for name-keyed genres such as AniList's.
func SharedGenreNames(base Base, c Candidate) []string {
	out := make([]string, 0, len(c.Genres))
	for _, name := range c.Genres {
		if slices.Contains(base.Genres, name) {
			out = append(out, name)
		}
	}
	return out
}
