// Package recommend turns a raw recommendation list into the candidates shown
// to the user.
//
// Select removes entries that belong to the base title's own series, then
// walks an ordered chain of filter rules (EXACT, GENRE_ONLY) and returns the
// first non-empty result, falling back to the de-duplicated list
// (UNFILTERED). Matching is substring-based: a year criterion matches any
// release date containing it, and a candidate is a duplicate when its title
// contains the base title. Upstream order is preserved throughout.
package recommend
