// Package discovery runs the movie and anime lookups behind the CLI.
//
// A movie lookup with a base title searches TMDB for it, loads its
// recommendations through the response cache, and hands them to the
// recommend selector. Without a base title it queries TMDB's discover
// endpoint with the year, actor, and theme filters instead. Anime lookups
// search AniList and, when a base title is given, show that entry's
// community recommendations minus its own sequels. Both flows end in either
// a top-N list or a single random pick, from which the caller can request
// details or save an entry to the watchlist.
package discovery
