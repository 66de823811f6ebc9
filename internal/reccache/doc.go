// Package reccache stores TMDB recommendation lists keyed by the base movie's
// id so repeat lookups never touch the network.
//
// Entries never expire. Records are kept exactly as TMDB returned them and
// are decoded only by the caller. Four backends implement Store: an
// in-memory map, a single JSON document on disk (the default), a SQLite
// table, and Redis string keys. A malformed file document is treated as an
// empty cache and reported with a warning rather than an error.
package reccache
