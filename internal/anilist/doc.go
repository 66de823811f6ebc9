// Package anilist is a small GraphQL client for the AniList API.
//
// Queries are plain strings posted as {query, variables}; responses decode
// into typed envelopes. Requests are paced and circuit-broken through an
// upstream.Guard configured for AniList's per-minute allowance.
package anilist
