// Package main hosts the discover CLI entrypoint and command graph.
//
// The Cobra command tree turns flags into movie and anime lookups, explorer
// listings, watchlist saves, and cache maintenance. It centralizes .env and
// configuration loading, logger setup, and client construction so
// subcommands only describe what to show.
//
// Keep this package lean: new behaviour belongs in the internal packages
// first and is surfaced here through a command or flag.
package main
