// Package services defines shared utilities consumed by the discovery flows
// and their upstream integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run identifiers and component names for
//     logging.
//   - Structured error markers plus the Wrap helper so callers can tell an
//     unreachable upstream apart from an empty result set or a bad selection.
//
// Use these helpers when wiring new flows so error handling and observability
// stay uniform across commands.
package services
