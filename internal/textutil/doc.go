// Package textutil provides the small text transformations shared by the
// discover commands: wrapping long overviews, stripping the light HTML AniList
// embeds in descriptions, and flattening titles into single lines.
package textutil
