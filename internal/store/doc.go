// Package store provides the SQLite-backed render cache. Rendered document
// sets are keyed by (workflow fingerprint, renderer, config fingerprint),
// so re-rendering an unchanged workflow is a read, not a rebuild.
package store
