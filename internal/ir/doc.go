// Package ir provides the identity and reference model for skein.
//
// This package contains value types and identity rules only. All other
// internal packages import ir; ir imports nothing internal. Equality and
// fingerprinting here are the load-bearing contract the construction
// engine's deduplication relies on.
//
// Key design constraints:
//   - Values are a sealed set (Null, String, Int, Float, Bool, Array, Object)
//   - Fingerprints are SHA-256 over canonical JSON with domain separation
//   - Null never appears in fingerprint material
package ir
