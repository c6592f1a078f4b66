// Package id provides the per-record disambiguator tokens appended to the
// sink's sort keys.
//
// A Token is 12 bytes big-endian: [8 bytes ms_timestamp][4 bytes sequence].
// Byte-wise comparison preserves mint order, and tokens minted within the
// same millisecond stay strictly increasing by sequence, so two records
// sharing a creation instant still get distinct, stably ordered keys.
//
// The Generator guards against clock regression by pinning to the last seen
// millisecond, and against sequence overflow by waiting out the millisecond.
//
// Usage:
//
//	g := id.NewGenerator()
//	tok := g.Next()
//	s := tok.String() // fixed-width hex, safe inside sort keys
package id
