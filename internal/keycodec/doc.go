// Package keycodec converts record timestamps to and from the sink's
// order-inverting sort keys.
//
// A key is built by subtracting the timestamp from a fixed far-future anchor
// and zero-padding the result, so the store's ascending key order reads
// newest-first. A per-record token appended after the digits breaks ties
// between records created in the same millisecond.
//
// Range translation swaps the window ends: the chronological lower bound of
// a query maps to the lexical upper bound of the key range. Callers must
// keep that swap intact or range queries return the wrong window.
package keycodec
