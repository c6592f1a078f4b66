// Package pebblestore implements the sink's table contract on top of Pebble
// for local development and tests.
//
// Keys are lexicographically ordered for efficient range scans:
//   - tbl/{container}/m                        (container marker)
//   - tbl/{container}/e/{partition}/{sortKey}  (entities)
//
// Values are framed as: uvarint docLen | doc | crc32c(doc), where doc is a
// JSON document of the entity's non-key fields. The crc guards scans against
// serving torn or corrupted records.
//
// Usage:
//
//	st, err := pebblestore.Open(pebblestore.Options{
//	    DataDir: "./data",
//	    Fsync:   pebblestore.FsyncModeInterval,
//	})
//	if err != nil { /* handle */ }
//	defer st.Close()
//
//	_ = st.EnsureContainer(ctx, "log")
//	_ = st.BatchWrite(ctx, "log", batch)
//	ents, _ := st.RangeQuery(ctx, "log", "production", lower, upper, 100)
package pebblestore
