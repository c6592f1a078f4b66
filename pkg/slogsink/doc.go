// Package slogsink bridges log/slog to a tablesink sink.
//
// The handler converts each slog record into a level, message, and metadata
// mapping and hands it to the sink's Append, which buffers it for a batched
// store write. Group names become dotted key prefixes on metadata.
//
// Usage:
//
//	s, _ := sink.New(sink.Options{UseLocalStore: true, DataDir: "./logdata"})
//	logger := slog.New(slogsink.New(s))
//	logger.Info("user logged in", "user", "alice")
package slogsink
