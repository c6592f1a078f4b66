// Package store defines the durable table contract the sink writes to and
// queries from: idempotent container provisioning, atomic batched inserts,
// and ascending sort-key range scans within one partition.
//
// The package carries no I/O of its own. A local/dev implementation over an
// embedded key-value store ships with the module; production table services
// plug in behind the same Store interface via sink.Options.Store.
package store
