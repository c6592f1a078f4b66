package pebblestore

// Keyspace layout (byte-wise, lexicographically sortable):
// - tbl/{container}/m                        (container marker)
// - tbl/{container}/e/{partition}/{sortKey}  (entities)

var (
	sep        = byte('/')
	tblPrefix  = []byte("tbl/")
	entrySeg   = []byte("/e/")
	metaSuffix = []byte("/m")
)

// keyContainerMeta builds the container marker key written by EnsureContainer.
func keyContainerMeta(container string) []byte {
	k := make([]byte, 0, len(tblPrefix)+len(container)+len(metaSuffix))
	k = append(k, tblPrefix...)
	k = append(k, container...)
	k = append(k, metaSuffix...)
	return k
}

// keyEntity builds the entity key. Sort keys are already lexicographically
// ordered, so the raw bytes go in as-is. An empty sortKey yields the
// partition prefix every entity key of that partition shares.
func keyEntity(container, partition, sortKey string) []byte {
	k := make([]byte, 0, len(container)+len(partition)+len(sortKey)+8)
	k = append(k, tblPrefix...)
	k = append(k, container...)
	k = append(k, entrySeg...)
	k = append(k, partition...)
	k = append(k, sep)
	k = append(k, sortKey...)
	return k
}
