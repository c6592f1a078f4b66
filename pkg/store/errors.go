package store

import "fmt"

// ProvisionError reports a failed container create at sink construction.
type ProvisionError struct {
	Container string
	Err       error
}

func (e *ProvisionError) Error() string {
	return fmt.Sprintf("provision container %q: %v", e.Container, e.Err)
}

func (e *ProvisionError) Unwrap() error { return e.Err }

// FlushError reports a failed batched write. The batch is dropped; delivery
// is best-effort once a record leaves the buffer.
type FlushError struct {
	Container string
	Records   int
	Err       error
}

func (e *FlushError) Error() string {
	return fmt.Sprintf("flush %d records to %q: %v", e.Records, e.Container, e.Err)
}

func (e *FlushError) Unwrap() error { return e.Err }

// QueryError reports a failed or malformed range query. No partial results
// accompany it.
type QueryError struct {
	Container string
	Err       error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query container %q: %v", e.Container, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }
