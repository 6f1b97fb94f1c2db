// Package pagination provides sequential offset pagination over list endpoints
// that expose start/limit parameters and no total count.
//
// Confluence's content listing does not report how many records exist, so the
// only reliable end-of-data signal is an empty page. The driver therefore walks
// the endpoint one page at a time:
//
//	driver := pagination.NewDriver[confluence.Page](client, pagination.DefaultConfig())
//	pages, err := driver.FetchAll(ctx)
//
// The driver:
//   - Requests offsets 0, size, 2*size, ... and never the same offset twice
//   - Keeps going after short pages; only an empty page ends the walk
//   - Appends each page exactly once, in request order
//   - Stops at the first error and returns no partial results
package pagination
