// Package resilience groups the fault tolerance helpers used by the ingest
// pipeline when it talks to the story store and the event broker.
//
// The subpackages are:
//   - circuitbreaker: gobreaker wrappers for the database and the publisher
//   - retry: exponential backoff with jitter for transient failures
//
// Usage Example:
//
//	store := circuitbreaker.NewDBCircuitBreaker(db)
//	err := retry.WithBackoff(ctx, retry.DBConfig(), func() error {
//	    _, err := store.ExecContext(ctx, query, args...)
//	    return err
//	})
package resilience
