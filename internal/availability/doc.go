// Package availability implements the shared team availability record:
// which users are free on which dates.
//
// The record is a single document mapping ISO dates to the set of users who
// picked them. Record and the package-level functions are pure and operate
// on in-memory values. Store wraps a storage.Backend and runs every
// operation as a full load, and for mutations a full write, under one lock.
//
// Reads never fail because of storage: a missing, unreadable or malformed
// document is treated as empty. Saves report backend errors.
//
// Example:
//
//	store, err := availability.NewStore(availability.Config{Backend: backend})
//	if err != nil {
//		return err
//	}
//	if err := store.SaveUserAvailability(ctx, "Alice", []string{"2024-01-10"}); err != nil {
//		return err
//	}
//	best := store.BestDates(ctx)
package availability
