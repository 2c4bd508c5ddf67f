// Package records implements the business operations on creature records.
//
// Service sits between the HTTP layer and the store. It owns two rules the
// store does not know about:
//
//   - Sequential ids: Add reads the current maximum id and assigns max+1
//     (1 for an empty collection). The read and the insert are separate
//     round trips; a lost race fails with store.ErrDuplicateID.
//   - Partial updates: Update applies only the fields present in a Patch.
//
// Read operations never return errors. A store failure is logged and the
// caller receives an empty Listing or a not-found Lookup with Degraded set,
// so the boundary can still tell "no data" from "could not ask". Write
// operations return store failures wrapped with %w.
package records
