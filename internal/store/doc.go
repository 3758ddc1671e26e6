// Package store defines the persistence interfaces for the application's
// entities, the DBTX abstraction over connections and transactions, the
// RunInTransaction helper, and the sentinel errors store implementations
// return. Concrete implementations live under internal/platform.
package store
