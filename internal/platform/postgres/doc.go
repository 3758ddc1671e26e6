// Package postgres provides PostgreSQL implementations of the store
// interfaces, built on database/sql over the pgx stdlib driver.
//
// Concurrency-sensitive invariants live here: membership uniqueness is a
// database constraint surfaced as store.ErrMembershipExists, and the
// invitation Pending->Accepted transition is a conditional update that at
// most one concurrent redeemer wins.
package postgres
