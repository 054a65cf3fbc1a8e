// Package pg bootstraps the Postgres pool backing the delivery log and the
// schedule/digest queue. Connect retries with linear backoff so the process
// survives a database that becomes ready slightly later; Migrate applies the
// embedded goose migrations creating the two notification tables.
package pg
