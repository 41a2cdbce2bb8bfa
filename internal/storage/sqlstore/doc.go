// Package sqlstore implements the user, session and timer repositories on
// database/sql.
//
// Two dialects are supported: SQLite through modernc.org/sqlite and
// PostgreSQL through the pgx stdlib driver. The schema is kept in
// embedded goose migrations and applied by Open.
//
// All timestamps are stored as Unix milliseconds. Queries are written with
// "?" placeholders and rebound to "$n" for PostgreSQL.
//
// Stopping a timer is a single conditional UPDATE guarded by
// "is_active = TRUE"; zero rows affected means another stop won.
package sqlstore
