// Package adapters lets the sql source run its queries through pgxpool.Pool, sql.DB or sqlx.DB.
//
// All adapters provide the same read-only functionality through the DBAdapter interface,
// so the source does not care which database library the caller has chosen.
package adapters
