// Package sqlsource implements datasource.DataSource on top of a relational database.
//
// Queries are built with goqu for the postgres or the sqlite3 dialect and executed through
// one of three connection types: *pgxpool.Pool, *sql.DB or *sqlx.DB.
//
// Usage:
//
//	source, err := sqlsource.NewSourceFromPGXPool(pool,
//		sqlsource.WithLogger(slog.Default()),
//		sqlsource.WithMetrics(collector),
//	)
//	authors, err := source.FetchAuthors(ctx)
//
// Failing queries are reported as datasource.ErrFetchFailed, unreadable rows as
// datasource.ErrScanningRowFailed.
package sqlsource
