// Package datasource defines where authors and books come from.
//
// The DataSource interface is consumed by the load use cases. Implementations
// return parsed, structured data and report failures with the sentinel errors
// of this package so that callers can decide about retries with errors.Is.
//
// The relational implementation lives in the sqlsource subpackage, the schema
// it reads from in the migrations subpackage.
package datasource
