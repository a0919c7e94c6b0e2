// Package main is the bookshelf command.
//
// It loads all authors from the configured database into the view model, then optionally all books
// and the books of one author, and prints the resulting state as indented JSON.
//
// Usage:
//
//	bookshelf -driver sqlite -dsn 'file:bookshelf.db' -migrate -books -author 2 -show-state
//
// With -metrics-addr the Prometheus metrics stay served until SIGINT or SIGTERM.
// With -otel-endpoint traces, logs and, without -metrics-addr, metrics go to an OTLP collector.
//
// -journal appends every applied event envelope to a file; -replay rebuilds the view model from
// such a file without touching the database:
//
//	bookshelf -driver sqlite -dsn 'file:bookshelf.db' -books -journal bookshelf.jsonl
//	bookshelf -replay bookshelf.jsonl -show-state
package main
