// Package loadbooks implements the Load Books use case.
//
// All books of all authors are fetched at once and merged into the view model.
// Every known author gets exactly the books fetched for them, authors without books end up
// with an empty list (also when their books were loaded individually before).
// Books of authors the view model does not know are dropped.
package loadbooks
