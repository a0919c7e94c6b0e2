// Package loadbooksbyauthor implements the Load Books by Author use case.
//
// The books of a single author are fetched and replace that author's books.
// All other authors stay untouched (same pointers), an unknown author changes nothing.
package loadbooksbyauthor
