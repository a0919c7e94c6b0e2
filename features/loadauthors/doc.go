// Package loadauthors implements the Load Authors use case.
//
// It fetches the complete list of authors and replaces the authors of the view model with it.
// Books known so far are discarded, so this is the first load of a session.
package loadauthors
