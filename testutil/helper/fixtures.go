package helper

import "github.com/AntonStoeckl/bookshelf-viewmodel/viewmodel"

// FixtureAuthors returns three authors without books.
func FixtureAuthors() []viewmodel.Author {
	return []viewmodel.Author{
		{ID: 1, Name: "Ursula K. Le Guin"},
		{ID: 2, Name: "Octavia E. Butler"},
		{ID: 3, Name: "Stanislaw Lem"},
	}
}

// FixtureBooks returns books of the first two fixture authors and one of an author (99) that does not exist.
func FixtureBooks() []viewmodel.RawBook {
	return []viewmodel.RawBook{
		{ID: 1, Title: "A Wizard of Earthsea", AuthorID: 1},
		{ID: 1, Title: "Kindred", AuthorID: 2},
		{ID: 2, Title: "The Dispossessed", AuthorID: 1},
		{ID: 2, Title: "Parable of the Sower", AuthorID: 2},
		{ID: 3, Title: "The Left Hand of Darkness", AuthorID: 1},
		{ID: 1, Title: "Solaris", AuthorID: 99},
	}
}
