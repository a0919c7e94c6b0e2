package viewmodel

import "slices"

// AuthorIDInt represents an author identifier.
type AuthorIDInt = int

// BookIDInt represents a book identifier, unique within its author.
type BookIDInt = int

// Book is a book as stored under its author.
type Book struct {
	ID    BookIDInt `json:"id"`
	Title string    `json:"title"`
}

// RawBook is a book as delivered by a bulk load, still carrying its owner.
type RawBook struct {
	ID       BookIDInt   `json:"id"`
	Title    string      `json:"title"`
	AuthorID AuthorIDInt `json:"authorId"`
}

// Book strips the owning author's id.
func (b RawBook) Book() Book {
	return Book{ID: b.ID, Title: b.Title}
}

// Author is an author together with the books known for them.
type Author struct {
	ID    AuthorIDInt `json:"id"`
	Name  string      `json:"name"`
	Books []Book      `json:"books"`
}

// ViewModel is the authoritative in-memory representation of authors with books.
//
// Values reachable from a ViewModel are shared between successive states and must be treated as read-only.
type ViewModel struct {
	Authors []*Author `json:"authors"`
}

// Empty returns the state a session starts with.
func Empty() *ViewModel {
	return &ViewModel{Authors: []*Author{}}
}

// AuthorByID returns the author with the given id, or false.
func (vm *ViewModel) AuthorByID(id AuthorIDInt) (*Author, bool) {
	if vm == nil {
		return nil, false
	}

	for _, author := range vm.Authors {
		if author.ID == id {
			return author, true
		}
	}

	return nil, false
}

// AuthorCount returns the number of authors.
func (vm *ViewModel) AuthorCount() int {
	if vm == nil {
		return 0
	}

	return len(vm.Authors)
}

// BookCount returns the number of books over all authors.
func (vm *ViewModel) BookCount() int {
	if vm == nil {
		return 0
	}

	count := 0
	for _, author := range vm.Authors {
		count += len(author.Books)
	}

	return count
}

// booksOrEmpty returns a copy owned by the new state, never nil.
func booksOrEmpty(books []Book) []Book {
	if books == nil {
		return []Book{}
	}

	return slices.Clone(books)
}
