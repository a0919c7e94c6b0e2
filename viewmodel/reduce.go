package viewmodel

// Reduce folds event into prior and returns the next state.
//
// Transition rules:
//
//	AuthorsLoaded:       authors replaced wholesale, books default to []
//	BooksLoaded:         every author's books re-derived from the bulk list, [] when none match
//	BooksByAuthorLoaded: only the matching author is replaced, all others are reused as-is
//	anything else:       prior is returned unchanged (same pointer)
//
// A nil prior counts as Empty() for recognized events.
func Reduce(prior *ViewModel, event Event) *ViewModel {
	switch e := event.(type) {
	case AuthorsLoaded:
		return reduceAuthorsLoaded(e)

	case BooksLoaded:
		return reduceBooksLoaded(authorsOf(prior), e)

	case BooksByAuthorLoaded:
		return reduceBooksByAuthorLoaded(authorsOf(prior), e)

	default:
		return prior
	}
}

func reduceAuthorsLoaded(e AuthorsLoaded) *ViewModel {
	authors := make([]*Author, 0, len(e.Authors))
	for _, author := range e.Authors {
		authors = append(authors, &Author{
			ID:    author.ID,
			Name:  author.Name,
			Books: booksOrEmpty(author.Books),
		})
	}

	return &ViewModel{Authors: authors}
}

func reduceBooksLoaded(current []*Author, e BooksLoaded) *ViewModel {
	booksByAuthor := GroupBooksByAuthor(e.Books)

	authors := make([]*Author, 0, len(current))
	for _, author := range current {
		authors = append(authors, &Author{
			ID:    author.ID,
			Name:  author.Name,
			Books: booksOrEmpty(booksByAuthor[author.ID]),
		})
	}

	return &ViewModel{Authors: authors}
}

func reduceBooksByAuthorLoaded(current []*Author, e BooksByAuthorLoaded) *ViewModel {
	authors := make([]*Author, 0, len(current))
	for _, author := range current {
		if author.ID != e.AuthorID {
			authors = append(authors, author)
			continue
		}

		authors = append(authors, &Author{
			ID:    author.ID,
			Name:  author.Name,
			Books: booksOrEmpty(e.Books),
		})
	}

	return &ViewModel{Authors: authors}
}

// GroupBooksByAuthor partitions raw books by their author id in a single pass.
// The relative order of books is kept within each partition, the author id is stripped.
func GroupBooksByAuthor(books []RawBook) map[AuthorIDInt][]Book {
	lookup := make(map[AuthorIDInt][]Book)

	for _, raw := range books {
		lookup[raw.AuthorID] = append(lookup[raw.AuthorID], raw.Book())
	}

	return lookup
}

func authorsOf(vm *ViewModel) []*Author {
	if vm == nil {
		return nil
	}

	return vm.Authors
}
