// Package viewmodel contains the functional core of the bookshelf:
// the view model of authors with their books and the pure Reduce function
// that folds loaded data into it.
//
// Reduce never mutates its input. Every recognized event yields a new
// *ViewModel, unrecognized events yield the prior *ViewModel itself:
//
//	state := viewmodel.Empty()
//	state = viewmodel.Reduce(state, viewmodel.BuildAuthorsLoaded(authors))
//	state = viewmodel.Reduce(state, viewmodel.BuildBooksLoaded(rawBooks))
//
// In Domain-Driven Design or Hexagonal Architecture terminology, this would be
// called the 'domain' layer.
package viewmodel
