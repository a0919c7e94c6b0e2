// Package shell provides the imperative shell around the viewmodel core:
// translation between tagged JSON events and viewmodel.Event values,
// event metadata, retry logic and the dependency-free observability
// interfaces shared by the dispatcher, the data sources and the use cases.
//
// In Domain-Driven Design or Hexagonal Architecture terminology, this would be
// called the 'infrastructure' layer.
package shell
