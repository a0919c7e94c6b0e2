// Package dispatch holds the single writer of the view model.
//
// A Dispatcher owns the current state, applies events one at a time through viewmodel.Reduce
// in the order they are dispatched and tells its listeners about every new state.
// Concurrent producers (the load use cases) may call Dispatch at any time.
package dispatch
