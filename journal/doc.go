// Package journal keeps an append-only record of the event envelopes applied to the view model.
//
// Each line of a journal is one envelope encoded by shell.EventEnvelopeToJSON. Replaying a journal
// decodes the lines in order, so a view model can be rebuilt without a database.
package journal
