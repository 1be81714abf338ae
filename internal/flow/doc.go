// Package flow folds production rows into a net material balance.
//
// An Aggregator receives rows one at a time. Each row is expanded into
// scaled ingredient and product entries which are merged into running
// totals keyed by material (and, for fluids, temperature). Reduce then
// cancels products against the ingredients they can satisfy, leaving only
// the external inputs and outputs of the whole production chain.
//
// Determinism:
// Entries keep their insertion order. That order is the iteration order of
// every later step, so the same rows added in the same order always produce
// identical output, including the order in which Reduce cancels flows.
//
// All arithmetic is exact (internal/rational). An Aggregator is owned by a
// single caller and is not safe for concurrent use.
package flow
