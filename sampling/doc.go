// Package sampling provides the collectors used by dynamic range faceting:
// a bounded uniform reservoir sampler over query matches and an exhaustive
// collector for exact counting passes.
//
// Both collectors are single-use: run one search into a fresh collector,
// read the results, discard it.
package sampling
