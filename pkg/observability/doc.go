// Package observability provides tooling for watching engine event streams:
// an aggregator that merges multiple buses into one consumable channel.
package observability
