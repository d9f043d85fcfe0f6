// Package metrics defines the Prometheus metrics exported by reodash.
//
// Metrics are registered at package load via promauto and served by the
// promhttp handler wired up in the HTTP layer.
package metrics
