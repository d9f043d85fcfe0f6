// Package middleware provides the HTTP middleware chain: access logging
// with log-injection sanitization, and Prometheus request metrics.
package middleware
