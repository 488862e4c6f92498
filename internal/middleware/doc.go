// Package middleware provides the HTTP middleware chain: request logging
// and Prometheus request metrics.
package middleware
