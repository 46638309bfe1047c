// Package middleware provides HTTP middleware: W3C Extended Log Format
// request logging, Prometheus request metrics, and gzip compression.
package middleware
