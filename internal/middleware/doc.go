// Package middleware provides HTTP middleware for the photo index server.
//
// It includes:
//   - Request logging in W3C Extended Log Format with slow request warnings
//   - Prometheus request metrics labelled by route template
//   - CORS headers for the gallery frontend
//   - gzip compression of JSON responses
package middleware
