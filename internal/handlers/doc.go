// Package handlers provides the HTTP API of the photo index.
//
// It includes handlers for:
//   - Reading the index: full listing, year ranges, random chunks
//   - Mutations: delete, rotate, adding files, background rebuilds
//   - Display images served from the derived image cache
//   - Raw snapshot files, health probes and version information
//
// Errors are returned as {"error": "..."} with 400 for malformed input, 404
// for unknown photos, 409 while a build is running and 500 otherwise.
package handlers
