// Package objectstore provides the key/value blob storage that holds
// original photos and derived display images.
//
// Three backends implement Store:
//   - S3: any S3-compatible service, through minio-go
//   - Local: a directory tree, one file per key, written atomically
//   - Memory: a map, for tests and throwaway deployments
//
// Keys are forward-slash paths such as "originals/2004/trip/a.jpg".
// Absence is reported as ErrNotFound on every backend.
package objectstore
