// Package mediatypes holds the file type rules shared by the index builder,
// the object store and the display cache: which extensions are indexed,
// which names are skipped, and the MIME types used when storing objects.
package mediatypes
