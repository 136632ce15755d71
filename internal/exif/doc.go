// Package exif extracts capture metadata from photo files.
//
// Tags are read by exiftool when it is installed and by a pure Go EXIF
// decoder otherwise. FromTags turns a tag map into a normalized capture
// date (YYYY-MM-DD) and camera model; GPSFromTags turns it into a signed
// coordinate. Extraction is best-effort: Extract never returns an error,
// only an empty Metadata.
package exif
