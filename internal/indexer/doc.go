// Package indexer builds the photo index from the media directory.
//
// A build walks the media tree, skipping hidden entries, "._" sidecar files
// and anything that is not a still image (.jpg .jpeg .png .webp .heic
// .heif). Each remaining file is enriched by a bounded worker pool:
//   - capture date and camera model from its EXIF tags
//   - GPS coordinate and reverse-geocoded locality
//   - face detection and the orientation vote derived from it
//
// Progress is checkpointed to a separate snapshot every CheckpointInterval
// entries. An interrupted build leaves the live index untouched and the next
// build resumes from the checkpoint. In incremental mode entries of files
// that have not changed since the last successful build are reused.
//
// Files added outside a build go through Ingest. Depending on
// Config.EnrichOnIngest they are either enriched inline or stored with
// defaults and queued; EnrichPending drains the queue.
package indexer
