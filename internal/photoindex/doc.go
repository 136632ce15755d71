// Package photoindex holds the photo index: the ordered list of entries
// produced by the index builder, the soft-delete set, and their JSON
// snapshots on disk.
//
// A Store is created with New, loaded with Open and released with Close.
// Reads return copies. Mutations (MarkDeleted, SetAngle, Replace, Upsert)
// are serialized and written to disk before they return.
package photoindex
