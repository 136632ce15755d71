/*
Package filesystem provides filesystem operations with retry logic.

Reads (StatWithRetry, OpenWithRetry) retry only NFS stale file handle errors
(ESTALE), since photo libraries commonly live on network mounts. Writes
(WriteWithRetry) retry every failure with exponential backoff and honour
context cancellation; the index store uses them to persist snapshots.

	info, err := filesystem.StatWithRetry(path, filesystem.DefaultRetryConfig())

Retry attempts, successes and final failures are recorded in the
photo_index_filesystem_retry_* metrics, labelled by operation.
*/
package filesystem
