/*
Package filesystem provides filesystem operations with retry logic for NFS
stale file handle errors.

Media libraries commonly live on NFS mounts. When the server side changes
underneath a client, stat, open and readdir calls can fail with ESTALE even
though a second attempt would succeed. The helpers here retry only that error,
with capped exponential backoff; every other error is returned immediately.

	info, err := filesystem.StatWithRetry(path, filesystem.DefaultRetryConfig())

	entries, err := filesystem.ReadDirWithRetry(dir, filesystem.DefaultRetryConfig())

Metrics are reported through an Observer installed once at startup with
SetObserver. The metrics package provides the Prometheus implementation; when
no observer is set, recording is skipped, which keeps tests free of global
state.
*/
package filesystem
