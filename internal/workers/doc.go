/*
Package workers sizes worker pools in containerized environments.

runtime.NumCPU reports the host's CPUs, while GOMAXPROCS (Go 1.19+) follows
the container's CPU limit. Pool sizes are derived from GOMAXPROCS so a pod
limited to 2 CPUs on a 64-core node sizes its pools from 2, not 64.

	// EXIF reads wait on the disk: two workers per CPU, at most 8
	n := workers.Size(workers.IOBound, 8)

Operators can pin the count with INDEX_WORKERS, e.g. to keep pressure off a
slow NFS server:

	env:
	- name: INDEX_WORKERS
	  value: "2"

The override is still capped by the limit passed by the caller.
*/
package workers
