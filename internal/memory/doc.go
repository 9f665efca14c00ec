// Package memory configures the Go memory limit for container deployments
// and applies backpressure to library scans when the heap runs hot.
//
// Go does not read the cgroup memory limit, so a large first scan can push
// the process into an OOM kill. [ConfigureFromEnv] sets GOMEMLIMIT from
// MEMORY_LIMIT (for example via the Kubernetes Downward API) scaled by
// MEMORY_RATIO, leaving headroom for SQLite and cgo allocations. An
// explicit GOMEMLIMIT always wins.
//
// [Monitor] samples heap allocation against that limit. Once usage crosses
// the pause mark the scan walker stops queueing files until usage falls
// below the resume mark:
//
//	monitor := memory.NewMonitor(memory.DefaultConfig())
//	monitor.Start()
//	defer monitor.Stop()
//
//	cfg := indexer.DefaultPipelineConfig()
//	cfg.Gate = monitor
//
// Without any configured limit the monitor never pauses.
package memory
