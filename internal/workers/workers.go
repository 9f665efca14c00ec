package workers

import (
	"os"
	"runtime"
	"strconv"
)

// OverrideEnv is the environment variable that pins the worker count.
const OverrideEnv = "INDEX_WORKERS"

// Profile is the number of workers to run per available CPU.
type Profile float64

const (
	// CPUBound tasks get one worker per CPU.
	CPUBound Profile = 1.0
	// IOBound tasks spend most of their time waiting on disk or NFS and get
	// two workers per CPU.
	IOBound Profile = 2.0
)

// Size returns the pool size for a task profile, derived from GOMAXPROCS so
// container CPU limits are respected. A valid INDEX_WORKERS value replaces
// the calculation. limit caps the result either way; 0 means no cap.
func Size(p Profile, limit int) int {
	n, ok := override()
	if !ok {
		n = int(float64(runtime.GOMAXPROCS(0)) * float64(p))
	}
	if n < 1 {
		n = 1
	}
	if limit > 0 && n > limit {
		n = limit
	}
	return n
}

// Source names what determined the pool size, for startup logs.
func Source() string {
	if _, ok := override(); ok {
		return OverrideEnv
	}
	return "GOMAXPROCS=" + strconv.Itoa(runtime.GOMAXPROCS(0))
}

func override() (int, bool) {
	v := os.Getenv(OverrideEnv)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
