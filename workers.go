package mathnorm

import "runtime"

// Worker sizing constants.
const (
	// MinWorkers ensures at least one worker is available.
	MinWorkers = 1

	// MaxWorkers caps automatic sizing; normalization is CPU-bound and
	// batches rarely benefit beyond this.
	MaxWorkers = 16
)

// ResolveWorkers determines how many files to normalize concurrently.
// Priority: explicit workers > GOMAXPROCS-based calculation.
// Exported for use by CLIs and servers.
func ResolveWorkers(workers int) int {
	// Explicit value takes priority
	if workers > 0 {
		return workers
	}

	// Auto-calculate based on GOMAXPROCS (adjusted by automaxprocs for containers)
	n := runtime.GOMAXPROCS(0)

	if n < MinWorkers {
		return MinWorkers
	}
	if n > MaxWorkers {
		return MaxWorkers
	}
	return n
}
