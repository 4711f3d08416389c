package quillsql

import (
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"
)

// CompileStats holds compilation statistics, safe for concurrent use
// across every Compile call sharing it (WithStats).
type CompileStats struct {
	// TotalCompiles is the total number of Compile calls.
	TotalCompiles atomic.Int64
	// TotalDuration is the total time spent compiling.
	TotalDuration atomic.Int64 // nanoseconds
	// SlowCompiles is the count of compiles reaching or exceeding the
	// slow threshold.
	SlowCompiles atomic.Int64
	// Errors is the count of compiles that returned an error.
	Errors atomic.Int64
}

// Snapshot returns a point-in-time copy of the current statistics.
func (s *CompileStats) Snapshot() CompileStatsSnapshot {
	return CompileStatsSnapshot{
		TotalCompiles: s.TotalCompiles.Load(),
		TotalDuration: time.Duration(s.TotalDuration.Load()),
		SlowCompiles:  s.SlowCompiles.Load(),
		Errors:        s.Errors.Load(),
	}
}

// Reset zeroes all counters.
func (s *CompileStats) Reset() {
	s.TotalCompiles.Store(0)
	s.TotalDuration.Store(0)
	s.SlowCompiles.Store(0)
	s.Errors.Store(0)
}

func (s *CompileStats) record(d time.Duration, slowThreshold time.Duration, err error, logger *slog.Logger) {
	s.TotalCompiles.Add(1)
	s.TotalDuration.Add(int64(d))
	if err != nil {
		s.Errors.Add(1)
	}
	if d >= slowThreshold {
		s.SlowCompiles.Add(1)
		if logger != nil {
			logger.Warn("slow compile detected", "duration", d, "error", err)
		}
	}
}

// CompileStatsSnapshot is an immutable copy of CompileStats at a
// point in time.
type CompileStatsSnapshot struct {
	TotalCompiles int64
	TotalDuration time.Duration
	SlowCompiles  int64
	Errors        int64
}

// AvgCompileDuration returns the average duration per compile.
func (s CompileStatsSnapshot) AvgCompileDuration() time.Duration {
	if s.TotalCompiles == 0 {
		return 0
	}
	return s.TotalDuration / time.Duration(s.TotalCompiles)
}

// String returns a human-readable summary of the snapshot.
func (s CompileStatsSnapshot) String() string {
	return fmt.Sprintf(
		"compiles=%d duration=%s avg=%s slow=%d errors=%d",
		s.TotalCompiles, s.TotalDuration, s.AvgCompileDuration(),
		s.SlowCompiles, s.Errors,
	)
}
