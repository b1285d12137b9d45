// Package proc reports resource usage of the profiling process itself.
package proc

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v4/process"
)

// Usage is a point-in-time resource reading.
type Usage struct {
	At        time.Time
	CPUUser   float64 // Seconds of user CPU since process start
	CPUSystem float64 // Seconds of system CPU since process start
	RSS       uint64  // Resident set size in bytes
	Threads   int32
}

// CPU returns total CPU seconds.
func (u Usage) CPU() float64 {
	return u.CPUUser + u.CPUSystem
}

// Overhead is the resource cost between two readings.
type Overhead struct {
	Wall       time.Duration
	CPU        float64 // CPU seconds consumed
	CPUPercent float64 // CPU seconds per wall second, as a percentage of one core
	RSS        uint64  // RSS at the later reading
	RSSDelta   int64
}

// Since returns the overhead from earlier to u.
func (u Usage) Since(earlier Usage) Overhead {
	o := Overhead{
		Wall:     u.At.Sub(earlier.At),
		CPU:      u.CPU() - earlier.CPU(),
		RSS:      u.RSS,
		RSSDelta: int64(u.RSS) - int64(earlier.RSS),
	}
	if secs := o.Wall.Seconds(); secs > 0 {
		o.CPUPercent = 100 * o.CPU / secs
	}
	return o
}

// Sampler reads Usage for one process.
type Sampler struct {
	proc *process.Process
	now  func() time.Time
}

// NewSampler creates a sampler for the current process.
func NewSampler() (*Sampler, error) {
	return NewSamplerForPID(int32(os.Getpid()))
}

// NewSamplerForPID creates a sampler for pid.
func NewSamplerForPID(pid int32) (*Sampler, error) {
	p, err := process.NewProcess(pid)
	if err != nil {
		return nil, fmt.Errorf("failed to open process %d: %w", pid, err)
	}
	return &Sampler{proc: p, now: time.Now}, nil
}

// Sample reads the current usage.
func (s *Sampler) Sample(ctx context.Context) (Usage, error) {
	u := Usage{At: s.now()}

	times, err := s.proc.TimesWithContext(ctx)
	if err != nil {
		return Usage{}, fmt.Errorf("failed to read cpu times: %w", err)
	}
	u.CPUUser = times.User
	u.CPUSystem = times.System

	mem, err := s.proc.MemoryInfoWithContext(ctx)
	if err != nil {
		return Usage{}, fmt.Errorf("failed to read memory info: %w", err)
	}
	u.RSS = mem.RSS

	// Thread counts are not available everywhere.
	if n, err := s.proc.NumThreadsWithContext(ctx); err == nil {
		u.Threads = n
	}

	return u, nil
}

// LogOverhead logs the usage since start at info level. Errors reading usage are logged at debug.
func (s *Sampler) LogOverhead(ctx context.Context, logger zerolog.Logger, start Usage) {
	end, err := s.Sample(ctx)
	if err != nil {
		logger.Debug().Err(err).Msg("Failed to read process usage")
		return
	}

	o := end.Since(start)
	logger.Info().
		Dur("wall", o.Wall).
		Float64("cpu_seconds", o.CPU).
		Float64("cpu_percent", o.CPUPercent).
		Uint64("rss_bytes", o.RSS).
		Int64("rss_delta_bytes", o.RSSDelta).
		Int32("threads", end.Threads).
		Msg("Process overhead")
}
