// Package timing wraps calls with start and elapsed-time log records.
package timing

import (
	"log/slog"
	"time"
)

// Track logs that name has started and returns a function that logs the
// elapsed time when called. Typical use:
//
//	defer timing.Track(logger, "encode", "rate", rate)()
func Track(logger *slog.Logger, name string, args ...any) func() time.Duration {
	start := time.Now()
	logger.Debug(name+" ...", args...)

	return func() time.Duration {
		elapsed := time.Since(start)
		logger.Info(name, append(args[:len(args):len(args)], slog.Duration("elapsed", elapsed))...)
		return elapsed
	}
}

// Run calls fn and logs its elapsed time under name.
func Run[T any](logger *slog.Logger, name string, fn func() (T, error), args ...any) (T, time.Duration, error) {
	done := Track(logger, name, args...)
	v, err := fn()
	elapsed := done()
	if err != nil {
		logger.Error(name+" failed", append(args[:len(args):len(args)], slog.Any("error", err))...)
	}
	return v, elapsed, err
}
