// Package corelog is the structured-logging surface shared by every
// asynccore package: a package-level, pre-configured
// logiface.Logger[*stumpy.Event], plus a handful of fluent helpers for the
// fields every subsystem tags its events with (pool name, worker id, frame
// index). It plays the same cross-cutting, package-level-config role that
// eventloop's logging.go plays for the event loop, but built directly on
// the logiface/stumpy stack instead of a hand-rolled LogEntry type.
package corelog

import (
	"io"
	"sync"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

var (
	mu     sync.RWMutex
	logger = stumpy.L.New(stumpy.L.WithStumpy())
)

// SetOutput replaces the destination written by the package logger. Intended
// for use at process startup (engineconfig.New wires it from Config.LogWriter)
// and in tests, which typically redirect it to a buffer.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	logger = stumpy.L.New(stumpy.L.WithStumpy(stumpy.WithWriter(w)))
}

// SetLevel adjusts the minimum level the package logger writes.
func SetLevel(level logiface.Level) {
	mu.Lock()
	defer mu.Unlock()
	logger = stumpy.L.New(stumpy.L.WithStumpy(), logiface.WithLevel[*stumpy.Event](level))
}

// L returns the current package logger. Subsystems hold onto the result of
// L().WithString(...) etc. rather than calling L() per log statement, so
// that SetOutput/SetLevel changes mid-run don't retroactively rewrite
// already-built sub-loggers; that matches how the rest of the corpus treats
// a *logiface.Logger as an immutable, derivable value.
func L() *logiface.Logger[*stumpy.Event] {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// Pool returns a sub-logger tagged with the owning pool's name, for the
// worker pool, blocking pool, and static scope to derive their own loggers
// from at construction time.
func Pool(name string) *logiface.Logger[*stumpy.Event] {
	return L().Clone().Str(`pool`, name).Logger()
}

// Worker returns a sub-logger additionally tagged with a worker index,
// derived from a pool logger obtained via Pool.
func Worker(base *logiface.Logger[*stumpy.Event], index int) *logiface.Logger[*stumpy.Event] {
	return base.Clone().Int(`worker`, index).Logger()
}

// Frame returns a sub-logger tagged with a frame index, for the frame
// pipeline to derive a per-frame logger from its base logger.
func Frame(base *logiface.Logger[*stumpy.Event], index uint64) *logiface.Logger[*stumpy.Event] {
	return base.Clone().Uint64(`frame`, index).Logger()
}
