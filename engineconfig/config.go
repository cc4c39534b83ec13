// Package engineconfig provides the functional-options configuration
// surface for asynccore, following the same LoopOption/resolveLoopOptions
// shape the event loop uses for its own construction-time configuration.
package engineconfig

import (
	"fmt"
	"io"
	"runtime"

	"github.com/joeycumines/logiface"
)

// MaxInflightFrames is the hard cap on Config.InflightFrames, matching the
// engine's compile-time MAX_INFLIGHT_FRAMES constant.
const MaxInflightFrames = 4

// Config is the resolved, immutable configuration an Engine is constructed
// from. Once New returns, a Config's InflightFrames must never change: the
// inflight resource ring iterates it at teardown, and shrinking it after
// construction would leak ring slots.
type Config struct {
	InflightFrames    int
	WorkerThreads     int
	BlockingThreads   int
	AppName           string
	BaseAssetPath     string
	MetricsEnabled    bool
	StrictDrainOnStop bool
	LogWriter         io.Writer
	LogLevel          logiface.Level
}

type config struct {
	inflightFrames    int
	workerThreads     int
	blockingThreads   int
	appName           string
	baseAssetPath     string
	metricsEnabled    bool
	strictDrainOnStop bool
	logWriter         io.Writer
	logLevel          logiface.Level
}

// Option configures a Config.
type Option interface {
	applyConfig(*config) error
}

type optionImpl struct {
	apply func(*config) error
}

func (o *optionImpl) applyConfig(c *config) error { return o.apply(c) }

// WithInflightFrames sets the depth of the frame pipeline / inflight
// resource ring. Must be in [1, MaxInflightFrames]; validated by New, not
// by this option, so options can be composed and reordered freely.
func WithInflightFrames(n int) Option {
	return &optionImpl{func(c *config) error {
		c.inflightFrames = n
		return nil
	}}
}

// WithWorkerThreads sets the size of the worker pool. Zero or negative
// selects the default (hardware concurrency minus two, floored at one).
func WithWorkerThreads(n int) Option {
	return &optionImpl{func(c *config) error {
		c.workerThreads = n
		return nil
	}}
}

// WithBlockingThreads sets the size of the blocking pool. Zero or negative
// selects the default (hardware concurrency).
func WithBlockingThreads(n int) Option {
	return &optionImpl{func(c *config) error {
		c.blockingThreads = n
		return nil
	}}
}

// WithAppName sets the application name, passed through to collaborators
// (window title, asset path resolution, log tagging).
func WithAppName(name string) Option {
	return &optionImpl{func(c *config) error {
		c.appName = name
		return nil
	}}
}

// WithBaseAssetPath sets the root path asset loads are resolved relative to.
func WithBaseAssetPath(path string) Option {
	return &optionImpl{func(c *config) error {
		c.baseAssetPath = path
		return nil
	}}
}

// WithMetrics enables runtime metrics collection on the pools and frame
// pipeline, mirroring eventloop.WithMetrics.
func WithMetrics(enabled bool) Option {
	return &optionImpl{func(c *config) error {
		c.metricsEnabled = enabled
		return nil
	}}
}

// WithStrictShutdownDrain requires Stop to block until every in-flight
// render_frame invocation and every parked worker-pool op has been woken or
// cancelled, rather than returning as soon as the request has been issued.
func WithStrictShutdownDrain(enabled bool) Option {
	return &optionImpl{func(c *config) error {
		c.strictDrainOnStop = enabled
		return nil
	}}
}

// WithLogWriter redirects the package-level structured logger's output.
func WithLogWriter(w io.Writer) Option {
	return &optionImpl{func(c *config) error {
		c.logWriter = w
		return nil
	}}
}

// WithLogLevel sets the minimum level the package-level structured logger
// writes.
func WithLogLevel(level logiface.Level) Option {
	return &optionImpl{func(c *config) error {
		c.logLevel = level
		return nil
	}}
}

// New resolves options into a validated, immutable Config.
func New(options ...Option) (*Config, error) {
	c := config{
		inflightFrames: 2,
		logLevel:       logiface.LevelInformational,
	}
	for _, o := range options {
		if o == nil {
			continue
		}
		if err := o.applyConfig(&c); err != nil {
			return nil, err
		}
	}

	if c.inflightFrames <= 0 {
		c.inflightFrames = 2
	}
	if c.inflightFrames > MaxInflightFrames {
		return nil, fmt.Errorf("engineconfig: inflight_frames %d exceeds MaxInflightFrames %d", c.inflightFrames, MaxInflightFrames)
	}

	hw := runtime.NumCPU()
	if c.workerThreads <= 0 {
		c.workerThreads = hw - 2
		if c.workerThreads < 1 {
			c.workerThreads = 1
		}
	}
	if c.blockingThreads <= 0 {
		c.blockingThreads = hw
		if c.blockingThreads < 1 {
			c.blockingThreads = 1
		}
	}

	if c.appName == "" {
		c.appName = "asynccore"
	}

	return &Config{
		InflightFrames:    c.inflightFrames,
		WorkerThreads:     c.workerThreads,
		BlockingThreads:   c.blockingThreads,
		AppName:           c.appName,
		BaseAssetPath:     c.baseAssetPath,
		MetricsEnabled:    c.metricsEnabled,
		StrictDrainOnStop: c.strictDrainOnStop,
		LogWriter:         c.logWriter,
		LogLevel:          c.logLevel,
	}, nil
}
