// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package saga

// Options configures a Run invocation.
type Options struct {
	Debug              bool
	TestMode           bool
	MaxBlockingWorkers uint
}

func defaultOptions() Options {
	return Options{
		Debug:              false,
		TestMode:           false,
		MaxBlockingWorkers: 0, // dynamic pool
	}
}

// Option configures Options via the functional-options pattern.
type Option func(*Options)

// WithDebug enables dispatch tracing via log/slog.
func WithDebug() Option {
	return func(o *Options) { o.Debug = true }
}

// WithTestMode enables the Intercept effect. Intercept yielded
// without test mode is a RuntimeFault.
func WithTestMode() Option {
	return func(o *Options) { o.TestMode = true }
}

// WithMaxBlockingWorkers bounds the blocking-task bridge's worker pool.
// Zero (the default) selects a dynamically sized pool.
func WithMaxBlockingWorkers(n uint) Option {
	return func(o *Options) { o.MaxBlockingWorkers = n }
}
