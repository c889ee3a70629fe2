package vrs

import (
	"log/slog"

	"github.com/gogpu/vrs/shaders"
)

// Option configures a Controller during creation.
//
// Example:
//
//	// Embedded shaders, package logger
//	c := vrs.NewController()
//
//	// Precompiled programs shipped by the host
//	c := vrs.NewController(vrs.WithShaderLibrary(shaders.Static(blobs)))
type Option func(*controllerOptions)

type controllerOptions struct {
	library shaders.Library
	logger  *slog.Logger
}

func defaultOptions() controllerOptions {
	return controllerOptions{
		library: nil, // shaders.Embedded() when nil
		logger:  nil, // package Logger() when nil
	}
}

// WithShaderLibrary sets the source of compiled shader programs.
// The default is [shaders.Embedded].
func WithShaderLibrary(lib shaders.Library) Option {
	return func(o *controllerOptions) {
		o.library = lib
	}
}

// WithLogger sets a logger for this controller only. Without it the
// controller logs through [Logger].
func WithLogger(l *slog.Logger) Option {
	return func(o *controllerOptions) {
		o.logger = l
	}
}
