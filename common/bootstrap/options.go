package bootstrap

import (
	"github.com/lyzr/formengine/common/config"
	"github.com/lyzr/formengine/common/logger"
	"github.com/lyzr/formengine/registry"
)

// Option configures the bootstrap process.
type Option func(*options)

type options struct {
	skipCache     bool
	skipTelemetry bool
	customLogger  *logger.Logger
	customConfig  *config.Config
	functions     *registry.FunctionRegistry
	views         *registry.ComponentRegistry
	registerHook  func(*registry.FunctionRegistry, *registry.ComponentRegistry) error
}

// WithoutCache skips the process-wide compiled-form cache.
func WithoutCache() Option {
	return func(o *options) {
		o.skipCache = true
	}
}

// WithoutTelemetry skips telemetry initialization.
func WithoutTelemetry() Option {
	return func(o *options) {
		o.skipTelemetry = true
	}
}

// WithCustomLogger uses a custom logger instead of creating one.
func WithCustomLogger(log *logger.Logger) Option {
	return func(o *options) {
		o.customLogger = log
	}
}

// WithCustomConfig uses a custom config instead of loading from env.
func WithCustomConfig(cfg *config.Config) Option {
	return func(o *options) {
		o.customConfig = cfg
	}
}

// WithFunctionRegistry supplies a pre-built function registry instead of
// letting Setup create an empty one. Useful when an embedder wants to share
// one registry across several engine instances.
func WithFunctionRegistry(fr *registry.FunctionRegistry) Option {
	return func(o *options) {
		o.functions = fr
	}
}

// WithComponentRegistry supplies a pre-built component registry.
func WithComponentRegistry(cr *registry.ComponentRegistry) Option {
	return func(o *options) {
		o.views = cr
	}
}

// WithRegisterHook runs after the built-in functions are registered, letting
// the embedder add its own CONDITION/TRANSFORMER/EFFECT/GENERATOR functions
// and component renderers before the engine starts serving requests.
func WithRegisterHook(hook func(*registry.FunctionRegistry, *registry.ComponentRegistry) error) Option {
	return func(o *options) {
		o.registerHook = hook
	}
}

func defaultOptions() *options {
	return &options{
		skipCache:     false,
		skipTelemetry: false,
	}
}
