package bootstrap

import (
	"context"
	"fmt"

	"github.com/lyzr/formengine/common/cache"
	"github.com/lyzr/formengine/common/config"
	"github.com/lyzr/formengine/common/logger"
	"github.com/lyzr/formengine/common/telemetry"
	"github.com/lyzr/formengine/registry"
	"github.com/lyzr/formengine/stdfuncs"
)

// Setup initializes all process-wide form-engine components. This is the
// entry point cmd/formengine-demo starts from.
func Setup(ctx context.Context, serviceName string, opts ...Option) (*Components, error) {
	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	components := &Components{
		cleanupFuncs: make([]func() error, 0),
	}

	// 1. Load configuration
	var err error
	if options.customConfig != nil {
		components.Config = options.customConfig
	} else {
		components.Config, err = config.Load(serviceName)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	// 2. Initialize logger
	if options.customLogger != nil {
		components.Logger = options.customLogger
	} else {
		components.Logger = logger.New(
			components.Config.Service.LogLevel,
			components.Config.Service.LogFormat,
		)
	}

	components.Logger.Info("initializing service",
		"service", serviceName,
		"environment", components.Config.Service.Environment,
	)

	// 3. Build the function and component registries and seed the built-ins
	if options.functions != nil {
		components.Functions = options.functions
	} else {
		components.Functions = registry.NewFunctionRegistry()
	}
	if err := stdfuncs.RegisterBuiltins(components.Functions); err != nil {
		return nil, fmt.Errorf("failed to register built-in functions: %w", err)
	}

	if options.views != nil {
		components.Views = options.views
	} else {
		components.Views = registry.NewComponentRegistry()
	}

	if options.registerHook != nil {
		components.Logger.Info("running embedder register hook")
		if err := options.registerHook(components.Functions, components.Views); err != nil {
			return nil, fmt.Errorf("register hook failed: %w", err)
		}
	}

	// 4. Initialize the process-wide compiled-form cache (if not skipped)
	if !options.skipCache && components.Config.Cache.Enabled {
		components.Logger.Info("initializing compiled-form cache",
			"size_mb", components.Config.Cache.SizeMB,
		)

		components.Cache = cache.NewMemoryCache(components.Logger)

		components.addCleanup(func() error {
			components.Logger.Info("closing compiled-form cache")
			return components.Cache.Close()
		})
	}

	// 5. Initialize telemetry (if not skipped)
	if !options.skipTelemetry && components.Config.Telemetry.EnablePprof {
		components.Logger.Info("initializing telemetry")
		components.Telemetry = telemetry.New(
			components.Config.Telemetry.PprofPort,
			components.Config.Telemetry.MetricsPort,
			components.Logger,
		)

		if err := components.Telemetry.Start(ctx); err != nil {
			components.Logger.Warn("failed to start telemetry", "error", err)
			// Don't fail startup if telemetry fails
		}
	}

	components.Logger.Info("service initialization complete",
		"service", serviceName,
		"functions", components.Functions.Size(),
		"cache", components.Cache != nil,
		"telemetry", components.Telemetry != nil,
	)

	return components, nil
}

// MustSetup is like Setup but panics on error. Useful for services that
// can't recover from initialization failure.
func MustSetup(ctx context.Context, serviceName string, opts ...Option) *Components {
	components, err := Setup(ctx, serviceName, opts...)
	if err != nil {
		panic(fmt.Sprintf("failed to setup service %s: %v", serviceName, err))
	}
	return components
}
