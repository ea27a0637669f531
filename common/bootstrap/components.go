package bootstrap

import (
	"context"
	"fmt"

	"github.com/lyzr/formengine/common/cache"
	"github.com/lyzr/formengine/common/config"
	"github.com/lyzr/formengine/common/logger"
	"github.com/lyzr/formengine/common/telemetry"
	"github.com/lyzr/formengine/registry"
)

// Components holds every dependency a form-engine process needs, wired once
// at startup. The two registries are the embedder's contribution (spec §6):
// nothing in the core reaches executable code except through them.
type Components struct {
	Config    *config.Config
	Logger    *logger.Logger
	Cache     cache.Cache
	Telemetry *telemetry.Telemetry
	Functions *registry.FunctionRegistry
	Views     *registry.ComponentRegistry

	cleanupFuncs []func() error
}

// Shutdown performs graceful shutdown of all components.
// Should be called with defer after Setup().
func (c *Components) Shutdown(ctx context.Context) error {
	c.Logger.Info("shutting down components")

	var errs []error

	for i := len(c.cleanupFuncs) - 1; i >= 0; i-- {
		if err := c.cleanupFuncs[i](); err != nil {
			errs = append(errs, err)
			c.Logger.Error("cleanup error", "error", err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}

	c.Logger.Info("shutdown complete")
	return nil
}

// Health checks health of all components.
func (c *Components) Health(ctx context.Context) error {
	// The form-cache memory backend and the registries have no external
	// dependency to probe; an embedder-supplied Cache implementation
	// (store/redisstore, store/pgstore) would add its own check here.
	return nil
}

// addCleanup registers a cleanup function.
func (c *Components) addCleanup(fn func() error) {
	c.cleanupFuncs = append(c.cleanupFuncs, fn)
}
