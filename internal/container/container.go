package container

import (
	"fmt"

	"climindex/adapters/api"
	"climindex/adapters/stats/kernels"
	"climindex/adapters/stats/percentile"
	"climindex/app"
	"climindex/internal"
	"climindex/internal/config"
	"climindex/ports"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Statistical backends
	Kernels     ports.KernelPort
	Percentiles ports.PercentilePort

	// Application services
	IndiceService *app.IndiceService
}

// New creates a new dependency injection container wired with the
// reference kernels
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	c := &Container{
		Config:      cfg,
		Logger:      internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel)),
		Kernels:     kernels.New(),
		Percentiles: percentile.New(),
	}
	c.initServices()

	c.Logger.Debug("Container initialized (out unit %s, fill %g, batch capacity %d)",
		cfg.Compute.OutUnit, cfg.Compute.FillValue, cfg.Compute.BatchCapacity)
	return c, nil
}

// WithKernels swaps the kernel library, rebuilding the services on top of it
func (c *Container) WithKernels(k ports.KernelPort) *Container {
	c.Kernels = k
	c.initServices()
	return c
}

// initServices initializes the application services
func (c *Container) initServices() {
	c.IndiceService = app.NewIndiceService(c.Kernels, c.Percentiles, app.ServiceConfig{
		OutUnit:       c.Config.Compute.OutUnit,
		FillValue:     c.Config.Compute.FillValue,
		BatchCapacity: c.Config.Compute.BatchCapacity,
	}, c.Logger)
}

// APIServer builds the HTTP surface over the indice service
func (c *Container) APIServer() *api.Server {
	return api.NewServer(c.IndiceService, c.Config.Server.RequestTimeout, c.Logger)
}
