package debug

import (
	"context"
	"fmt"
	"log"

	"github.com/cloudwego/eino-ext/devops"
	"github.com/dyike/AdvisorGo/config"
)

// EinoDebugger starts the eino visual debug plugin so the advisor graph can
// be inspected while it runs.
type EinoDebugger struct {
	enabled bool
	port    int
	verbose bool
	init    func(ctx context.Context) error
}

func NewEinoDebugger(cfg *config.Config) *EinoDebugger {
	return &EinoDebugger{
		enabled: cfg.EinoDebugEnabled,
		port:    cfg.EinoDebugPort,
		verbose: cfg.Debug,
		init:    func(ctx context.Context) error { return devops.Init(ctx) },
	}
}

func (d *EinoDebugger) Initialize(ctx context.Context) error {
	if !d.enabled {
		return nil
	}
	if d.verbose {
		log.Printf("[EinoDebug] initializing debug plugin on port %d", d.port)
	}
	if err := d.init(ctx); err != nil {
		return fmt.Errorf("failed to initialize Eino debug plugin: %w", err)
	}
	log.Printf("[EinoDebug] debug server at %s", d.URL())
	return nil
}

func (d *EinoDebugger) IsEnabled() bool {
	return d.enabled
}

func (d *EinoDebugger) URL() string {
	if !d.enabled {
		return ""
	}
	return fmt.Sprintf("http://localhost:%d", d.port)
}
