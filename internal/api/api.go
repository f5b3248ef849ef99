// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/JaimeStill/chronicle/internal/config"
	"github.com/JaimeStill/chronicle/internal/infrastructure"
	"github.com/JaimeStill/chronicle/pkg/lifecycle"
	"github.com/JaimeStill/chronicle/pkg/middleware"
	"github.com/JaimeStill/chronicle/pkg/module"
)

// API bundles the mounted HTTP module with the domain systems behind it so
// composition code can start background loops and open the vault.
type API struct {
	Module *module.Module
	Domain *Domain

	runtime *Runtime
}

// New creates the API module with all domain handlers and middleware.
func New(cfg *config.Config, infra *infrastructure.Infrastructure) (*API, error) {
	runtime := NewRuntime(cfg, infra)
	domain := NewDomain(runtime)

	specBytes, err := buildSpec(cfg)
	if err != nil {
		return nil, fmt.Errorf("build openapi spec: %w", err)
	}

	mux := http.NewServeMux()
	registerRoutes(mux, domain, runtime, specBytes)

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Logger))

	return &API{
		Module:  m,
		Domain:  domain,
		runtime: runtime,
	}, nil
}

// Start launches the background subsystems: the audit writer, the inference
// availability probe, the intake queue, and the retention sweep.
func (a *API) Start(lc *lifecycle.Coordinator) error {
	if err := a.Domain.Ledger.Start(lc); err != nil {
		return fmt.Errorf("ledger start failed: %w", err)
	}
	if err := a.Domain.Analyzer.Start(lc); err != nil {
		return fmt.Errorf("analyzer start failed: %w", err)
	}
	if err := a.Domain.Queue.Start(lc); err != nil {
		return fmt.Errorf("queue start failed: %w", err)
	}

	a.startSweep(lc)
	return nil
}

// OpenVault derives the vault key and verifies the encrypted store is
// readable. Callers treat failure as fatal.
func (a *API) OpenVault(ctx context.Context) error {
	return a.Domain.Vault.Open(ctx)
}

// startSweep runs the periodic retention maintenance: pruning expired audit
// entries and clearing stale undecided suggestions.
func (a *API) startSweep(lc *lifecycle.Coordinator) {
	interval := a.runtime.Privacy.SweepIntervalDuration()
	logger := a.runtime.Logger.With("system", "sweep")

	done := make(chan struct{})
	go func() {
		defer close(done)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-lc.Context().Done():
				return
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), time.Minute)

				if _, err := a.Domain.Ledger.Cleanup(ctx, a.runtime.Privacy.RetentionDays); err != nil {
					logger.Error("audit cleanup failed", "error", err)
				}

				if _, err := a.Domain.Suggestions.ClearStale(ctx, a.runtime.Pipeline.StaleDays); err != nil {
					logger.Error("stale suggestion sweep failed", "error", err)
				}

				cancel()
			}
		}
	}()

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		<-done
	})
}
