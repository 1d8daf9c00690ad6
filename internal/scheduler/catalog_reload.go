package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/gitdex/gitdex/internal/catalog"
	"github.com/gitdex/gitdex/internal/logger"
)

// CatalogReloader handles periodic refreshing of the catalog from the
// backing repository. Each pass re-reads the three data files and runs the
// reconciler, so out-of-band edits to the repository converge into the
// served state without a restart.
type CatalogReloader struct {
	catalog       *catalog.Service
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	manualTrigger chan struct{}
}

// NewCatalogReloader creates a new catalog reloader. manualTrigger lets the
// admin API force a reload outside the schedule.
func NewCatalogReloader(
	svc *catalog.Service,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *CatalogReloader {
	return &CatalogReloader{
		catalog:       svc,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start loads the catalog once synchronously, then begins the periodic
// reload loop.
func (cr *CatalogReloader) Start(ctx context.Context) error {
	// The first load must succeed: serving an empty catalog because the
	// repository was unreachable at boot is worse than failing fast.
	if err := cr.catalog.Load(ctx, false); err != nil {
		return fmt.Errorf("initial catalog load failed: %w", err)
	}

	ticker := time.NewTicker(cr.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				cr.reload(ctx)
			case <-cr.manualTrigger:
				cr.logger.Info("manual reload triggered")
				cr.reload(ctx)
			case <-cr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the reloader.
func (cr *CatalogReloader) Stop() {
	close(cr.stopCh)
}

func (cr *CatalogReloader) reload(ctx context.Context) {
	start := time.Now()
	if err := cr.catalog.Load(ctx, true); err != nil {
		cr.logger.Error("catalog reload failed", logger.Error(err))
		return
	}
	cr.logger.Info("catalog reloaded",
		logger.Duration("elapsed", time.Since(start)))
}
