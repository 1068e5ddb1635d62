package app

import (
	"context"

	"github.com/khadamati/khadamati/internal/catalog"
)

// SeedDemo loads the demo catalog so a fresh install can take requests.
func (a *Application) SeedDemo(ctx context.Context) error {
	return catalog.SeedDemo(ctx, a.gormDB)
}
