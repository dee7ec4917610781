// Package appctx carries process-wide values on a context.Context between cobra commands.
package appctx

import (
	"context"

	"github.com/vulntor/tinyevents/pkg/config"
)

type key string

const configKey key = "tinyevents.config.manager"

// WithConfig stores the shared config manager on ctx. A nil ctx is treated as Background.
func WithConfig(ctx context.Context, manager *config.Manager) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, configKey, manager)
}

// Config returns the config manager stored by WithConfig.
func Config(ctx context.Context) (*config.Manager, bool) {
	if ctx == nil {
		return nil, false
	}
	mgr, ok := ctx.Value(configKey).(*config.Manager)
	return mgr, ok && mgr != nil
}
