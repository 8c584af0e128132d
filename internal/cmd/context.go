package cmd

import (
	"context"
	"errors"

	"github.com/ceph/quay-pruner/internal/config"
)

type contextKey string

const (
	configKey contextKey = "config"
	loaderKey contextKey = "loader"
)

// WithConfig adds the config to the context.
func WithConfig(ctx context.Context, cfg *config.Config) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

// ConfigFromContext retrieves the config from context.
func ConfigFromContext(ctx context.Context) *config.Config {
	cfg, ok := ctx.Value(configKey).(*config.Config)
	if !ok {
		return nil
	}
	return cfg
}

// WithLoader adds the config loader to the context.
func WithLoader(ctx context.Context, loader *config.Loader) context.Context {
	return context.WithValue(ctx, loaderKey, loader)
}

// LoaderFromContext retrieves the config loader from context.
func LoaderFromContext(ctx context.Context) *config.Loader {
	loader, ok := ctx.Value(loaderKey).(*config.Loader)
	if !ok {
		return nil
	}
	return loader
}

func requireConfig(ctx context.Context) (*config.Config, error) {
	cfg := ConfigFromContext(ctx)
	if cfg == nil {
		return nil, errors.New("configuration not loaded")
	}
	return cfg, nil
}
