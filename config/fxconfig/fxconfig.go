// Package fxconfig provides loaded, validated configuration to an Fx application.
package fxconfig

import (
	"errors"
	"fmt"
	"log/slog"

	"go.uber.org/fx"

	"github.com/0xalexb/hjarta-config/config"
)

// ErrEmptyName is returned when a module is created without a name.
var ErrEmptyName = errors.New("config module name must not be empty")

type loggerParams struct {
	fx.In

	Logger *slog.Logger `optional:"true"`
}

// NewModule creates an Fx module that loads src into a *T once, rejects it
// unless valid, and provides it under the named tag name. A *slog.Logger in
// the container is used for loading logs when present.
//
//nolint:ireturn // fx.Option is the standard return type for Fx modules
func NewModule[T any](name string, src config.Source, opts ...config.Option) fx.Option {
	if name == "" {
		return fx.Error(ErrEmptyName)
	}

	provide := func(p loggerParams) (*T, error) {
		loaderOpts := opts
		if p.Logger != nil {
			loaderOpts = append([]config.Option{config.WithLogger(p.Logger.With(slog.String("config", name)))}, opts...)
		}

		cfg, err := config.New[T](loaderOpts...).LoadValid(src)
		if err != nil {
			return nil, fmt.Errorf("loading %s configuration: %w", name, err)
		}

		return cfg, nil
	}

	return fx.Module("config."+name,
		fx.Provide(
			fx.Annotate(provide, fx.ResultTags(fmt.Sprintf(`name:"%s"`, name))),
		),
	)
}
