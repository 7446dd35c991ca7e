// Package main runs the in-memory LDP repository used for local development
// and integration tests.
package main

import (
	"log/slog"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/emergent-company/ldpgraph/internal/config"
	"github.com/emergent-company/ldpgraph/internal/ldpstub"
	"github.com/emergent-company/ldpgraph/internal/tracing"
	"github.com/emergent-company/ldpgraph/pkg/logger"
)

func main() {
	// Load() won't overwrite existing vars, Overload() will
	_ = godotenv.Load(".env")
	_ = godotenv.Overload(".env.local")

	fx.New(
		fx.WithLogger(func(log *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: log}
		}),

		logger.Module,
		config.Module,
		tracing.Module,
		ldpstub.Module,
	).Run()
}
