// Package ldpstub is an in-memory repository speaking the subset of the
// Fedora LDP API the mapper uses: resource GET/PUT/POST/DELETE and the
// fcr:versions history, create and restore endpoints.
package ldpstub

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.uber.org/fx"

	"github.com/emergent-company/ldpgraph/internal/config"
	"github.com/emergent-company/ldpgraph/pkg/apperror"
	"github.com/emergent-company/ldpgraph/pkg/logger"
)

var Module = fx.Module("ldpstub",
	fx.Provide(
		NewStore,
		func(store *Store, cfg *config.Config, log *slog.Logger) *Handler {
			return NewHandler(store, cfg.Stub.BasePath, log)
		},
		NewEcho,
	),
	fx.Invoke(RegisterRoutes, StartServer),
)

// NewEcho creates the Echo instance with the stub's middleware stack.
func NewEcho(log *slog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = apperror.HTTPErrorHandler(log)

	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(
		otelecho.Middleware("ldpstub", otelecho.WithSkipper(func(c echo.Context) bool {
			return c.Path() == "/healthz" || c.Path() == "/metrics"
		})),
		middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
			LogURI:     true,
			LogStatus:  true,
			LogLatency: true,
			LogError:   true,
			LogMethod:  true,
			LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
				attrs := []any{
					slog.String("method", v.Method),
					slog.String("uri", v.URI),
					slog.Int("status", v.Status),
					slog.Duration("latency", v.Latency),
				}
				if v.Error != nil {
					attrs = append(attrs, logger.Error(v.Error))
				}
				log.Debug("request", attrs...)
				return nil
			},
		}),
		middleware.RecoverWithConfig(middleware.RecoverConfig{
			LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
				log.Error("panic recovered",
					logger.Error(err),
					slog.String("stack", string(stack)),
				)
				return nil
			},
		}),
	)
	return e
}

// StartServer runs the stub with graceful shutdown.
func StartServer(lc fx.Lifecycle, e *echo.Echo, cfg *config.Config, log *slog.Logger) {
	log = log.With(logger.Scope("ldpstub"))

	server := &http.Server{
		Addr:         cfg.Stub.Addr(),
		ReadTimeout:  cfg.Stub.ReadTimeout,
		WriteTimeout: cfg.Stub.WriteTimeout,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("starting stub repository",
				slog.String("address", server.Addr),
				slog.String("base_path", cfg.Stub.BasePath),
			)
			go func() {
				if err := e.StartServer(server); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("server error", logger.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("shutting down stub repository")
			shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Stub.ShutdownTimeout)
			defer cancel()
			return e.Shutdown(shutdownCtx)
		},
	})
}
