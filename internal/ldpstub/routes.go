package ldpstub

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes mounts the repository under the handler's base path.
func RegisterRoutes(e *echo.Echo, h *Handler) {
	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	g := e.Group(h.basePath)
	g.GET("/*", h.Get)
	g.HEAD("/*", h.Get)
	g.PUT("/*", h.Put)
	g.POST("", h.Post)
	g.POST("/*", h.Post)
	g.PATCH("/*", h.Patch)
	g.DELETE("/*", h.Delete)
}
