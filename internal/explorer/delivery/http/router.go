package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	swagger "github.com/swaggo/echo-swagger"

	"neuranest-explorer/internal/explorer/service"
	"neuranest-explorer/pkg/logger"
	"neuranest-explorer/pkg/metrics"
)

// RouterDeps are the collaborators the HTTP surface is built from.
type RouterDeps struct {
	Registry service.SessionRegistry
	Explorer service.ExplorerService
	Metrics  *metrics.Metrics
	Logger   *logger.Logger
}

// NewRouter builds the Echo instance with every route registered.
func NewRouter(d RouterDeps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(RequestID())
	e.Use(AccessLog(d.Logger))

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok", "sessions": d.Registry.Len()})
	})
	if d.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(d.Metrics.Handler()))
	}
	e.GET("/swagger/*", swagger.WrapHandler)

	apiV1 := e.Group("/api/v1", Session(d.Registry))

	topicHandler := NewTopicHandler(d.Explorer, d.Logger)
	topicHandler.RegisterRoutes(apiV1.Group("/topics"))
	topicHandler.RegisterExportRoutes(apiV1.Group("/exports"))

	heatmapHandler := NewHeatmapHandler(d.Explorer, d.Logger)
	heatmapHandler.RegisterRoutes(apiV1.Group("/heatmap"))

	importHandler := NewImportHandler(d.Logger)
	importHandler.RegisterRoutes(apiV1.Group("/imports"))

	watchlistHandler := NewWatchlistHandler(d.Logger)
	watchlistHandler.RegisterRoutes(apiV1.Group("/watchlist"))

	return e
}
