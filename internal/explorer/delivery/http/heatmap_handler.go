package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"neuranest-explorer/internal/explorer/service"
	"neuranest-explorer/pkg/logger"
)

// HeatmapHandler serves the whitespace grid and its drill-down panel.
type HeatmapHandler struct {
	explorer service.ExplorerService
	logger   *logger.Logger
}

// NewHeatmapHandler creates a new HeatmapHandler.
func NewHeatmapHandler(explorer service.ExplorerService, logger *logger.Logger) *HeatmapHandler {
	return &HeatmapHandler{explorer: explorer, logger: logger}
}

// RegisterRoutes registers the heatmap routes to the Echo group.
func (h *HeatmapHandler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.GetHeatmap)
	g.GET("/cell", h.SelectCell)
	g.DELETE("/cell", h.CloseCell)
}

// GetHeatmap godoc
// @Summary Whitespace heatmap
// @Description Loads the grid for a category. Without a category the loaded grid is returned as is.
// @Tags heatmap
// @Produce  json
// @Param   X-Session-ID header string false "Explorer session"
// @Param   category query string false "Category, All for no filter"
// @Success 200 {object} dto.HeatmapView
// @Failure 502 {object} dto.ErrorResponse
// @Router /heatmap [get]
func (h *HeatmapHandler) GetHeatmap(c echo.Context) error {
	view, err := h.explorer.Heatmap(c.Request().Context(), sessionFrom(c), c.QueryParam("category"))
	if err != nil {
		if view != nil && len(view.Rows) > 0 {
			return c.JSON(http.StatusOK, view)
		}
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

// SelectCell godoc
// @Summary Drill into a heatmap cell
// @Description Opens the detail panel for a non-empty cell. Selecting an empty cell leaves the panel unchanged.
// @Tags heatmap
// @Produce  json
// @Param   X-Session-ID header string false "Explorer session"
// @Param   price_bucket       query string true "Price bucket"
// @Param   competition_bucket query string true "Competition bucket"
// @Success 200 {object} dto.HeatmapView
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /heatmap/cell [get]
func (h *HeatmapHandler) SelectCell(c echo.Context) error {
	price, competition := c.QueryParam("price_bucket"), c.QueryParam("competition_bucket")
	if price == "" || competition == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "price_bucket and competition_bucket are required"})
	}

	view, err := h.explorer.SelectCell(c.Request().Context(), sessionFrom(c), price, competition)
	if err != nil {
		var transportErr *service.TransportError
		if view != nil && errors.As(err, &transportErr) {
			return c.JSON(http.StatusOK, view)
		}
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

// CloseCell godoc
// @Summary Close the drill-down panel
// @Tags heatmap
// @Produce  json
// @Param   X-Session-ID header string false "Explorer session"
// @Success 200 {object} dto.HeatmapView
// @Router /heatmap/cell [delete]
func (h *HeatmapHandler) CloseCell(c echo.Context) error {
	return c.JSON(http.StatusOK, h.explorer.CloseCell(sessionFrom(c)))
}
