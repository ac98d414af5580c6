package http

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"neuranest-explorer/internal/explorer/service"
	"neuranest-explorer/pkg/common"
	"neuranest-explorer/pkg/logger"
)

// TopicHandler serves the filtered topic list, insights, explanations and export.
type TopicHandler struct {
	explorer service.ExplorerService
	logger   *logger.Logger
}

// NewTopicHandler creates a new TopicHandler.
func NewTopicHandler(explorer service.ExplorerService, logger *logger.Logger) *TopicHandler {
	return &TopicHandler{explorer: explorer, logger: logger}
}

// RegisterRoutes registers the topic routes to the Echo group.
func (h *TopicHandler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.ListTopics)
	g.GET("/insights", h.GetInsights)
	g.GET("/:id/explanation", h.GetExplanation)
}

// RegisterExportRoutes registers the export routes to the Echo group.
func (h *TopicHandler) RegisterExportRoutes(g *echo.Group) {
	g.GET("/topics.csv", h.ExportTopics)
}

// ListTopics godoc
// @Summary List topics for the session filter
// @Description Merges the given filters into the session state and returns the matching page. A failed upstream call returns the last page with an error.
// @Tags topics
// @Produce  json
// @Param   X-Session-ID header string false "Explorer session"
// @Param   category  query string false "Category, All for no filter"
// @Param   stage     query string false "Lifecycle stage, All for no filter"
// @Param   search    query string false "Free-text search"
// @Param   sort      query string false "Sort key"
// @Param   page      query int    false "Page number"
// @Param   page_size query int    false "Page size"
// @Success 200 {object} dto.TopicsPage
// @Failure 502 {object} dto.ErrorResponse
// @Router /topics [get]
func (h *TopicHandler) ListTopics(c echo.Context) error {
	page, err := h.explorer.Topics(c.Request().Context(), sessionFrom(c), c.QueryParams())
	if err != nil {
		if page != nil && page.FetchedAt != nil {
			return c.JSON(http.StatusOK, page)
		}
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, page)
}

// GetInsights godoc
// @Summary Aggregated insights over the whole topic collection
// @Tags topics
// @Produce  json
// @Param   limit query int false "Size of the ranked lists"
// @Success 200 {object} dto.InsightsView
// @Failure 503 {object} dto.ErrorResponse
// @Router /topics/insights [get]
func (h *TopicHandler) GetInsights(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	view, err := h.explorer.Insights(limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

// GetExplanation godoc
// @Summary Score explanation for a loaded topic
// @Tags topics
// @Produce  json
// @Param   X-Session-ID header string false "Explorer session"
// @Param   id path string true "Topic ID"
// @Success 200 {object} dto.ExplanationView
// @Failure 404 {object} dto.ErrorResponse
// @Router /topics/{id}/explanation [get]
func (h *TopicHandler) GetExplanation(c echo.Context) error {
	view, err := h.explorer.Explanation(sessionFrom(c), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

// ExportTopics godoc
// @Summary Export every topic matching the session filter as CSV
// @Tags exports
// @Produce  text/csv
// @Param   X-Session-ID header string false "Explorer session"
// @Success 200 {file} file
// @Failure 502 {object} dto.ErrorResponse
// @Router /exports/topics.csv [get]
func (h *TopicHandler) ExportTopics(c echo.Context) error {
	resp := c.Response()
	resp.Header().Set(echo.HeaderContentType, "text/csv")
	resp.Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", common.ExportFilename))

	n, err := h.explorer.ExportCSV(c.Request().Context(), sessionFrom(c), c.QueryParams(), resp)
	if err != nil {
		if n == 0 && !resp.Committed {
			resp.Header().Del(echo.HeaderContentDisposition)
			return writeError(c, err)
		}
		h.logger.ErrorContext(c.Request().Context(), "Export interrupted", logger.ErrorField(err))
		return nil
	}
	return nil
}
