package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"neuranest-explorer/internal/entity"
	"neuranest-explorer/internal/explorer/dto"
	"neuranest-explorer/pkg/logger"
)

// WatchlistHandler serves the session watchlist.
type WatchlistHandler struct {
	logger *logger.Logger
}

// NewWatchlistHandler creates a new WatchlistHandler.
func NewWatchlistHandler(logger *logger.Logger) *WatchlistHandler {
	return &WatchlistHandler{logger: logger}
}

// RegisterRoutes registers the watchlist routes to the Echo group.
func (h *WatchlistHandler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.GetWatchlist)
	g.POST("/:topic_id", h.AddTopic)
	g.DELETE("/:topic_id", h.RemoveTopic)
}

// GetWatchlist godoc
// @Summary Watchlisted topic ids
// @Tags watchlist
// @Produce  json
// @Param   X-Session-ID header string false "Explorer session"
// @Success 200 {object} dto.WatchlistView
// @Failure 502 {object} dto.ErrorResponse
// @Router /watchlist [get]
func (h *WatchlistHandler) GetWatchlist(c echo.Context) error {
	s := sessionFrom(c)
	if err := s.Watchlist.Load(c.Request().Context()); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto.WatchlistView{SessionID: s.ID, TopicIDs: s.Watchlist.IDs()})
}

// AddTopic godoc
// @Summary Add a topic to the watchlist
// @Description The topic shows as watchlisted at once and is rolled back when the store rejects it.
// @Tags watchlist
// @Produce  json
// @Param   X-Session-ID header string false "Explorer session"
// @Param   topic_id path string true "Topic ID"
// @Success 200 {object} dto.WatchlistView
// @Failure 409 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /watchlist/{topic_id} [post]
func (h *WatchlistHandler) AddTopic(c echo.Context) error {
	return h.mutate(c, entity.IntentAdd)
}

// RemoveTopic godoc
// @Summary Remove a topic from the watchlist
// @Tags watchlist
// @Produce  json
// @Param   X-Session-ID header string false "Explorer session"
// @Param   topic_id path string true "Topic ID"
// @Success 200 {object} dto.WatchlistView
// @Failure 409 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /watchlist/{topic_id} [delete]
func (h *WatchlistHandler) RemoveTopic(c echo.Context) error {
	return h.mutate(c, entity.IntentRemove)
}

func (h *WatchlistHandler) mutate(c echo.Context, intent entity.MutationIntent) error {
	topicID := c.Param("topic_id")
	if topicID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "topic_id is required"})
	}

	s := sessionFrom(c)
	mutate := s.Watchlist.Add
	if intent == entity.IntentRemove {
		mutate = s.Watchlist.Remove
	}
	m, err := mutate(c.Request().Context(), topicID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto.WatchlistView{SessionID: s.ID, TopicIDs: s.Watchlist.IDs(), Mutation: &m})
}
