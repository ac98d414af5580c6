package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"neuranest-explorer/internal/explorer/dto"
	"neuranest-explorer/internal/explorer/repository"
	"neuranest-explorer/internal/explorer/service"
)

// statusFor maps service and upstream errors to HTTP statuses.
func statusFor(err error) int {
	var apiErr *repository.APIError
	switch {
	case errors.Is(err, service.ErrSessionClosed), errors.Is(err, service.ErrTrackerStopped):
		return http.StatusGone
	case errors.Is(err, service.ErrTopicNotLoaded), errors.Is(err, service.ErrUnknownCell):
		return http.StatusNotFound
	case errors.Is(err, service.ErrNoHeatmap):
		return http.StatusConflict
	case errors.Is(err, service.ErrSnapshotNotReady):
		return http.StatusServiceUnavailable
	case errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500:
		return apiErr.StatusCode
	}
	var transportErr *service.TransportError
	if errors.As(err, &transportErr) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeError(c echo.Context, err error) error {
	resp := dto.ErrorResponse{Error: err.Error()}
	var transportErr *service.TransportError
	if errors.As(err, &transportErr) {
		resp.Retryable = transportErr.Retryable
	}
	return c.JSON(statusFor(err), resp)
}
