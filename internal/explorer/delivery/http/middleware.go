package http

import (
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"neuranest-explorer/internal/explorer/service"
	"neuranest-explorer/pkg/common"
	"neuranest-explorer/pkg/logger"
)

const sessionContextKey = "explorer.session"

// RequestID tags every request with an id that is echoed back, forwarded
// upstream and attached to log lines.
func RequestID() echo.MiddlewareFunc {
	return middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		TargetHeader: common.HeaderRequestID,
		Generator:    uuid.NewString,
		RequestIDHandler: func(c echo.Context, id string) {
			req := c.Request()
			c.SetRequest(req.WithContext(logger.WithRequestID(req.Context(), id)))
		},
	})
}

// AccessLog writes one structured line per request.
func AccessLog(log *logger.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:     true,
		LogStatus:  true,
		LogMethod:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				logger.StringField("method", v.Method),
				logger.StringField("uri", v.URI),
				logger.IntField("status", v.Status),
				logger.Field("latency", v.Latency),
			}
			if v.Error != nil {
				fields = append(fields, logger.ErrorField(v.Error))
			}
			log.InfoContext(c.Request().Context(), "HTTP request", fields...)
			return nil
		},
	})
}

// Session resolves the caller's explorer session from the X-Session-ID header,
// creating one when absent or expired, and echoes its id back.
func Session(registry service.SessionRegistry) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.Request().Header.Get(common.HeaderSessionID)
			if id == "" {
				id = c.QueryParam("session_id")
			}
			s, _ := registry.GetOrCreate(id, bearerToken(c.Request().Header.Get(echo.HeaderAuthorization)))
			c.Response().Header().Set(common.HeaderSessionID, s.ID)
			c.Set(sessionContextKey, s)
			return next(c)
		}
	}
}

func sessionFrom(c echo.Context) *service.Session {
	s, _ := c.Get(sessionContextKey).(*service.Session)
	return s
}

func bearerToken(header string) string {
	const prefix = "bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}
