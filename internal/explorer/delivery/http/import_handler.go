package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"neuranest-explorer/internal/explorer/dto"
	"neuranest-explorer/pkg/logger"
)

// ImportHandler submits bulk imports and reports their progress.
type ImportHandler struct {
	logger *logger.Logger
}

// NewImportHandler creates a new ImportHandler.
func NewImportHandler(logger *logger.Logger) *ImportHandler {
	return &ImportHandler{logger: logger}
}

// RegisterRoutes registers the import routes to the Echo group.
func (h *ImportHandler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.ListImports)
	g.POST("", h.SubmitImport)
}

// ListImports godoc
// @Summary Tracked import jobs
// @Description Refreshes the job list once and resumes polling when a job is still active.
// @Tags imports
// @Produce  json
// @Param   X-Session-ID header string false "Explorer session"
// @Success 200 {object} dto.ImportJobsView
// @Router /imports [get]
func (h *ImportHandler) ListImports(c echo.Context) error {
	s := sessionFrom(c)
	view := dto.ImportJobsView{SessionID: s.ID}
	if err := s.Jobs.Refresh(c.Request().Context()); err != nil {
		view.Error = &dto.ErrorResponse{Error: err.Error(), Retryable: true}
	}
	view.Jobs = s.Jobs.Jobs()
	view.Polling = s.Jobs.Polling()
	return c.JSON(http.StatusOK, view)
}

// SubmitImport godoc
// @Summary Upload a bulk import file
// @Tags imports
// @Accept  multipart/form-data
// @Produce  json
// @Param   X-Session-ID header string false "Explorer session"
// @Param   file         formData file   true  "CSV report"
// @Param   country      formData string false "Marketplace country"
// @Param   report_month formData string false "Report month, YYYY-MM"
// @Success 202 {object} dto.ImportJobsView
// @Failure 400 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /imports [post]
func (h *ImportHandler) SubmitImport(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "file is required"})
	}
	f, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unreadable file"})
	}
	defer f.Close()

	s := sessionFrom(c)
	job, err := s.Jobs.Submit(c.Request().Context(), dto.ImportUpload{
		Filename:    fh.Filename,
		Content:     f,
		Country:     c.FormValue("country"),
		ReportMonth: c.FormValue("report_month"),
	})
	if err != nil {
		return writeError(c, err)
	}

	h.logger.InfoContext(c.Request().Context(), "Import accepted", logger.StringField("job_id", job.ID), logger.StringField("session_id", s.ID))
	return c.JSON(http.StatusAccepted, dto.ImportJobsView{
		SessionID: s.ID,
		Jobs:      s.Jobs.Jobs(),
		Polling:   s.Jobs.Polling(),
	})
}
