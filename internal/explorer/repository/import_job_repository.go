package repository

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"neuranest-explorer/internal/entity"
	"neuranest-explorer/internal/explorer/dto"
)

// ImportJobRepository submits and lists bulk import jobs.
type ImportJobRepository interface {
	List(ctx context.Context) ([]entity.ImportJob, error)
	Upload(ctx context.Context, upload dto.ImportUpload) (*dto.UploadResponse, error)
}

type importJobRepository struct {
	client *Client
}

func NewImportJobRepository(client *Client) ImportJobRepository {
	return &importJobRepository{client: client}
}

func (r *importJobRepository) List(ctx context.Context) ([]entity.ImportJob, error) {
	var jobs dto.JobList
	if err := r.client.getJSON(ctx, "/amazon-ba/jobs", nil, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

// Upload streams the file as multipart/form-data without buffering it in memory.
func (r *importJobRepository) Upload(ctx context.Context, upload dto.ImportUpload) (*dto.UploadResponse, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		err := writeUploadForm(mw, upload)
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err)
	}()

	var resp dto.UploadResponse
	err := r.client.doJSON(ctx, request{
		method:      http.MethodPost,
		path:        "/amazon-ba/upload",
		bodyReader:  pr,
		contentType: mw.FormDataContentType(),
	}, &resp)
	_ = pr.Close()
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func writeUploadForm(mw *multipart.Writer, upload dto.ImportUpload) error {
	if err := mw.WriteField("country", upload.Country); err != nil {
		return err
	}
	if upload.ReportMonth != "" {
		if err := mw.WriteField("report_month", upload.ReportMonth); err != nil {
			return err
		}
	}
	part, err := mw.CreateFormFile("file", upload.Filename)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, upload.Content); err != nil {
		return fmt.Errorf("failed to copy upload content: %w", err)
	}
	return nil
}
