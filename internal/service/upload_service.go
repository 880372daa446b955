package service

import (
	"context"
	"fmt"
	"time"

	"backend/internal/storage"
	"backend/pkg/apperror"
)

const uploadURLExpiry = time.Hour

// allowedContentTypes is the attachment allow-list: pdf, doc, docx, xls, xlsx.
var allowedContentTypes = map[string]bool{
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"application/vnd.ms-excel": true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
}

// --- DTOs ---

type PresignFileRequest struct {
	FileName    string `json:"file_name" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
	Prefix      string `json:"prefix"`
}

type PresignUploadsRequest struct {
	Files []PresignFileRequest `json:"files" binding:"required,min=1"`
}

type PresignedUpload struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
}

type PresignedDownload struct {
	URL string `json:"url"`
}

// UploadService hands out presigned blob-store URLs for APF attachments.
type UploadService interface {
	PresignUploads(ctx context.Context, req PresignUploadsRequest) ([]PresignedUpload, error)
	PresignDownload(ctx context.Context, key string) (PresignedDownload, error)
}

type uploadService struct {
	store storage.BlobStore
	now   func() time.Time
}

// NewUploadService returns a new instance of UploadService
func NewUploadService(store storage.BlobStore) UploadService {
	return &uploadService{store: store, now: time.Now}
}

func (s *uploadService) PresignUploads(ctx context.Context, req PresignUploadsRequest) ([]PresignedUpload, error) {
	if len(req.Files) == 0 {
		return nil, apperror.Validationf("files array is required")
	}

	results := make([]PresignedUpload, 0, len(req.Files))
	for _, f := range req.Files {
		if f.FileName == "" || f.ContentType == "" {
			return nil, apperror.Validationf("file_name and content_type are required")
		}
		if !allowedContentTypes[f.ContentType] {
			return nil, apperror.Validationf("invalid file type: %s", f.ContentType)
		}

		prefix := f.Prefix
		if prefix == "" {
			prefix = "forms"
		}
		key := fmt.Sprintf("%s/%d_%s", prefix, s.now().UnixMilli(), f.FileName)

		url, err := s.store.PresignUpload(ctx, key, f.ContentType, uploadURLExpiry)
		if err != nil {
			return nil, fmt.Errorf("failed to presign upload for %s: %w", f.FileName, err)
		}
		results = append(results, PresignedUpload{Key: key, URL: url, ContentType: f.ContentType})
	}

	return results, nil
}

func (s *uploadService) PresignDownload(ctx context.Context, key string) (PresignedDownload, error) {
	if key == "" {
		return PresignedDownload{}, apperror.Validationf("key query parameter is required")
	}

	url, err := s.store.PresignDownload(ctx, key, downloadURLExpiry)
	if err != nil {
		return PresignedDownload{}, fmt.Errorf("failed to presign download: %w", err)
	}
	return PresignedDownload{URL: url}, nil
}
