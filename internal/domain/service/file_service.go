package service

import (
	"context"
	"io"

	"bookshelf/pkg/errors"
)

type FileUploadService interface {
	UploadFile(ctx context.Context, file io.Reader, fileType, folder string, isPublic bool) (string, error)
	DeleteFile(ctx context.Context, fileURL string) error
	Close() error
}

// NewUnconfiguredFileService returns a FileUploadService that rejects
// every call as an upstream failure. Used when no storage bucket is
// configured; uploads then degrade instead of crashing.
func NewUnconfiguredFileService() FileUploadService {
	return unconfiguredFileService{}
}

type unconfiguredFileService struct{}

func (unconfiguredFileService) UploadFile(ctx context.Context, file io.Reader, fileType, folder string, isPublic bool) (string, error) {
	return "", errors.Upstream("Image storage is not configured", nil)
}

func (unconfiguredFileService) DeleteFile(ctx context.Context, fileURL string) error {
	return errors.Upstream("Image storage is not configured", nil)
}

func (unconfiguredFileService) Close() error {
	return nil
}
