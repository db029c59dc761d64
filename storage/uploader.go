package storage

import (
	"context"
	"errors"
	"io"
)

type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

// FileUploader abstracts the object store holding team logos.
type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)
	Delete(ctx context.Context, key string) error
	GetPublicURL(key string) string
}

var ErrStorageNotConfigured = errors.New("logo storage is not configured")

// NewDisabledUploader returns an uploader for deployments without an R2
// bucket. Uploads fail with ErrStorageNotConfigured, deletes are no-ops so
// team deletion keeps working, and no public URLs are produced.
func NewDisabledUploader() FileUploader {
	return disabledUploader{}
}

type disabledUploader struct{}

func (disabledUploader) Upload(ctx context.Context, key, contentType string, reader io.Reader) (*UploadResult, error) {
	return nil, ErrStorageNotConfigured
}

func (disabledUploader) Delete(ctx context.Context, key string) error { return nil }

func (disabledUploader) GetPublicURL(key string) string { return "" }
