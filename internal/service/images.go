package service

import (
	"context"
	"io"

	"fmcg-admin-api/internal/apperror"
)

// Image is an uploaded file that already passed the size and type checks.
type Image struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// ImageStore persists an image and returns its public URL.
type ImageStore interface {
	Put(ctx context.Context, bucket, filename, contentType string, body io.Reader) (string, error)
}

func uploadImage(ctx context.Context, store ImageStore, bucket string, img Image) (string, error) {
	if store == nil {
		return "", apperror.InvalidArgument("Image storage is not configured")
	}
	return store.Put(ctx, bucket, img.Filename, img.ContentType, img.Body)
}

func uploadFailed(what string, err error) error {
	return &apperror.Error{Kind: apperror.KindInternal, Message: "Failed to upload " + what, Err: err}
}
