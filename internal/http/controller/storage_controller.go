package controller

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/iyhunko/storefront-backoffice/internal/auth"
	"github.com/iyhunko/storefront-backoffice/internal/http/response"
	"github.com/iyhunko/storefront-backoffice/internal/storage"
)

// ImageUploader stores an image and returns its public URL.
type ImageUploader interface {
	UploadImage(ctx context.Context, img storage.Image) (string, error)
}

// StorageController handles product image uploads.
type StorageController struct {
	uploader ImageUploader
}

// NewStorageController creates a new StorageController.
func NewStorageController(uploader ImageUploader) *StorageController {
	return &StorageController{
		uploader: uploader,
	}
}

// UploadResponse carries the public URL of an uploaded image.
type UploadResponse struct {
	URL string `json:"url"`
}

// Upload stores the multipart "file" field.
func (sc *StorageController) Upload(c *gin.Context) {
	ctx := c.Request.Context()
	if _, err := auth.AdminFromContext(ctx); err != nil {
		response.Error(c, err)
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "file", "no file uploaded")
		return
	}

	file, err := header.Open()
	if err != nil {
		response.Error(c, err)
		return
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			slog.Warn("failed to close uploaded file", slog.Any("err", cerr))
		}
	}()

	url, err := sc.uploader.UploadImage(ctx, storage.Image{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, UploadResponse{URL: url})
}
