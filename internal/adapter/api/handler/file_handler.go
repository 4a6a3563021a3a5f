package handler

import (
	"bytes"
	"encoding/base64"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"trashlink/internal/infrastructure/storage"
	"trashlink/pkg/errors"
	"trashlink/pkg/logger"
	"trashlink/pkg/response"
)

type FileHandler struct {
	storageClient *storage.CloudStorageClient
}

func NewFileHandler(storageClient *storage.CloudStorageClient) *FileHandler {
	return &FileHandler{
		storageClient: storageClient,
	}
}

// UploadRequestPhoto accepts one image for a pickup request. When blob
// storage is unreachable the photo is returned as an inline data URL so the
// client can still attach it to the request document.
func (h *FileHandler) UploadRequestPhoto(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return response.Error(c, errors.BadRequest("File is required", err))
	}

	if fileHeader.Size > storage.MaxPhotoSize {
		return response.Error(c, errors.BadRequest("Photo exceeds the 5MB limit", nil))
	}

	src, err := fileHeader.Open()
	if err != nil {
		return response.Error(c, errors.Internal("Failed to open uploaded file", err))
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, storage.MaxPhotoSize+1))
	if err != nil {
		return response.Error(c, errors.Internal("Failed to read uploaded file", err))
	}
	if len(data) > storage.MaxPhotoSize {
		return response.Error(c, errors.BadRequest("Photo exceeds the 5MB limit", nil))
	}

	// Sniff the real content type instead of trusting the header.
	contentType := http.DetectContentType(data)
	if !storage.AllowedImageType(contentType) {
		return response.Error(c, errors.BadRequest("Only image uploads are allowed", nil))
	}

	url, err := h.storageClient.UploadImage(c.Request().Context(), bytes.NewReader(data), contentType, "request-photos")
	if err != nil {
		logger.Warn("Blob storage unavailable, falling back to inline photo: %v", err)
		url = "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
		return response.Success(c, map[string]interface{}{
			"url":    url,
			"inline": true,
		})
	}

	return response.Created(c, map[string]interface{}{
		"url":    url,
		"inline": false,
	})
}
