package handlers

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"telemart/internal/storage"
)

// maxUploadSize is the maximum allowed image upload size (10 MB).
// Product photos and payment screenshots comfortably fit under it.
const maxUploadSize = 10 << 20

// allowedImageTypes defines MIME types accepted for upload. The API
// stores catalog images and payment screenshots, so only raster image
// formats are allowed.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// Media groups the media upload handlers.
type Media struct {
	storage *storage.Client
}

// NewMedia creates a new Media handler group. The storage client may be
// nil when object storage is not configured; uploads then return 503.
func NewMedia(storageClient *storage.Client) *Media {
	return &Media{storage: storageClient}
}

// Upload accepts a multipart image, stores it in the public bucket and
// returns the URL to reference from categories, products and orders.
func (h *Media) Upload(w http.ResponseWriter, r *http.Request) {
	if h.storage == nil {
		respondError(w, http.StatusServiceUnavailable, "object storage is not configured")
		return
	}

	// Limit request body to maxUploadSize + some overhead for form fields.
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize+1024)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respondError(w, http.StatusRequestEntityTooLarge, "file too large, maximum size is 10 MB")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "no file provided")
		return
	}
	defer file.Close()

	if header.Size > maxUploadSize {
		respondError(w, http.StatusRequestEntityTooLarge, "file too large, maximum size is 10 MB")
		return
	}

	// Detect content type by sniffing the first 512 bytes.
	sniffBuf := make([]byte, 512)
	n, err := file.Read(sniffBuf)
	if err != nil && err != io.EOF {
		respondError(w, http.StatusInternalServerError, "failed to read file")
		return
	}
	contentType := http.DetectContentType(sniffBuf[:n])
	if !allowedImageTypes[contentType] {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("file type %q is not allowed", contentType))
		return
	}

	// Seek back to start after sniffing.
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to process file")
		return
	}

	now := time.Now()
	ext := filepath.Ext(header.Filename)
	if ext == "" {
		ext = extensionFromType(contentType)
	}
	key := fmt.Sprintf("media/%d/%02d/%s%s", now.Year(), now.Month(), uuid.New().String(), ext)

	fileBytes, err := io.ReadAll(file)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to read file")
		return
	}

	if err := h.storage.Upload(r.Context(), key, contentType, bytes.NewReader(fileBytes), int64(len(fileBytes))); err != nil {
		slog.Error("s3 upload failed", "error", err, "key", key)
		respondError(w, http.StatusInternalServerError, "failed to upload file")
		return
	}

	slog.Info("media uploaded", "key", key, "size", len(fileBytes), "content_type", contentType)
	respondJSON(w, http.StatusCreated, map[string]any{"url": h.storage.FileURL(key)})
}

// extensionFromType returns a file extension for known MIME types.
func extensionFromType(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ""
	}
}
