package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif" // register GIF decoder
	"image/jpeg"
	_ "image/png" // register PNG decoder
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register WebP decoder
	"golang.org/x/sync/errgroup"

	"propage/internal/middleware"
	"propage/internal/models"
	"propage/internal/storage"
	"propage/internal/store"
)

const (
	// maxUploadSize is the maximum allowed size per uploaded file (10 MB).
	maxUploadSize = 10 << 20

	// maxFilesPerRequest caps how many files one multipart request may carry.
	maxFilesPerRequest = 10

	// thumbMaxWidth is the maximum thumbnail width in pixels.
	thumbMaxWidth = 400

	// thumbQuality is the JPEG quality for generated thumbnails.
	thumbQuality = 80

	// maxImagePixels caps decoded size to prevent memory bombs.
	maxImagePixels = 100_000_000
)

// allowedImageTypes defines MIME types accepted for upload.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// thumbableTypes are image types that support thumbnail generation.
// GIF is excluded to preserve animation.
var thumbableTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// Upload groups the file upload and deletion handlers.
type Upload struct {
	storage *storage.Client
	images  *store.ImageStore
}

// NewUpload creates a new Upload handler group. storage may be nil when
// object storage is unconfigured; handlers then answer 503.
func NewUpload(storageClient *storage.Client, images *store.ImageStore) *Upload {
	return &Upload{
		storage: storageClient,
		images:  images,
	}
}

// uploadedFile is the response entry for one stored file.
type uploadedFile struct {
	ID       uuid.UUID `json:"id"`
	URL      string    `json:"url"`
	ThumbURL string    `json:"thumbUrl,omitempty"`
	Filename string    `json:"filename"`
	Size     int64     `json:"size"`
	Type     string    `json:"type"`
}

// Files accepts one or more images in a multipart "files" field, stores
// them in object storage with generated thumbnails, and records metadata.
// Files upload concurrently; the first failure cancels the rest.
func (u *Upload) Files(w http.ResponseWriter, r *http.Request) {
	if u.storage == nil {
		writeError(w, http.StatusServiceUnavailable, "object storage is not configured")
		return
	}

	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxFilesPerRequest*maxUploadSize+1024)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "request too large")
		return
	}

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		// Single-file clients use "file".
		headers = r.MultipartForm.File["file"]
	}
	if len(headers) == 0 {
		writeError(w, http.StatusBadRequest, "no file provided")
		return
	}
	if len(headers) > maxFilesPerRequest {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("too many files (max %d per request)", maxFilesPerRequest))
		return
	}

	var (
		mu      sync.Mutex
		results = make([]uploadedFile, len(headers))
	)

	g, ctx := errgroup.WithContext(r.Context())
	for i, hdr := range headers {
		g.Go(func() error {
			res, err := u.storeOne(ctx, hdr, sess.UserID)
			if err != nil {
				return err
			}
			mu.Lock()
			results[i] = *res
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		var ue *uploadError
		switch {
		case errors.Is(err, storage.ErrBucketMissing):
			writeError(w, http.StatusServiceUnavailable,
				fmt.Sprintf("storage bucket %q does not exist; create it and make it public", u.storage.Bucket()))
		case errors.As(err, &ue):
			writeError(w, ue.status, ue.msg)
		default:
			slog.Error("upload failed", "error", err)
			writeError(w, http.StatusInternalServerError, "upload failed")
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"files": results})
}

// uploadError carries a user-facing message and status out of storeOne.
type uploadError struct {
	status int
	msg    string
}

func (e *uploadError) Error() string { return e.msg }

// storeOne validates, uploads, and records a single file.
func (u *Upload) storeOne(ctx context.Context, hdr *multipart.FileHeader, uploaderID uuid.UUID) (*uploadedFile, error) {
	if hdr.Size > maxUploadSize {
		return nil, &uploadError{http.StatusRequestEntityTooLarge,
			fmt.Sprintf("%s is too large (max 10 MB)", hdr.Filename)}
	}

	file, err := hdr.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer file.Close()

	fileBytes, err := io.ReadAll(io.LimitReader(file, maxUploadSize+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if len(fileBytes) > maxUploadSize {
		return nil, &uploadError{http.StatusRequestEntityTooLarge,
			fmt.Sprintf("%s is too large (max 10 MB)", hdr.Filename)}
	}

	contentType := http.DetectContentType(fileBytes)
	if !allowedImageTypes[contentType] {
		return nil, &uploadError{http.StatusBadRequest,
			fmt.Sprintf("file type %q is not allowed (jpg, png, gif, webp only)", contentType)}
	}

	// Generate a unique storage key grouped by month.
	now := time.Now()
	ext := strings.ToLower(filepath.Ext(hdr.Filename))
	if ext == "" {
		ext = extensionFromType(contentType)
	}
	fileID := uuid.New().String()
	s3Key := fmt.Sprintf("uploads/%d/%02d/%s%s", now.Year(), now.Month(), fileID, ext)

	if err := u.storage.Upload(ctx, s3Key, contentType, bytes.NewReader(fileBytes), int64(len(fileBytes))); err != nil {
		return nil, err
	}

	// Thumbnail failures are logged, never fatal.
	var thumbKey *string
	if thumbableTypes[contentType] {
		thumbData, err := generateThumbnail(bytes.NewReader(fileBytes), thumbMaxWidth)
		if err != nil {
			slog.Warn("thumbnail generation failed", "error", err, "key", s3Key)
		} else if thumbData != nil {
			tk := fmt.Sprintf("uploads/%d/%02d/%s_thumb.jpg", now.Year(), now.Month(), fileID)
			if err := u.storage.Upload(ctx, tk, "image/jpeg", bytes.NewReader(thumbData), int64(len(thumbData))); err != nil {
				slog.Warn("thumbnail upload failed", "error", err, "key", tk)
			} else {
				thumbKey = &tk
			}
		}
	}

	created, err := u.images.Create(&models.Image{
		Filename:     fileID + ext,
		OriginalName: hdr.Filename,
		ContentType:  contentType,
		SizeBytes:    int64(len(fileBytes)),
		S3Key:        s3Key,
		ThumbS3Key:   thumbKey,
		UploaderID:   uploaderID,
	})
	if err != nil {
		return nil, fmt.Errorf("record upload: %w", err)
	}

	res := &uploadedFile{
		ID:       created.ID,
		URL:      u.storage.FileURL(created.S3Key),
		Filename: created.OriginalName,
		Size:     created.SizeBytes,
		Type:     created.ContentType,
	}
	if created.ThumbS3Key != nil {
		res.ThumbURL = u.storage.FileURL(*created.ThumbS3Key)
	}
	return res, nil
}

// DeleteByURL removes a stored file addressed by its public URL. Storage
// cleanup is best-effort; the metadata row is the source of truth.
func (u *Upload) DeleteByURL(w http.ResponseWriter, r *http.Request) {
	if u.storage == nil {
		writeError(w, http.StatusServiceUnavailable, "object storage is not configured")
		return
	}

	var req struct {
		URL string `json:"url"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	key, ok := u.storage.ExtractKey(req.URL)
	if !ok {
		writeError(w, http.StatusBadRequest, "URL does not belong to this storage")
		return
	}

	img, err := u.images.FindByKey(key)
	if err != nil {
		slog.Error("image lookup failed", "error", err, "key", key)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if img == nil {
		writeError(w, http.StatusNotFound, "file not found")
		return
	}

	if _, err := u.images.Delete(img.ID); err != nil {
		slog.Error("image db delete failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	ctx := r.Context()
	if err := u.storage.Delete(ctx, img.S3Key); err != nil {
		slog.Warn("s3 original delete failed", "error", err, "key", img.S3Key)
	}
	if img.ThumbS3Key != nil {
		if err := u.storage.Delete(ctx, *img.ThumbS3Key); err != nil {
			slog.Warn("s3 thumbnail delete failed", "error", err, "key", *img.ThumbS3Key)
		}
	}

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// List returns uploaded image metadata, newest first.
func (u *Upload) List(w http.ResponseWriter, r *http.Request) {
	items, err := u.images.List(50, 0)
	if err != nil {
		slog.Error("list images failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	type view struct {
		models.Image
		URL      string `json:"url"`
		ThumbURL string `json:"thumbUrl,omitempty"`
	}
	views := make([]view, 0, len(items))
	for _, m := range items {
		v := view{Image: m}
		if u.storage != nil {
			v.URL = u.storage.FileURL(m.S3Key)
			if m.ThumbS3Key != nil {
				v.ThumbURL = u.storage.FileURL(*m.ThumbS3Key)
			}
		}
		views = append(views, v)
	}
	writeJSON(w, http.StatusOK, map[string]any{"images": views})
}

// generateThumbnail creates a JPEG thumbnail from an image, constrained
// to maxWidth while preserving aspect ratio. Returns nil if the image is
// already smaller than maxWidth.
func generateThumbnail(src io.Reader, maxWidth int) ([]byte, error) {
	// Decode config first to check dimensions without full decode.
	imgCfg, _, err := image.DecodeConfig(src)
	if err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	// Check for image bombs.
	if int64(imgCfg.Width)*int64(imgCfg.Height) > maxImagePixels {
		return nil, fmt.Errorf("image too large: %dx%d exceeds %d pixels", imgCfg.Width, imgCfg.Height, maxImagePixels)
	}

	// Skip thumbnail if image is already small enough.
	if imgCfg.Width <= maxWidth {
		return nil, nil
	}

	// Seek back to start for full decode.
	if seeker, ok := src.(io.Seeker); ok {
		if _, err := seeker.Seek(0, io.SeekStart); err != nil {
			return nil, fmt.Errorf("seek: %w", err)
		}
	} else {
		return nil, fmt.Errorf("source does not support seeking")
	}

	// Full decode.
	img, _, err := image.Decode(src)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	// Calculate thumbnail dimensions preserving aspect ratio.
	bounds := img.Bounds()
	ratio := float64(maxWidth) / float64(bounds.Dx())
	newWidth := maxWidth
	newHeight := int(float64(bounds.Dy()) * ratio)

	// Resize using CatmullRom (high quality).
	dst := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	// Encode to JPEG.
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: thumbQuality}); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}

	return buf.Bytes(), nil
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
