// Package storage saves uploaded club and post pictures on local disk.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"clubhub/internal/middleware"
	"clubhub/internal/models"

	"github.com/google/uuid"
	_ "golang.org/x/image/bmp"  // Register BMP decoder
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	DefaultUploadDir   = "static/uploads"
	DefaultMaxUploadMB = 10
)

var formatExtensions = map[string]string{
	"jpeg": ".jpg",
	"png":  ".png",
	"gif":  ".gif",
	"webp": ".webp",
	"bmp":  ".bmp",
}

var allowedExtensions = map[string]string{
	".jpg":  "jpeg",
	".jpeg": "jpeg",
	".png":  "png",
	".gif":  "gif",
	".webp": "webp",
	".bmp":  "bmp",
}

// ImageStore writes validated images under a single directory.
type ImageStore struct {
	dir      string
	maxBytes int64
}

// NewImageStore returns a store rooted at dir. Zero values select defaults.
func NewImageStore(dir string, maxMB int) *ImageStore {
	if strings.TrimSpace(dir) == "" {
		dir = DefaultUploadDir
	}
	if maxMB <= 0 {
		maxMB = DefaultMaxUploadMB
	}
	return &ImageStore{dir: dir, maxBytes: int64(maxMB) * 1024 * 1024}
}

// Dir is the directory images are written to.
func (s *ImageStore) Dir() string {
	return s.dir
}

// Save checks that content decodes as a supported image and writes it under
// a random hex name. The original extension is kept when it agrees with the
// decoded format. The returned name is what Club and Post store as image_file.
func (s *ImageStore) Save(ctx context.Context, filename, contentType string, content []byte) (string, error) {
	if len(content) == 0 {
		return "", models.NewValidationError("No file uploaded")
	}
	if int64(len(content)) > s.maxBytes {
		return "", models.NewValidationError(fmt.Sprintf("File too large (max %dMB)", s.maxBytes/(1024*1024)))
	}
	if !strings.HasPrefix(normalizeContentType(http.DetectContentType(content)), "image/") {
		return "", models.NewValidationError("Invalid image type")
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(content))
	if err != nil {
		return "", models.NewValidationError("Invalid image file")
	}
	defaultExt, ok := formatExtensions[format]
	if !ok {
		return "", models.NewValidationError("Unsupported image format")
	}
	if provided := normalizeContentType(contentType); strings.HasPrefix(provided, "image/") && !strings.Contains(provided, format) && !(format == "jpeg" && provided == "image/jpg") {
		return "", models.NewValidationError("Image content type mismatch")
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if allowedExtensions[ext] != format {
		ext = defaultExt
	}

	name := randomHex() + ext
	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return "", models.NewInternalError(err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, name), content, 0o640); err != nil {
		return "", models.NewInternalError(err)
	}

	middleware.Logger.InfoContext(ctx, "image stored",
		slog.String("file", name),
		slog.String("format", format),
		slog.Int("bytes", len(content)),
	)
	return name, nil
}

// Remove deletes a stored image. Default pictures and missing files are ignored.
func (s *ImageStore) Remove(name string) error {
	if name == "" || name == models.DefaultClubImage || name == models.DefaultPostImage {
		return nil
	}
	if filepath.Base(name) != name {
		return models.NewValidationError("Invalid image name")
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
		return models.NewInternalError(err)
	}
	return nil
}

func randomHex() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
}

func normalizeContentType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return strings.ToLower(strings.TrimSpace(mediaType))
}
