package events

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/grtshw/event-registration/utils"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/filesystem"
)

var posterExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// PosterStorage persists uploaded posters and returns their storage key.
type PosterStorage interface {
	Save(ctx context.Context, file *filesystem.File) (string, error)
}

func validatePoster(file *filesystem.File) error {
	if file.Size > utils.MaxPosterFileSize {
		return ErrPosterTooLarge
	}
	if !posterExtensions[strings.ToLower(filepath.Ext(file.OriginalName))] {
		return ErrPosterType
	}
	return nil
}

// PosterKey builds a unique storage key keeping the upload's extension.
func PosterKey(originalName string) string {
	return utils.PosterKeyPrefix + uuid.NewString() + strings.ToLower(filepath.Ext(originalName))
}

// ValidPosterKey reports whether key names a poster this site could have stored.
func ValidPosterKey(key string) bool {
	if !strings.HasPrefix(key, utils.PosterKeyPrefix) || strings.Contains(key, "..") {
		return false
	}
	name := strings.TrimPrefix(key, utils.PosterKeyPrefix)
	return name != "" && !strings.Contains(name, "/") && posterExtensions[filepath.Ext(name)]
}

// AppPosters stores posters in the PocketBase app filesystem (local or S3).
type AppPosters struct {
	app core.App
}

// NewAppPosters creates poster storage backed by app.NewFilesystem.
func NewAppPosters(app core.App) *AppPosters {
	return &AppPosters{app: app}
}

func (p *AppPosters) Save(_ context.Context, file *filesystem.File) (string, error) {
	fsys, err := p.app.NewFilesystem()
	if err != nil {
		return "", fmt.Errorf("open filesystem: %w", err)
	}
	defer fsys.Close()

	key := PosterKey(file.OriginalName)
	if err := fsys.UploadFile(file, key); err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	return key, nil
}

// Serve writes the poster stored under key to the response.
func (p *AppPosters) Serve(re *core.RequestEvent, key string) error {
	if !ValidPosterKey(key) {
		return re.NotFoundError("Poster not found", nil)
	}

	fsys, err := p.app.NewFilesystem()
	if err != nil {
		return fmt.Errorf("open filesystem: %w", err)
	}
	defer fsys.Close()

	if exists, _ := fsys.Exists(key); !exists {
		return re.NotFoundError("Poster not found", nil)
	}

	re.Response.Header().Set("Cache-Control", "public, max-age=86400")
	if err := fsys.Serve(re.Response, re.Request, key, filepath.Base(key)); err != nil {
		return re.Error(http.StatusInternalServerError, "Failed to serve poster", err)
	}
	return nil
}
