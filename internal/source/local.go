package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shinji-kodama/picbot/internal/model"
)

// Local serves images straight from a folder on disk.
type Local struct {
	dir string
}

// NewLocal creates a local-folder source rooted at dir.
func NewLocal(dir string) *Local {
	return &Local{dir: dir}
}

// Name identifies the backend in logs and reports.
func (l *Local) Name() string {
	return "local"
}

// Load lists the regular files in the folder that carry a recognized
// image extension. Subdirectories are not descended into — the folder
// is flat by contract, matching how images are dropped in.
func (l *Local) Load(_ context.Context) ([]model.Image, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("images path not readable: %w", err)
	}

	var images []model.Image
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		name := entry.Name()
		if !model.IsImageFile(name) {
			continue
		}
		images = append(images, model.Image{
			Name: name,
			Path: filepath.Join(l.dir, name),
		})
	}

	return images, nil
}

// Fetch returns the image's own path. The file already lives on disk,
// so there is nothing to download and nothing to clean up.
func (l *Local) Fetch(_ context.Context, img model.Image) (string, func() error, error) {
	if _, err := os.Stat(img.Path); err != nil {
		return "", noCleanup, fmt.Errorf("image file missing: %w", err)
	}
	return img.Path, noCleanup, nil
}
