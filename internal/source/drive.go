package source

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/shinji-kodama/picbot/internal/model"
)

// drivePageSize is the page size used when listing the Drive folder.
// Folders larger than one page are handled via nextPageToken.
const drivePageSize = 1000

// Drive serves images from a Google Drive folder. Authentication uses
// a service account key file; the folder must be shared with the
// service account's email address.
type Drive struct {
	svc      *drive.Service
	folderID string
	cacheDir string
}

// NewDrive authenticates against the Drive API with the given service
// account key and returns a read-only source for the folder.
func NewDrive(ctx context.Context, credentialsFile, folderID, cacheDir string) (*Drive, error) {
	if _, err := os.Stat(credentialsFile); err != nil {
		return nil, fmt.Errorf("credentials file not found: %s", credentialsFile)
	}

	svc, err := drive.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(drive.DriveReadonlyScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to authenticate with Google Drive: %w", err)
	}

	return &Drive{
		svc:      svc,
		folderID: folderID,
		cacheDir: cacheDir,
	}, nil
}

// Name identifies the backend in logs and reports.
func (d *Drive) Name() string {
	return "google_drive"
}

// Load lists every file in the folder and keeps those with a
// recognized image extension. Drive does not reliably set image MIME
// types for all uploads, so filtering is by name, as it always was.
func (d *Drive) Load(ctx context.Context) ([]model.Image, error) {
	query := fmt.Sprintf("'%s' in parents and trashed=false", d.folderID)

	var images []model.Image
	pageToken := ""
	for {
		call := d.svc.Files.List().
			Q(query).
			Spaces("drive").
			Fields("nextPageToken, files(id, name, mimeType)").
			PageSize(drivePageSize).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		list, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("failed to list Google Drive folder: %w", err)
		}

		for _, f := range list.Files {
			if !model.IsImageFile(f.Name) {
				continue
			}
			images = append(images, model.Image{
				ID:   f.Id,
				Name: f.Name,
			})
		}

		pageToken = list.NextPageToken
		if pageToken == "" {
			break
		}
	}

	return images, nil
}

// Fetch downloads the image into the cache directory and returns the
// local path. The cleanup removes the cached file; the cache exists
// only to bridge the download and the Telegram upload.
func (d *Drive) Fetch(ctx context.Context, img model.Image) (string, func() error, error) {
	if err := os.MkdirAll(d.cacheDir, 0o755); err != nil {
		return "", noCleanup, fmt.Errorf("failed to create cache directory: %w", err)
	}

	resp, err := d.svc.Files.Get(img.ID).Context(ctx).Download()
	if err != nil {
		return "", noCleanup, fmt.Errorf("failed to download %s: %w", img.Name, err)
	}
	defer resp.Body.Close()

	path := filepath.Join(d.cacheDir, img.Name)
	out, err := os.Create(path)
	if err != nil {
		return "", noCleanup, fmt.Errorf("failed to create cache file: %w", err)
	}

	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(path)
		return "", noCleanup, fmt.Errorf("failed to download %s: %w", img.Name, err)
	}
	if err := out.Close(); err != nil {
		os.Remove(path)
		return "", noCleanup, fmt.Errorf("failed to write cache file: %w", err)
	}

	cleanup := func() error { return os.Remove(path) }
	return path, cleanup, nil
}
