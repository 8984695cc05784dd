package source

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/shinji-kodama/picbot/internal/model"
)

// DefaultSyncInterval is how often the sync loop re-scans the local
// folder when no interval is given.
const DefaultSyncInterval = 5 * time.Minute

// Syncer uploads images from a local folder into a Google Drive folder,
// skipping files that already exist remotely (matched by name). It is
// the companion to the Drive source: drop files locally, sync, and the
// bot picks them up from Drive.
type Syncer struct {
	svc      *drive.Service
	folderID string
	localDir string
	logger   *log.Logger
}

// NewSyncer authenticates with full Drive scope (uploads need write
// access) and returns a syncer between localDir and the Drive folder.
func NewSyncer(ctx context.Context, credentialsFile, folderID, localDir string, logger *log.Logger) (*Syncer, error) {
	if _, err := os.Stat(credentialsFile); err != nil {
		return nil, fmt.Errorf("credentials file not found: %s", credentialsFile)
	}

	svc, err := drive.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(drive.DriveScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to authenticate with Google Drive: %w", err)
	}

	return &Syncer{
		svc:      svc,
		folderID: folderID,
		localDir: localDir,
		logger:   logger,
	}, nil
}

// SyncOnce uploads every local image missing from the Drive folder.
// It returns the number uploaded and the number it attempted; a single
// failed upload does not abort the rest.
func (s *Syncer) SyncOnce(ctx context.Context) (uploaded, attempted int, err error) {
	local, err := NewLocal(s.localDir).Load(ctx)
	if err != nil {
		return 0, 0, err
	}

	remote, err := NewDriveWithService(s.svc, s.folderID).Load(ctx)
	if err != nil {
		return 0, 0, err
	}

	remoteNames := make(map[string]struct{}, len(remote))
	for _, img := range remote {
		remoteNames[img.Name] = struct{}{}
	}

	var missing []model.Image
	for _, img := range local {
		if _, ok := remoteNames[img.Name]; !ok {
			missing = append(missing, img)
		}
	}

	if len(missing) == 0 {
		s.logger.Info("no new images to upload")
		return 0, 0, nil
	}
	s.logger.Info("found new images to upload", "count", len(missing))

	for _, img := range missing {
		if err := s.upload(ctx, img); err != nil {
			s.logger.Error("upload failed", "name", img.Name, "err", err)
			continue
		}
		uploaded++
	}

	s.logger.Info("sync finished", "uploaded", uploaded, "of", len(missing))
	return uploaded, len(missing), nil
}

// upload creates one file in the Drive folder from its local copy.
func (s *Syncer) upload(ctx context.Context, img model.Image) error {
	f, err := os.Open(img.Path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", img.Path, err)
	}
	defer f.Close()

	meta := &drive.File{
		Name:    img.Name,
		Parents: []string{s.folderID},
	}

	created, err := s.svc.Files.Create(meta).
		Media(f).
		Fields("id").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", img.Name, err)
	}

	s.logger.Info("uploaded", "name", img.Name, "id", created.Id)
	return nil
}

// Run syncs repeatedly until the context is cancelled. Errors from a
// single pass are logged and the loop continues — a transient API
// failure must not kill a long-running sync.
func (s *Syncer) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultSyncInterval
	}
	s.logger.Info("starting sync loop", "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, _, err := s.SyncOnce(ctx); err != nil {
			s.logger.Error("sync pass failed", "err", err)
		}

		select {
		case <-ctx.Done():
			s.logger.Info("sync stopped")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// NewDriveWithService builds a Drive source on an already-authenticated
// service. Used by the syncer to reuse its connection for the remote
// listing; no cache directory is involved because the syncer never
// downloads.
func NewDriveWithService(svc *drive.Service, folderID string) *Drive {
	return &Drive{svc: svc, folderID: folderID}
}
