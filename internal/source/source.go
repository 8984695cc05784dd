// Package source provides the image backends the bot can load its
// library from: a local folder or a Google Drive folder accessed with
// a service-account credential.
//
// Both backends implement the Source interface. Load enumerates the
// sendable images; Fetch makes a single image available as a local
// file for the Telegram upload. For the local backend Fetch is a
// no-op; for Drive it downloads into the configured cache directory
// and the returned cleanup removes the cached copy after the send.
package source

import (
	"context"

	"github.com/shinji-kodama/picbot/internal/model"
)

// Source enumerates and materializes images from a backend.
type Source interface {
	// Name identifies the backend in logs and reports.
	Name() string

	// Load lists every sendable image currently available. The result
	// replaces any previously loaded listing.
	Load(ctx context.Context) ([]model.Image, error)

	// Fetch makes the image available on the local filesystem and
	// returns its path together with a cleanup to call once the file
	// is no longer needed. Cleanup is never nil.
	Fetch(ctx context.Context, img model.Image) (string, func() error, error)
}

// noCleanup is the cleanup returned by backends that have nothing to
// release.
func noCleanup() error { return nil }
