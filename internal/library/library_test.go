package library

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinji-kodama/picbot/internal/history"
	"github.com/shinji-kodama/picbot/internal/model"
)

// newTestLibrary builds a library with a fresh ledger in a temp dir and
// the given image names loaded as local images.
func newTestLibrary(t *testing.T, names ...string) *Library {
	t.Helper()
	h, err := history.Load(filepath.Join(t.TempDir(), "sent_history.json"))
	require.NoError(t, err)

	lib := New(h)
	images := make([]model.Image, 0, len(names))
	for _, n := range names {
		images = append(images, model.Image{Name: n, Path: "/img/" + n})
	}
	lib.SetImages(images)
	return lib
}

// TestNext_NeverRepeats verifies the core invariant: once marked sent,
// an image is never picked again until the history is reset.
func TestNext_NeverRepeats(t *testing.T) {
	lib := newTestLibrary(t, "a.jpg", "b.jpg", "c.jpg")

	seen := make(map[string]bool)
	for i := 0; i < 3; i++ {
		img, ok := lib.Next()
		require.True(t, ok, "pick %d should succeed", i)
		assert.False(t, seen[img.Key()], "image %s picked twice", img.Name)
		seen[img.Key()] = true
		require.NoError(t, lib.MarkSent(img))
	}

	_, ok := lib.Next()
	assert.False(t, ok, "library should be exhausted after all images were sent")
}

// TestNext_Empty verifies exhaustion on an empty library.
func TestNext_Empty(t *testing.T) {
	lib := newTestLibrary(t)
	_, ok := lib.Next()
	assert.False(t, ok)
}

// TestNext_FailedSendStaysEligible verifies that a pick without a
// MarkSent (a failed Telegram call) leaves the image eligible.
func TestNext_FailedSendStaysEligible(t *testing.T) {
	lib := newTestLibrary(t, "only.jpg")

	img, ok := lib.Next()
	require.True(t, ok)

	// No MarkSent — simulating a failed send.
	again, ok := lib.Next()
	require.True(t, ok)
	assert.Equal(t, img.Key(), again.Key())
}

// TestResetHistory verifies that a reset makes everything eligible
// again and reports the removed count.
func TestResetHistory(t *testing.T) {
	lib := newTestLibrary(t, "a.jpg", "b.jpg")

	img, ok := lib.Next()
	require.True(t, ok)
	require.NoError(t, lib.MarkSent(img))

	removed, err := lib.ResetHistory()
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.Len(t, lib.Unsent(), 2)
}

// TestStats verifies the totals reported to /stats.
func TestStats(t *testing.T) {
	lib := newTestLibrary(t, "a.jpg", "b.jpg", "c.jpg", "d.jpg")

	img, ok := lib.Next()
	require.True(t, ok)
	require.NoError(t, lib.MarkSent(img))

	stats := lib.Stats()
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 1, stats.Sent)
	assert.Equal(t, 3, stats.Unsent)
	assert.InDelta(t, 25.0, stats.Progress(), 0.001)
}

// TestSetImages_KeepsLedger verifies that reloading the listing does
// not resurrect already-sent images.
func TestSetImages_KeepsLedger(t *testing.T) {
	lib := newTestLibrary(t, "a.jpg")

	img, ok := lib.Next()
	require.True(t, ok)
	require.NoError(t, lib.MarkSent(img))

	// Reload the same listing, as a source refresh would.
	lib.SetImages([]model.Image{{Name: "a.jpg", Path: "/img/a.jpg"}})
	_, ok = lib.Next()
	assert.False(t, ok, "reloaded image with a sent key must stay ineligible")
}
