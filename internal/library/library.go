// Package library holds the set of images loaded from the configured
// source and answers the one question the bot keeps asking: which
// image can be sent next?
//
// Selection is uniformly random over the images whose ledger key is
// not in the sent history. When every image has been sent the library
// reports exhaustion instead of repeating — only a history reset makes
// images eligible again.
package library

import (
	"math/rand/v2"
	"sync"

	"github.com/shinji-kodama/picbot/internal/history"
	"github.com/shinji-kodama/picbot/internal/model"
)

// Library pairs the loaded image listing with the sent-history ledger.
type Library struct {
	mu      sync.Mutex
	images  []model.Image
	history *history.Manager
}

// New creates a library backed by the given history ledger. Images are
// supplied separately via SetImages once the source has been loaded.
func New(h *history.Manager) *Library {
	return &Library{history: h}
}

// SetImages replaces the loaded listing. Called after every source
// Load; the history ledger is untouched, so images that reappear under
// a previously sent key stay ineligible.
func (l *Library) SetImages(images []model.Image) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.images = images
}

// Len returns the number of loaded images.
func (l *Library) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.images)
}

// Unsent returns the images not yet recorded in the ledger, in listing
// order.
func (l *Library) Unsent() []model.Image {
	l.mu.Lock()
	images := make([]model.Image, len(l.images))
	copy(images, l.images)
	l.mu.Unlock()

	var unsent []model.Image
	for _, img := range images {
		if !l.history.IsSent(img.Key()) {
			unsent = append(unsent, img)
		}
	}
	return unsent
}

// Next picks a uniformly random unsent image. The second return value
// is false when the library is exhausted (or empty).
//
// Next does NOT mark the image as sent — recording happens only after
// the Telegram call succeeded, so a failed send leaves the image
// eligible for the next attempt.
func (l *Library) Next() (model.Image, bool) {
	unsent := l.Unsent()
	if len(unsent) == 0 {
		return model.Image{}, false
	}
	return unsent[rand.IntN(len(unsent))], true
}

// MarkSent records a successful send in the ledger.
func (l *Library) MarkSent(img model.Image) error {
	return l.history.Add(img.Key())
}

// ResetHistory clears the ledger and returns the number of entries
// removed; every loaded image becomes eligible again.
func (l *Library) ResetHistory() (int, error) {
	return l.history.Reset()
}

// Stats summarizes progress over the loaded listing.
func (l *Library) Stats() model.Stats {
	return model.Stats{
		Total:  l.Len(),
		Sent:   l.history.Len(),
		Unsent: len(l.Unsent()),
	}
}

// HistoryPath returns the ledger file location for reports.
func (l *Library) HistoryPath() string {
	return l.history.Path()
}
