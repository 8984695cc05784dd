// Package model defines the domain types for the picbot CLI.
//
// All entities in this package are small value types passed between the
// configuration, image source, history, and bot layers. Nothing here
// talks to the network or the filesystem — persistence lives in the
// packages that own it (internal/history for the sent ledger, the
// sources for image data).
package model

import (
	"fmt"
	"strings"
)

// ImageSource selects where the bot loads its images from.
type ImageSource string

const (
	// SourceLocal reads images from a folder on the local filesystem.
	SourceLocal ImageSource = "local"

	// SourceGoogleDrive lists and downloads images from a Google Drive
	// folder using a service-account credential.
	SourceGoogleDrive ImageSource = "google_drive"
)

// String returns the string representation of ImageSource.
// This method satisfies the fmt.Stringer interface, enabling
// human-readable output in CLI commands and logging.
func (s ImageSource) String() string {
	return string(s)
}

// IsValid checks whether the ImageSource value is one of the
// predefined valid sources.
func (s ImageSource) IsValid() bool {
	switch s {
	case SourceLocal, SourceGoogleDrive:
		return true
	default:
		return false
	}
}

// ParseImageSource converts a string to an ImageSource.
// Returns an error if the string does not match any valid source.
func ParseImageSource(s string) (ImageSource, error) {
	source := ImageSource(strings.ToLower(strings.TrimSpace(s)))
	if !source.IsValid() {
		return "", fmt.Errorf("invalid image source: %q (valid: local, google_drive)", s)
	}
	return source, nil
}

// ImageExtensions is the set of file extensions (lowercase, with dot)
// recognized as sendable images. Files with any other extension are
// ignored by every source.
var ImageExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".gif":  {},
	".bmp":  {},
	".webp": {},
}

// IsImageFile reports whether the given file name has a recognized
// image extension. The check is case-insensitive.
func IsImageFile(name string) bool {
	idx := strings.LastIndex(name, ".")
	if idx < 0 {
		return false
	}
	_, ok := ImageExtensions[strings.ToLower(name[idx:])]
	return ok
}

// Image describes a single sendable image known to a source.
//
// For local images, Path is the absolute file path and ID is empty.
// For Google Drive images, ID is the Drive file id and Path is empty
// until the file has been fetched into the cache.
type Image struct {
	// ID is the Google Drive file identifier. Empty for local images.
	ID string `json:"id,omitempty"`

	// Name is the file name (base name, including extension).
	Name string `json:"name"`

	// Path is the local filesystem path. Set for local images, and for
	// Drive images only after a fetch.
	Path string `json:"path,omitempty"`
}

// Key returns the identifier under which this image is recorded in the
// sent-history ledger. Local images use their full path, Drive images
// their file name — matching the ledger format the bot has always
// written, so an existing history file keeps working.
func (i Image) Key() string {
	if i.Path != "" {
		return i.Path
	}
	return i.Name
}

// Stats summarizes send progress over the loaded image library.
type Stats struct {
	// Total is the number of images currently available from the source.
	Total int `json:"total"`

	// Sent is the number of entries in the sent ledger. May exceed
	// Total - Unsent when previously sent images were later removed
	// from the source.
	Sent int `json:"sent"`

	// Unsent is the number of available images not yet sent.
	Unsent int `json:"unsent"`
}

// Progress returns the sent percentage over the currently available
// images, or 0 when the library is empty.
func (s Stats) Progress() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Sent) / float64(s.Total) * 100
}

// ExitCode defines standard CLI exit codes. These codes allow scripts
// and CI systems to programmatically determine the outcome of a command.
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError ExitCode = 1

	// ExitConfigInvalid indicates the configuration failed validation.
	ExitConfigInvalid ExitCode = 2

	// ExitSourceUnavailable indicates the image source could not be
	// reached or contained no sendable images.
	ExitSourceUnavailable ExitCode = 3

	// ExitTelegramError indicates a Telegram API call failed.
	ExitTelegramError ExitCode = 4

	// ExitHistoryError indicates the sent-history ledger could not be
	// read or written.
	ExitHistoryError ExitCode = 5
)

// CLIError is a custom error type that carries an exit code.
// This allows the CLI layer to translate domain errors into
// appropriate process exit codes.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a new CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}
