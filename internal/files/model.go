package files

import (
	"errors"
	"strings"
	"time"
)

var (
	// ErrMissingFile is returned when the upload carries no file part
	ErrMissingFile = errors.New("a file is required")

	// ErrBadContentType is returned for a type outside the allowlist
	ErrBadContentType = errors.New("unsupported file type")

	// ErrFileNotFound is returned when a file row is not found
	ErrFileNotFound = errors.New("file not found")

	// ErrStorageDisabled is returned when no bucket is configured
	ErrStorageDisabled = errors.New("file storage is not configured")
)

// PatientFile is the metadata row for one stored object.
type PatientFile struct {
	ID          string    `json:"id"`
	PatientID   string    `json:"patient_id"`
	DoctorID    string    `json:"doctor_id"`
	StoragePath string    `json:"storage_path"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	Category    string    `json:"category,omitempty"`
	Description string    `json:"description,omitempty"`
	SizeBytes   int64     `json:"size_bytes"`
	CreatedAt   time.Time `json:"created_at"`
}

// AllowedPatientFileType reports whether the content type may be
// attached to a patient record: any image, or a PDF.
func AllowedPatientFileType(contentType string) bool {
	return strings.HasPrefix(contentType, "image/") || contentType == "application/pdf"
}

// AllowedPhotoType reports whether the content type may be used as a
// profile photo.
func AllowedPhotoType(contentType string) bool {
	return strings.HasPrefix(contentType, "image/")
}
