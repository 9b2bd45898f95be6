// Package image validates and encodes uploaded image files for storage.
// Images are persisted as Base64 text inside the owning row, so the codec
// is a thin layer over encoding/base64 plus a content-type and size check.
package image

import (
	"encoding/base64"
	"errors"
)

// MaxBytes is the largest accepted image payload.
const MaxBytes = 5 * 1024 * 1024

var (
	// ErrInvalidFormat is returned for uploads that are missing, empty, or
	// not declared as JPEG/PNG.
	ErrInvalidFormat = errors.New("invalid image file format, only JPEG, JPG and PNG are allowed")

	// ErrTooLarge is returned for uploads exceeding MaxBytes.
	ErrTooLarge = errors.New("file size exceeds maximum limit of 5MB")
)

var allowedContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/jpg":  true,
}

// Upload is an image file read fully into memory from a multipart request.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Empty reports whether the upload carries no payload.
func (u Upload) Empty() bool {
	return len(u.Data) == 0
}

// Encode returns the Base64 representation of the upload, or the empty
// string for an empty upload.
func Encode(u Upload) string {
	if u.Empty() {
		return ""
	}
	return base64.StdEncoding.EncodeToString(u.Data)
}

// Decode converts stored Base64 text back to raw bytes. An empty input
// yields a nil slice and no error.
func Decode(encoded string) ([]byte, error) {
	if encoded == "" {
		return nil, nil
	}
	return base64.StdEncoding.DecodeString(encoded)
}

// IsValid reports whether the upload is present and declares an accepted
// image content type. Validation is limited to the declared MIME type;
// the bytes themselves are not inspected.
func IsValid(u Upload) bool {
	if u.Empty() {
		return false
	}
	return allowedContentTypes[u.ContentType]
}

// ProcessForStorage validates the upload and returns its Base64 encoding.
func ProcessForStorage(u Upload) (string, error) {
	if !IsValid(u) {
		return "", ErrInvalidFormat
	}
	if int64(len(u.Data)) > MaxBytes {
		return "", ErrTooLarge
	}
	return Encode(u), nil
}
