package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/wolfiez/wallpaper/internal/image"
	"github.com/wolfiez/wallpaper/internal/services"
	"github.com/wolfiez/wallpaper/internal/store"
)

type contextKey string

const contextSubjectKey contextKey = "sub"

const (
	maxMultipartMemory = 8 << 20
	formFieldImage     = "image"
)

func userIDFromContext(ctx context.Context) (int, error) {
	value := ctx.Value(contextSubjectKey)
	switch subject := value.(type) {
	case int:
		if subject < 1 {
			return 0, errors.New("invalid subject")
		}
		return subject, nil
	case int64:
		if subject < 1 {
			return 0, errors.New("invalid subject")
		}
		return int(subject), nil
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(subject))
		if err != nil || parsed < 1 {
			return 0, errors.New("invalid subject")
		}
		return parsed, nil
	default:
		return 0, errors.New("missing subject")
	}
}

// ErrorResponse is the uniform JSON error envelope.
type ErrorResponse struct {
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
	Status    int       `json:"status"`
	Errors    []string  `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{
		Timestamp: time.Now(),
		Message:   message,
		Status:    status,
	})
}

func writeValidationError(w http.ResponseWriter, fieldErrors []string) {
	writeJSON(w, http.StatusBadRequest, ErrorResponse{
		Timestamp: time.Now(),
		Message:   "validation failed",
		Status:    http.StatusBadRequest,
		Errors:    fieldErrors,
	})
}

// writeServiceError maps a service-layer error to the HTTP status taxonomy:
// not-found 404, duplicate/invalid-argument 400, authentication 401,
// anything unclassified 500. notFoundMessage replaces the bare sentinel text
// for entity lookups.
func writeServiceError(w http.ResponseWriter, err error, notFoundMessage string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, notFoundMessage)
	case errors.Is(err, services.ErrUnknownUser),
		errors.Is(err, services.ErrEmailTaken),
		errors.Is(err, services.ErrNotOwner),
		errors.Is(err, image.ErrInvalidFormat),
		errors.Is(err, image.ErrTooLarge):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrAccountDisabled),
		errors.Is(err, services.ErrInvalidSession):
		writeError(w, http.StatusUnauthorized, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// requiredImageUpload extracts the single file under the "image" field of a
// multipart form, reading it fully into memory.
func requiredImageUpload(r *http.Request) (image.Upload, error) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		return image.Upload{}, errors.New("invalid multipart form")
	}
	return imageUploadFromForm(r.MultipartForm, formFieldImage, true)
}

func imageUploadFromForm(form *multipart.Form, field string, required bool) (image.Upload, error) {
	if form == nil {
		if required {
			return image.Upload{}, errors.New("missing form data")
		}
		return image.Upload{}, nil
	}

	files := form.File[field]
	if len(files) == 0 {
		if required {
			return image.Upload{}, errors.New("image file is required")
		}
		return image.Upload{}, nil
	}
	if len(files) > 1 {
		return image.Upload{}, errors.New("only one image file is allowed")
	}

	fileHeader := files[0]
	file, err := fileHeader.Open()
	if err != nil {
		return image.Upload{}, fmt.Errorf("failed to read image file: %w", err)
	}

	// One byte above the codec limit, so an upload exactly one byte over
	// still reaches the codec and gets its size error.
	data, err := readFileLimited(file, image.MaxBytes+1)
	_ = file.Close()
	if err != nil {
		return image.Upload{}, err
	}

	return image.Upload{
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func readFileLimited(reader io.Reader, limit int64) ([]byte, error) {
	limited := io.LimitReader(reader, limit+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, errors.New("failed to read upload")
	}
	if int64(len(data)) > limit {
		return nil, errors.New("uploaded file too large")
	}
	return data, nil
}
