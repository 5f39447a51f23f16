package files

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/clinicdesk/clinicdesk/internal/session"
	"github.com/clinicdesk/clinicdesk/pkg/logging"
)

// maxUploadBytes caps a single upload at 10 MB.
const maxUploadBytes = 10 << 20

// PhotoSetter persists a doctor's profile photo path.
type PhotoSetter interface {
	SetPhotoPath(ctx context.Context, doctorID, path string) error
}

// Handler handles HTTP requests for patient files and profile photos.
type Handler struct {
	repo    Repository
	files   *Store
	photos  *Store
	doctors PhotoSetter
	logger  *logging.Logger
}

// NewHandler creates a new files handler. fileStore holds patient
// documents, photoStore profile photos.
func NewHandler(repo Repository, fileStore, photoStore *Store, doctors PhotoSetter, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, files: fileStore, photos: photoStore, doctors: doctors, logger: logger}
}

// Upload handles POST /patients/{patientID}/files multipart requests.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	s, ok := session.FromContext(r.Context())
	if !ok || s.DoctorID == "" {
		http.Error(w, "missing doctor session", http.StatusUnauthorized)
		return
	}

	patientID := chi.URLParam(r, "patientID")
	if patientID == "" {
		http.Error(w, "missing patient id", http.StatusBadRequest)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "file too large or malformed upload", http.StatusBadRequest)
		return
	}

	part, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, ErrMissingFile.Error(), http.StatusBadRequest)
		return
	}
	defer part.Close()

	contentType := header.Header.Get("Content-Type")
	if !AllowedPatientFileType(contentType) {
		http.Error(w, ErrBadContentType.Error(), http.StatusUnsupportedMediaType)
		return
	}

	data, err := io.ReadAll(part)
	if err != nil {
		http.Error(w, "failed to read upload", http.StatusBadRequest)
		return
	}

	f := &PatientFile{
		ID:          uuid.NewString(),
		PatientID:   patientID,
		DoctorID:    s.DoctorID,
		Filename:    filepath.Base(header.Filename),
		ContentType: contentType,
		Category:    r.FormValue("category"),
		Description: r.FormValue("description"),
		SizeBytes:   int64(len(data)),
	}
	f.StoragePath = fmt.Sprintf("patients/%s/%s-%s", patientID, f.ID, f.Filename)

	if err := h.files.Put(r.Context(), f.StoragePath, contentType, data); err != nil {
		h.storeError(w, err, "failed to store file")
		return
	}
	if err := h.repo.Create(r.Context(), f); err != nil {
		h.logger.Error("failed to record file metadata", "error", err, "s3_key", f.StoragePath)
		http.Error(w, "failed to record file", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(f)
}

// List handles GET /patients/{patientID}/files requests.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	patientID := chi.URLParam(r, "patientID")
	if patientID == "" {
		http.Error(w, "missing patient id", http.StatusBadRequest)
		return
	}

	list, err := h.repo.ListByPatient(r.Context(), patientID)
	if err != nil {
		h.logger.Error("failed to list files", "error", err, "patient_id", patientID)
		http.Error(w, "failed to list files", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"files": list,
		"count": len(list),
	})
}

// Download handles GET /files/{fileID} requests, streaming the object.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "fileID")
	if id == "" {
		http.Error(w, "missing file id", http.StatusBadRequest)
		return
	}

	f, err := h.repo.GetByID(r.Context(), id)
	if errors.Is(err, ErrFileNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("failed to load file", "error", err, "file_id", id)
		http.Error(w, "failed to load file", http.StatusInternalServerError)
		return
	}

	body, contentType, err := h.files.Get(r.Context(), f.StoragePath)
	if err != nil {
		h.storeError(w, err, "failed to fetch file")
		return
	}
	defer body.Close()

	if contentType == "" {
		contentType = f.ContentType
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+f.Filename+`"`)
	if f.SizeBytes > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(f.SizeBytes, 10))
	}
	if _, err := io.Copy(w, body); err != nil {
		h.logger.Warn("file stream interrupted", "error", err, "file_id", id)
	}
}

// Delete handles DELETE /files/{fileID} requests.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	s, ok := session.FromContext(r.Context())
	if !ok || s.DoctorID == "" {
		http.Error(w, "missing doctor session", http.StatusUnauthorized)
		return
	}

	id := chi.URLParam(r, "fileID")
	f, err := h.repo.GetByID(r.Context(), id)
	if errors.Is(err, ErrFileNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("failed to load file", "error", err, "file_id", id)
		http.Error(w, "failed to load file", http.StatusInternalServerError)
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		h.logger.Error("failed to delete file row", "error", err, "file_id", id)
		http.Error(w, "failed to delete file", http.StatusInternalServerError)
		return
	}
	// Metadata row is gone; an orphaned object is tolerable.
	if err := h.files.Delete(r.Context(), f.StoragePath); err != nil {
		h.logger.Warn("failed to delete stored object", "error", err, "s3_key", f.StoragePath)
	}

	w.WriteHeader(http.StatusNoContent)
}

// UploadPhoto handles POST /me/photo requests for the authenticated
// doctor's profile photo.
func (h *Handler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	s, ok := session.FromContext(r.Context())
	if !ok || s.DoctorID == "" {
		http.Error(w, "missing doctor session", http.StatusUnauthorized)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "file too large or malformed upload", http.StatusBadRequest)
		return
	}

	part, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, ErrMissingFile.Error(), http.StatusBadRequest)
		return
	}
	defer part.Close()

	contentType := header.Header.Get("Content-Type")
	if !AllowedPhotoType(contentType) {
		http.Error(w, ErrBadContentType.Error(), http.StatusUnsupportedMediaType)
		return
	}

	data, err := io.ReadAll(part)
	if err != nil {
		http.Error(w, "failed to read upload", http.StatusBadRequest)
		return
	}

	key := fmt.Sprintf("photos/%s%s", s.DoctorID, filepath.Ext(header.Filename))
	if err := h.photos.Put(r.Context(), key, contentType, data); err != nil {
		h.storeError(w, err, "failed to store photo")
		return
	}
	if err := h.doctors.SetPhotoPath(r.Context(), s.DoctorID, key); err != nil {
		h.logger.Error("failed to save photo path", "error", err, "doctor_id", s.DoctorID)
		http.Error(w, "failed to save photo", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"photo_path": key})
}

func (h *Handler) storeError(w http.ResponseWriter, err error, fallback string) {
	if errors.Is(err, ErrStorageDisabled) {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	h.logger.Error(fallback, "error", err)
	http.Error(w, fallback, http.StatusInternalServerError)
}
