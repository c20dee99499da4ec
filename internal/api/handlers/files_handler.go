package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/project-manager/engine/internal/api/middleware"
	"github.com/project-manager/engine/internal/api/types"
	"github.com/project-manager/engine/internal/services"
	appErr "github.com/project-manager/engine/pkg/errors"
)

const (
	// multipartOverhead allows for boundaries and the project_id field on top of the file itself.
	multipartOverhead = 1 << 20
	multipartMemory   = 8 << 20
)

type FilesHandler struct {
	svc      services.FileService
	maxBytes int64
}

func NewFilesHandler(svc services.FileService, maxBytes int64) *FilesHandler {
	return &FilesHandler{svc: svc, maxBytes: maxBytes}
}

// Upload stores the multipart "file" part against the "project_id" field.
func (h *FilesHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+multipartOverhead)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) || errors.Is(err, multipart.ErrMessageTooLarge) {
			writeError(w, r, h.tooLarge(err))
			return
		}
		writeError(w, r, appErr.Wrap(err, appErr.CodeInvalid, "Invalid multipart form"))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	projectID := services.ParseID(r.FormValue("project_id"))
	if projectID == 0 {
		writeError(w, r, appErr.Invalid("Project ID is required"))
		return
	}
	file, fh, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, appErr.Wrap(err, appErr.CodeInvalid, "No file uploaded"))
		return
	}
	defer file.Close()
	if fh.Size > h.maxBytes {
		writeError(w, r, h.tooLarge(nil))
		return
	}

	f, err := h.svc.UploadFile(r.Context(), services.Upload{
		ProjectID:   projectID,
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Body:        file,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	middleware.RecordUpload(f.Size)
	writeJSON(w, http.StatusCreated, f)
}

func (h *FilesHandler) tooLarge(err error) error {
	return appErr.Wrap(err, appErr.CodeTooLarge, "File exceeds the maximum upload size").WithMeta("max_bytes", h.maxBytes)
}

// Get returns one file for ?id or the files of ?project_id.
func (h *FilesHandler) Get(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if id := services.ParseID(q.Get("id")); id != 0 {
		f, err := h.svc.GetFile(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, f)
		return
	}
	projectID := services.ParseID(q.Get("project_id"))
	if projectID == 0 {
		writeError(w, r, appErr.Invalid("File ID or project ID is required"))
		return
	}
	files, err := h.svc.ListFiles(r.Context(), projectID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, files)
}

func (h *FilesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := services.ParseID(r.URL.Query().Get("id"))
	if id == 0 {
		writeError(w, r, appErr.Invalid("File ID is required"))
		return
	}
	if err := h.svc.DeleteFile(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, types.MessageResponse{Message: "File deleted successfully"})
}
