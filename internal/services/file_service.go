package services

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/project-manager/engine/internal/models"
	"github.com/project-manager/engine/internal/repository"
	"github.com/project-manager/engine/internal/storage"
	appErr "github.com/project-manager/engine/pkg/errors"
	"github.com/project-manager/engine/pkg/logger"
	"go.uber.org/zap"
)

// sniffLen matches mimetype's default read limit.
const sniffLen = 3072

// Upload describes one incoming attachment.
type Upload struct {
	ProjectID uint
	Filename  string
	// ContentType is the type declared by the client, if any.
	ContentType string
	Body        io.Reader
}

type FileService interface {
	UploadFile(ctx context.Context, up Upload) (*models.ProjectFile, error)
	GetFile(ctx context.Context, id uint) (*models.ProjectFile, error)
	ListFiles(ctx context.Context, projectID uint) ([]models.ProjectFile, error)
	DeleteFile(ctx context.Context, id uint) error
}

type fileService struct {
	projects repository.ProjectRepository
	files    repository.FileRepository
	blobs    storage.BlobStore
}

func NewFileService(projects repository.ProjectRepository, files repository.FileRepository, blobs storage.BlobStore) FileService {
	return &fileService{projects: projects, files: files, blobs: blobs}
}

var _ FileService = (*fileService)(nil)

func (s *fileService) UploadFile(ctx context.Context, up Upload) (*models.ProjectFile, error) {
	if up.ProjectID == 0 {
		return nil, appErr.Invalid("Project ID is required")
	}
	if up.Body == nil {
		return nil, appErr.Invalid("No file uploaded")
	}
	ok, err := s.projects.Exists(ctx, up.ProjectID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, appErr.NotFound("Project not found")
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(up.Body, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, appErr.Wrap(err, appErr.CodeInvalid, "read upload failed")
	}
	head = head[:n]

	name := cleanFilename(up.Filename)
	key := uuid.NewString() + strings.ToLower(filepath.Ext(name))
	size, err := s.blobs.Put(ctx, key, io.MultiReader(bytes.NewReader(head), up.Body))
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "store upload failed")
	}

	f := &models.ProjectFile{
		ProjectID:  up.ProjectID,
		Name:       name,
		Size:       size,
		Type:       detectType(up.ContentType, head),
		URL:        s.blobs.URL(key),
		StorageKey: key,
	}
	if err := s.files.Create(ctx, f); err != nil {
		_ = s.blobs.Delete(ctx, key)
		return nil, err
	}
	logger.FromContext(ctx).Info("file uploaded",
		zap.Uint("file_id", f.ID),
		zap.Uint("project_id", f.ProjectID),
		zap.Int64("size", f.Size),
		zap.String("type", f.Type),
	)
	return f, nil
}

func (s *fileService) GetFile(ctx context.Context, id uint) (*models.ProjectFile, error) {
	if id == 0 {
		return nil, appErr.Invalid("File ID is required")
	}
	var f models.ProjectFile
	if err := s.files.GetByID(ctx, id, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

func (s *fileService) ListFiles(ctx context.Context, projectID uint) ([]models.ProjectFile, error) {
	if projectID == 0 {
		return nil, appErr.Invalid("Project ID is required")
	}
	return s.files.ListByProject(ctx, projectID)
}

// DeleteFile removes the row, then the blob. A blob that cannot be removed is only logged.
func (s *fileService) DeleteFile(ctx context.Context, id uint) error {
	f, err := s.GetFile(ctx, id)
	if err != nil {
		return err
	}
	if err := s.files.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.blobs.Delete(ctx, f.StorageKey); err != nil {
		logger.FromContext(ctx).Warn("remove blob failed", zap.Uint("file_id", id), zap.String("key", f.StorageKey), zap.Error(err))
	}
	logger.FromContext(ctx).Info("file deleted", zap.Uint("file_id", id), zap.Uint("project_id", f.ProjectID))
	return nil
}

func detectType(declared string, head []byte) string {
	declared = strings.TrimSpace(declared)
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	return mimetype.Detect(head).String()
}

func cleanFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(strings.TrimSpace(name), `\`, "/"))
	if name == "." || name == "/" || name == "" {
		return "upload"
	}
	return name
}
