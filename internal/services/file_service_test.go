package services

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/project-manager/engine/internal/repository"
	"github.com/project-manager/engine/internal/storage"
	"github.com/project-manager/engine/internal/testutil"
	appErr "github.com/project-manager/engine/pkg/errors"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")

type fileFixture struct {
	projects ProjectService
	files    FileService
	dir      string
}

func newFileFixture(t *testing.T) fileFixture {
	t.Helper()
	db := testutil.NewDB(t)
	dir := t.TempDir()
	store, err := storage.NewLocalStore(dir, "/uploads")
	require.NoError(t, err)
	projects := repository.NewProjectRepository(db)
	return fileFixture{
		projects: NewProjectService(projects, nil),
		files:    NewFileService(projects, repository.NewFileRepository(db), store),
		dir:      dir,
	}
}

func TestUploadFile_SniffsTypeAndStoresBlob(t *testing.T) {
	fx := newFileFixture(t)
	p, err := fx.projects.CreateProject(bg, &ProjectInput{Name: "assets"})
	require.NoError(t, err)

	f, err := fx.files.UploadFile(bg, Upload{
		ProjectID:   p.ID,
		Filename:    "../logo.PNG",
		ContentType: "application/octet-stream",
		Body:        bytes.NewReader(pngHeader),
	})
	require.NoError(t, err)
	require.Equal(t, "logo.PNG", f.Name)
	require.Equal(t, "image/png", f.Type)
	require.EqualValues(t, len(pngHeader), f.Size)
	require.True(t, strings.HasPrefix(f.URL, "/uploads/"))
	require.True(t, strings.HasSuffix(f.StorageKey, ".png"))

	stored, err := os.ReadFile(filepath.Join(fx.dir, f.StorageKey))
	require.NoError(t, err)
	require.Equal(t, pngHeader, stored)

	detailed, err := fx.projects.GetProject(bg, p.ID)
	require.NoError(t, err)
	require.Len(t, detailed.Files, 1)
	require.Equal(t, f.ID, detailed.Files[0].ID)
}

func TestUploadFile_KeepsDeclaredType(t *testing.T) {
	fx := newFileFixture(t)
	p, err := fx.projects.CreateProject(bg, &ProjectInput{Name: "docs"})
	require.NoError(t, err)

	f, err := fx.files.UploadFile(bg, Upload{ProjectID: p.ID, Filename: "notes.md", ContentType: "text/markdown", Body: strings.NewReader("# hi")})
	require.NoError(t, err)
	require.Equal(t, "text/markdown", f.Type)

	empty, err := fx.files.UploadFile(bg, Upload{ProjectID: p.ID, Filename: "empty.txt", Body: strings.NewReader("")})
	require.NoError(t, err)
	require.Zero(t, empty.Size)
	require.NotEmpty(t, empty.Type)
}

func TestUploadFile_Errors(t *testing.T) {
	fx := newFileFixture(t)

	_, err := fx.files.UploadFile(bg, Upload{ProjectID: 0, Filename: "a", Body: strings.NewReader("a")})
	require.True(t, appErr.IsCode(err, appErr.CodeInvalid))

	_, err = fx.files.UploadFile(bg, Upload{ProjectID: 99, Filename: "a", Body: strings.NewReader("a")})
	require.True(t, appErr.IsCode(err, appErr.CodeNotFound))

	entries, err := os.ReadDir(fx.dir)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestDeleteFile_RemovesRowAndBlob(t *testing.T) {
	fx := newFileFixture(t)
	p, err := fx.projects.CreateProject(bg, &ProjectInput{Name: "cleanup"})
	require.NoError(t, err)
	f, err := fx.files.UploadFile(bg, Upload{ProjectID: p.ID, Filename: "a.txt", Body: strings.NewReader("hello")})
	require.NoError(t, err)

	require.NoError(t, fx.files.DeleteFile(bg, f.ID))
	_, err = os.Stat(filepath.Join(fx.dir, f.StorageKey))
	require.True(t, os.IsNotExist(err))

	err = fx.files.DeleteFile(bg, f.ID)
	require.True(t, appErr.IsCode(err, appErr.CodeNotFound))
	require.Equal(t, "File not found", appErr.As(err).Message)

	list, err := fx.files.ListFiles(bg, p.ID)
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestCleanFilename(t *testing.T) {
	require.Equal(t, "report.pdf", cleanFilename(`C:\Users\me\report.pdf`))
	require.Equal(t, "upload", cleanFilename("   "))
	require.Equal(t, "passwd", cleanFilename("../../etc/passwd"))
}
