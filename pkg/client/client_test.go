package client_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/project-manager/engine/internal/api/apitest"
	"github.com/project-manager/engine/pkg/client"
	"github.com/project-manager/engine/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.Set(zap.NewNop())
	os.Exit(m.Run())
}

func newClient(t *testing.T, opts apitest.Options) *client.Client {
	t.Helper()
	env := apitest.New(t, opts)
	srv := httptest.NewServer(env.Handler)
	t.Cleanup(srv.Close)
	return client.New(srv.URL + apitest.BasePath + "/")
}

func TestProjectLifecycle(t *testing.T) {
	ctx := context.Background()
	c := newClient(t, apitest.Options{})

	p, err := c.CreateProject(ctx, client.ProjectInput{Name: "Portal", Tags: []string{"x", "y"}, DueDate: "2025-09-01"})
	require.NoError(t, err)
	require.Equal(t, "planning", p.Status)
	require.Equal(t, []string{"x", "y"}, p.Tags)
	require.Equal(t, "2025-09-01", *p.DueDate)

	got, err := c.GetProject(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, p.ID, got.ID)

	updated, err := c.UpdateProject(ctx, p.ID, client.ProjectInput{Name: "Portal v2", Status: "completed"})
	require.NoError(t, err)
	require.Equal(t, "Portal v2", updated.Name)
	require.Empty(t, updated.Tags)
	require.Nil(t, updated.DueDate)

	list, err := c.ListProjects(ctx, client.ProjectFilter{Status: "completed"})
	require.NoError(t, err)
	require.Len(t, list, 1)

	stats, err := c.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, client.Stats{Total: 1, Completed: 1}, *stats)

	require.NoError(t, c.DeleteProject(ctx, p.ID))
	err = c.DeleteProject(ctx, p.ID)
	require.True(t, client.IsNotFound(err))
}

func TestAPIErrorCarriesServerMessage(t *testing.T) {
	ctx := context.Background()
	c := newClient(t, apitest.Options{})

	_, err := c.GetProject(ctx, 12345)
	var ae *client.APIError
	require.True(t, errors.As(err, &ae))
	require.Equal(t, http.StatusNotFound, ae.StatusCode)
	require.Equal(t, "Project not found", ae.Message)
	require.Equal(t, "not_found", ae.Code)

	_, err = c.CreateProject(ctx, client.ProjectInput{})
	require.True(t, errors.As(err, &ae))
	require.Equal(t, http.StatusBadRequest, ae.StatusCode)
	require.Equal(t, "Missing required field: name", ae.Message)
}

func TestFilesAndSubProjects(t *testing.T) {
	ctx := context.Background()
	c := newClient(t, apitest.Options{})

	p, err := c.CreateProject(ctx, client.ProjectInput{Name: "Assets"})
	require.NoError(t, err)

	f, err := c.UploadFile(ctx, p.ID, "notes.txt", strings.NewReader("some notes"))
	require.NoError(t, err)
	require.Equal(t, "notes.txt", f.Name)
	require.EqualValues(t, 10, f.Size)

	files, err := c.ListFiles(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, files, 1)
	require.NoError(t, c.DeleteFile(ctx, f.ID))
	require.True(t, client.IsNotFound(c.DeleteFile(ctx, f.ID)))

	sp, err := c.AddSubProject(ctx, p.ID, client.SubProjectInput{Name: "copy", Assignee: "ana"})
	require.NoError(t, err)
	require.Equal(t, "todo", sp.Status)

	done := "completed"
	sp, err = c.UpdateSubProject(ctx, sp.ID, client.SubProjectPatch{Status: &done, ClearAssignee: true})
	require.NoError(t, err)
	require.Equal(t, "completed", sp.Status)
	require.Equal(t, "copy", sp.Name)
	require.Nil(t, sp.Assignee)

	subs, err := c.ListSubProjects(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, subs, 1)

	got, err := c.GetProject(ctx, p.ID)
	require.NoError(t, err)
	require.InDelta(t, 100.0, got.Progress, 0.001)

	require.NoError(t, c.DeleteSubProject(ctx, sp.ID))
	_, err = c.AddSubProject(ctx, 999, client.SubProjectInput{Name: "orphan"})
	require.True(t, client.IsNotFound(err))
}

func TestUploadFilesReportsEachResult(t *testing.T) {
	ctx := context.Background()
	c := newClient(t, apitest.Options{MaxUploadBytes: 64})

	p, err := c.CreateProject(ctx, client.ProjectInput{Name: "Batch"})
	require.NoError(t, err)

	results := c.UploadFiles(ctx, p.ID, []client.Upload{
		{Name: "a.txt", Body: strings.NewReader("first")},
		{Name: "big.bin", Body: bytes.NewReader(bytes.Repeat([]byte("z"), 256))},
		{Name: "c.txt", Body: strings.NewReader("third")},
	})
	require.Len(t, results, 3)
	require.NoError(t, results[0].Err)
	require.NoError(t, results[2].Err)
	require.NotEqual(t, results[0].File.ID, results[2].File.ID)

	var ae *client.APIError
	require.True(t, errors.As(results[1].Err, &ae))
	require.Equal(t, http.StatusRequestEntityTooLarge, ae.StatusCode)
	require.Nil(t, results[1].File)

	files, err := c.ListFiles(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, files, 2)
}

func TestErrorFallbacks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/html/stats.php":
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte("<html>bad gateway</html>"))
		case "/empty/stats.php":
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":""}`))
		}
	}))
	defer srv.Close()
	ctx := context.Background()

	var ae *client.APIError
	_, err := client.New(srv.URL + "/html").Stats(ctx)
	require.True(t, errors.As(err, &ae))
	require.Equal(t, http.StatusBadGateway, ae.StatusCode)
	require.Equal(t, "Network error", ae.Message)

	_, err = client.New(srv.URL + "/empty").Stats(ctx)
	require.True(t, errors.As(err, &ae))
	require.Equal(t, "An error occurred", ae.Message)
}

func TestTransportErrorIsNotAPIError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := client.New(url).ListProjects(context.Background(), client.ProjectFilter{})
	require.Error(t, err)
	var ae *client.APIError
	require.False(t, errors.As(err, &ae))
}

func TestWithToken(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	_, err := client.New(srv.URL, client.WithToken("abc"), client.WithHTTPClient(srv.Client())).ListProjects(context.Background(), client.ProjectFilter{})
	require.NoError(t, err)
	require.Equal(t, "Bearer abc", auth)
}
