// Package client is a typed HTTP client for the project engine API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	defaultTimeout = 30 * time.Second
	maxErrorBody   = 1 << 20
)

// APIError is returned for any non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is an APIError with status 404.
func IsNotFound(err error) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.StatusCode == http.StatusNotFound
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

type Option func(*Client)

// WithHTTPClient replaces the default client, which has a 30s timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithToken sends token as a bearer credential on every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// New returns a client for baseURL, e.g. "http://localhost:8080/api".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func idQuery(key string, id uint) url.Values {
	return url.Values{key: {strconv.FormatUint(uint64(id), 10)}}
}

func (c *Client) ListProjects(ctx context.Context, f ProjectFilter) ([]Project, error) {
	q := url.Values{}
	for k, v := range map[string]string{"status": f.Status, "type": f.Type, "priority": f.Priority, "q": f.Query} {
		if v != "" {
			q.Set(k, v)
		}
	}
	var out []Project
	if err := c.doJSON(ctx, http.MethodGet, "/projects.php", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetProject(ctx context.Context, id uint) (*Project, error) {
	var p Project
	if err := c.doJSON(ctx, http.MethodGet, "/projects.php", idQuery("id", id), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) CreateProject(ctx context.Context, in ProjectInput) (*Project, error) {
	var p Project
	if err := c.doJSON(ctx, http.MethodPost, "/projects.php", nil, in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateProject replaces every field of the project with in.
func (c *Client) UpdateProject(ctx context.Context, id uint, in ProjectInput) (*Project, error) {
	var p Project
	if err := c.doJSON(ctx, http.MethodPut, "/projects.php", idQuery("id", id), in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) DeleteProject(ctx context.Context, id uint) error {
	return c.doJSON(ctx, http.MethodDelete, "/projects.php", idQuery("id", id), nil, &message{})
}

// UploadFile streams r as a multipart upload named name.
func (c *Client) UploadFile(ctx context.Context, projectID uint, name string, r io.Reader) (*ProjectFile, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		err := writeUpload(mw, projectID, name, r)
		if cerr := mw.Close(); err == nil {
			err = cerr
		}
		pw.CloseWithError(err)
	}()

	req, err := c.newRequest(ctx, http.MethodPost, "/upload.php", nil, pr)
	if err != nil {
		pr.Close()
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var f ProjectFile
	if err := c.do(req, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

func writeUpload(mw *multipart.Writer, projectID uint, name string, r io.Reader) error {
	if err := mw.WriteField("project_id", strconv.FormatUint(uint64(projectID), 10)); err != nil {
		return err
	}
	part, err := mw.CreateFormFile("file", name)
	if err != nil {
		return err
	}
	_, err = io.Copy(part, r)
	return err
}

// Upload is one file for UploadFiles.
type Upload struct {
	Name string
	Body io.Reader
}

// UploadResult pairs an upload with its outcome; exactly one of File and Err is set.
type UploadResult struct {
	Name string
	File *ProjectFile
	Err  error
}

// UploadFiles uploads every file concurrently and waits for all of them.
// A failed upload does not cancel the others; results keep the input order.
func (c *Client) UploadFiles(ctx context.Context, projectID uint, uploads []Upload) []UploadResult {
	results := make([]UploadResult, len(uploads))
	var g errgroup.Group
	for i, up := range uploads {
		i, up := i, up
		g.Go(func() error {
			f, err := c.UploadFile(ctx, projectID, up.Name, up.Body)
			results[i] = UploadResult{Name: up.Name, File: f, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (c *Client) ListFiles(ctx context.Context, projectID uint) ([]ProjectFile, error) {
	var out []ProjectFile
	if err := c.doJSON(ctx, http.MethodGet, "/files.php", idQuery("project_id", projectID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) DeleteFile(ctx context.Context, id uint) error {
	return c.doJSON(ctx, http.MethodDelete, "/files.php", idQuery("id", id), nil, &message{})
}

func (c *Client) AddSubProject(ctx context.Context, projectID uint, in SubProjectInput) (*SubProject, error) {
	body := struct {
		SubProjectInput
		ProjectID uint `json:"project_id"`
	}{in, projectID}
	var sp SubProject
	if err := c.doJSON(ctx, http.MethodPost, "/subprojects.php", nil, body, &sp); err != nil {
		return nil, err
	}
	return &sp, nil
}

func (c *Client) UpdateSubProject(ctx context.Context, id uint, patch SubProjectPatch) (*SubProject, error) {
	var sp SubProject
	if err := c.doJSON(ctx, http.MethodPut, "/subprojects.php", idQuery("id", id), patch, &sp); err != nil {
		return nil, err
	}
	return &sp, nil
}

func (c *Client) DeleteSubProject(ctx context.Context, id uint) error {
	return c.doJSON(ctx, http.MethodDelete, "/subprojects.php", idQuery("id", id), nil, &message{})
}

func (c *Client) ListSubProjects(ctx context.Context, projectID uint) ([]SubProject, error) {
	var out []SubProject
	if err := c.doJSON(ctx, http.MethodGet, "/subprojects.php", idQuery("project_id", projectID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Stats(ctx context.Context) (*Stats, error) {
	var s Stats
	if err := c.doJSON(ctx, http.MethodGet, "/stats.php", nil, nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) newRequest(ctx context.Context, method, resource string, q url.Values, body io.Reader) (*http.Request, error) {
	u := c.baseURL + resource
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("client: build %s %s: %w", method, resource, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

func (c *Client) doJSON(ctx context.Context, method, resource string, q url.Values, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("client: encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}
	req, err := c.newRequest(ctx, method, resource, q, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("client: decode %s %s: %w", req.Method, req.URL.Path, err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	ae := &APIError{StatusCode: resp.StatusCode}
	var body struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || json.Unmarshal(raw, &body) != nil {
		ae.Message = "Network error"
		return ae
	}
	ae.Message, ae.Code = body.Error, body.Code
	if ae.Message == "" {
		ae.Message = "An error occurred"
	}
	return ae
}
