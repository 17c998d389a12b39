package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Client is the typed HTTP surface of the transfer backend. A token source is
// consulted on every request so a refreshed credential is picked up without
// rebuilding the client.
type Client struct {
	baseURL string
	http    *http.Client
	token   func() string
}

func New(baseURL string, token func() string) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid backend base URL %q", baseURL)
	}
	if token == nil {
		token = func() string { return "" }
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		token:   token,
	}, nil
}

func (c *Client) BaseURL() string { return c.baseURL }

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token       string `json:"token"`
	AccessToken string `json:"access_token"`
}

// Login exchanges credentials for a bearer token at the identity endpoint.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var out loginResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", loginRequest{Email: email, Password: password}, &out, false); err != nil {
		return "", err
	}
	token := out.Token
	if token == "" {
		token = out.AccessToken
	}
	if token == "" {
		return "", errors.New("invalid login response")
	}
	return token, nil
}

type initRequest struct {
	Files []FileMeta `json:"files"`
}

// InitFile pairs the backend-assigned object path with the pre-signed URL the
// client must PUT the bytes to. Order matches the init request.
type InitFile struct {
	Path      string `json:"path"`
	UploadURL string `json:"upload_url"`
}

type InitResponse struct {
	TransferID string     `json:"transfer_id"`
	Files      []InitFile `json:"files"`
}

// InitTransfer registers the ordered file list and obtains upload URLs.
func (c *Client) InitTransfer(ctx context.Context, files []FileMeta) (*InitResponse, error) {
	var out InitResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/transfers/init", initRequest{Files: files}, &out, false); err != nil {
		return nil, err
	}
	if out.TransferID == "" {
		return nil, errors.New("init response missing transfer id")
	}
	if len(out.Files) != len(files) {
		return nil, fmt.Errorf("init response has %d files, expected %d", len(out.Files), len(files))
	}
	return &out, nil
}

// UploadPut writes raw bytes to a pre-signed URL. The URL itself is the
// credential, so no Authorization header is attached.
func (c *Client) UploadPut(ctx context.Context, uploadURL, contentType string, body io.Reader, size int64) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)
	req.ContentLength = size
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errorFromResponse(resp)
	}
	return nil
}

type completeRequest struct {
	TransferID string     `json:"transfer_id"`
	Files      []FileMeta `json:"files"`
}

type completeResponse struct {
	ShareURL string `json:"share_url"`
}

// CompleteTransfer finalizes a transfer and returns its share URL.
func (c *Client) CompleteTransfer(ctx context.Context, transferID string, files []FileMeta) (string, error) {
	var out completeResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/transfers/complete", completeRequest{TransferID: transferID, Files: files}, &out, false); err != nil {
		return "", err
	}
	if out.ShareURL == "" {
		return "", ErrMissingShareURL
	}
	return out.ShareURL, nil
}

// GetTransfer fetches and normalizes one transfer record. The token is
// attached when present since some deployments gate metadata reads too.
func (c *Client) GetTransfer(ctx context.Context, id string) (*Transfer, error) {
	var raw rawTransfer
	if err := c.doJSON(ctx, http.MethodGet, "/api/transfers/"+url.PathEscape(id), nil, &raw, false); err != nil {
		return nil, err
	}
	t := raw.normalize(c.baseURL)
	if t.ID == "" {
		t.ID = id
	}
	return &t, nil
}

type downloadURLResponse struct {
	URL string `json:"url"`
}

// FileDownloadURL obtains a short-lived download URL for the file at index.
func (c *Client) FileDownloadURL(ctx context.Context, id string, index int) (string, error) {
	var out downloadURLResponse
	path := fmt.Sprintf("/api/transfers/%s/files/%d/download", url.PathEscape(id), index)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out, true); err != nil {
		return "", err
	}
	if out.URL == "" {
		return "", errors.New("download response missing url")
	}
	return out.URL, nil
}

// FetchSigned GETs a short-lived URL with the bearer credential attached and
// hands the body stream to the caller. The indirection exists because a bare
// navigation to the storage URL cannot carry an Authorization header.
func (c *Client) FetchSigned(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	if tok := c.token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		return nil, errorFromResponse(resp)
	}
	return resp.Body, nil
}

// DownloadZip streams the pre-built archive for a transfer.
func (c *Client) DownloadZip(ctx context.Context, id string) (io.ReadCloser, error) {
	if c.token() == "" {
		return nil, ErrNoToken
	}
	return c.FetchSigned(ctx, c.baseURL+"/api/transfers/"+url.PathEscape(id)+"/download.zip")
}

type emailRequest struct {
	To      string `json:"to"`
	Message string `json:"message,omitempty"`
}

// SendEmail asks the backend to mail the share link for a transfer.
func (c *Client) SendEmail(ctx context.Context, id, to, message string) error {
	path := "/api/transfers/" + url.PathEscape(id) + "/email"
	return c.doJSON(ctx, http.MethodPost, path, emailRequest{To: to, Message: message}, nil, true)
}

// MyTransfers lists every transfer owned by the signed-in identity,
// normalized into the canonical shape.
func (c *Client) MyTransfers(ctx context.Context) ([]Transfer, error) {
	var raws []rawTransfer
	if err := c.doJSON(ctx, http.MethodGet, "/api/transfers/my", nil, &raws, true); err != nil {
		return nil, err
	}
	out := make([]Transfer, 0, len(raws))
	for _, r := range raws {
		out = append(out, r.normalize(c.baseURL))
	}
	return out, nil
}

// doJSON issues one backend request. The bearer token rides along whenever it
// is available; requireAuth endpoints fail fast without one.
func (c *Client) doJSON(ctx context.Context, method, path string, in, out any, requireAuth bool) error {
	tok := c.token()
	if requireAuth && tok == "" {
		return ErrNoToken
	}
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errorFromResponse(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
