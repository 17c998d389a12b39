package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, token string, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL, func() string { return token })
	require.NoError(t, err)
	return c
}

func TestNewRejectsBadBaseURL(t *testing.T) {
	_, err := New("not a url", nil)
	require.Error(t, err)
}

func TestLogin(t *testing.T) {
	req := require.New(t)
	c := newTestClient(t, "", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req.Equal("/api/auth/login", r.URL.Path)
		var in map[string]string
		req.NoError(json.NewDecoder(r.Body).Decode(&in))
		req.Equal("alice@example.com", in["email"])
		_ = json.NewEncoder(w).Encode(map[string]string{"token": "tok-123"})
	}))

	tok, err := c.Login(context.Background(), "alice@example.com", "secret")
	req.NoError(err)
	req.Equal("tok-123", tok)
}

func TestLoginAccessTokenField(t *testing.T) {
	c := newTestClient(t, "", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": "tok-alt"})
	}))
	tok, err := c.Login(context.Background(), "a@b.c", "x")
	require.NoError(t, err)
	require.Equal(t, "tok-alt", tok)
}

func TestErrorExtraction(t *testing.T) {
	req := require.New(t)
	c := newTestClient(t, "", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":"quota exceeded"}`))
	}))

	_, err := c.Login(context.Background(), "a@b.c", "x")
	var apiErr *Error
	req.ErrorAs(err, &apiErr)
	req.Equal(http.StatusForbidden, apiErr.Status)
	req.Equal("quota exceeded", apiErr.Message)
	req.Contains(apiErr.Error(), "403")
}

func TestErrorExtractionPlainBody(t *testing.T) {
	c := newTestClient(t, "", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	_, err := c.Login(context.Background(), "a@b.c", "x")
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "boom", apiErr.Message)
}

func TestInitTransferPreservesOrder(t *testing.T) {
	req := require.New(t)
	files := []FileMeta{
		{Name: "a.txt", ContentType: "text/plain", Size: 1},
		{Name: "b.png", ContentType: "image/png", Size: 2},
		{Name: "c.bin", ContentType: "application/octet-stream", Size: 3},
	}
	c := newTestClient(t, "", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req.Equal("/api/transfers/init", r.URL.Path)
		var in struct {
			Files []FileMeta `json:"files"`
		}
		req.NoError(json.NewDecoder(r.Body).Decode(&in))
		req.Len(in.Files, len(files))
		for i := range files {
			req.Equal(files[i].Name, in.Files[i].Name)
		}
		out := InitResponse{TransferID: "t-9"}
		for i := range in.Files {
			out.Files = append(out.Files, InitFile{Path: "objects/" + in.Files[i].Name, UploadURL: "http://signed/" + in.Files[i].Name})
		}
		_ = json.NewEncoder(w).Encode(out)
	}))

	resp, err := c.InitTransfer(context.Background(), files)
	req.NoError(err)
	req.Equal("t-9", resp.TransferID)
	req.Len(resp.Files, 3)
	req.Equal("objects/a.txt", resp.Files[0].Path)
}

func TestInitTransferCountMismatch(t *testing.T) {
	c := newTestClient(t, "", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(InitResponse{TransferID: "t", Files: []InitFile{{Path: "p", UploadURL: "u"}}})
	}))
	_, err := c.InitTransfer(context.Background(), []FileMeta{{Name: "a"}, {Name: "b"}})
	require.Error(t, err)
}

func TestCompleteTransferMissingShareURL(t *testing.T) {
	c := newTestClient(t, "", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{})
	}))
	_, err := c.CompleteTransfer(context.Background(), "t-1", nil)
	require.ErrorIs(t, err, ErrMissingShareURL)
}

func TestBearerEndpointsRequireToken(t *testing.T) {
	req := require.New(t)
	c := newTestClient(t, "", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("request should not reach the backend")
	}))

	_, err := c.MyTransfers(context.Background())
	req.ErrorIs(err, ErrNoToken)

	_, err = c.FileDownloadURL(context.Background(), "t-1", 0)
	req.ErrorIs(err, ErrNoToken)

	_, err = c.DownloadZip(context.Background(), "t-1")
	req.ErrorIs(err, ErrNoToken)

	err = c.SendEmail(context.Background(), "t-1", "a@b.c", "")
	req.ErrorIs(err, ErrNoToken)
}

func TestMyTransfersNormalizes(t *testing.T) {
	req := require.New(t)
	c := newTestClient(t, "tok", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req.Equal("Bearer tok", r.Header.Get("Authorization"))
		req.Equal("/api/transfers/my", r.URL.Path)
		_, _ = w.Write([]byte(`[
			{"id":"t-1","status":"ready","files":[{"name":"a","size":10}]},
			{"transfer_id":"t-2","created_at":{"_seconds":1700000000,"_nanoseconds":0}}
		]`))
	}))

	out, err := c.MyTransfers(context.Background())
	req.NoError(err)
	req.Len(out, 2)
	req.Equal("t-1", out[0].ID)
	req.Equal("t-2", out[1].ID)
	req.Equal(StatusReady, out[0].Status)
	req.Equal(StatusDraft, out[1].Status)
	req.Equal(c.BaseURL()+"/t/t-2", out[1].ShareURL)
	req.Equal(int64(1700000000000), out[1].CreatedAt.Millis())
}

func TestGetTransferAttachesTokenWhenPresent(t *testing.T) {
	req := require.New(t)
	c := newTestClient(t, "tok", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req.Equal("Bearer tok", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"id":"t-1","files":[]}`))
	}))
	tr, err := c.GetTransfer(context.Background(), "t-1")
	req.NoError(err)
	req.Equal("t-1", tr.ID)
}

func TestFileDownloadURL(t *testing.T) {
	req := require.New(t)
	c := newTestClient(t, "tok", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req.Equal("/api/transfers/t-1/files/2/download", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]string{"url": "http://signed.example/obj"})
	}))
	u, err := c.FileDownloadURL(context.Background(), "t-1", 2)
	req.NoError(err)
	req.Equal("http://signed.example/obj", u)
}

func TestSendEmail(t *testing.T) {
	req := require.New(t)
	c := newTestClient(t, "tok", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req.Equal("/api/transfers/t-1/email", r.URL.Path)
		var in map[string]string
		req.NoError(json.NewDecoder(r.Body).Decode(&in))
		req.Equal("bob@example.com", in["to"])
		w.WriteHeader(http.StatusOK)
	}))
	req.NoError(c.SendEmail(context.Background(), "t-1", "bob@example.com", "hi"))
}

func TestUploadPutErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "denied", http.StatusForbidden)
	}))
	t.Cleanup(srv.Close)
	c, err := New(srv.URL, nil)
	require.NoError(t, err)

	err = c.UploadPut(context.Background(), srv.URL+"/obj", "text/plain", nil, 0)
	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusForbidden, apiErr.Status)
}
