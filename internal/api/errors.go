package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

var (
	// ErrNoToken is returned before issuing a request to an endpoint that
	// always requires a bearer credential while no one is signed in.
	ErrNoToken = errors.New("not signed in")

	// ErrMissingShareURL marks a 2xx completion response without a share URL.
	ErrMissingShareURL = errors.New("backend returned no share URL")
)

// Error is a non-success HTTP response from the backend.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("backend returned %d: %s", e.Status, e.Message)
}

// errorFromResponse drains resp.Body and extracts the best available message:
// the "error" field of a JSON body when present, the raw body otherwise.
func errorFromResponse(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	msg := strings.TrimSpace(string(body))
	var wire struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &wire); err == nil && wire.Error != "" {
		msg = wire.Error
	}
	return &Error{Status: resp.StatusCode, Message: msg}
}
