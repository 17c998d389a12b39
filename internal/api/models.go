package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/samber/lo"
)

// Transfer statuses. "expired" is never stored; it is derived at read time
// from the expiry timestamp and always wins over the backend status.
const (
	StatusDraft   = "draft"
	StatusReady   = "ready"
	StatusExpired = "expired"
)

// FileMeta describes one file inside a transfer. Path is the storage object
// path assigned by the backend at init time, empty before that.
type FileMeta struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
	Path        string `json:"path,omitempty"`
}

// Transfer is the normalized client-side view of a backend transfer record.
type Transfer struct {
	ID          string
	Status      string
	CreatedAt   FlexTime
	CompletedAt FlexTime
	ExpiresAt   FlexTime
	Files       []FileMeta
	ShareURL    string
}

// Expired reports whether the expiry timestamp lies in the past.
// A transfer without an expiry never expires.
func (t *Transfer) Expired() bool {
	return !t.ExpiresAt.IsZero() && t.ExpiresAt.Time().Before(time.Now())
}

func (t *Transfer) TotalSize() int64 {
	return lo.SumBy(t.Files, func(f FileMeta) int64 { return f.Size })
}

// FlexTime is a timestamp that arrives on the wire either as an epoch
// millisecond number or as a rich object carrying seconds and nanoseconds
// (with or without underscore-prefixed keys). The zero value means absent.
type FlexTime struct {
	ms int64
}

func FlexTimeOf(t time.Time) FlexTime {
	if t.IsZero() {
		return FlexTime{}
	}
	return FlexTime{ms: t.UnixMilli()}
}

func (t FlexTime) IsZero() bool    { return t.ms == 0 }
func (t FlexTime) Millis() int64   { return t.ms }
func (t FlexTime) Time() time.Time { return time.UnixMilli(t.ms) }

func (t FlexTime) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.ms)
}

func (t *FlexTime) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		t.ms = 0
		return nil
	}
	var n int64
	if err := json.Unmarshal(b, &n); err == nil {
		t.ms = n
		return nil
	}
	var obj struct {
		Seconds      int64 `json:"seconds"`
		Nanoseconds  int64 `json:"nanoseconds"`
		USeconds     int64 `json:"_seconds"`
		UNanoseconds int64 `json:"_nanoseconds"`
	}
	if err := json.Unmarshal(b, &obj); err == nil {
		sec, nsec := obj.Seconds, obj.Nanoseconds
		if sec == 0 && nsec == 0 {
			sec, nsec = obj.USeconds, obj.UNanoseconds
		}
		// all-zero fields mean absent, same as null
		t.ms = sec*1000 + nsec/int64(time.Millisecond)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		parsed, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return fmt.Errorf("parse timestamp %q: %w", s, err)
		}
		t.ms = parsed.UnixMilli()
		return nil
	}
	return fmt.Errorf("unsupported timestamp form: %s", b)
}

// rawTransfer matches the loose wire shapes observed across deployments:
// identifiers under either of two keys, share URL sometimes absent, status
// either a string or implied by a completion timestamp.
type rawTransfer struct {
	ID          string     `json:"id"`
	TransferID  string     `json:"transfer_id"`
	Status      string     `json:"status"`
	CreatedAt   FlexTime   `json:"created_at"`
	CompletedAt FlexTime   `json:"completed_at"`
	ExpiresAt   FlexTime   `json:"expires_at"`
	Files       []FileMeta `json:"files"`
	ShareURL    string     `json:"share_url"`
}

// normalize folds a raw record into the canonical Transfer shape.
// baseURL is used to synthesize a share URL when the record carries none.
func (r rawTransfer) normalize(baseURL string) Transfer {
	t := Transfer{
		ID:          r.ID,
		CreatedAt:   r.CreatedAt,
		CompletedAt: r.CompletedAt,
		ExpiresAt:   r.ExpiresAt,
		Files:       r.Files,
		ShareURL:    r.ShareURL,
	}
	if t.ID == "" {
		t.ID = r.TransferID
	}
	if t.ShareURL == "" && t.ID != "" {
		t.ShareURL = baseURL + "/t/" + t.ID
	}
	switch {
	case t.Expired():
		t.Status = StatusExpired
	case r.Status == StatusReady || r.Status == "completed" || !r.CompletedAt.IsZero():
		t.Status = StatusReady
	default:
		t.Status = StatusDraft
	}
	return t
}
