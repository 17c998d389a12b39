package transfer

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"swift-transfer/internal/api"
)

// Selected is a locally chosen file. The ID exists only for list rendering
// and removal in the UI; it is never sent to the backend.
type Selected struct {
	ID          string
	Path        string
	Name        string
	ContentType string
	Size        int64
}

// SelectFile stats and sniffs a local file into a Selected entry.
func SelectFile(path string) (Selected, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Selected{}, fmt.Errorf("stat file: %w", err)
	}
	if info.IsDir() {
		return Selected{}, fmt.Errorf("%s is a directory", path)
	}
	contentType := "application/octet-stream"
	if mt, err := mimetype.DetectFile(path); err == nil {
		contentType = mt.String()
	}
	return Selected{
		ID:          uuid.NewString(),
		Path:        path,
		Name:        filepath.Base(path),
		ContentType: contentType,
		Size:        info.Size(),
	}, nil
}

// Metas projects a selection into the wire metadata, preserving order.
func Metas(sel []Selected) []api.FileMeta {
	out := make([]api.FileMeta, len(sel))
	for i, s := range sel {
		out[i] = api.FileMeta{Name: s.Name, ContentType: s.ContentType, Size: s.Size}
	}
	return out
}
