package transfer

import (
	"context"
	"fmt"
	"os"

	"swift-transfer/internal/api"
	"swift-transfer/internal/logger"
	"swift-transfer/internal/store"
)

// Stage is the coarse progress state of one Send call.
type Stage int

const (
	StagePreparing Stage = iota
	StageUploading
	StageFinalizing
	StageDone
)

// Event reports progress to the caller. During StageUploading, Index/Name
// identify the file whose PUT just finished and Done counts completed files.
type Event struct {
	Stage    Stage
	Index    int
	Name     string
	Done     int
	Total    int
	ShareURL string
}

// Uploader drives the init → upload → complete exchange.
type Uploader struct {
	API *api.Client
}

// Send uploads the selection as one transfer and returns the share URL.
// Files are PUT sequentially: the first failure aborts the rest, no
// completion request is issued, and already-uploaded files stay where they
// are (the backend has no compensating delete).
func (u *Uploader) Send(ctx context.Context, files []Selected, progress func(Event)) (string, error) {
	if progress == nil {
		progress = func(Event) {}
	}
	if len(files) == 0 {
		return "", fmt.Errorf("no files selected")
	}

	progress(Event{Stage: StagePreparing, Total: len(files)})
	metas := Metas(files)
	init, err := u.API.InitTransfer(ctx, metas)
	if err != nil {
		return "", fmt.Errorf("initialize transfer: %w", err)
	}

	for i, f := range files {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if err := u.putFile(ctx, init.Files[i].UploadURL, f); err != nil {
			return "", fmt.Errorf("upload %s: %w", f.Name, err)
		}
		metas[i].Path = init.Files[i].Path
		progress(Event{Stage: StageUploading, Index: i, Name: f.Name, Done: i + 1, Total: len(files)})
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}
	progress(Event{Stage: StageFinalizing, Total: len(files)})
	shareURL, err := u.API.CompleteTransfer(ctx, init.TransferID, metas)
	if err != nil {
		return "", fmt.Errorf("complete transfer: %w", err)
	}

	if err := store.RecordSent(store.SentTransfer{
		TransferID: init.TransferID,
		ShareURL:   shareURL,
		FileCount:  len(files),
		TotalBytes: totalSize(files),
	}); err != nil {
		logger.Errorf("record sent transfer: %v", err)
	}

	progress(Event{Stage: StageDone, Total: len(files), ShareURL: shareURL})
	return shareURL, nil
}

func (u *Uploader) putFile(ctx context.Context, uploadURL string, f Selected) error {
	file, err := os.Open(f.Path)
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}
	defer file.Close()
	return u.API.UploadPut(ctx, uploadURL, f.ContentType, file, f.Size)
}

func totalSize(files []Selected) int64 {
	var n int64
	for _, f := range files {
		n += f.Size
	}
	return n
}
