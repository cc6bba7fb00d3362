package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"
	"medialinks-backend/internal/cdn"
	"medialinks-backend/internal/logging"
	"medialinks-backend/internal/metrics"
	"medialinks-backend/internal/models"
)

// RemoteListingError reports a failed connect or listing for a folder.
type RemoteListingError struct {
	Folder  string
	Backend string
	Err     error
}

func (e *RemoteListingError) Error() string {
	return fmt.Sprintf("%s: listing folder %q failed: %v", e.Backend, e.Folder, e.Err)
}

func (e *RemoteListingError) Unwrap() error {
	return e.Err
}

var errEmptyFolder = errors.New("folder name is empty")

// RemoteLister turns a backend directory listing into file records with
// public CDN URLs. It opens one session per call.
type RemoteLister struct {
	backend StorageBackend
	cdnBase string
}

func NewRemoteLister(backend StorageBackend, cdnBase string) *RemoteLister {
	return &RemoteLister{backend: backend, cdnBase: cdnBase}
}

func (l *RemoteLister) ListFolder(ctx context.Context, folder string) (files []models.FileRecord, err error) {
	start := time.Now()
	logger := logging.WithContext(ctx).With(
		zap.String("backend", l.backend.GetName()),
		zap.String("folder", folder),
	)

	defer func() {
		metrics.RecordListing(l.backend.GetName(), folder, time.Since(start), err == nil)
		if err != nil {
			logger.Error("remote listing failed", zap.Error(err))
		}
	}()

	if folder == "" {
		return nil, &RemoteListingError{Folder: folder, Backend: l.backend.GetName(), Err: errEmptyFolder}
	}

	conn, err := l.backend.Connect(ctx)
	if err != nil {
		return nil, &RemoteListingError{Folder: folder, Backend: l.backend.GetName(), Err: err}
	}
	defer func() {
		if closeErr := l.backend.Close(conn); closeErr != nil {
			logger.Warn("failed to close remote session", zap.Error(closeErr))
		}
	}()

	entries, err := l.backend.ReadDir(ctx, conn, folder)
	if err != nil {
		return nil, &RemoteListingError{Folder: folder, Backend: l.backend.GetName(), Err: err}
	}

	files = make([]models.FileRecord, 0, len(entries))
	for _, entry := range entries {
		files = append(files, l.toRecord(folder, entry))
	}

	logger.Debug("remote folder listed", zap.Int("entries", len(files)))
	return files, nil
}

func (l *RemoteLister) toRecord(folder string, entry models.RemoteEntry) models.FileRecord {
	return models.FileRecord{
		Name:        entry.Name,
		Size:        entry.Size,
		URL:         cdn.URL(l.cdnBase, folder+"/"+entry.Name),
		Created:     entry.Created,
		Modified:    entry.Modified,
		Permissions: entry.Permissions,
		Type:        fileType(entry),
	}
}

// fileType is the lower-cased extension without the dot; directories have none.
func fileType(entry models.RemoteEntry) string {
	if entry.IsDir {
		return ""
	}
	return strings.ToLower(strings.TrimPrefix(path.Ext(entry.Name), "."))
}
