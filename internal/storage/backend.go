package storage

import (
	"context"

	"medialinks-backend/internal/models"
)

type Connection interface{}

// StorageBackend is a remote file store that can list a folder. Each
// Connect opens a fresh session that the caller must Close.
type StorageBackend interface {
	Connect(ctx context.Context) (Connection, error)
	ReadDir(ctx context.Context, conn Connection, folder string) ([]models.RemoteEntry, error)
	Close(conn Connection) error
	GetName() string
}

// isDotEntry reports the self and parent entries some servers include in
// directory listings.
func isDotEntry(name string) bool {
	return name == "." || name == ".."
}
