package storage

import (
	"context"
	"fmt"
	"net"
	"path"
	"strconv"
	"time"

	"github.com/jlaffaye/ftp"
	"medialinks-backend/internal/config"
	"medialinks-backend/internal/models"
)

type FTPBackend struct {
	config      *config.FTPConfig
	dialTimeout time.Duration
}

type FTPConnection struct {
	conn *ftp.ServerConn
}

func NewFTPBackend(cfg *config.FTPConfig, dialTimeout time.Duration) *FTPBackend {
	return &FTPBackend{config: cfg, dialTimeout: dialTimeout}
}

func (b *FTPBackend) GetName() string {
	return "ftp"
}

func (b *FTPBackend) Connect(ctx context.Context) (Connection, error) {
	address := net.JoinHostPort(b.config.Host, strconv.Itoa(b.config.Port))

	opts := []ftp.DialOption{ftp.DialWithContext(ctx)}
	if b.dialTimeout > 0 {
		opts = append(opts, ftp.DialWithTimeout(b.dialTimeout))
	}

	conn, err := ftp.Dial(address, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to FTP server %s: %w", address, err)
	}

	if err := conn.Login(b.config.User, b.config.Password); err != nil {
		conn.Quit()
		return nil, fmt.Errorf("failed to log in to FTP server as %s: %w", b.config.User, err)
	}

	return &FTPConnection{conn: conn}, nil
}

func (b *FTPBackend) ReadDir(ctx context.Context, conn Connection, folder string) ([]models.RemoteEntry, error) {
	ftpConn := conn.(*FTPConnection)

	entries, err := ftpConn.conn.List(b.folderPath(folder))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", folder, err)
	}

	result := make([]models.RemoteEntry, 0, len(entries))
	for _, entry := range entries {
		if isDotEntry(entry.Name) {
			continue
		}
		result = append(result, ftpEntryToRemote(entry))
	}
	return result, nil
}

func (b *FTPBackend) Close(conn Connection) error {
	if conn == nil {
		return nil
	}
	return conn.(*FTPConnection).conn.Quit()
}

func (b *FTPBackend) folderPath(folder string) string {
	if b.config.Root != "" {
		return path.Join(b.config.Root, folder)
	}
	return folder
}

// ftpEntryToRemote maps a LIST entry. The FTP listing only carries one
// timestamp, so it is used for both created and modified.
func ftpEntryToRemote(entry *ftp.Entry) models.RemoteEntry {
	return models.RemoteEntry{
		Name:     entry.Name,
		Size:     int64(entry.Size),
		IsDir:    entry.Type == ftp.EntryTypeFolder,
		Created:  entry.Time,
		Modified: entry.Time,
	}
}
