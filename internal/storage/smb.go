package storage

import (
	"context"
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/hirochachacha/go-smb2"
	"medialinks-backend/internal/config"
	"medialinks-backend/internal/logging"
	"medialinks-backend/internal/models"
	"go.uber.org/zap"
)

type SMBBackend struct {
	config *config.SMBConfig
}

type SMBConnection struct {
	session *smb2.Session
	share   *smb2.Share
}

func NewSMBBackend(cfg *config.SMBConfig) *SMBBackend {
	return &SMBBackend{config: cfg}
}

func (b *SMBBackend) GetName() string {
	return "smb"
}

func (b *SMBBackend) Connect(ctx context.Context) (Connection, error) {
	address := net.JoinHostPort(b.config.Server, strconv.Itoa(b.config.Port))

	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SMB server: %w", err)
	}

	d := &smb2.Dialer{
		Initiator: &smb2.NTLMInitiator{
			User:     b.config.User,
			Password: b.config.Password,
			Domain:   b.config.Domain,
		},
	}

	session, err := d.DialContext(ctx, conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to establish SMB session: %w", err)
	}

	share, err := session.Mount(b.config.Share)
	if err != nil {
		session.Logoff()
		return nil, fmt.Errorf("failed to mount share '%s': %w", b.config.Share, err)
	}

	logging.WithContext(ctx).Debug("smb session established",
		zap.String("server", address),
		zap.String("share", b.config.Share),
	)
	return &SMBConnection{session: session, share: share}, nil
}

func (b *SMBBackend) ReadDir(ctx context.Context, conn Connection, folder string) ([]models.RemoteEntry, error) {
	smbConn := conn.(*SMBConnection)

	dir := folder
	if b.config.Path != "" {
		dir = b.config.Path + "/" + folder
	}

	entries, err := smbConn.share.WithContext(ctx).ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	result := make([]models.RemoteEntry, 0, len(entries))
	for _, entry := range entries {
		if isDotEntry(entry.Name()) {
			continue
		}
		result = append(result, smbEntryToRemote(entry))
	}
	return result, nil
}

func (b *SMBBackend) Close(conn Connection) error {
	if conn == nil {
		return nil
	}
	smbConn := conn.(*SMBConnection)
	smbConn.share.Umount()
	return smbConn.session.Logoff()
}

func smbEntryToRemote(fi os.FileInfo) models.RemoteEntry {
	entry := models.RemoteEntry{
		Name:        fi.Name(),
		Size:        fi.Size(),
		IsDir:       fi.IsDir(),
		Created:     fi.ModTime(),
		Modified:    fi.ModTime(),
		Permissions: fi.Mode().String(),
	}
	if stat, ok := fi.Sys().(*smb2.FileStat); ok {
		entry.Created = stat.CreationTime
	}
	return entry
}
