package storage

import (
	"context"
	"errors"
	"fmt"
	"os"

	nfs "github.com/vmware/go-nfs-client/nfs"
	"github.com/vmware/go-nfs-client/nfs/rpc"
	"medialinks-backend/internal/config"
	"medialinks-backend/internal/models"
)

type NFSBackend struct {
	config *config.NFSConfig
}

// NFSConnection holds both RPC clients of a session: the mountd client
// from DialMount and the nfsd client behind the mounted target.
type NFSConnection struct {
	mount  *nfs.Mount
	target *nfs.Target
}

func NewNFSBackend(cfg *config.NFSConfig) *NFSBackend {
	return &NFSBackend{config: cfg}
}

func (b *NFSBackend) GetName() string {
	return "nfs"
}

// Connect mounts the export. The NFS client has no context support, so ctx
// is only checked before dialing.
func (b *NFSBackend) Connect(ctx context.Context) (Connection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mount, err := nfs.DialMount(b.config.Server)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NFS server: %w", err)
	}

	auth := rpc.NewAuthUnix("medialinks", 1000, 1000)

	target, err := mount.Mount(b.config.Export, auth.Auth())
	if err != nil {
		mount.Close()
		return nil, fmt.Errorf("failed to mount NFS export: %w", err)
	}

	return &NFSConnection{mount: mount, target: target}, nil
}

func (b *NFSBackend) ReadDir(ctx context.Context, conn Connection, folder string) ([]models.RemoteEntry, error) {
	nfsConn := conn.(*NFSConnection)

	dir := folder
	if b.config.Path != "" {
		dir = b.config.Path + "/" + folder
	}

	entries, err := nfsConn.target.ReadDirPlus(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	result := make([]models.RemoteEntry, 0, len(entries))
	for _, entry := range entries {
		if isDotEntry(entry.Name()) {
			continue
		}
		result = append(result, nfsEntryToRemote(entry))
	}
	return result, nil
}

// Close unmounts the export and closes both RPC clients. Every step runs
// even when an earlier one fails.
func (b *NFSBackend) Close(conn Connection) error {
	if conn == nil {
		return nil
	}
	nfsConn := conn.(*NFSConnection)

	var errs []error
	if err := nfsConn.target.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close target: %w", err))
	}
	if err := nfsConn.mount.Unmount(); err != nil {
		errs = append(errs, fmt.Errorf("unmount: %w", err))
	}
	if err := nfsConn.mount.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close mount client: %w", err))
	}
	return errors.Join(errs...)
}

// nfsEntryToRemote maps a READDIRPLUS entry. NFSv3 has no creation time, so
// the modification time stands in for it.
func nfsEntryToRemote(fi os.FileInfo) models.RemoteEntry {
	return models.RemoteEntry{
		Name:        fi.Name(),
		Size:        fi.Size(),
		IsDir:       fi.IsDir(),
		Created:     fi.ModTime(),
		Modified:    fi.ModTime(),
		Permissions: fi.Mode().String(),
	}
}
