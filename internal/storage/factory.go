package storage

import (
	"fmt"

	"medialinks-backend/internal/config"
)

func NewStorageBackend(cfg *config.Config) (StorageBackend, error) {
	switch cfg.Storage.Type {
	case "ftp":
		timeout, err := cfg.GetFTPDialTimeout()
		if err != nil {
			return nil, fmt.Errorf("invalid ftp dial timeout: %w", err)
		}
		return NewFTPBackend(&cfg.FTP, timeout), nil
	case "smb":
		return NewSMBBackend(&cfg.SMB), nil
	case "s3":
		return NewS3Backend(&cfg.S3), nil
	case "nfs":
		return NewNFSBackend(&cfg.NFS), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Storage.Type)
	}
}
