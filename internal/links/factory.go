package links

import (
	"fmt"

	"medialinks-backend/internal/config"
)

func NewIssuer(cfg *config.Config) (Issuer, error) {
	switch cfg.Links.Type {
	case "bunny":
		minter := NewBunnyMinter(cfg.Bunny.APIURL, cfg.Bunny.APIKey, cfg.Bunny.KeyPrefix, nil)
		return NewTokenIssuer("bunny", cfg.CDN.BaseURL, minter), nil
	case "jwt":
		minter := NewJWTMinter([]byte(cfg.JWT.SecretKey), cfg.JWT.Issuer)
		return NewTokenIssuer("jwt", cfg.CDN.BaseURL, minter), nil
	case "minio":
		return NewMinioIssuer(cfg.Minio.Endpoint, cfg.Minio.AccessKey, cfg.Minio.SecretKey, cfg.Minio.Bucket, cfg.Minio.UseSSL)
	default:
		return nil, fmt.Errorf("unknown link issuer type: %s", cfg.Links.Type)
	}
}
