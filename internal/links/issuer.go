// Package links issues time-limited download URLs for remote files.
package links

import (
	"context"
	"errors"
	"fmt"
	"time"

	"medialinks-backend/internal/cdn"
)

// Issuer produces a download URL for remotePath that stops working after
// expiry. Every call mints a new credential.
type Issuer interface {
	IssueTimeLimitedURL(ctx context.Context, remotePath string, expiry time.Duration) (string, error)
	GetName() string
}

// KeyMinter mints an access token that the CDN accepts until expiresAt.
type KeyMinter interface {
	MintKey(ctx context.Context, remotePath string, expiresAt time.Time) (string, error)
}

var errEmptyPath = errors.New("remote path is empty")

// TokenIssuer composes "<cdnBase>/<remotePath>?token=<key>" from a minted key.
type TokenIssuer struct {
	name    string
	cdnBase string
	minter  KeyMinter
	now     func() time.Time
}

func NewTokenIssuer(name, cdnBase string, minter KeyMinter) *TokenIssuer {
	return &TokenIssuer{
		name:    name,
		cdnBase: cdnBase,
		minter:  minter,
		now:     time.Now,
	}
}

func (i *TokenIssuer) GetName() string {
	return i.name
}

func (i *TokenIssuer) IssueTimeLimitedURL(ctx context.Context, remotePath string, expiry time.Duration) (string, error) {
	if remotePath == "" {
		return "", errEmptyPath
	}

	key, err := i.minter.MintKey(ctx, remotePath, i.now().UTC().Add(expiry))
	if err != nil {
		return "", fmt.Errorf("failed to mint access key for %s: %w", remotePath, err)
	}

	return cdn.WithToken(cdn.URL(i.cdnBase, remotePath), key), nil
}
