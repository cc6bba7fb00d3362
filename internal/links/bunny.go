package links

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// BunnyMinter creates named, expiring access keys through the Bunny REST API.
type BunnyMinter struct {
	apiURL    string
	apiKey    string
	keyPrefix string
	client    *http.Client
}

type bunnyKeyRequest struct {
	Name      string `json:"name"`
	ExpiresAt string `json:"expiresAt"`
}

type bunnyKeyResponse struct {
	Key string `json:"key"`
}

var errEmptyKey = errors.New("response did not contain a key")

func NewBunnyMinter(apiURL, apiKey, keyPrefix string, client *http.Client) *BunnyMinter {
	if client == nil {
		client = http.DefaultClient
	}
	return &BunnyMinter{
		apiURL:    apiURL,
		apiKey:    apiKey,
		keyPrefix: keyPrefix,
		client:    client,
	}
}

func (m *BunnyMinter) MintKey(ctx context.Context, remotePath string, expiresAt time.Time) (string, error) {
	body, err := json.Marshal(bunnyKeyRequest{
		Name:      m.keyPrefix + "-" + uuid.NewString(),
		ExpiresAt: expiresAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode key request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.apiURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build key request: %w", err)
	}
	req.Header.Set("AccessKey", m.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("key request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("key request returned %d: %s", resp.StatusCode, bytes.TrimSpace(snippet))
	}

	var out bunnyKeyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode key response: %w", err)
	}
	if out.Key == "" {
		return "", errEmptyKey
	}

	return out.Key, nil
}
