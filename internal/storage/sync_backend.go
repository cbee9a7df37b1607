package storage

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/lockedloop/tempus-fugit/internal/structures"
)

const defaultSyncTimeout = 5 * time.Second

// SyncBackend is the optional best-effort tier: a remote key-value service
// reachable by HTTP, bounded by a client timeout. Callers treat any error
// from it as "backend unavailable" and fall back to the durable tier.
type SyncBackend struct {
	base   string
	client *http.Client
}

// NewSyncBackend returns nil when no sync url is configured; the store
// treats a nil sync tier as absent.
func NewSyncBackend(conf *structures.Config) *SyncBackend {
	if conf.Storage.SyncURL == "" {
		return nil
	}
	timeout := conf.Storage.SyncTimeout
	if timeout <= 0 {
		timeout = defaultSyncTimeout
	}
	return &SyncBackend{
		base:   conf.Storage.SyncURL,
		client: &http.Client{Timeout: timeout},
	}
}

func (b *SyncBackend) keyURL(key string) string {
	return b.base + "/kv/" + url.PathEscape(key)
}

func (b *SyncBackend) Get(key string) ([]byte, error) {
	resp, err := b.client.Get(b.keyURL(key))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sync get %s: status %d", key, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (b *SyncBackend) Set(key string, val []byte) error {
	req, err := http.NewRequest(http.MethodPut, b.keyURL(key), bytes.NewReader(val))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("sync set %s: status %d", key, resp.StatusCode)
	}
	return nil
}

func (b *SyncBackend) Delete(key string) error {
	req, err := http.NewRequest(http.MethodDelete, b.keyURL(key), nil)
	if err != nil {
		return err
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 && resp.StatusCode != http.StatusNotFound {
		return fmt.Errorf("sync delete %s: status %d", key, resp.StatusCode)
	}
	return nil
}
