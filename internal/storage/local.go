package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// LocalStore implements BlobStore on the local filesystem. Presigned URLs
// point back at this server's upload/download handlers with the key in a
// query parameter, the same scheme an S3-compatible backend would use with
// real signatures. Tokens are registered per grant and checked on redeem,
// so an unpresigned key cannot be read or written through the handlers.
type LocalStore struct {
	baseURL string
	dir     string

	mu     sync.Mutex
	grants map[string]grant // token -> grant
}

type grant struct {
	key       string
	method    string // http.MethodPut or http.MethodGet
	expiresAt time.Time
}

// NewLocalStore creates the backing directory if needed.
func NewLocalStore(cfg Config) (*LocalStore, error) {
	if err := os.MkdirAll(cfg.LocalDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalStore{baseURL: cfg.BaseURL, dir: cfg.LocalDir, grants: make(map[string]grant)}, nil
}

func (s *LocalStore) PresignUpload(ctx context.Context, key string, contentType string, expiresIn time.Duration) (string, error) {
	token := s.issue(key, http.MethodPut, expiresIn)
	return fmt.Sprintf("%s/uploads/%s?key=%s", s.baseURL, token, url.QueryEscape(key)), nil
}

func (s *LocalStore) PresignDownload(ctx context.Context, key string, expiresIn time.Duration) (string, error) {
	token := s.issue(key, http.MethodGet, expiresIn)
	return fmt.Sprintf("%s/downloads/%s?key=%s", s.baseURL, token, url.QueryEscape(key)), nil
}

func (s *LocalStore) issue(key, method string, expiresIn time.Duration) string {
	token := uuid.New().String()
	s.mu.Lock()
	defer s.mu.Unlock()

	for t, g := range s.grants {
		if time.Now().After(g.expiresAt) {
			delete(s.grants, t)
		}
	}
	s.grants[token] = grant{key: key, method: method, expiresAt: time.Now().Add(expiresIn)}
	return token
}

// Redeem resolves a presigned token to its key, enforcing method and
// expiry. The key embedded in the URL is informational only.
func (s *LocalStore) Redeem(token, method string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.grants[token]
	if !ok {
		return "", fmt.Errorf("unknown presign token")
	}
	if g.method != method {
		return "", fmt.Errorf("token not valid for %s", method)
	}
	if time.Now().After(g.expiresAt) {
		delete(s.grants, token)
		return "", fmt.Errorf("presign token expired")
	}
	return g.key, nil
}

func (s *LocalStore) Exists(ctx context.Context, key string) (bool, error) {
	_, err := os.Stat(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *LocalStore) Save(key string, reader io.Reader) error {
	fullPath := s.path(key)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, reader); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

func (s *LocalStore) Open(key string) (io.ReadCloser, error) {
	return os.Open(s.path(key))
}

func (s *LocalStore) path(key string) string {
	// filepath.Join cleans "..", keeping keys inside the store directory
	return filepath.Join(s.dir, filepath.Clean("/"+key))
}
