package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// SignedURLTTL is how long a preview/download link stays valid.
const SignedURLTTL = 60 * time.Second

const MaxFileSize = 512 * 1024 * 1024

var allowedExtensions = map[string]bool{
	".mp4":  true,
	".mov":  true,
	".webm": true,
	".gif":  true,
	".zip":  true,
	".pdf":  true,
	".png":  true,
}

// Store keeps deliverable files on disk under a root directory and signs
// short-lived download URLs for them.
type Store struct {
	root       string
	signSecret []byte
	logger     *slog.Logger
}

func New(root, signSecret string, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("create upload root: %w", err)
	}
	return &Store{
		root:       root,
		signSecret: []byte(signSecret),
		logger:     logger.With("component", "storage"),
	}, nil
}

// Save writes an uploaded deliverable under projects/{id}/{ts}_{name} and
// returns its storage key.
func (s *Store) Save(projectID int64, filename string, r io.Reader, size int64) (string, error) {
	if size > MaxFileSize {
		return "", fmt.Errorf("file exceeds the %d MB limit", MaxFileSize/(1024*1024))
	}

	name, err := sanitizeFilename(filename)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("projects/%d/%d_%s", projectID, time.Now().Unix(), name)
	path := filepath.Join(s.root, filepath.FromSlash(key))

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("create project dir: %w", err)
	}

	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer dst.Close()

	written, err := io.Copy(dst, io.LimitReader(r, MaxFileSize+1))
	if err != nil {
		os.Remove(path)
		return "", fmt.Errorf("write file: %w", err)
	}
	// The limit reader truncates silently; a count mismatch means the
	// reader did not match its declared size.
	if written != size {
		os.Remove(path)
		return "", fmt.Errorf("upload size mismatch: declared %d bytes, read %d", size, written)
	}

	return key, nil
}

// Remove deletes a stored file. Missing files are not an error.
func (s *Store) Remove(key string) error {
	path, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove file: %w", err)
	}
	return nil
}

// Open returns the file and its info for serving.
func (s *Store) Open(key string) (*os.File, os.FileInfo, error) {
	path, err := s.resolve(key)
	if err != nil {
		return nil, nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return f, info, nil
}

// SignURL produces a time-limited download URL for a storage key.
func (s *Store) SignURL(key string, now time.Time) string {
	expires := now.Add(SignedURLTTL).Unix()
	sig := s.signature(key, expires)
	return fmt.Sprintf("/files/%s?expires=%d&sig=%s", key, expires, url.QueryEscape(sig))
}

// VerifySignature checks a signed URL's signature and expiry.
func (s *Store) VerifySignature(key, expiresStr, sig string, now time.Time) error {
	expires, err := strconv.ParseInt(expiresStr, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid expiry")
	}
	if now.Unix() > expires {
		return fmt.Errorf("link expired")
	}
	expected := s.signature(key, expires)
	if !hmac.Equal([]byte(expected), []byte(sig)) {
		return fmt.Errorf("invalid signature")
	}
	return nil
}

func (s *Store) signature(key string, expires int64) string {
	mac := hmac.New(sha256.New, s.signSecret)
	fmt.Fprintf(mac, "%s:%d", key, expires)
	return hex.EncodeToString(mac.Sum(nil))
}

// resolve maps a storage key to an absolute path, rejecting traversal.
func (s *Store) resolve(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return filepath.Join(s.root, clean), nil
}

func sanitizeFilename(filename string) (string, error) {
	name := filepath.Base(filepath.FromSlash(filename))
	name = strings.ReplaceAll(name, " ", "_")
	if name == "" || name == "." || name == ".." {
		return "", fmt.Errorf("invalid file name %q", filename)
	}
	ext := strings.ToLower(filepath.Ext(name))
	if !allowedExtensions[ext] {
		return "", fmt.Errorf("file type %q is not allowed", ext)
	}
	return name, nil
}
