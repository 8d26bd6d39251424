package storage

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := New(t.TempDir(), "test-secret", logger)
	require.NoError(t, err)
	return s
}

func TestSaveAndOpen(t *testing.T) {
	s := testStore(t)

	key, err := s.Save(42, "final render.mp4", strings.NewReader("video-bytes"), 11)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "projects/42/"))
	assert.True(t, strings.HasSuffix(key, "_final_render.mp4"))

	f, info, err := s.Open(key)
	require.NoError(t, err)
	defer f.Close()

	data, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "video-bytes", string(data))
	assert.Equal(t, int64(11), info.Size())
}

func TestSaveRejectsBadFiles(t *testing.T) {
	s := testStore(t)

	_, err := s.Save(1, "malware.exe", strings.NewReader("x"), 1)
	assert.Error(t, err)

	_, err = s.Save(1, "huge.mp4", strings.NewReader("x"), MaxFileSize+1)
	assert.Error(t, err)
}

// A reader longer than its declared size must fail the save, not be
// truncated on disk.
func TestSaveRejectsSizeMismatch(t *testing.T) {
	s := testStore(t)

	_, err := s.Save(1, "long.mp4", strings.NewReader("more-than-declared"), 4)
	assert.ErrorContains(t, err, "size mismatch")

	_, err = s.Save(1, "short.mp4", strings.NewReader("xy"), 10)
	assert.ErrorContains(t, err, "size mismatch")

	// Nothing is left behind after a rejected save.
	entries, err := os.ReadDir(filepath.Join(s.root, "projects"))
	if err == nil {
		for _, e := range entries {
			files, _ := os.ReadDir(filepath.Join(s.root, "projects", e.Name()))
			assert.Empty(t, files)
		}
	}
}

func TestRemove(t *testing.T) {
	s := testStore(t)

	key, err := s.Save(7, "cut.mov", strings.NewReader("x"), 1)
	require.NoError(t, err)

	require.NoError(t, s.Remove(key))
	_, _, err = s.Open(key)
	assert.Error(t, err)

	// Removing again is not an error.
	assert.NoError(t, s.Remove(key))
}

func TestResolveRejectsTraversal(t *testing.T) {
	s := testStore(t)

	for _, key := range []string{"../etc/passwd", "/etc/passwd", "..", "projects/../../x"} {
		_, err := s.resolve(key)
		assert.Error(t, err, key)
	}
}

func TestSignedURLRoundTrip(t *testing.T) {
	s := testStore(t)
	now := time.Now()

	u := s.SignURL("projects/5/123_demo.mp4", now)
	assert.Contains(t, u, "/files/projects/5/123_demo.mp4?")

	parts := strings.SplitN(u, "?", 2)
	q := parseQuery(t, parts[1])

	assert.NoError(t, s.VerifySignature("projects/5/123_demo.mp4", q["expires"], q["sig"], now))

	// Expired link.
	assert.Error(t, s.VerifySignature("projects/5/123_demo.mp4", q["expires"], q["sig"], now.Add(2*time.Minute)))

	// Tampered key.
	assert.Error(t, s.VerifySignature("projects/5/123_other.mp4", q["expires"], q["sig"], now))

	// Garbage expiry.
	assert.Error(t, s.VerifySignature("projects/5/123_demo.mp4", "soon", q["sig"], now))
}

func parseQuery(t *testing.T, raw string) map[string]string {
	t.Helper()
	out := map[string]string{}
	for _, kv := range strings.Split(raw, "&") {
		parts := strings.SplitN(kv, "=", 2)
		require.Len(t, parts, 2)
		out[parts[0]] = parts[1]
	}
	return out
}

type stubPaths struct {
	paths []string
}

func (s stubPaths) AllFilePaths() ([]string, error) { return s.paths, nil }

func TestSweep(t *testing.T) {
	s := testStore(t)

	kept, err := s.Save(1, "kept.mp4", strings.NewReader("x"), 1)
	require.NoError(t, err)
	orphan, err := s.Save(1, "orphan.mp4", strings.NewReader("x"), 1)
	require.NoError(t, err)

	// Backdate both files past the 24h grace window.
	old := time.Now().Add(-48 * time.Hour)
	for _, key := range []string{kept, orphan} {
		path := filepath.Join(s.root, filepath.FromSlash(key))
		require.NoError(t, os.Chtimes(path, old, old))
	}

	removed, err := s.Sweep(stubPaths{paths: []string{kept}}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, _, err = s.Open(kept)
	assert.NoError(t, err)
	_, _, err = s.Open(orphan)
	assert.Error(t, err)
}

func TestSweepSparesRecentFiles(t *testing.T) {
	s := testStore(t)

	orphan, err := s.Save(2, "fresh.mp4", strings.NewReader("x"), 1)
	require.NoError(t, err)

	removed, err := s.Sweep(stubPaths{}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 0, removed)

	_, _, err = s.Open(orphan)
	assert.NoError(t, err)
}
