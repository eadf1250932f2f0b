package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Harshitk-cp/contentmesh/internal/domain"
	"github.com/Harshitk-cp/contentmesh/internal/service"
	"github.com/Harshitk-cp/contentmesh/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestIngester(t *testing.T) (*Ingester, *store.KeywordStore) {
	t.Helper()
	ks, err := store.NewKeywordStore()
	require.NoError(t, err)
	t.Cleanup(func() { _ = ks.Close() })
	docs := service.NewDocumentService(ks, nil, zap.NewNop())
	return NewIngester(docs, zap.NewNop()), ks
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestIngester_IndexReplaceRemove(t *testing.T) {
	in, ks := newTestIngester(t)
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "pools.md")

	writeFile(t, path, "# Connection pools\n\npgxpool reuses connections.")
	require.NoError(t, in.IndexFile(ctx, path))

	first, ok := in.DocumentID(path)
	require.True(t, ok)
	doc, err := ks.GetByID(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, "Connection pools", doc.Title)
	assert.Equal(t, "file://"+filepath.ToSlash(path), doc.URL)

	writeFile(t, path, "# Connection pools\n\nsize pools to the core count.")
	require.NoError(t, in.IndexFile(ctx, path))

	second, _ := in.DocumentID(path)
	assert.NotEqual(t, first, second)
	_, err = ks.GetByID(ctx, first)
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, in.RemoveFile(ctx, path))
	_, ok = in.DocumentID(path)
	assert.False(t, ok)
	_, err = ks.GetByID(ctx, second)
	assert.ErrorIs(t, err, store.ErrNotFound)

	assert.NoError(t, in.RemoveFile(ctx, path))
}

func TestIngester_EmptyAndBinaryFiles(t *testing.T) {
	in, _ := newTestIngester(t)
	ctx := context.Background()
	dir := t.TempDir()

	empty := filepath.Join(dir, "empty.txt")
	writeFile(t, empty, "  \n")
	require.NoError(t, in.IndexFile(ctx, empty))
	_, ok := in.DocumentID(empty)
	assert.False(t, ok)

	binary := filepath.Join(dir, "blob.txt")
	writeFile(t, binary, string([]byte{0xff, 0xfe, 0xfd}))
	assert.Error(t, in.IndexFile(ctx, binary))

	assert.Error(t, in.IndexFile(ctx, filepath.Join(dir, "missing.txt")))
}

func TestTitleFor(t *testing.T) {
	tests := []struct {
		path, body, want string
	}{
		{"/docs/raft.md", "## Leader election\nbody", "Leader election"},
		{"/docs/raft.md", "#\nbody", "raft"},
		{"/docs/notes.txt", "plain text", "notes"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, titleFor(tt.path, tt.body))
	}
}

func TestWatcher_Matches(t *testing.T) {
	w := NewWatcher(t.TempDir(), []string{".md", "TXT"}, nil, zap.NewNop())
	assert.True(t, w.matches("a/b.md"))
	assert.True(t, w.matches("a/b.txt"))
	assert.False(t, w.matches("a/b.go"))

	all := NewWatcher(t.TempDir(), nil, nil, zap.NewNop())
	assert.True(t, all.matches("a/b.go"))
}

func TestWatcher_SyncsAndFollowsChanges(t *testing.T) {
	in, ks := newTestIngester(t)
	ctx := context.Background()
	dir := t.TempDir()

	existing := filepath.Join(dir, "existing.md")
	writeFile(t, existing, "already here before start")

	w := NewWatcher(dir, []string{"md"}, in, zap.NewNop())
	w.SetDebounce(20 * time.Millisecond)
	require.NoError(t, w.Start(ctx))
	t.Cleanup(w.Stop)

	_, ok := in.DocumentID(existing)
	assert.True(t, ok, "existing files are indexed on start")

	added := filepath.Join(dir, "added.md")
	writeFile(t, added, "raft leader election")
	require.Eventually(t, func() bool {
		_, ok := in.DocumentID(added)
		return ok
	}, 5*time.Second, 20*time.Millisecond)

	hits, err := ks.Search(ctx, domain.DocumentSearchOpts{Query: "raft leader election", Limit: 5})
	require.NoError(t, err)
	assert.NotEmpty(t, hits)

	require.NoError(t, os.Remove(added))
	require.Eventually(t, func() bool {
		_, ok := in.DocumentID(added)
		return !ok
	}, 5*time.Second, 20*time.Millisecond)

	ignored := filepath.Join(dir, "ignored.go")
	writeFile(t, ignored, "package x")
	time.Sleep(100 * time.Millisecond)
	_, ok = in.DocumentID(ignored)
	assert.False(t, ok)
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	in, _ := newTestIngester(t)
	w := NewWatcher(t.TempDir(), nil, in, zap.NewNop())
	require.NoError(t, w.Start(context.Background()))
	w.Stop()
	w.Stop()
}
