package version

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/fyerfyer/doc-diff-system/internal/models"
	"github.com/fyerfyer/doc-diff-system/internal/repository"
	"github.com/fyerfyer/doc-diff-system/pkg/storage"
)

// newTestStore 创建基于临时目录与临时sqlite的归档版本提供方
func newTestStore(t *testing.T) *ArchiveStore {
	t.Helper()

	st, err := storage.NewLocalStorage(storage.LocalConfig{Path: t.TempDir()})
	require.NoError(t, err)

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.DiffRun{}, &models.DocumentRevision{}))

	return NewArchiveStore(st, repository.NewDiffRepositoryWithDB(db), nil)
}

// TestLatestMissing 没有历史版本时返回哨兵错误
func TestLatestMissing(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Latest(context.Background(), "intro")
	assert.ErrorIs(t, err, models.ErrRevisionNotFound)
}

// TestPublishAndLatest 发布后能取回完全相同的内容
func TestPublishAndLatest(t *testing.T) {
	s := newTestStore(t)
	content := "<html><body><p>revision body</p></body></html>"

	rev, err := s.Publish(context.Background(), "intro", content)
	require.NoError(t, err)
	assert.Equal(t, 1, rev.Revision)
	assert.Equal(t, int64(len(content)), rev.Size)
	assert.NotEmpty(t, rev.ContentHash)

	got, err := s.Latest(context.Background(), "intro")
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

// TestPublishDeduplicates 内容未变时复用最近版本，不产生新归档
func TestPublishDeduplicates(t *testing.T) {
	s := newTestStore(t)
	content := "<p>unchanged</p>"

	first, err := s.Publish(context.Background(), "intro", content)
	require.NoError(t, err)
	second, err := s.Publish(context.Background(), "intro", content)
	require.NoError(t, err)

	assert.Equal(t, first.Revision, second.Revision)
	assert.Equal(t, first.BlobKey, second.BlobKey)
}

// TestPublishIncrementsRevision 内容变化时版本号递增
func TestPublishIncrementsRevision(t *testing.T) {
	s := newTestStore(t)

	first, err := s.Publish(context.Background(), "intro", "<p>one</p>")
	require.NoError(t, err)
	second, err := s.Publish(context.Background(), "intro", "<p>two</p>")
	require.NoError(t, err)

	assert.Equal(t, 1, first.Revision)
	assert.Equal(t, 2, second.Revision)
	assert.NotEqual(t, first.ContentHash, second.ContentHash)

	// Latest返回最新内容
	got, err := s.Latest(context.Background(), "intro")
	require.NoError(t, err)
	assert.Equal(t, "<p>two</p>", got)
}

// TestPublishPerDocumentIsolation 不同文档的版本序列相互独立
func TestPublishPerDocumentIsolation(t *testing.T) {
	s := newTestStore(t)

	a, err := s.Publish(context.Background(), "alpha", "<p>a</p>")
	require.NoError(t, err)
	b, err := s.Publish(context.Background(), "beta", "<p>b</p>")
	require.NoError(t, err)

	assert.Equal(t, 1, a.Revision)
	assert.Equal(t, 1, b.Revision)

	got, err := s.Latest(context.Background(), "alpha")
	require.NoError(t, err)
	assert.Equal(t, "<p>a</p>", got)
}
