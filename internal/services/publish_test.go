package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/fyerfyer/doc-diff-system/internal/models"
	"github.com/fyerfyer/doc-diff-system/internal/render"
	"github.com/fyerfyer/doc-diff-system/internal/repository"
	"github.com/fyerfyer/doc-diff-system/internal/version"
	"github.com/fyerfyer/doc-diff-system/pkg/storage"
)

// publishFixture 端到端测试环境：临时源目录、输出目录、归档与数据库
type publishFixture struct {
	service   *PublishService
	sourceDir string
	outputDir string
}

// newPublishFixture 搭建完整的发布服务及其依赖
func newPublishFixture(t *testing.T) *publishFixture {
	t.Helper()

	sourceDir := t.TempDir()
	outputDir := t.TempDir()

	st, err := storage.NewLocalStorage(storage.LocalConfig{Path: t.TempDir()})
	require.NoError(t, err)

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.DiffRun{}, &models.DocumentRevision{}))
	repo := repository.NewDiffRepositoryWithDB(db)

	svc := NewPublishService(
		render.NewRenderer("Test Docs"),
		NewDiffService(),
		version.NewArchiveStore(st, repo, nil),
		repo,
		sourceDir,
		outputDir,
	)
	return &publishFixture{service: svc, sourceDir: sourceDir, outputDir: outputDir}
}

// writePage 往源目录写入一篇markdown文档
func (f *publishFixture) writePage(t *testing.T, id string, content string) {
	t.Helper()
	err := os.WriteFile(filepath.Join(f.sourceDir, id+".md"), []byte(content), 0o644)
	require.NoError(t, err)
}

// readOutput 读取输出目录中的标注页面
func (f *publishFixture) readOutput(t *testing.T, id string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(f.outputDir, id+".html"))
	require.NoError(t, err)
	return string(data)
}

// TestPublishAllFirstRun 首次发布：没有历史版本，所有文档按整篇新增处理
func TestPublishAllFirstRun(t *testing.T) {
	f := newPublishFixture(t)
	f.writePage(t, "guide", "# Guide\n\nGetting started with the system.\n")
	f.writePage(t, "intro", "# Intro\n\nWelcome to the documentation.\n")

	run, err := f.service.PublishAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, models.RunStatusCompleted, run.Status)
	assert.Equal(t, 2, run.DocumentCount)
	assert.Equal(t, 2, run.ChangedCount)
	assert.Equal(t, 0, run.ErrorCount)
	assert.NotNil(t, run.CompletedAt)

	// 没有旧版本时所有元素都标记为新增
	out := f.readOutput(t, "intro")
	assert.Contains(t, out, `class="diff-added"`)

	// 两篇都变更，导航链接应带变更标注
	assert.Contains(t, out, "toc-changed")
}

// TestPublishAllUnchangedRun 源内容未变的重复发布：无标记、版本不增长
func TestPublishAllUnchangedRun(t *testing.T) {
	f := newPublishFixture(t)
	f.writePage(t, "intro", "# Intro\n\nStable content here.\n")

	_, err := f.service.PublishAll(context.Background())
	require.NoError(t, err)

	run, err := f.service.PublishAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, models.RunStatusCompleted, run.Status)
	assert.Equal(t, 0, run.ChangedCount)

	out := f.readOutput(t, "intro")
	assert.NotContains(t, out, "diff-added")
	assert.NotContains(t, out, "diff-changed")
	assert.NotContains(t, out, "diff-notice")
	assert.NotContains(t, out, "toc-changed")

	// 内容一致时归档去重，版本号不增长
	revs, err := f.service.ListRevisions("intro")
	require.NoError(t, err)
	require.Len(t, revs, 1)
	assert.Equal(t, 1, revs[0].Revision)
}

// TestPublishAllModifiedRun 修改一篇文档：本篇出现修改标记，
// 其余页面的导航指向它的链接也被标注
func TestPublishAllModifiedRun(t *testing.T) {
	f := newPublishFixture(t)
	f.writePage(t, "guide", "# Guide\n\nThe cat sits on the mat today.\n")
	f.writePage(t, "intro", "# Intro\n\nWelcome to the documentation.\n")

	_, err := f.service.PublishAll(context.Background())
	require.NoError(t, err)

	f.writePage(t, "guide", "# Guide\n\nThe dog sits on the mat today.\n")
	run, err := f.service.PublishAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, run.ChangedCount)

	out := f.readOutput(t, "guide")
	assert.Contains(t, out, `class="diff-changed"`)
	assert.Contains(t, out, `title="cat"`)

	// 未变更页面的导航中，指向变更文档的链接被标注
	intro := f.readOutput(t, "intro")
	assert.NotContains(t, intro, "diff-changed")
	assert.Contains(t, intro, `href="guide.html" class="toc-link toc-changed"`)
	// 指向未变更文档的链接保持原样
	assert.NotContains(t, intro, `href="intro.html" class="toc-link toc-changed"`)

	// 变更内容产生新的归档版本
	revs, err := f.service.ListRevisions("guide")
	require.NoError(t, err)
	require.Len(t, revs, 2)
	assert.Equal(t, 2, revs[0].Revision)
}

// TestPublishOne 单篇发布：只处理指定文档，导航仍覆盖全集
func TestPublishOne(t *testing.T) {
	f := newPublishFixture(t)
	f.writePage(t, "guide", "# Guide\n\nSome guide content.\n")
	f.writePage(t, "intro", "# Intro\n\nSome intro content.\n")

	result, err := f.service.PublishOne(context.Background(), "guide")
	require.NoError(t, err)
	assert.Equal(t, "guide", result.DocID)
	assert.True(t, result.Changed())

	out := f.readOutput(t, "guide")
	assert.Contains(t, out, `href="intro.html"`)

	// 另一篇尚未发布，输出目录里不应出现它
	_, err = os.Stat(filepath.Join(f.outputDir, "intro.html"))
	assert.True(t, os.IsNotExist(err))
}

// TestPublishOneUnknownDocument 源目录中不存在的文档返回错误
func TestPublishOneUnknownDocument(t *testing.T) {
	f := newPublishFixture(t)
	f.writePage(t, "intro", "# Intro\n\nContent.\n")

	_, err := f.service.PublishOne(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")
}

// TestPublishAllMissingSourceDir 源目录不存在时任务标记为失败
func TestPublishAllMissingSourceDir(t *testing.T) {
	f := newPublishFixture(t)
	f.service.sourceDir = filepath.Join(f.sourceDir, "nope")

	run, err := f.service.PublishAll(context.Background())
	require.Error(t, err)
	require.NotNil(t, run)

	stored, err := f.service.GetRun(run.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusFailed, stored.Status)
	assert.NotEmpty(t, stored.Error)
}

// TestGetPublishedPage 读取已发布页面及未发布文档的哨兵错误
func TestGetPublishedPage(t *testing.T) {
	f := newPublishFixture(t)
	f.writePage(t, "intro", "# Intro\n\nContent.\n")

	_, err := f.service.GetPublishedPage("intro")
	assert.ErrorIs(t, err, models.ErrRevisionNotFound)

	_, err = f.service.PublishAll(context.Background())
	require.NoError(t, err)

	page, err := f.service.GetPublishedPage("intro")
	require.NoError(t, err)
	assert.Contains(t, page, "<main")
}

// TestListRunsAfterPublish 发布后任务记录可分页查询
func TestListRunsAfterPublish(t *testing.T) {
	f := newPublishFixture(t)
	f.writePage(t, "intro", "# Intro\n\nContent.\n")

	_, err := f.service.PublishAll(context.Background())
	require.NoError(t, err)
	_, err = f.service.PublishAll(context.Background())
	require.NoError(t, err)

	runs, total, err := f.service.ListRuns(0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, runs, 2)
}
