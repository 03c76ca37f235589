package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"github.com/fyerfyer/doc-diff-system/internal/highlight"
	"github.com/fyerfyer/doc-diff-system/internal/models"
	"github.com/fyerfyer/doc-diff-system/internal/render"
	"github.com/fyerfyer/doc-diff-system/internal/repository"
	"github.com/fyerfyer/doc-diff-system/internal/version"
	"github.com/fyerfyer/doc-diff-system/pkg/taskqueue"
)

// PublishService 文档集发布服务
// 负责整批文档的渲染、与上一版本比较、标注输出、
// 版本归档以及跨文档的导航标注
type PublishService struct {
	renderer  *render.Renderer          // 页面渲染器
	differ    *DiffService              // 文档比较服务
	versions  version.Store             // 发布版本提供方
	repo      repository.DiffRepository // 任务与版本元数据仓储
	queue     taskqueue.Queue           // 任务队列(可选，用于异步发布)
	sourceDir string                    // markdown源目录
	outputDir string                    // 标注后页面的输出目录
	logger    *logrus.Logger            // 日志记录器
}

// PublishServiceOption 发布服务的配置选项函数
type PublishServiceOption func(*PublishService)

// WithPublishQueue 设置任务队列，启用异步发布
func WithPublishQueue(q taskqueue.Queue) PublishServiceOption {
	return func(s *PublishService) {
		s.queue = q
	}
}

// WithPublishLogger 设置日志记录器
func WithPublishLogger(logger *logrus.Logger) PublishServiceOption {
	return func(s *PublishService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewPublishService 创建发布服务
func NewPublishService(
	renderer *render.Renderer,
	differ *DiffService,
	versions version.Store,
	repo repository.DiffRepository,
	sourceDir, outputDir string,
	opts ...PublishServiceOption,
) *PublishService {
	s := &PublishService{
		renderer:  renderer,
		differ:    differ,
		versions:  versions,
		repo:      repo,
		sourceDir: sourceDir,
		outputDir: outputDir,
		logger:    logrus.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PublishAll 同步发布整个文档集
// 每篇文档独立处理：单篇失败只计入错误数，不影响其他文档；
// 全部处理完后对每一页做导航标注，最后更新任务记录
func (s *PublishService) PublishAll(ctx context.Context) (*models.DiffRun, error) {
	run := &models.DiffRun{
		ID:     uuid.New().String(),
		Status: models.RunStatusRunning,
	}
	if err := s.repo.CreateRun(run); err != nil {
		return nil, fmt.Errorf("failed to create diff run: %v", err)
	}
	return run, s.executeRun(ctx, run)
}

// ExecuteRun 执行一个已创建的比较任务
// 异步路径下由任务处理器调用，run记录已由入队方预先创建
func (s *PublishService) ExecuteRun(ctx context.Context, runID string) error {
	run, err := s.repo.GetRun(runID)
	if err != nil {
		return err
	}
	run.Status = models.RunStatusRunning
	if err := s.repo.UpdateRun(run); err != nil {
		return fmt.Errorf("failed to mark run as running: %v", err)
	}
	return s.executeRun(ctx, run)
}

// executeRun 执行发布流程并把结果写回run记录
func (s *PublishService) executeRun(ctx context.Context, run *models.DiffRun) error {
	pages, err := render.LoadPages(s.sourceDir)
	if err != nil {
		return s.failRun(run, err)
	}
	if err := os.MkdirAll(s.outputDir, 0o755); err != nil {
		return s.failRun(run, fmt.Errorf("failed to create output directory: %v", err))
	}

	nav := s.renderer.BuildNav(pages)
	stats := make(map[string]models.ElementStats, len(pages))
	var changedIDs []string

	run.DocumentCount = len(pages)
	for _, page := range pages {
		result, err := s.publishPage(ctx, page, nav)
		if err != nil {
			// 单篇失败不阻塞其余文档
			run.ErrorCount++
			s.logger.WithFields(logrus.Fields{
				"run_id": run.ID,
				"doc_id": page.ID,
			}).Errorf("Failed to publish document: %v", err)
			continue
		}
		stats[page.ID] = result.Stats
		if result.Changed() {
			changedIDs = append(changedIDs, page.ID)
		}
	}
	run.ChangedCount = len(changedIDs)

	// 变更集确定后对每一页的导航做跨文档标注
	// 页面自身没变时它的导航仍可能指向变更文档
	if len(changedIDs) > 0 {
		for _, page := range pages {
			if err := s.annotateNav(page.ID, changedIDs); err != nil {
				s.logger.WithFields(logrus.Fields{
					"run_id": run.ID,
					"doc_id": page.ID,
				}).Warnf("Failed to annotate navigation: %v", err)
			}
		}
	}

	if data, err := json.Marshal(changedIDs); err == nil {
		run.ChangedIDs = datatypes.JSON(data)
	}
	if data, err := json.Marshal(stats); err == nil {
		run.Stats = datatypes.JSON(data)
	}

	now := time.Now()
	run.Status = models.RunStatusCompleted
	run.CompletedAt = &now
	if err := s.repo.UpdateRun(run); err != nil {
		return fmt.Errorf("failed to update diff run: %v", err)
	}

	s.logger.WithFields(logrus.Fields{
		"run_id":    run.ID,
		"documents": run.DocumentCount,
		"changed":   run.ChangedCount,
		"errors":    run.ErrorCount,
	}).Info("Publish run completed")
	return nil
}

// publishPage 发布单篇文档：渲染、比较、写出标注结果、归档干净版本
func (s *PublishService) publishPage(ctx context.Context, page render.Page, nav string) (*DiffResult, error) {
	clean := s.renderer.RenderPage(page, nav)

	// 取上一版本；没有历史版本属于降级但合法的模式
	oldHTML, err := s.versions.Latest(ctx, page.ID)
	if err != nil && !errors.Is(err, models.ErrRevisionNotFound) {
		// 取旧版本失败按"无历史版本"处理，不阻塞本篇发布
		s.logger.WithField("doc_id", page.ID).
			Warnf("Failed to fetch previous revision, treating as first publish: %v", err)
		oldHTML = ""
	}

	result, err := s.differ.Compare(ctx, page.ID, oldHTML, clean)
	if err != nil {
		return nil, fmt.Errorf("failed to compare document %s: %v", page.ID, err)
	}

	outPath := filepath.Join(s.outputDir, page.ID+".html")
	if err := os.WriteFile(outPath, []byte(result.Annotated), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write annotated page: %v", err)
	}

	// 归档的永远是干净渲染结果，标注不参与下一轮比较
	if _, err := s.versions.Publish(ctx, page.ID, clean); err != nil {
		return nil, err
	}
	return result, nil
}

// annotateNav 对单页输出做导航标注，内容无变化时不回写
func (s *PublishService) annotateNav(docID string, changedIDs []string) error {
	outPath := filepath.Join(s.outputDir, docID+".html")
	data, err := os.ReadFile(outPath)
	if err != nil {
		return fmt.Errorf("failed to read published page: %v", err)
	}
	annotated := highlight.AnnotateTOC(string(data), changedIDs)
	if annotated == string(data) {
		return nil
	}
	if err := os.WriteFile(outPath, []byte(annotated), 0o644); err != nil {
		return fmt.Errorf("failed to write annotated page: %v", err)
	}
	return nil
}

// PublishOne 同步发布单篇文档
// 导航仍基于整个文档集生成，保证页面结构与批量发布一致
func (s *PublishService) PublishOne(ctx context.Context, docID string) (*DiffResult, error) {
	pages, err := render.LoadPages(s.sourceDir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(s.outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %v", err)
	}

	nav := s.renderer.BuildNav(pages)
	for _, page := range pages {
		if page.ID != docID {
			continue
		}
		result, err := s.publishPage(ctx, page, nav)
		if err != nil {
			return nil, err
		}
		if result.Changed() {
			for _, p := range pages {
				if err := s.annotateNav(p.ID, []string{docID}); err != nil {
					s.logger.WithField("doc_id", p.ID).
						Warnf("Failed to annotate navigation: %v", err)
				}
			}
		}
		return result, nil
	}
	return nil, fmt.Errorf("document %s not found in source directory", docID)
}

// EnqueuePublish 异步发布整个文档集
// 预先创建pending状态的run记录并入队，返回任务ID和run记录
func (s *PublishService) EnqueuePublish(ctx context.Context) (string, *models.DiffRun, error) {
	if s.queue == nil {
		return "", nil, fmt.Errorf("task queue is not configured")
	}

	run := &models.DiffRun{
		ID:     uuid.New().String(),
		Status: models.RunStatusPending,
	}
	if err := s.repo.CreateRun(run); err != nil {
		return "", nil, fmt.Errorf("failed to create diff run: %v", err)
	}

	payload := taskqueue.PublishBatchPayload{RunID: run.ID}
	taskID, err := s.queue.Enqueue(ctx, taskqueue.TaskPublishBatch, "", payload)
	if err != nil {
		return "", nil, fmt.Errorf("failed to enqueue publish task: %v", err)
	}

	s.logger.WithFields(logrus.Fields{
		"run_id":  run.ID,
		"task_id": taskID,
	}).Info("Publish run enqueued")
	return taskID, run, nil
}

// EnqueuePublishDocument 异步发布单篇文档
// 任务以逻辑文档ID关联入队，便于按文档查询发布任务
func (s *PublishService) EnqueuePublishDocument(ctx context.Context, docID string) (string, error) {
	if s.queue == nil {
		return "", fmt.Errorf("task queue is not configured")
	}

	payload := taskqueue.PublishDocumentPayload{DocID: docID}
	taskID, err := s.queue.Enqueue(ctx, taskqueue.TaskPublishDocument, docID, payload)
	if err != nil {
		return "", fmt.Errorf("failed to enqueue document publish task: %v", err)
	}

	s.logger.WithFields(logrus.Fields{
		"doc_id":  docID,
		"task_id": taskID,
	}).Info("Document publish task enqueued")
	return taskID, nil
}

// GetRun 获取比较任务记录
func (s *PublishService) GetRun(runID string) (*models.DiffRun, error) {
	return s.repo.GetRun(runID)
}

// ListRuns 按开始时间倒序分页列出比较任务记录
func (s *PublishService) ListRuns(offset, limit int) ([]*models.DiffRun, int64, error) {
	return s.repo.ListRuns(offset, limit)
}

// ListRevisions 列出文档的全部发布版本
func (s *PublishService) ListRevisions(docID string) ([]*models.DocumentRevision, error) {
	return s.repo.ListRevisions(docID)
}

// GetPublishedPage 读取文档最近一次发布的标注结果
func (s *PublishService) GetPublishedPage(docID string) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.outputDir, docID+".html"))
	if err != nil {
		if os.IsNotExist(err) {
			return "", models.ErrRevisionNotFound
		}
		return "", fmt.Errorf("failed to read published page: %v", err)
	}
	return string(data), nil
}

// failRun 把任务标记为失败并记录错误信息
func (s *PublishService) failRun(run *models.DiffRun, cause error) error {
	now := time.Now()
	run.Status = models.RunStatusFailed
	run.Error = cause.Error()
	run.CompletedAt = &now
	if err := s.repo.UpdateRun(run); err != nil {
		s.logger.WithField("run_id", run.ID).
			Errorf("Failed to update failed run: %v", err)
	}
	return cause
}
