package version

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/fyerfyer/doc-diff-system/internal/models"
	"github.com/fyerfyer/doc-diff-system/internal/repository"
	"github.com/fyerfyer/doc-diff-system/pkg/storage"
)

// Store 发布版本提供方接口
// 比较引擎通过它取得文档上一次发布的内容；取不到时返回
// models.ErrRevisionNotFound，表示"没有历史版本可比较"
type Store interface {
	// Latest 返回文档最近一次发布的渲染内容
	Latest(ctx context.Context, docID string) (string, error)

	// Publish 归档一份新的渲染内容并登记版本记录
	// 内容与最近版本完全一致时不产生新版本
	Publish(ctx context.Context, docID string, content string) (*models.DocumentRevision, error)
}

// ArchiveStore 基于归档存储的版本提供方实现
// 渲染内容存入blob存储，版本元数据记录在数据库
type ArchiveStore struct {
	storage storage.Storage           // 归档内容存储
	repo    repository.DiffRepository // 版本元数据仓储
	logger  *logrus.Logger            // 日志记录器
}

// NewArchiveStore 创建归档版本提供方
func NewArchiveStore(st storage.Storage, repo repository.DiffRepository, logger *logrus.Logger) *ArchiveStore {
	if logger == nil {
		logger = logrus.New()
	}
	return &ArchiveStore{
		storage: st,
		repo:    repo,
		logger:  logger,
	}
}

// Latest 返回文档最近一次发布的渲染内容
func (s *ArchiveStore) Latest(ctx context.Context, docID string) (string, error) {
	rev, err := s.repo.LatestRevision(docID)
	if err != nil {
		if errors.Is(err, models.ErrRevisionNotFound) {
			return "", err
		}
		return "", fmt.Errorf("failed to look up latest revision for %s: %v", docID, err)
	}

	rc, err := s.storage.Get(rev.BlobKey)
	if err != nil {
		return "", fmt.Errorf("failed to load archived content for %s: %v", docID, err)
	}
	defer rc.Close()

	content, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("failed to read archived content for %s: %v", docID, err)
	}
	return string(content), nil
}

// Publish 归档一份新的渲染内容并登记版本记录
func (s *ArchiveStore) Publish(ctx context.Context, docID string, content string) (*models.DocumentRevision, error) {
	hash := contentHash(content)

	// 查询最近版本；内容未变时直接复用，避免归档膨胀
	next := 1
	latest, err := s.repo.LatestRevision(docID)
	if err == nil {
		if latest.ContentHash == hash {
			return latest, nil
		}
		next = latest.Revision + 1
	} else if !errors.Is(err, models.ErrRevisionNotFound) {
		return nil, fmt.Errorf("failed to look up latest revision for %s: %v", docID, err)
	}

	info, err := s.storage.Save(strings.NewReader(content), docID+".html")
	if err != nil {
		return nil, fmt.Errorf("failed to archive content for %s: %v", docID, err)
	}

	rev := &models.DocumentRevision{
		DocID:       docID,
		Revision:    next,
		BlobKey:     info.ID,
		ContentHash: hash,
		Size:        info.Size,
	}
	if err := s.repo.CreateRevision(rev); err != nil {
		return nil, fmt.Errorf("failed to record revision for %s: %v", docID, err)
	}

	s.logger.WithFields(logrus.Fields{
		"doc_id":   docID,
		"revision": rev.Revision,
		"size":     rev.Size,
	}).Info("Archived new document revision")

	return rev, nil
}

// contentHash 计算内容的SHA-256摘要（十六进制）
func contentHash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
