package repository

import "github.com/fyerfyer/doc-diff-system/internal/models"

// DiffRepository 比较任务与发布版本的仓储接口
// 负责DiffRun和DocumentRevision元数据的存储和检索
type DiffRepository interface {
	// CreateRun 创建比较任务记录
	CreateRun(run *models.DiffRun) error

	// UpdateRun 更新比较任务记录
	UpdateRun(run *models.DiffRun) error

	// GetRun 根据ID获取比较任务
	GetRun(id string) (*models.DiffRun, error)

	// ListRuns 按开始时间倒序列出比较任务，支持分页
	ListRuns(offset, limit int) ([]*models.DiffRun, int64, error)

	// CreateRevision 归档一条发布版本记录
	CreateRevision(rev *models.DocumentRevision) error

	// LatestRevision 获取文档最近一次发布的版本
	// 没有历史版本时返回models.ErrRevisionNotFound
	LatestRevision(docID string) (*models.DocumentRevision, error)

	// ListRevisions 按版本号倒序列出文档的全部发布版本
	ListRevisions(docID string) ([]*models.DocumentRevision, error)
}
