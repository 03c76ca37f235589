package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/fyerfyer/doc-diff-system/internal/database"
	"github.com/fyerfyer/doc-diff-system/internal/models"
)

// diffRepository 比较任务仓储实现
type diffRepository struct {
	db *gorm.DB // 数据库连接
}

// NewDiffRepository 创建比较任务仓储实例
func NewDiffRepository() DiffRepository {
	return &diffRepository{
		db: database.MustDB(),
	}
}

// NewDiffRepositoryWithDB 使用指定的数据库连接创建比较任务仓储实例
func NewDiffRepositoryWithDB(db *gorm.DB) DiffRepository {
	if db == nil {
		db = database.MustDB()
	}
	return &diffRepository{db: db}
}

// CreateRun 创建比较任务记录
func (r *diffRepository) CreateRun(run *models.DiffRun) error {
	if run.ID == "" {
		return errors.New("run ID cannot be empty")
	}
	return r.db.Create(run).Error
}

// UpdateRun 更新比较任务记录
func (r *diffRepository) UpdateRun(run *models.DiffRun) error {
	if run.ID == "" {
		return errors.New("run ID cannot be empty")
	}
	return r.db.Save(run).Error
}

// GetRun 根据ID获取比较任务
func (r *diffRepository) GetRun(id string) (*models.DiffRun, error) {
	var run models.DiffRun
	err := r.db.Where("id = ?", id).First(&run).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrRunNotFound
		}
		return nil, err
	}
	return &run, nil
}

// ListRuns 按开始时间倒序列出比较任务，支持分页
func (r *diffRepository) ListRuns(offset, limit int) ([]*models.DiffRun, int64, error) {
	var runs []*models.DiffRun
	var total int64

	if err := r.db.Model(&models.DiffRun{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.Order("started_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&runs).Error
	if err != nil {
		return nil, 0, err
	}
	return runs, total, nil
}

// CreateRevision 归档一条发布版本记录
func (r *diffRepository) CreateRevision(rev *models.DocumentRevision) error {
	if rev.DocID == "" {
		return errors.New("revision document ID cannot be empty")
	}
	return r.db.Create(rev).Error
}

// LatestRevision 获取文档最近一次发布的版本
func (r *diffRepository) LatestRevision(docID string) (*models.DocumentRevision, error) {
	var rev models.DocumentRevision
	err := r.db.Where("doc_id = ?", docID).
		Order("revision DESC").
		First(&rev).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrRevisionNotFound
		}
		return nil, err
	}
	return &rev, nil
}

// ListRevisions 按版本号倒序列出文档的全部发布版本
func (r *diffRepository) ListRevisions(docID string) ([]*models.DocumentRevision, error) {
	var revs []*models.DocumentRevision
	err := r.db.Where("doc_id = ?", docID).
		Order("revision DESC").
		Find(&revs).Error
	if err != nil {
		return nil, err
	}
	return revs, nil
}
