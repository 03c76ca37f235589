package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// RunStatus 发布比较任务的状态类型
type RunStatus string

const (
	// RunStatusPending 任务已创建，等待执行
	RunStatusPending RunStatus = "pending"
	// RunStatusRunning 任务执行中
	RunStatusRunning RunStatus = "running"
	// RunStatusCompleted 任务执行完成
	RunStatusCompleted RunStatus = "completed"
	// RunStatusFailed 任务执行失败
	RunStatusFailed RunStatus = "failed"
)

// DiffRun 一次发布比较任务的数据模型
// 记录整批文档的渲染、比较与标注结果
type DiffRun struct {
	ID            string         `gorm:"primaryKey"`         // 任务ID，主键
	Status        RunStatus      `gorm:"not null;index"`     // 任务状态
	DocumentCount int            `gorm:"not null;default:0"` // 本次处理的文档数量
	ChangedCount  int            `gorm:"not null;default:0"` // 判定为有变更的文档数量
	ErrorCount    int            `gorm:"not null;default:0"` // 处理失败（已隔离）的文档数量
	ChangedIDs    datatypes.JSON `gorm:"type:json"`          // 有变更的逻辑文档ID列表，JSON数组
	Stats         datatypes.JSON `gorm:"type:json"`          // 各文档的元素变更统计，JSON格式
	Error         string         `gorm:"type:text"`          // 任务级错误信息（如果有）
	StartedAt     time.Time      `gorm:"not null;index"`     // 开始时间
	CompletedAt   *time.Time     `gorm:"index"`              // 完成时间
	UpdatedAt     time.Time      `gorm:"not null"`           // 更新时间
}

// BeforeCreate GORM的钩子函数，创建记录前自动设置时间
func (r *DiffRun) BeforeCreate(tx *gorm.DB) (err error) {
	if r.StartedAt.IsZero() {
		r.StartedAt = time.Now()
	}
	r.UpdatedAt = time.Now()
	return nil
}

// BeforeUpdate GORM的钩子函数，更新记录前自动设置更新时间
func (r *DiffRun) BeforeUpdate(tx *gorm.DB) (err error) {
	r.UpdatedAt = time.Now()
	return nil
}

// TableName 明确指定表名
func (DiffRun) TableName() string {
	return "diff_runs"
}

// DocumentRevision 已发布文档版本的数据模型
// 每次发布归档一份干净的渲染结果，作为下次比较的旧版本
type DocumentRevision struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"` // 主键ID
	DocID       string    `gorm:"not null;index"`           // 逻辑文档ID
	Revision    int       `gorm:"not null"`                 // 版本号，从1开始递增
	BlobKey     string    `gorm:"not null"`                 // 存储层中渲染内容的键
	ContentHash string    `gorm:"size:64;index"`            // 渲染内容的SHA-256摘要
	Size        int64     `gorm:"not null;default:0"`       // 内容大小（字节）
	PublishedAt time.Time `gorm:"not null;index"`           // 发布时间
	UpdatedAt   time.Time `gorm:"not null"`                 // 更新时间
}

// BeforeCreate GORM的钩子函数，创建记录前自动设置时间
func (r *DocumentRevision) BeforeCreate(tx *gorm.DB) (err error) {
	if r.PublishedAt.IsZero() {
		r.PublishedAt = time.Now()
	}
	r.UpdatedAt = time.Now()
	return nil
}

// BeforeUpdate GORM的钩子函数，更新记录前自动设置更新时间
func (r *DocumentRevision) BeforeUpdate(tx *gorm.DB) (err error) {
	r.UpdatedAt = time.Now()
	return nil
}

// TableName 明确指定表名
func (DocumentRevision) TableName() string {
	return "document_revisions"
}
