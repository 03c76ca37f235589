package model

import (
	"encoding/json"
	"time"

	"github.com/fyerfyer/doc-diff-system/internal/models"
	"github.com/fyerfyer/doc-diff-system/pkg/taskqueue"
)

// Response 通用响应结构
type Response struct {
	Code    int         `json:"code"`               // 响应状态码，0表示成功
	Message string      `json:"message"`            // 响应消息
	Data    interface{} `json:"data,omitempty"`     // 响应数据，可能为空
	TraceID string      `json:"trace_id,omitempty"` // 调用链追踪ID
}

// NewSuccessResponse 创建成功响应
func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Code:    0,
		Message: "success",
		Data:    data,
	}
}

// NewErrorResponse 创建错误响应
func NewErrorResponse(code int, message string) *Response {
	return &Response{
		Code:    code,
		Message: message,
	}
}

// PublishResponse 发布触发响应
type PublishResponse struct {
	RunID  string `json:"run_id,omitempty"`  // 比较任务记录ID（整批路径）
	TaskID string `json:"task_id,omitempty"` // 队列任务ID（异步路径）
	DocID  string `json:"doc_id,omitempty"`  // 逻辑文档ID（单篇异步路径）
	Status string `json:"status"`            // 任务状态
}

// RunInfo 比较任务信息
type RunInfo struct {
	ID            string          `json:"id"`                     // 任务ID
	Status        string          `json:"status"`                 // 任务状态
	DocumentCount int             `json:"document_count"`         // 处理的文档数量
	ChangedCount  int             `json:"changed_count"`          // 有变更的文档数量
	ErrorCount    int             `json:"error_count"`            // 处理失败的文档数量
	ChangedIDs    json.RawMessage `json:"changed_ids,omitempty"`  // 有变更的逻辑文档ID列表
	Stats         json.RawMessage `json:"stats,omitempty"`        // 各文档的元素变更统计
	Error         string          `json:"error,omitempty"`        // 任务级错误信息
	StartedAt     time.Time       `json:"started_at"`             // 开始时间
	CompletedAt   *time.Time      `json:"completed_at,omitempty"` // 完成时间
}

// NewRunInfo 从数据模型创建比较任务信息
func NewRunInfo(run *models.DiffRun) RunInfo {
	return RunInfo{
		ID:            run.ID,
		Status:        string(run.Status),
		DocumentCount: run.DocumentCount,
		ChangedCount:  run.ChangedCount,
		ErrorCount:    run.ErrorCount,
		ChangedIDs:    json.RawMessage(run.ChangedIDs),
		Stats:         json.RawMessage(run.Stats),
		Error:         run.Error,
		StartedAt:     run.StartedAt,
		CompletedAt:   run.CompletedAt,
	}
}

// RunListResponse 比较任务列表响应
type RunListResponse struct {
	Total    int64     `json:"total"`     // 总记录数
	Page     int       `json:"page"`      // 当前页码
	PageSize int       `json:"page_size"` // 每页大小
	Runs     []RunInfo `json:"runs"`      // 任务列表
}

// RevisionInfo 发布版本信息
type RevisionInfo struct {
	DocID       string    `json:"doc_id"`       // 逻辑文档ID
	Revision    int       `json:"revision"`     // 版本号
	ContentHash string    `json:"content_hash"` // 内容摘要
	Size        int64     `json:"size"`         // 内容大小（字节）
	PublishedAt time.Time `json:"published_at"` // 发布时间
}

// NewRevisionInfo 从数据模型创建发布版本信息
func NewRevisionInfo(rev *models.DocumentRevision) RevisionInfo {
	return RevisionInfo{
		DocID:       rev.DocID,
		Revision:    rev.Revision,
		ContentHash: rev.ContentHash,
		Size:        rev.Size,
		PublishedAt: rev.PublishedAt,
	}
}

// RevisionListResponse 发布版本列表响应
type RevisionListResponse struct {
	DocID     string         `json:"doc_id"`    // 逻辑文档ID
	Revisions []RevisionInfo `json:"revisions"` // 版本列表
}

// TaskListResponse 文档关联的队列任务列表响应
type TaskListResponse struct {
	DocID string                `json:"doc_id"` // 逻辑文档ID
	Tasks []*taskqueue.TaskInfo `json:"tasks"`  // 任务列表
}

// DiffResultInfo 单篇文档的比较结果信息
type DiffResultInfo struct {
	DocID          string  `json:"doc_id"`          // 逻辑文档ID
	Changed        bool    `json:"changed"`         // 是否判定为有变更
	Similarity     float64 `json:"similarity"`      // 整篇文档相似度
	NoticeInserted bool    `json:"notice_inserted"` // 是否插入了变更摘要
	Added          int     `json:"added"`           // 新增元素数量
	Modified       int     `json:"modified"`        // 修改元素数量
	Unchanged      int     `json:"unchanged"`       // 未变更元素数量
}
