package taskqueue

import (
	"encoding/json"
	"time"
)

// TaskType 任务类型
type TaskType string

const (
	// TaskPublishBatch 整批文档发布比较任务
	TaskPublishBatch TaskType = "publish_batch"
	// TaskPublishDocument 单篇文档发布比较任务
	TaskPublishDocument TaskType = "publish_document"
)

// TaskStatus 任务状态
type TaskStatus string

const (
	// StatusPending 等待处理
	StatusPending TaskStatus = "pending"
	// StatusProcessing 处理中
	StatusProcessing TaskStatus = "processing"
	// StatusCompleted 已完成
	StatusCompleted TaskStatus = "completed"
	// StatusFailed 处理失败
	StatusFailed TaskStatus = "failed"
)

// Task 任务基础结构
type Task struct {
	ID          string          `json:"id"`           // 任务唯一标识符
	Type        TaskType        `json:"type"`         // 任务类型
	DocumentID  string          `json:"document_id"`  // 关联的逻辑文档ID（批处理任务为空）
	Status      TaskStatus      `json:"status"`       // 任务状态
	Payload     json.RawMessage `json:"payload"`      // 任务载荷数据，不同任务类型对应不同结构
	Result      json.RawMessage `json:"result"`       // 任务结果数据，不同任务类型对应不同结构
	Error       string          `json:"error"`        // 错误信息（如果处理失败）
	CreatedAt   time.Time       `json:"created_at"`   // 创建时间
	UpdatedAt   time.Time       `json:"updated_at"`   // 更新时间
	StartedAt   *time.Time      `json:"started_at"`   // 开始处理时间
	CompletedAt *time.Time      `json:"completed_at"` // 完成时间
	Attempts    int             `json:"attempts"`     // 尝试次数
	MaxRetries  int             `json:"max_retries"`  // 最大重试次数
}

// PublishBatchPayload 整批发布任务载荷
type PublishBatchPayload struct {
	RunID string `json:"run_id"` // 预先创建的比较任务记录ID
}

// PublishBatchResult 整批发布任务结果
type PublishBatchResult struct {
	RunID         string   `json:"run_id"`         // 比较任务记录ID
	DocumentCount int      `json:"document_count"` // 处理的文档数量
	ChangedCount  int      `json:"changed_count"`  // 有变更的文档数量
	ErrorCount    int      `json:"error_count"`    // 处理失败的文档数量
	ChangedIDs    []string `json:"changed_ids"`    // 有变更的逻辑文档ID列表
	Error         string   `json:"error"`          // 错误信息（如果有）
}

// PublishDocumentPayload 单篇发布任务载荷
type PublishDocumentPayload struct {
	DocID string `json:"doc_id"` // 逻辑文档ID
}

// PublishDocumentResult 单篇发布任务结果
type PublishDocumentResult struct {
	DocID          string  `json:"doc_id"`          // 逻辑文档ID
	Changed        bool    `json:"changed"`         // 是否判定为有变更
	Similarity     float64 `json:"similarity"`      // 整篇文档相似度
	NoticeInserted bool    `json:"notice_inserted"` // 是否插入了变更摘要
	Error          string  `json:"error"`           // 错误信息（如果有）
}

// TaskCallback 任务回调信息
type TaskCallback struct {
	TaskID     string          `json:"task_id"`     // 任务ID
	DocumentID string          `json:"document_id"` // 逻辑文档ID
	Status     TaskStatus      `json:"status"`      // 任务状态
	Type       TaskType        `json:"type"`        // 任务类型
	Result     json.RawMessage `json:"result"`      // 任务结果
	Error      string          `json:"error"`       // 错误信息
	Timestamp  time.Time       `json:"timestamp"`   // 回调时间戳
}
