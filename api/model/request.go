package model

// 分页请求参数
type PaginationRequest struct {
	Page     int `form:"page" json:"page" binding:"omitempty,min=1"`           // 当前页码，从1开始
	PageSize int `form:"page_size" json:"page_size" binding:"omitempty,min=1"` // 每页记录数
}

// GetPage 获取页码，默认为1
func (p *PaginationRequest) GetPage() int {
	if p.Page <= 0 {
		return 1
	}
	return p.Page
}

// GetPageSize 获取每页记录数，默认为10，最大为100
func (p *PaginationRequest) GetPageSize() int {
	if p.PageSize <= 0 {
		return 10
	}
	if p.PageSize > 100 {
		return 100
	}
	return p.PageSize
}

// PublishRequest 发布请求
// DocID为空时发布整个文档集；Async为true且配置了队列时异步执行
type PublishRequest struct {
	DocID string `json:"doc_id" binding:"omitempty"` // 可选的逻辑文档ID，只发布单篇
	Async bool   `json:"async" binding:"omitempty"`  // 是否异步执行
}

// RunStatusRequest 比较任务查询请求
type RunStatusRequest struct {
	ID string `uri:"id" binding:"required"` // 比较任务ID
}

// RunListRequest 比较任务列表请求
type RunListRequest struct {
	PaginationRequest
}

// DocumentRequest 文档查询请求
type DocumentRequest struct {
	ID string `uri:"id" binding:"required"` // 逻辑文档ID
}

// TaskStatusRequest 队列任务查询请求
// Wait大于0时阻塞等待至多该秒数，直到任务进入终态
type TaskStatusRequest struct {
	ID   string `uri:"id" binding:"required"`                  // 队列任务ID
	Wait int    `form:"wait" binding:"omitempty,min=0,max=60"` // 等待秒数，0为立即返回
}
