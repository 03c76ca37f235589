package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/fyerfyer/doc-diff-system/pkg/taskqueue"
)

// PublishTaskHandler 发布任务处理器
// 实现taskqueue.Handler接口，由工作者在异步路径下调用
type PublishTaskHandler struct {
	publisher *PublishService // 发布服务
	logger    *logrus.Logger  // 日志记录器
}

// NewPublishTaskHandler 创建发布任务处理器
func NewPublishTaskHandler(publisher *PublishService, logger *logrus.Logger) *PublishTaskHandler {
	if logger == nil {
		logger = logrus.New()
	}
	return &PublishTaskHandler{
		publisher: publisher,
		logger:    logger,
	}
}

// ProcessTask 处理发布任务
func (h *PublishTaskHandler) ProcessTask(ctx context.Context, task *taskqueue.Task) error {
	switch task.Type {
	case taskqueue.TaskPublishBatch:
		var payload taskqueue.PublishBatchPayload
		if err := taskqueue.UnmarshalPayload(task.Payload, &payload); err != nil {
			return taskqueue.ErrInvalidPayload
		}
		if payload.RunID == "" {
			return taskqueue.ErrInvalidPayload
		}

		h.logger.WithFields(logrus.Fields{
			"task_id": task.ID,
			"run_id":  payload.RunID,
		}).Info("Processing batch publish task")
		return h.publisher.ExecuteRun(ctx, payload.RunID)

	case taskqueue.TaskPublishDocument:
		var payload taskqueue.PublishDocumentPayload
		if err := taskqueue.UnmarshalPayload(task.Payload, &payload); err != nil {
			return taskqueue.ErrInvalidPayload
		}
		if payload.DocID == "" {
			return taskqueue.ErrInvalidPayload
		}

		h.logger.WithFields(logrus.Fields{
			"task_id": task.ID,
			"doc_id":  payload.DocID,
		}).Info("Processing document publish task")
		_, err := h.publisher.PublishOne(ctx, payload.DocID)
		return err

	default:
		return fmt.Errorf("unsupported task type: %s", task.Type)
	}
}

// GetTaskTypes 返回此处理器支持的任务类型
func (h *PublishTaskHandler) GetTaskTypes() []taskqueue.TaskType {
	return []taskqueue.TaskType{
		taskqueue.TaskPublishBatch,
		taskqueue.TaskPublishDocument,
	}
}
