package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/fyerfyer/doc-diff-system/api/middleware"
	"github.com/fyerfyer/doc-diff-system/api/model"
	"github.com/fyerfyer/doc-diff-system/pkg/taskqueue"
)

// TaskHandler 处理队列任务相关的API请求
// 仅在配置了任务队列的部署中注册
type TaskHandler struct {
	queue  taskqueue.Queue // 任务队列
	logger *logrus.Logger  // 日志记录器
}

// NewTaskHandler 创建新的任务处理器
func NewTaskHandler(queue taskqueue.Queue) *TaskHandler {
	return &TaskHandler{
		queue:  queue,
		logger: middleware.GetLogger(),
	}
}

// GetTask 查询队列任务状态
// GET /api/tasks/:id，带wait参数时阻塞等待任务进入终态
func (h *TaskHandler) GetTask(c *gin.Context) {
	var req model.TaskStatusRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(
			http.StatusBadRequest,
			"invalid task id",
		))
		return
	}
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(
			http.StatusBadRequest,
			"invalid wait parameter",
		))
		return
	}

	var (
		task *taskqueue.Task
		err  error
	)
	if req.Wait > 0 {
		task, err = h.queue.WaitForTask(c.Request.Context(), req.ID, time.Duration(req.Wait)*time.Second)
		if errors.Is(err, taskqueue.ErrTaskTimeout) {
			// 等待超时不是错误，返回任务当前状态
			task, err = h.queue.GetTask(c.Request.Context(), req.ID)
		}
	} else {
		task, err = h.queue.GetTask(c.Request.Context(), req.ID)
	}

	if err != nil {
		if errors.Is(err, taskqueue.ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, model.NewErrorResponse(
				http.StatusNotFound,
				"task not found",
			))
			return
		}

		h.logger.WithFields(logrus.Fields{
			"task_id": req.ID,
			"error":   err.Error(),
		}).Error("Failed to get task")

		c.JSON(http.StatusInternalServerError, model.NewErrorResponse(
			http.StatusInternalServerError,
			"failed to get task",
		))
		return
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(taskqueue.NewTaskInfo(task)))
}

// ListDocumentTasks 列出文档关联的发布任务
// GET /api/documents/:id/tasks
func (h *TaskHandler) ListDocumentTasks(c *gin.Context) {
	var req model.DocumentRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(
			http.StatusBadRequest,
			"invalid document id",
		))
		return
	}

	tasks, err := h.queue.GetTasksByDocument(c.Request.Context(), req.ID)
	if err != nil {
		h.logger.WithFields(logrus.Fields{
			"doc_id": req.ID,
			"error":  err.Error(),
		}).Error("Failed to list document tasks")

		c.JSON(http.StatusInternalServerError, model.NewErrorResponse(
			http.StatusInternalServerError,
			"failed to list document tasks",
		))
		return
	}

	infos := make([]*taskqueue.TaskInfo, 0, len(tasks))
	for _, task := range tasks {
		infos = append(infos, taskqueue.NewTaskInfo(task))
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(model.TaskListResponse{
		DocID: req.ID,
		Tasks: infos,
	}))
}

// DeleteTask 删除队列任务记录
// DELETE /api/tasks/:id
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	var req model.TaskStatusRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(
			http.StatusBadRequest,
			"invalid task id",
		))
		return
	}

	if err := h.queue.DeleteTask(c.Request.Context(), req.ID); err != nil {
		if errors.Is(err, taskqueue.ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, model.NewErrorResponse(
				http.StatusNotFound,
				"task not found",
			))
			return
		}

		h.logger.WithFields(logrus.Fields{
			"task_id": req.ID,
			"error":   err.Error(),
		}).Error("Failed to delete task")

		c.JSON(http.StatusInternalServerError, model.NewErrorResponse(
			http.StatusInternalServerError,
			"failed to delete task",
		))
		return
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(nil))
}
