package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/fyerfyer/doc-diff-system/api/middleware"
	"github.com/fyerfyer/doc-diff-system/api/model"
	"github.com/fyerfyer/doc-diff-system/internal/models"
	"github.com/fyerfyer/doc-diff-system/internal/services"
	"github.com/fyerfyer/doc-diff-system/pkg/taskqueue"
)

// PublishHandler 处理发布与比较相关的API请求
type PublishHandler struct {
	publisher *services.PublishService // 发布服务
	logger    *logrus.Logger           // 日志记录器
}

// NewPublishHandler 创建新的发布处理器
func NewPublishHandler(publisher *services.PublishService) *PublishHandler {
	return &PublishHandler{
		publisher: publisher,
		logger:    middleware.GetLogger(),
	}
}

// TriggerPublish 触发发布流程
// POST /api/publish
func (h *PublishHandler) TriggerPublish(c *gin.Context) {
	// 绑定请求参数，空请求体按全量同步发布处理
	var req model.PublishRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.logger.WithField("error", err.Error()).Warn("Invalid publish request")
			c.JSON(http.StatusBadRequest, model.NewErrorResponse(
				http.StatusBadRequest,
				"invalid publish request",
			))
			return
		}
	}

	// 单篇异步发布
	if req.DocID != "" && req.Async {
		taskID, err := h.publisher.EnqueuePublishDocument(c.Request.Context(), req.DocID)
		if err != nil {
			h.logger.WithFields(logrus.Fields{
				"doc_id": req.DocID,
				"error":  err.Error(),
			}).Error("Failed to enqueue document publish task")

			c.JSON(http.StatusInternalServerError, model.NewErrorResponse(
				http.StatusInternalServerError,
				"failed to enqueue document publish task",
			))
			return
		}

		c.JSON(http.StatusAccepted, model.NewSuccessResponse(model.PublishResponse{
			TaskID: taskID,
			DocID:  req.DocID,
			Status: string(taskqueue.StatusPending),
		}))
		return
	}

	// 单篇发布
	if req.DocID != "" {
		result, err := h.publisher.PublishOne(c.Request.Context(), req.DocID)
		if err != nil {
			h.logger.WithFields(logrus.Fields{
				"doc_id": req.DocID,
				"error":  err.Error(),
			}).Error("Failed to publish document")

			c.JSON(http.StatusInternalServerError, model.NewErrorResponse(
				http.StatusInternalServerError,
				"failed to publish document",
			))
			return
		}

		c.JSON(http.StatusOK, model.NewSuccessResponse(model.DiffResultInfo{
			DocID:          result.DocID,
			Changed:        result.Changed(),
			Similarity:     result.Similarity,
			NoticeInserted: result.NoticeInserted,
			Added:          result.Stats.Added,
			Modified:       result.Stats.Modified,
			Unchanged:      result.Stats.Unchanged,
		}))
		return
	}

	// 异步整批发布
	if req.Async {
		taskID, run, err := h.publisher.EnqueuePublish(c.Request.Context())
		if err != nil {
			h.logger.WithField("error", err.Error()).Error("Failed to enqueue publish run")
			c.JSON(http.StatusInternalServerError, model.NewErrorResponse(
				http.StatusInternalServerError,
				"failed to enqueue publish run",
			))
			return
		}

		c.JSON(http.StatusAccepted, model.NewSuccessResponse(model.PublishResponse{
			RunID:  run.ID,
			TaskID: taskID,
			Status: string(run.Status),
		}))
		return
	}

	// 同步整批发布
	run, err := h.publisher.PublishAll(c.Request.Context())
	if err != nil {
		h.logger.WithField("error", err.Error()).Error("Failed to execute publish run")
		c.JSON(http.StatusInternalServerError, model.NewErrorResponse(
			http.StatusInternalServerError,
			"failed to execute publish run",
		))
		return
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(model.NewRunInfo(run)))
}

// GetRun 查询比较任务状态
// GET /api/runs/:id
func (h *PublishHandler) GetRun(c *gin.Context) {
	var req model.RunStatusRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(
			http.StatusBadRequest,
			"invalid run id",
		))
		return
	}

	run, err := h.publisher.GetRun(req.ID)
	if err != nil {
		if errors.Is(err, models.ErrRunNotFound) {
			c.JSON(http.StatusNotFound, model.NewErrorResponse(
				http.StatusNotFound,
				"run not found",
			))
			return
		}

		h.logger.WithFields(logrus.Fields{
			"run_id": req.ID,
			"error":  err.Error(),
		}).Error("Failed to get run")

		c.JSON(http.StatusInternalServerError, model.NewErrorResponse(
			http.StatusInternalServerError,
			"failed to get run",
		))
		return
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(model.NewRunInfo(run)))
}

// ListRuns 分页列出比较任务
// GET /api/runs
func (h *PublishHandler) ListRuns(c *gin.Context) {
	var req model.RunListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(
			http.StatusBadRequest,
			"invalid pagination parameters",
		))
		return
	}

	page := req.GetPage()
	pageSize := req.GetPageSize()
	runs, total, err := h.publisher.ListRuns((page-1)*pageSize, pageSize)
	if err != nil {
		h.logger.WithField("error", err.Error()).Error("Failed to list runs")
		c.JSON(http.StatusInternalServerError, model.NewErrorResponse(
			http.StatusInternalServerError,
			"failed to list runs",
		))
		return
	}

	infos := make([]model.RunInfo, 0, len(runs))
	for _, run := range runs {
		infos = append(infos, model.NewRunInfo(run))
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(model.RunListResponse{
		Total:    total,
		Page:     page,
		PageSize: pageSize,
		Runs:     infos,
	}))
}

// GetDocument 读取文档最近一次发布的标注页面
// GET /api/documents/:id
func (h *PublishHandler) GetDocument(c *gin.Context) {
	var req model.DocumentRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(
			http.StatusBadRequest,
			"invalid document id",
		))
		return
	}

	page, err := h.publisher.GetPublishedPage(req.ID)
	if err != nil {
		if errors.Is(err, models.ErrRevisionNotFound) {
			c.JSON(http.StatusNotFound, model.NewErrorResponse(
				http.StatusNotFound,
				"document not published",
			))
			return
		}

		h.logger.WithFields(logrus.Fields{
			"doc_id": req.ID,
			"error":  err.Error(),
		}).Error("Failed to read published page")

		c.JSON(http.StatusInternalServerError, model.NewErrorResponse(
			http.StatusInternalServerError,
			"failed to read published page",
		))
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
}

// ListRevisions 列出文档的全部发布版本
// GET /api/documents/:id/revisions
func (h *PublishHandler) ListRevisions(c *gin.Context) {
	var req model.DocumentRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(
			http.StatusBadRequest,
			"invalid document id",
		))
		return
	}

	revs, err := h.publisher.ListRevisions(req.ID)
	if err != nil {
		h.logger.WithFields(logrus.Fields{
			"doc_id": req.ID,
			"error":  err.Error(),
		}).Error("Failed to list revisions")

		c.JSON(http.StatusInternalServerError, model.NewErrorResponse(
			http.StatusInternalServerError,
			"failed to list revisions",
		))
		return
	}

	infos := make([]model.RevisionInfo, 0, len(revs))
	for _, rev := range revs {
		infos = append(infos, model.NewRevisionInfo(rev))
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(model.RevisionListResponse{
		DocID:     req.ID,
		Revisions: infos,
	}))
}
