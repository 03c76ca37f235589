package api

import (
	"github.com/gin-gonic/gin"

	"github.com/fyerfyer/doc-diff-system/api/handler"
	"github.com/fyerfyer/doc-diff-system/api/middleware"
)

// SetupRouter 设置API路由
// 配置所有的API端点并应用中间件
// taskHandler为nil时不注册队列任务相关端点
func SetupRouter(publishHandler *handler.PublishHandler, taskHandler *handler.TaskHandler) *gin.Engine {
	// 创建默认的Gin路由引擎
	router := gin.Default()

	// 应用全局中间件
	router.Use(middleware.Logger())
	router.Use(middleware.ErrorMiddleware())
	router.Use(middleware.SetTraceID())

	// 在调试模式下记录请求体
	if gin.Mode() == gin.DebugMode {
		router.Use(middleware.RequestBodyLog())
	}

	// 创建API分组
	api := router.Group("/api")
	{
		// 触发发布流程 - POST /api/publish
		api.POST("/publish", publishHandler.TriggerPublish)

		// 比较任务API
		runGroup := api.Group("/runs")
		{
			// 获取任务列表 - GET /api/runs
			runGroup.GET("", publishHandler.ListRuns)

			// 查询任务状态 - GET /api/runs/:id
			runGroup.GET("/:id", publishHandler.GetRun)
		}

		// 文档API
		docGroup := api.Group("/documents")
		{
			// 读取标注页面 - GET /api/documents/:id
			docGroup.GET("/:id", publishHandler.GetDocument)

			// 列出发布版本 - GET /api/documents/:id/revisions
			docGroup.GET("/:id/revisions", publishHandler.ListRevisions)

			// 列出文档关联的发布任务 - GET /api/documents/:id/tasks
			if taskHandler != nil {
				docGroup.GET("/:id/tasks", taskHandler.ListDocumentTasks)
			}
		}

		// 队列任务API，仅在配置了任务队列时可用
		if taskHandler != nil {
			taskGroup := api.Group("/tasks")
			{
				// 查询任务状态 - GET /api/tasks/:id
				taskGroup.GET("/:id", taskHandler.GetTask)

				// 删除任务记录 - DELETE /api/tasks/:id
				taskGroup.DELETE("/:id", taskHandler.DeleteTask)
			}
		}

		// 健康检查API
		api.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status": "ok",
			})
		})
	}

	return router
}
