package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/fyerfyer/doc-diff-system/api"
	"github.com/fyerfyer/doc-diff-system/api/handler"
	"github.com/fyerfyer/doc-diff-system/api/model"
	"github.com/fyerfyer/doc-diff-system/internal/models"
	"github.com/fyerfyer/doc-diff-system/internal/render"
	"github.com/fyerfyer/doc-diff-system/internal/repository"
	"github.com/fyerfyer/doc-diff-system/internal/services"
	"github.com/fyerfyer/doc-diff-system/internal/version"
	"github.com/fyerfyer/doc-diff-system/pkg/storage"
)

// setupTestRouter 搭建带真实发布服务的测试路由
func setupTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	sourceDir := t.TempDir()
	err := os.WriteFile(
		filepath.Join(sourceDir, "intro.md"),
		[]byte("# Intro\n\nWelcome to the documentation.\n"),
		0o644,
	)
	require.NoError(t, err)

	st, err := storage.NewLocalStorage(storage.LocalConfig{Path: t.TempDir()})
	require.NoError(t, err)

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.DiffRun{}, &models.DocumentRevision{}))
	repo := repository.NewDiffRepositoryWithDB(db)

	publisher := services.NewPublishService(
		render.NewRenderer("Test Docs"),
		services.NewDiffService(),
		version.NewArchiveStore(st, repo, nil),
		repo,
		sourceDir,
		t.TempDir(),
	)
	return api.SetupRouter(handler.NewPublishHandler(publisher), nil)
}

// doRequest 发出请求并返回记录的响应
func doRequest(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// parseResponse 解析通用响应结构
func parseResponse(t *testing.T, w *httptest.ResponseRecorder) model.Response {
	t.Helper()
	var resp model.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

// TestTriggerPublishFullSync 空请求体触发全量同步发布
func TestTriggerPublishFullSync(t *testing.T) {
	router := setupTestRouter(t)

	w := doRequest(router, http.MethodPost, "/api/publish", "")
	require.Equal(t, http.StatusOK, w.Code)

	resp := parseResponse(t, w)
	assert.Equal(t, 0, resp.Code)

	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var info model.RunInfo
	require.NoError(t, json.Unmarshal(data, &info))
	assert.Equal(t, string(models.RunStatusCompleted), info.Status)
	assert.Equal(t, 1, info.DocumentCount)
	assert.Equal(t, 1, info.ChangedCount)
}

// TestTriggerPublishSingleDocument 指定doc_id只发布单篇
func TestTriggerPublishSingleDocument(t *testing.T) {
	router := setupTestRouter(t)

	w := doRequest(router, http.MethodPost, "/api/publish", `{"doc_id":"intro"}`)
	require.Equal(t, http.StatusOK, w.Code)

	resp := parseResponse(t, w)
	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var info model.DiffResultInfo
	require.NoError(t, json.Unmarshal(data, &info))
	assert.Equal(t, "intro", info.DocID)
	assert.True(t, info.Changed)
	assert.Greater(t, info.Added, 0)
}

// TestTriggerPublishUnknownDocument 不存在的文档返回服务端错误
func TestTriggerPublishUnknownDocument(t *testing.T) {
	router := setupTestRouter(t)

	w := doRequest(router, http.MethodPost, "/api/publish", `{"doc_id":"missing"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

// TestGetRunAndList 发布后可查询任务状态与任务列表
func TestGetRunAndList(t *testing.T) {
	router := setupTestRouter(t)

	w := doRequest(router, http.MethodPost, "/api/publish", "")
	require.Equal(t, http.StatusOK, w.Code)

	resp := parseResponse(t, w)
	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var created model.RunInfo
	require.NoError(t, json.Unmarshal(data, &created))

	// 按ID查询
	w = doRequest(router, http.MethodGet, "/api/runs/"+created.ID, "")
	require.Equal(t, http.StatusOK, w.Code)

	// 列表查询
	w = doRequest(router, http.MethodGet, "/api/runs?page=1&page_size=10", "")
	require.Equal(t, http.StatusOK, w.Code)
	resp = parseResponse(t, w)
	data, err = json.Marshal(resp.Data)
	require.NoError(t, err)
	var list model.RunListResponse
	require.NoError(t, json.Unmarshal(data, &list))
	assert.Equal(t, int64(1), list.Total)
	require.Len(t, list.Runs, 1)
	assert.Equal(t, created.ID, list.Runs[0].ID)
}

// TestGetRunNotFound 未知任务ID返回404
func TestGetRunNotFound(t *testing.T) {
	router := setupTestRouter(t)

	w := doRequest(router, http.MethodGet, "/api/runs/no-such-run", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// TestGetDocument 发布后能取回标注页面，未发布时返回404
func TestGetDocument(t *testing.T) {
	router := setupTestRouter(t)

	w := doRequest(router, http.MethodGet, "/api/documents/intro", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(router, http.MethodPost, "/api/publish", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, http.MethodGet, "/api/documents/intro", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "<main")
	assert.Contains(t, w.Body.String(), "diff-added")
}

// TestListRevisions 发布后版本列表包含一条记录
func TestListRevisions(t *testing.T) {
	router := setupTestRouter(t)

	w := doRequest(router, http.MethodPost, "/api/publish", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, http.MethodGet, "/api/documents/intro/revisions", "")
	require.Equal(t, http.StatusOK, w.Code)

	resp := parseResponse(t, w)
	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var list model.RevisionListResponse
	require.NoError(t, json.Unmarshal(data, &list))
	assert.Equal(t, "intro", list.DocID)
	require.Len(t, list.Revisions, 1)
	assert.Equal(t, 1, list.Revisions[0].Revision)
}

// TestHealthCheck 健康检查端点
func TestHealthCheck(t *testing.T) {
	router := setupTestRouter(t)

	w := doRequest(router, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}
