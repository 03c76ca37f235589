package render

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 写入测试用的源文档目录
func writeSourceDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644)
		require.NoError(t, err)
	}
	return dir
}

// TestLoadPages 按文件名排序加载markdown源文档
func TestLoadPages(t *testing.T) {
	dir := writeSourceDir(t, map[string]string{
		"setup.md":  "# Setup Guide\n\nInstall things.",
		"intro.md":  "# Introduction\n\nWelcome.",
		"notes.txt": "not markdown",
	})

	pages, err := LoadPages(dir)
	require.NoError(t, err)
	require.Len(t, pages, 2)

	// 按ID排序，且非markdown文件被跳过
	assert.Equal(t, "intro", pages[0].ID)
	assert.Equal(t, "setup", pages[1].ID)
	assert.Equal(t, "Introduction", pages[0].Title)
	assert.Equal(t, "Setup Guide", pages[1].Title)
}

// TestLoadPagesMissingDir 目录不存在时返回错误
func TestLoadPagesMissingDir(t *testing.T) {
	_, err := LoadPages("/nonexistent/source/dir")
	assert.Error(t, err)
}

// TestExtractTitle 标题取第一个一级标题，找不到时退回fallback
func TestExtractTitle(t *testing.T) {
	assert.Equal(t, "My Title", ExtractTitle([]byte("intro\n\n# My Title\n\nmore"), "fb"))
	assert.Equal(t, "fb", ExtractTitle([]byte("## only second level"), "fb"))
	assert.Equal(t, "fb", ExtractTitle([]byte(""), "fb"))
}

// TestBuildNav 导航包含每篇文档的链接
func TestBuildNav(t *testing.T) {
	r := NewRenderer("Docs")
	nav := r.BuildNav([]Page{
		{ID: "intro", Title: "Introduction"},
		{ID: "setup", Title: "Setup & Install"},
	})

	assert.Contains(t, nav, `<a href="intro.html" class="toc-link">Introduction</a>`)
	// 标题中的特殊字符被转义
	assert.Contains(t, nav, `<a href="setup.html" class="toc-link">Setup &amp; Install</a>`)
}

// TestRenderPage 渲染结果是带导航与主内容容器的完整页面
func TestRenderPage(t *testing.T) {
	r := NewRenderer("Docs")
	page := Page{
		ID:     "intro",
		Title:  "Introduction",
		Source: []byte("# Introduction\n\nFirst paragraph.\n\n- item one\n- item two"),
	}
	nav := r.BuildNav([]Page{page})
	out := r.RenderPage(page, nav)

	assert.Contains(t, out, "<!DOCTYPE html>")
	assert.Contains(t, out, "<title>Introduction - Docs</title>")
	assert.Contains(t, out, `<nav class="toc">`)
	assert.Contains(t, out, `<main class="content">`)
	assert.Contains(t, out, "<p>First paragraph.</p>")
	assert.Contains(t, out, "<li>item one</li>")
}

// TestRenderPageStable 相同输入的两次渲染结果逐字节相同
func TestRenderPageStable(t *testing.T) {
	r := NewRenderer("Docs")
	page := Page{ID: "a", Title: "A", Source: []byte("# A\n\ntext")}
	nav := r.BuildNav([]Page{page})
	assert.Equal(t, r.RenderPage(page, nav), r.RenderPage(page, nav))
}
