package render

import (
	"fmt"
	stdhtml "html"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// Page 一篇待发布的源文档
type Page struct {
	ID     string // 逻辑文档ID，取源文件名去掉扩展名
	Title  string // 页面标题
	Source []byte // markdown源内容
}

// Renderer 发布渲染器
// 把markdown源文档渲染为带导航栏与主内容容器的完整HTML页面
// 渲染结果是比较引擎的输入，页面结构保持稳定
type Renderer struct {
	siteTitle string
}

// NewRenderer 创建渲染器
func NewRenderer(siteTitle string) *Renderer {
	if siteTitle == "" {
		siteTitle = "Documentation"
	}
	return &Renderer{siteTitle: siteTitle}
}

// LoadPages 从目录读取全部markdown源文档
// 按文件名排序，保证批处理顺序稳定
func LoadPages(dir string) ([]Page, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read source directory: %v", err)
	}

	var pages []Page
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		src, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read source file %s: %v", e.Name(), err)
		}
		id := strings.TrimSuffix(e.Name(), ".md")
		pages = append(pages, Page{
			ID:     id,
			Title:  ExtractTitle(src, id),
			Source: src,
		})
	}

	sort.Slice(pages, func(i, j int) bool { return pages[i].ID < pages[j].ID })
	return pages, nil
}

// ExtractTitle 提取文档标题
// 取第一个一级标题，找不到时退回fallback
func ExtractTitle(source []byte, fallback string) string {
	for _, line := range strings.Split(string(source), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "# "))
		}
	}
	return fallback
}

// BuildNav 根据文档集合生成导航栏的内部标记
func (r *Renderer) BuildNav(pages []Page) string {
	var b strings.Builder
	b.WriteString(`<ul class="toc-list">`)
	for _, p := range pages {
		fmt.Fprintf(&b, `<li><a href="%s.html" class="toc-link">%s</a></li>`,
			p.ID, stdhtml.EscapeString(p.Title))
	}
	b.WriteString("</ul>")
	return b.String()
}

// RenderPage 把单篇源文档渲染为完整的HTML页面
func (r *Renderer) RenderPage(page Page, nav string) string {
	// 创建Markdown解析器
	extensions := parser.CommonExtensions | parser.AutoHeadingIDs
	mdParser := parser.NewWithExtensions(extensions)
	doc := mdParser.Parse(page.Source)

	// 创建HTML渲染器
	htmlFlags := mdhtml.CommonFlags
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: htmlFlags})
	body := markdown.Render(doc, renderer)

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n")
	fmt.Fprintf(&b, "<title>%s - %s</title>\n",
		stdhtml.EscapeString(page.Title), stdhtml.EscapeString(r.siteTitle))
	b.WriteString("</head>\n<body>\n")
	fmt.Fprintf(&b, "<nav class=\"toc\">%s</nav>\n", nav)
	b.WriteString("<main class=\"content\">\n")
	b.Write(body)
	b.WriteString("</main>\n</body>\n</html>\n")
	return b.String()
}
