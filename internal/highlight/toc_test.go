package highlight

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const tocDoc = `<body><nav class="toc"><ul>` +
	`<li><a href="intro.html" class="toc-link">Intro</a></li>` +
	`<li><a href="setup.html" class="toc-link">Setup</a></li>` +
	`<li><a href="faq.html" class="toc-link">FAQ</a></li>` +
	`</ul></nav><main><p>body</p><a href="setup.html">inline link</a></main></body>`

// TestAnnotateTOC 指向变更文档的导航链接被追加高亮class
func TestAnnotateTOC(t *testing.T) {
	out := AnnotateTOC(tocDoc, []string{"setup"})

	// setup链接获得标记
	assert.Contains(t, out, `<a href="setup.html" class="toc-link toc-changed">`)
	// 其他链接保持不变
	assert.Contains(t, out, `<a href="intro.html" class="toc-link">`)
	assert.Contains(t, out, `<a href="faq.html" class="toc-link">`)
	// 导航区之外的链接不受影响
	assert.Contains(t, out, `<a href="setup.html">inline link</a>`)
}

// TestAnnotateTOCIdempotent 重复标注不叠加class
func TestAnnotateTOCIdempotent(t *testing.T) {
	once := AnnotateTOC(tocDoc, []string{"setup"})
	twice := AnnotateTOC(once, []string{"setup"})
	assert.Equal(t, once, twice)
	assert.Equal(t, 1, strings.Count(twice, "toc-changed"))
}

// TestAnnotateTOCMultipleChanged 多个变更文档的链接都被标记
func TestAnnotateTOCMultipleChanged(t *testing.T) {
	out := AnnotateTOC(tocDoc, []string{"intro", "faq"})
	assert.Contains(t, out, `<a href="intro.html" class="toc-link toc-changed">`)
	assert.Contains(t, out, `<a href="faq.html" class="toc-link toc-changed">`)
	assert.Contains(t, out, `<a href="setup.html" class="toc-link">`)
}

// TestAnnotateTOCEmptyChangeSet 变更集为空时文档原样返回
func TestAnnotateTOCEmptyChangeSet(t *testing.T) {
	assert.Equal(t, tocDoc, AnnotateTOC(tocDoc, nil))
}

// TestAnnotateTOCHrefVariants 链接目标按文件名去扩展名比较，片段与查询串被忽略
func TestAnnotateTOCHrefVariants(t *testing.T) {
	doc := `<nav>` +
		`<a href="./guide/setup.html#install">Setup</a>` +
		`<a href="setup.html?v=2">Setup v2</a>` +
		`<a href="#section">Anchor only</a>` +
		`</nav>`
	out := AnnotateTOC(doc, []string{"setup"})

	assert.Contains(t, out, `href="./guide/setup.html#install" class="toc-changed"`)
	assert.Contains(t, out, `href="setup.html?v=2" class="toc-changed"`)
	// 纯片段链接没有目标文档，保持不变
	assert.Contains(t, out, `<a href="#section">`)
}

// TestAnnotateTOCNoClassAttr 没有class属性的链接获得新的class属性
func TestAnnotateTOCNoClassAttr(t *testing.T) {
	doc := `<nav><a href="setup.html">Setup</a></nav>`
	out := AnnotateTOC(doc, []string{"setup"})
	assert.Contains(t, out, `<a href="setup.html" class="toc-changed">`)
}
