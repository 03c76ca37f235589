package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyerfyer/doc-diff-system/internal/models"
)

// TestMainRegion 测试主内容区定位
func TestMainRegion(t *testing.T) {
	// 优先取<main>容器
	doc := `<body><nav><p>nav text</p></nav><main class="content"><p>body</p></main></body>`
	region := MainRegion(doc)
	assert.Equal(t, "<p>body</p>", region.Content)
	assert.Equal(t, doc[region.Offset:region.Offset+len(region.Content)], region.Content)

	// 没有<main>时取class包含content的容器
	doc = `<body><div class="sidebar content extra"><p>inner</p></div></body>`
	region = MainRegion(doc)
	assert.Equal(t, "<p>inner</p>", region.Content)

	// class必须按token匹配，"contents"不算
	doc = `<body><div class="contents"><p>x</p></div></body>`
	region = MainRegion(doc)
	assert.Equal(t, doc, region.Content)
	assert.Equal(t, 0, region.Offset)
}

// TestMainRegionNestedDiv 同名嵌套时定位第一个容器的正确闭合处
func TestMainRegionNestedDiv(t *testing.T) {
	doc := `<div class="content"><div><p>deep</p></div></div><div>after</div>`
	region := MainRegion(doc)
	assert.Equal(t, `<div><p>deep</p></div>`, region.Content)
}

// TestElements 测试块级元素提取
func TestElements(t *testing.T) {
	fragment := `<h1 id="t">Title</h1><p>First paragraph.</p><ul><li>item one</li><li>item two</li></ul><blockquote><p>quoted</p></blockquote>`
	els := Elements(fragment, 0)
	require.Len(t, els, 5)

	assert.Equal(t, models.KindHeading, els[0].Kind)
	assert.Equal(t, "Title", els[0].PlainText)
	assert.Equal(t, `<h1 id="t">Title</h1>`, els[0].RawMarkup)

	assert.Equal(t, models.KindParagraph, els[1].Kind)
	assert.Equal(t, "First paragraph.", els[1].PlainText)

	assert.Equal(t, models.KindListItem, els[2].Kind)
	assert.Equal(t, "item one", els[2].PlainText)
	assert.Equal(t, models.KindListItem, els[3].Kind)
	assert.Equal(t, "item two", els[3].PlainText)

	// blockquote在顶层被整体提取，内部的p不再单独出现
	assert.Equal(t, models.KindBlockquote, els[4].Kind)
	assert.Equal(t, "quoted", els[4].PlainText)

	// Position按出现顺序递增
	for i, el := range els {
		assert.Equal(t, i, el.Position)
	}
}

// TestElementsByteSpans 元素的字节区间精确覆盖其原始标记
func TestElementsByteSpans(t *testing.T) {
	fragment := `<p>alpha</p><p>beta</p>`
	base := 100
	els := Elements(fragment, base)
	require.Len(t, els, 2)

	for _, el := range els {
		assert.Equal(t, el.RawMarkup, fragment[el.Start-base:el.End-base])
	}
}

// TestElementsEmptyExcluded 纯文本为空的元素不参与提取
func TestElementsEmptyExcluded(t *testing.T) {
	fragment := `<p>   </p><p></p><p>real</p>`
	els := Elements(fragment, 0)
	require.Len(t, els, 1)
	assert.Equal(t, "real", els[0].PlainText)
	assert.Equal(t, 0, els[0].Position)
}

// TestElementsDuplicates 内容相同的重复元素按出现顺序分别保留
func TestElementsDuplicates(t *testing.T) {
	fragment := `<p>same</p><p>same</p>`
	els := Elements(fragment, 0)
	require.Len(t, els, 2)
	assert.Equal(t, els[0].PlainText, els[1].PlainText)
	assert.NotEqual(t, els[0].Start, els[1].Start)
}

// TestElementsEntities 实体在纯文本中被反转义
func TestElementsEntities(t *testing.T) {
	els := Elements(`<p>a &amp; b &lt;c&gt;</p>`, 0)
	require.Len(t, els, 1)
	assert.Equal(t, "a & b <c>", els[0].PlainText)
}

// TestElementsNestedList 嵌套列表中的同名标签正确配对
func TestElementsNestedList(t *testing.T) {
	fragment := `<ul><li>outer<ul><li>inner</li></ul></li></ul>`
	els := Elements(fragment, 0)
	require.Len(t, els, 1)
	assert.Equal(t, "li", els[0].Tag)
	// 外层li整体提取，内部文本合并
	assert.Contains(t, els[0].PlainText, "outer")
	assert.Contains(t, els[0].PlainText, "inner")
}

// TestElementsInlineMarkupKept 行内标记保留在RawMarkup中，PlainText只含文本
func TestElementsInlineMarkupKept(t *testing.T) {
	fragment := `<p>with <strong>bold</strong> text</p>`
	els := Elements(fragment, 0)
	require.Len(t, els, 1)
	assert.Equal(t, fragment, els[0].RawMarkup)
	assert.Equal(t, "with bold text", els[0].PlainText)
}

// TestElementsSkipNonBlock 不在允许列表中的顶层元素被跳过
func TestElementsSkipNonBlock(t *testing.T) {
	fragment := `<div>wrapper text</div><p>kept</p><pre>code</pre>`
	els := Elements(fragment, 0)
	require.Len(t, els, 1)
	assert.Equal(t, "kept", els[0].PlainText)
}
