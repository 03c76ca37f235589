package highlight

import (
	"sort"
	"strings"

	"golang.org/x/net/html"

	"github.com/fyerfyer/doc-diff-system/internal/diff"
	"github.com/fyerfyer/doc-diff-system/internal/models"
)

// 高亮标记使用的class名
const (
	// AddedClass 新增内容的行内标记class
	AddedClass = "diff-added"
	// ChangedClass 修改内容的行内标记class，title属性携带修改前的文本
	ChangedClass = "diff-changed"
)

// Replacement 按字节偏移对文档做的一次替换
type Replacement struct {
	Start  int    // 被替换区间的起始偏移
	End    int    // 被替换区间的结束偏移
	Markup string // 替换后的标记内容
}

// Render 根据变更分类渲染单个新元素的标注结果
// oldText 仅在 classification 为 modified 时使用
// 拆分失败时返回原始标记和ErrMalformedElement，调用方记录后跳过即可，
// 绝不让单个元素的失败破坏整篇文档
func Render(elem models.BlockElement, oldText string, classification models.Classification) (string, error) {
	switch classification {
	case models.ClassAdded:
		open, _, closing, err := splitElement(elem.RawMarkup)
		if err != nil {
			return elem.RawMarkup, err
		}
		var b strings.Builder
		b.WriteString(open)
		b.WriteString(`<span class="` + AddedClass + `">`)
		b.WriteString(html.EscapeString(elem.PlainText))
		b.WriteString(`</span>`)
		b.WriteString(closing)
		return b.String(), nil

	case models.ClassModified:
		open, _, closing, err := splitElement(elem.RawMarkup)
		if err != nil {
			return elem.RawMarkup, err
		}
		return open + renderTokenDiff(oldText, elem.PlainText) + closing, nil
	}

	// unchanged：原样保留
	return elem.RawMarkup, nil
}

// renderTokenDiff 在token粒度对齐新旧文本并生成带行内标记的内容
// 相同的span原样通过；替换的span包裹changed标记并在title中携带旧文本；
// 插入的span包裹added标记；删除的span直接丢弃——输出只展示新文档的内容
func renderTokenDiff(oldText, newText string) string {
	oldToks := diff.Tokens(oldText)
	newToks := diff.Tokens(newText)

	var b strings.Builder
	for _, op := range diff.Opcodes(oldToks, newToks) {
		switch op.Tag {
		case 'e':
			b.WriteString(html.EscapeString(strings.Join(newToks[op.J1:op.J2], "")))
		case 'r':
			prior := strings.Join(oldToks[op.I1:op.I2], "")
			b.WriteString(`<span class="` + ChangedClass + `" title="` + html.EscapeString(prior) + `">`)
			b.WriteString(html.EscapeString(strings.Join(newToks[op.J1:op.J2], "")))
			b.WriteString(`</span>`)
		case 'i':
			b.WriteString(`<span class="` + AddedClass + `">`)
			b.WriteString(html.EscapeString(strings.Join(newToks[op.J1:op.J2], "")))
			b.WriteString(`</span>`)
		}
	}
	return b.String()
}

// Apply 把一组替换按偏移从右到左应用到文档
// 右到左应用保证前面的替换不会使后面的偏移失效；
// 与上一次替换重叠的区间会被跳过
func Apply(doc string, repls []Replacement) string {
	sorted := make([]Replacement, len(repls))
	copy(sorted, repls)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Start > sorted[j].Start
	})

	limit := len(doc)
	for _, r := range sorted {
		if r.Start < 0 || r.Start > r.End || r.End > limit {
			continue
		}
		doc = doc[:r.Start] + r.Markup + doc[r.End:]
		limit = r.Start
	}
	return doc
}

// splitElement 把元素原始标记拆分为开标签、内部内容和闭标签
// 要求第一个token是开标签且最后一个token是匹配的闭标签
func splitElement(raw string) (open, inner, closing string, err error) {
	z := html.NewTokenizer(strings.NewReader(raw))
	if z.Next() != html.StartTagToken {
		return "", "", "", models.ErrMalformedElement
	}
	tag := tagName(z)
	openEnd := len(z.Raw())

	pos := openEnd
	depth := 1
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return "", "", "", models.ErrMalformedElement
		}
		n := len(z.Raw())
		switch tt {
		case html.StartTagToken:
			if tagName(z) == tag {
				depth++
			}
		case html.EndTagToken:
			if tagName(z) == tag {
				depth--
				if depth == 0 {
					if pos+n != len(raw) {
						// 闭标签之后还有残留内容，标记不规整
						return "", "", "", models.ErrMalformedElement
					}
					return raw[:openEnd], raw[openEnd:pos], raw[pos:], nil
				}
			}
		}
		pos += n
	}
}

// tagName 返回当前标签token的小写标签名
func tagName(z *html.Tokenizer) string {
	name, _ := z.TagName()
	return string(name)
}
