package document

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/fyerfyer/doc-diff-system/internal/models"
)

// Region 文档的主内容区
// Content是容器的内部标记，逐字保留；Offset是该内部标记在整篇文档中的起始字节偏移
type Region struct {
	Content string
	Offset  int
}

// 允许提取的块级元素标签与类型的映射
var blockKinds = map[string]models.BlockKind{
	"p":          models.KindParagraph,
	"h1":         models.KindHeading,
	"h2":         models.KindHeading,
	"h3":         models.KindHeading,
	"h4":         models.KindHeading,
	"h5":         models.KindHeading,
	"h6":         models.KindHeading,
	"li":         models.KindListItem,
	"blockquote": models.KindBlockquote,
}

// MainRegion 定位文档的主内容区
// 优先取第一个<main>容器，其次取第一个class包含content的容器，
// 都没有时退回整篇文档
func MainRegion(doc string) Region {
	if r, ok := findContainer(doc, func(tok html.Token) bool {
		return tok.Data == "main"
	}); ok {
		return r
	}
	if r, ok := findContainer(doc, func(tok html.Token) bool {
		for _, a := range tok.Attr {
			if a.Key == "class" && hasClassToken(a.Val, "content") {
				return true
			}
		}
		return false
	}); ok {
		return r
	}
	return Region{Content: doc, Offset: 0}
}

// findContainer 扫描文档，返回第一个满足条件的容器的内部标记及其偏移
func findContainer(doc string, want func(tok html.Token) bool) (Region, bool) {
	z := html.NewTokenizer(strings.NewReader(doc))
	pos := 0
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return Region{}, false
		}
		n := len(z.Raw())
		if tt == html.StartTagToken {
			tok := z.Token()
			if want(tok) {
				innerStart := pos + n
				innerEnd, ok := scanToClose(z, tok.Data, innerStart)
				if !ok {
					return Region{}, false
				}
				return Region{Content: doc[innerStart:innerEnd], Offset: innerStart}, true
			}
		}
		pos += n
	}
}

// scanToClose 从当前扫描位置继续前进，直到同名标签的匹配闭合处
// 返回闭标签之前的字节偏移
func scanToClose(z *html.Tokenizer, name string, pos int) (int, bool) {
	depth := 1
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return 0, false
		}
		n := len(z.Raw())
		switch tt {
		case html.StartTagToken:
			if tagName(z) == name {
				depth++
			}
		case html.EndTagToken:
			if tagName(z) == name {
				depth--
				if depth == 0 {
					return pos, true
				}
			}
		}
		pos += n
	}
}

// Elements 从内容区片段中提取块级元素序列
// baseOffset是片段在整篇文档中的起始偏移，用于换算元素的绝对字节位置
// 纯文本为空的元素不参与比较，直接丢弃；相同内容的重复元素按出现顺序分别保留
func Elements(fragment string, baseOffset int) []models.BlockElement {
	z := html.NewTokenizer(strings.NewReader(fragment))
	var out []models.BlockElement
	pos := 0

	// 当前正在收集的元素状态
	var (
		open  bool
		tag   string
		kind  models.BlockKind
		start int
		depth int
		text  strings.Builder
	)

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		n := len(z.Raw())
		switch tt {
		case html.StartTagToken:
			name := tagName(z)
			if !open {
				if k, ok := blockKinds[name]; ok {
					open, tag, kind, start, depth = true, name, k, pos, 1
					text.Reset()
				}
			} else if name == tag {
				// 同名嵌套（例如嵌套列表中的li），计数以便找到正确的闭合标签
				depth++
			}
		case html.EndTagToken:
			if open && tagName(z) == tag {
				depth--
				if depth == 0 {
					end := pos + n
					plain := strings.TrimSpace(text.String())
					if plain != "" {
						out = append(out, models.BlockElement{
							Kind:      kind,
							Tag:       tag,
							RawMarkup: fragment[start:end],
							PlainText: plain,
							Position:  len(out),
							Start:     baseOffset + start,
							End:       baseOffset + end,
						})
					}
					open = false
				}
			}
		case html.TextToken:
			if open {
				// Text已由分词器完成实体反转义
				text.Write(z.Text())
			}
		}
		pos += n
	}
	return out
}

// tagName 返回当前标签token的小写标签名
func tagName(z *html.Tokenizer) string {
	name, _ := z.TagName()
	return string(name)
}

// hasClassToken 判断class属性值中是否包含指定token
func hasClassToken(class, token string) bool {
	for _, t := range strings.Fields(class) {
		if t == token {
			return true
		}
	}
	return false
}
