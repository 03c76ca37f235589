package highlight

import (
	"path"
	"strings"

	"golang.org/x/net/html"
)

// TocChangedClass 指向已变更文档的导航链接追加的高亮class
const TocChangedClass = "toc-changed"

// AnnotateTOC 为文档导航区中指向已变更文档的链接追加高亮class
// 对整个文档集的每一页都要调用：页面自身内容未变时，
// 它的导航仍然可能需要"该章节在别处有变更"的标记
// 追加前先检查class是否已存在，重复调用不会叠加（幂等）
func AnnotateTOC(doc string, changedIDs []string) string {
	if len(changedIDs) == 0 {
		return doc
	}
	ids := make(map[string]struct{}, len(changedIDs))
	for _, id := range changedIDs {
		ids[id] = struct{}{}
	}

	z := html.NewTokenizer(strings.NewReader(doc))
	var repls []Replacement
	pos := 0
	navDepth := 0
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		n := len(z.Raw())
		switch tt {
		case html.StartTagToken:
			name := tagName(z)
			if name == "nav" {
				navDepth++
			} else if name == "a" && navDepth > 0 {
				tok := z.Token()
				if markup, ok := annotateLink(tok, ids); ok {
					repls = append(repls, Replacement{Start: pos, End: pos + n, Markup: markup})
				}
			}
		case html.EndTagToken:
			if tagName(z) == "nav" && navDepth > 0 {
				navDepth--
			}
		}
		pos += n
	}
	return Apply(doc, repls)
}

// annotateLink 在链接指向变更文档且尚未标注时重建其开标签
func annotateLink(tok html.Token, ids map[string]struct{}) (string, bool) {
	var href, class string
	for _, a := range tok.Attr {
		switch a.Key {
		case "href":
			href = a.Val
		case "class":
			class = a.Val
		}
	}
	if href == "" || !targetChanged(href, ids) {
		return "", false
	}
	if hasClassToken(class, TocChangedClass) {
		return "", false
	}

	var b strings.Builder
	b.WriteString("<a")
	hasClass := false
	for _, a := range tok.Attr {
		val := a.Val
		if a.Key == "class" {
			hasClass = true
			if val == "" {
				val = TocChangedClass
			} else {
				val += " " + TocChangedClass
			}
		}
		b.WriteString(" " + a.Key + `="` + html.EscapeString(val) + `"`)
	}
	if !hasClass {
		b.WriteString(` class="` + TocChangedClass + `"`)
	}
	b.WriteString(">")
	return b.String(), true
}

// targetChanged 判断链接目标是否属于变更文档集合
// 目标按文件名去扩展名后与逻辑文档ID比较，忽略查询串与片段
func targetChanged(href string, ids map[string]struct{}) bool {
	target := href
	if i := strings.IndexAny(target, "#?"); i >= 0 {
		target = target[:i]
	}
	if target == "" {
		return false
	}
	base := path.Base(target)
	stem := strings.TrimSuffix(base, path.Ext(base))
	_, ok := ids[stem]
	return ok
}

// hasClassToken 判断class属性值中是否已包含指定token
func hasClassToken(class, token string) bool {
	for _, t := range strings.Fields(class) {
		if t == token {
			return true
		}
	}
	return false
}
