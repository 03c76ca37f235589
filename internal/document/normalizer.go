package document

import "regexp"

var (
	// 标记注释，非贪婪匹配，允许跨行
	commentPattern = regexp.MustCompile(`(?s)<!--.*?-->`)
	// 任意空白字符的连续run（包含换行）
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// Normalize 归一化标记文本，用于整篇文档的相似度计算
// 移除所有标记注释，并把空白run折叠为单个空格
// 纯函数，无副作用；不要对将要重新插入文档的片段调用它
func Normalize(markup string) string {
	s := commentPattern.ReplaceAllString(markup, "")
	return whitespacePattern.ReplaceAllString(s, " ")
}
