package diff

import (
	"unicode"

	"github.com/pmezard/go-difflib/difflib"
)

// Tokens 把文本切分为词与空白交替的token序列
// 空白run作为独立token保留，保证序列拼接后能还原原文
func Tokens(text string) []string {
	var toks []string
	runes := []rune(text)
	i := 0
	for i < len(runes) {
		j := i
		isSpace := unicode.IsSpace(runes[i])
		for j < len(runes) && unicode.IsSpace(runes[j]) == isSpace {
			j++
		}
		toks = append(toks, string(runes[i:j]))
		i = j
	}
	return toks
}

// Ratio 计算两段文本的序列相似度，取值[0,1]
// 相同文本返回1.0，随编辑距离增大单调不增（非严格数学度量）
func Ratio(a, b string) float64 {
	if a == b {
		return 1.0
	}
	return difflib.NewMatcher(Tokens(a), Tokens(b)).Ratio()
}

// Opcodes 返回两个token序列的对齐操作码
// 标记含义与difflib一致：'e'相同、'r'替换、'i'插入、'd'删除
func Opcodes(a, b []string) []difflib.OpCode {
	return difflib.NewMatcher(a, b).GetOpCodes()
}
