package highlight

import (
	"fmt"
	"math"
	"strings"

	"github.com/fyerfyer/doc-diff-system/internal/diff"
	"github.com/fyerfyer/doc-diff-system/internal/document"
)

const (
	// NoticeClass 变更摘要提示块的class名
	NoticeClass = "diff-notice"

	// DefaultNoticeThreshold 整篇文档相似度高于该值时不插入摘要
	DefaultNoticeThreshold = 0.95

	// bannerAnchor 既有"文档已变更"横幅的锚点特征
	bannerAnchor = `class="changed-banner"`
)

// InsertNotice 计算整篇文档的相似度并在需要时插入变更摘要
// 相似度基于归一化后的新旧内容区片段计算
// 返回处理后的文档、相似度以及是否插入了摘要
// 整篇相似度与逐元素分类是两条独立信号，允许二者不一致
func InsertNotice(doc, oldFragment, newFragment string, threshold float64) (string, float64, bool) {
	ratio := diff.Ratio(document.Normalize(oldFragment), document.Normalize(newFragment))
	if ratio > threshold {
		return doc, ratio, false
	}

	percent := int(math.Round((1 - ratio) * 100))
	notice := fmt.Sprintf(
		`<div class="%s">Approximately %d%% of this page changed since the previous published version.</div>`,
		NoticeClass, percent)

	// 优先插入到既有横幅之后
	if idx := strings.Index(doc, bannerAnchor); idx >= 0 {
		if end := strings.Index(doc[idx:], "</div>"); end >= 0 {
			at := idx + end + len("</div>")
			return doc[:at] + notice + doc[at:], ratio, true
		}
	}

	// 退而求其次，插入到主内容容器开标签之后
	// 容器定位和提取器走同一套规则：<main>优先，其次class包含content的容器
	// Offset为0说明定位退回了整篇文档，此时没有可用锚点
	if r := document.MainRegion(doc); r.Offset > 0 {
		return doc[:r.Offset] + notice + doc[r.Offset:], ratio, true
	}

	// 两个锚点都不存在，静默跳过插入
	return doc, ratio, false
}
