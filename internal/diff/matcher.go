package diff

import (
	"github.com/fyerfyer/doc-diff-system/internal/models"
)

// 匹配阈值的推荐默认值
const (
	// DefaultMatchThreshold 相似度低于该值时视为互不相关，新元素按新增处理
	DefaultMatchThreshold = 0.5
	// DefaultUnchangedThreshold 相似度达到该值时视为未变更，
	// 避免把归一化没有覆盖到的纯空白漂移标成"已修改"
	DefaultUnchangedThreshold = 0.99
)

// Matcher 元素匹配策略接口
// 把新文档元素与旧文档元素配对；实现可以替换为加权二分图等
// 最优分配算法而不影响高亮器和调用方
type Matcher interface {
	// Match 返回与newEls等长的配对序列，顺序与newEls一致
	// 不变量：每个旧元素最多被一个配对认领
	Match(oldEls, newEls []models.BlockElement) []models.Match
}

// GreedyMatcher 贪心匹配器
// 按新元素出现顺序逐个认领得分最高的未被认领旧元素
// 顺序相关、非全局最优：后出现的新元素可能"抢走"更合适的候选，
// 这是有意保留的近似行为
type GreedyMatcher struct {
	MatchThreshold     float64 // 判定相关的最低相似度
	UnchangedThreshold float64 // 判定未变更的最低相似度
}

// NewGreedyMatcher 使用默认阈值创建贪心匹配器
func NewGreedyMatcher() *GreedyMatcher {
	return &GreedyMatcher{
		MatchThreshold:     DefaultMatchThreshold,
		UnchangedThreshold: DefaultUnchangedThreshold,
	}
}

// Match 执行贪心匹配
func (m *GreedyMatcher) Match(oldEls, newEls []models.BlockElement) []models.Match {
	claimed := make([]bool, len(oldEls))
	matches := make([]models.Match, 0, len(newEls))

	for i, newEl := range newEls {
		best := -1
		bestScore := 0.0
		for j, oldEl := range oldEls {
			if claimed[j] {
				continue
			}
			score := Ratio(oldEl.PlainText, newEl.PlainText)
			// 严格大于：平分时保留下标更小的旧元素，结果稳定
			if score > bestScore {
				best, bestScore = j, score
			}
		}

		if best >= 0 && bestScore > m.MatchThreshold {
			claimed[best] = true
			cls := models.ClassModified
			if bestScore >= m.UnchangedThreshold {
				cls = models.ClassUnchanged
			}
			matches = append(matches, models.Match{
				NewIndex:       i,
				OldIndex:       best,
				Similarity:     bestScore,
				Classification: cls,
			})
			continue
		}

		matches = append(matches, models.Match{
			NewIndex:       i,
			OldIndex:       -1,
			Classification: models.ClassAdded,
		})
	}
	return matches
}
