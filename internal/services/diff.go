package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fyerfyer/doc-diff-system/internal/cache"
	"github.com/fyerfyer/doc-diff-system/internal/diff"
	"github.com/fyerfyer/doc-diff-system/internal/document"
	"github.com/fyerfyer/doc-diff-system/internal/highlight"
	"github.com/fyerfyer/doc-diff-system/internal/models"
)

// DiffResult 单篇文档的比较与标注结果
type DiffResult struct {
	DocID          string              `json:"doc_id"`          // 逻辑文档ID
	Annotated      string              `json:"annotated"`       // 带变更标注的渲染结果
	Similarity     float64             `json:"similarity"`      // 整篇文档的相似度
	NoticeInserted bool                `json:"notice_inserted"` // 是否插入了变更摘要
	Stats          models.ElementStats `json:"stats"`           // 元素级变更统计
}

// Changed 判断文档是否有实质变更
// 元素级有新增或修改，或插入了整篇变更摘要，都算有变更
func (r *DiffResult) Changed() bool {
	return r.Stats.Added > 0 || r.Stats.Modified > 0 || r.NoticeInserted
}

// DiffService 文档比较服务
// 把新旧两份渲染结果送入比较流水线：定位内容区、提取块级元素、
// 匹配配对、逐元素标注、整篇插入变更摘要
type DiffService struct {
	matcher         diff.Matcher   // 元素匹配策略
	noticeThreshold float64        // 整篇变更摘要的相似度阈值
	cache           cache.Cache    // 比较结果缓存(可选)
	cacheTTL        time.Duration  // 缓存过期时间
	logger          *logrus.Logger // 日志记录器
}

// DiffServiceOption 比较服务的配置选项函数
type DiffServiceOption func(*DiffService)

// WithMatcher 设置元素匹配策略
func WithMatcher(m diff.Matcher) DiffServiceOption {
	return func(s *DiffService) {
		if m != nil {
			s.matcher = m
		}
	}
}

// WithNoticeThreshold 设置整篇变更摘要的相似度阈值
func WithNoticeThreshold(threshold float64) DiffServiceOption {
	return func(s *DiffService) {
		s.noticeThreshold = threshold
	}
}

// WithDiffCache 设置比较结果缓存
func WithDiffCache(c cache.Cache, ttl time.Duration) DiffServiceOption {
	return func(s *DiffService) {
		s.cache = c
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

// WithDiffLogger 设置日志记录器
func WithDiffLogger(logger *logrus.Logger) DiffServiceOption {
	return func(s *DiffService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewDiffService 创建文档比较服务
func NewDiffService(opts ...DiffServiceOption) *DiffService {
	s := &DiffService{
		matcher:         diff.NewGreedyMatcher(),
		noticeThreshold: highlight.DefaultNoticeThreshold,
		cacheTTL:        time.Hour * 24,
		logger:          logrus.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Compare 比较新旧两份渲染结果并返回标注后的新文档
// oldHTML为空表示没有历史版本，属于降级但合法的模式：
// 旧元素序列为空，所有新元素都会被匹配器判为新增
func (s *DiffService) Compare(ctx context.Context, docID, oldHTML, newHTML string) (*DiffResult, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	// 同一对内容重复比较时直接复用缓存结果
	key := cache.GenerateCacheKey("diff", docID, digest(oldHTML), digest(newHTML))
	if s.cache != nil {
		if cached, found, err := s.cache.Get(key); err == nil && found {
			var result DiffResult
			if err := json.Unmarshal([]byte(cached), &result); err == nil {
				s.logger.WithField("doc_id", docID).Debug("Reusing cached diff result")
				return &result, nil
			}
		}
	}

	oldRegion := document.MainRegion(oldHTML)
	newRegion := document.MainRegion(newHTML)
	oldEls := document.Elements(oldRegion.Content, oldRegion.Offset)
	newEls := document.Elements(newRegion.Content, newRegion.Offset)

	matches := s.matcher.Match(oldEls, newEls)

	result := &DiffResult{DocID: docID}
	repls := make([]highlight.Replacement, 0, len(newEls))
	for _, m := range matches {
		elem := newEls[m.NewIndex]
		switch m.Classification {
		case models.ClassUnchanged:
			result.Stats.Unchanged++
			continue
		case models.ClassModified:
			result.Stats.Modified++
		case models.ClassAdded:
			result.Stats.Added++
		}

		oldText := ""
		if m.Matched() {
			oldText = oldEls[m.OldIndex].PlainText
		}
		rendered, err := highlight.Render(elem, oldText, m.Classification)
		if err != nil {
			// 单个元素的失败只记录并跳过，不影响整篇文档
			if errors.Is(err, models.ErrMalformedElement) {
				s.logger.WithFields(logrus.Fields{
					"doc_id":   docID,
					"position": elem.Position,
					"tag":      elem.Tag,
				}).Warn("Skipping malformed element during highlight")
				continue
			}
			return nil, err
		}
		if rendered == elem.RawMarkup {
			continue
		}
		repls = append(repls, highlight.Replacement{
			Start:  elem.Start,
			End:    elem.End,
			Markup: rendered,
		})
	}

	annotated := highlight.Apply(newHTML, repls)

	// 整篇相似度基于标注前的内容区片段计算
	annotated, similarity, inserted := highlight.InsertNotice(
		annotated, oldRegion.Content, newRegion.Content, s.noticeThreshold)
	result.Annotated = annotated
	result.Similarity = similarity
	result.NoticeInserted = inserted

	s.logger.WithFields(logrus.Fields{
		"doc_id":     docID,
		"similarity": similarity,
		"added":      result.Stats.Added,
		"modified":   result.Stats.Modified,
		"unchanged":  result.Stats.Unchanged,
		"notice":     inserted,
	}).Info("Compared document against previous revision")

	if s.cache != nil {
		if data, err := json.Marshal(result); err == nil {
			if err := s.cache.Set(key, string(data), s.cacheTTL); err != nil {
				s.logger.WithField("doc_id", docID).Warnf("Failed to cache diff result: %v", err)
			}
		}
	}
	return result, nil
}

// digest 计算内容的SHA-256摘要（十六进制）
func digest(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
