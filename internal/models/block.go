package models

// BlockKind 块级元素类型
// 只允许固定集合内的结构化元素参与差异比较
type BlockKind string

const (
	// KindParagraph 段落元素
	KindParagraph BlockKind = "paragraph"
	// KindHeading 标题元素（h1~h6）
	KindHeading BlockKind = "heading"
	// KindListItem 列表项元素
	KindListItem BlockKind = "list_item"
	// KindBlockquote 引用块元素
	KindBlockquote BlockKind = "blockquote"
)

// BlockElement 从文档内容区提取出的结构化单元
// 每次提取都会重新创建，创建后不再修改
type BlockElement struct {
	Kind      BlockKind // 元素类型
	Tag       string    // 原始标签名（p、h1~h6、li、blockquote）
	RawMarkup string    // 元素的完整原始标记，包含自身的开闭标签
	PlainText string    // 去除标签并反转义后的纯文本，已去除首尾空白
	Position  int       // 在所属文档元素序列中的序号
	Start     int       // 元素在整篇文档中的起始字节偏移
	End       int       // 元素在整篇文档中的结束字节偏移
}

// Classification 元素的变更分类
// 决定高亮渲染时采用何种标记方式
type Classification string

const (
	// ClassUnchanged 未变更，渲染时原样保留
	ClassUnchanged Classification = "unchanged"
	// ClassModified 已修改，渲染时包裹行内差异标记
	ClassModified Classification = "modified"
	// ClassAdded 新增元素，渲染时整体包裹新增标记
	ClassAdded Classification = "added"
)

// Match 新元素与旧元素的配对关系
// 每个新元素恰好有一个Match；OldIndex为-1表示没有旧元素与之对应
type Match struct {
	NewIndex       int            // 新文档中元素的下标
	OldIndex       int            // 旧文档中元素的下标，-1表示未匹配
	Similarity     float64        // 相似度分数，取值[0,1]
	Classification Classification // 变更分类
}

// Matched 返回该配对是否命中了旧元素
func (m Match) Matched() bool {
	return m.OldIndex >= 0
}

// ElementStats 单篇文档的元素变更统计
type ElementStats struct {
	Added     int `json:"added"`     // 新增元素数量
	Modified  int `json:"modified"`  // 修改元素数量
	Unchanged int `json:"unchanged"` // 未变更元素数量
}

// Total 返回参与统计的元素总数
func (s ElementStats) Total() int {
	return s.Added + s.Modified + s.Unchanged
}
