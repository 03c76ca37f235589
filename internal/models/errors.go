package models

import "errors"

var (
	// ErrRevisionNotFound 没有可用的历史发布版本
	// 不是致命错误：文档按"全部新增"的降级模式处理
	ErrRevisionNotFound = errors.New("document revision not found")

	// ErrRunNotFound 比较任务不存在错误
	ErrRunNotFound = errors.New("diff run not found")

	// ErrMalformedElement 元素标记无法拆分为开标签/内容/闭标签
	// 该元素跳过高亮，原样保留
	ErrMalformedElement = errors.New("malformed element markup")
)
