package storage

import (
	"io"
)

// FileInfo 归档内容的元数据结构
type FileInfo struct {
	ID       string // 内容唯一标识符，版本记录通过它取回内容
	Name     string // 原始文件名（逻辑文档ID加扩展名）
	Size     int64  // 内容大小(字节)
	MimeType string // 内容MIME类型(可选)
	Path     string // 内部存储路径(实现相关)
}

// Storage 发布版本内容的存储接口
// 定义归档渲染结果的基本操作，可以有不同实现(本地文件系统、MinIO等)
type Storage interface {
	// Save 归档一份渲染内容并返回内容信息
	Save(reader io.Reader, filename string) (FileInfo, error)

	// Get 获取归档内容
	Get(id string) (io.ReadCloser, error)

	// Delete 删除归档内容
	Delete(id string) error

	// List 列出所有归档内容
	List() ([]FileInfo, error)

	// Exists 检查归档内容是否存在
	Exists(id string) (bool, error)
}

// Factory 存储实现的工厂函数
// 用于根据配置创建不同类型的存储实现
type Factory func(cfg interface{}) (Storage, error)
