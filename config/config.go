package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config 应用程序配置结构体
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Docs     DocsConfig     `mapstructure:"docs"`
	Diff     DiffConfig     `mapstructure:"diff"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Queue    QueueConfig    `mapstructure:"queue"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host string `mapstructure:"host"` // 服务器主机
	Port int    `mapstructure:"port"` // 服务器端口
}

// DocsConfig 文档集配置
type DocsConfig struct {
	SourceDir string `mapstructure:"source_dir"` // markdown源目录
	OutputDir string `mapstructure:"output_dir"` // 标注后页面的输出目录
	SiteTitle string `mapstructure:"site_title"` // 站点标题
}

// DiffConfig 比较引擎配置
type DiffConfig struct {
	MatchThreshold     float64 `mapstructure:"match_threshold"`     // 元素匹配的最低相似度
	UnchangedThreshold float64 `mapstructure:"unchanged_threshold"` // 判定未变更的最低相似度
	NoticeThreshold    float64 `mapstructure:"notice_threshold"`    // 整篇变更摘要的相似度阈值
}

// StorageConfig 版本归档存储配置
type StorageConfig struct {
	Type      string `mapstructure:"type"`     // 存储类型：local 或 minio
	Path      string `mapstructure:"path"`     // 本地存储路径
	Bucket    string `mapstructure:"bucket"`   // MinIO桶名称
	Endpoint  string `mapstructure:"endpoint"` // MinIO端点
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"` // 是否使用SSL
}

// CacheConfig 缓存配置
type CacheConfig struct {
	Enable   bool   `mapstructure:"enable"`   // 是否启用缓存
	Type     string `mapstructure:"type"`     // 缓存类型：memory 或 redis
	Address  string `mapstructure:"address"`  // Redis地址
	Password string `mapstructure:"password"` // Redis密码
	DB       int    `mapstructure:"db"`       // Redis数据库
	TTL      int    `mapstructure:"ttl"`      // 缓存TTL（秒）
}

// QueueConfig 任务队列配置
type QueueConfig struct {
	Enable        bool   `mapstructure:"enable"`         // 是否启用任务队列
	Type          string `mapstructure:"type"`           // 队列类型：redis
	RedisAddr     string `mapstructure:"redis_addr"`     // Redis地址
	RedisPassword string `mapstructure:"redis_password"` // Redis密码
	RedisDB       int    `mapstructure:"redis_db"`       // Redis数据库编号
	Concurrency   int    `mapstructure:"concurrency"`    // 任务处理并发数
	RetryLimit    int    `mapstructure:"retry_limit"`    // 任务最大重试次数
	RetryDelay    int    `mapstructure:"retry_delay"`    // 重试延迟(秒)
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Type string `mapstructure:"type"` // 数据库类型: sqlite
	DSN  string `mapstructure:"dsn"`  // 数据源名称
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `mapstructure:"level"`       // 日志级别
	File       string `mapstructure:"file"`        // 日志文件路径，为空时输出到标准输出
	MaxSize    int    `mapstructure:"max_size"`    // 单个日志文件最大大小(MB)
	MaxBackups int    `mapstructure:"max_backups"` // 保留的旧日志文件数量
	MaxAge     int    `mapstructure:"max_age"`     // 日志文件保留天数
}

// Load 从文件和环境变量加载配置
func Load(configPath string) (*Config, error) {
	var config Config

	// 设置默认配置路径
	if configPath == "" {
		configPath = "config.yaml" // 默认在当前目录寻找config.yaml
	}

	// 初始化viper
	v := viper.New()

	// 设置配置文件路径和类型
	v.SetConfigFile(configPath)

	// 尝试读取配置文件
	if err := v.ReadInConfig(); err != nil {
		// 如果找不到配置文件，创建一个默认配置文件
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Printf("Warning: Config file not found at %s, using defaults", configPath)
			setDefaults(v)
			// 创建默认配置文件
			dir := filepath.Dir(configPath)
			if err := os.MkdirAll(dir, 0755); err == nil {
				if err := v.WriteConfigAs(configPath); err != nil {
					log.Printf("Warning: Could not write default config to %s: %v", configPath, err)
				}
			}
		} else {
			return nil, fmt.Errorf("failed to read config file: %v", err)
		}
	} else {
		log.Printf("Using config file: %s", v.ConfigFileUsed())
	}

	// 设置默认值
	setDefaults(v)

	// 支持环境变量覆盖
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 解析配置到结构体
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %v", err)
	}

	return processEnvironmentVariables(&config), nil
}

// processEnvironmentVariables 处理配置项中的${VAR}形式的环境变量引用
func processEnvironmentVariables(cfg *Config) *Config {
	// 处理MinIO访问凭证
	if strings.HasPrefix(cfg.Storage.AccessKey, "${") && strings.HasSuffix(cfg.Storage.AccessKey, "}") {
		envVar := cfg.Storage.AccessKey[2 : len(cfg.Storage.AccessKey)-1]
		if envVal := os.Getenv(envVar); envVal != "" {
			cfg.Storage.AccessKey = envVal
		}
	}

	if strings.HasPrefix(cfg.Storage.SecretKey, "${") && strings.HasSuffix(cfg.Storage.SecretKey, "}") {
		envVar := cfg.Storage.SecretKey[2 : len(cfg.Storage.SecretKey)-1]
		if envVal := os.Getenv(envVar); envVal != "" {
			cfg.Storage.SecretKey = envVal
		}
	}

	// 处理Redis密码
	if strings.HasPrefix(cfg.Queue.RedisPassword, "${") && strings.HasSuffix(cfg.Queue.RedisPassword, "}") {
		envVar := cfg.Queue.RedisPassword[2 : len(cfg.Queue.RedisPassword)-1]
		if envVal := os.Getenv(envVar); envVal != "" {
			cfg.Queue.RedisPassword = envVal
		}
	}

	return cfg
}

// setDefaults 设置配置的默认值
func setDefaults(v *viper.Viper) {
	// 服务器默认配置
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)

	// 文档集默认配置
	v.SetDefault("docs.source_dir", "./docs")
	v.SetDefault("docs.output_dir", "./public")
	v.SetDefault("docs.site_title", "Documentation")

	// 比较引擎默认配置
	v.SetDefault("diff.match_threshold", 0.5)
	v.SetDefault("diff.unchanged_threshold", 0.99)
	v.SetDefault("diff.notice_threshold", 0.95)

	// 存储默认配置
	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.path", "./archive")
	v.SetDefault("storage.bucket", "docdiff")
	v.SetDefault("storage.use_ssl", false)

	// 缓存默认配置
	v.SetDefault("cache.enable", true)
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.ttl", 3600) // 1小时

	// 队列默认配置
	v.SetDefault("queue.enable", false)
	v.SetDefault("queue.type", "redis")
	v.SetDefault("queue.redis_addr", "localhost:6379")
	v.SetDefault("queue.redis_db", 0)
	v.SetDefault("queue.concurrency", 5)
	v.SetDefault("queue.retry_limit", 3)
	v.SetDefault("queue.retry_delay", 60) // 60秒

	// 数据库默认配置
	v.SetDefault("database.type", "sqlite")
	v.SetDefault("database.dsn", "data/docdiff.db")

	// 日志默认配置
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size", 100)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age", 28)
}
