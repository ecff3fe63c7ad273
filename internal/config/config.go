package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config 配置文件结构体
type Config struct {
	Version string `yaml:"version"`

	API struct {
		Base           string `yaml:"base"`           // 代理网关根地址
		WebficBase     string `yaml:"webficBase"`     // 详情接口独立主机
		DeviceEndpoint string `yaml:"deviceEndpoint"` // 设备生成接口
		Locale         string `yaml:"locale"`         // in / id / en ...
		TimeoutSeconds int    `yaml:"timeoutSeconds"` // HTTP 客户端超时
	} `yaml:"api"`

	Sqlite struct {
		Dsn    string `yaml:"dsn"`
		Prefix string `yaml:"prefix"`
	} `yaml:"sqlite"`

	Log struct {
		Level  string   `yaml:"level"`
		Writer []string `yaml:"writer"`
		File   string   `yaml:"file"`
	} `yaml:"log"`
}

// NewConfig 创建默认配置
func NewConfig() *Config {
	cfg := &Config{Version: "1.0.0"}

	cfg.API.Base = "https://api.drachin.online"
	cfg.API.WebficBase = "https://www.webfic.com"
	cfg.API.DeviceEndpoint = "https://api.drachin.online/gen-device.php"
	cfg.API.Locale = "in"
	cfg.API.TimeoutSeconds = 30

	cfg.Sqlite.Dsn = "db.sqlite3"
	cfg.Sqlite.Prefix = "drbx_"

	cfg.Log.Level = "info"
	cfg.Log.Writer = []string{"console"}
	cfg.Log.File = "dramaboxcore.log"

	return cfg
}

// Load 从 yaml 文件加载配置，缺省字段用默认值补齐
func Load(path string) (*Config, error) {
	cfg := NewConfig()
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, err
	}
	if cfg.API.TimeoutSeconds <= 0 {
		cfg.API.TimeoutSeconds = 30
	}
	return cfg, nil
}

// Timeout HTTP 客户端超时时间
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}
