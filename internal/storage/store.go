package storage

import (
	"context"
	"time"
)

// 缓存条目键名，与历史版本保持一致
const (
	KeyDevice = "drbx_device" // 设备指纹，30 天
	KeyToken  = "drbx_token"  // 会话令牌，6 小时
)

// Store 带 TTL 的持久化键值存储
type Store interface {
	// Get 读取条目；过期或不存在时 ok 为 false
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set 写入条目；ttl <= 0 表示永不过期
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Delete 删除条目，不存在时静默
	Delete(ctx context.Context, key string) error
}
