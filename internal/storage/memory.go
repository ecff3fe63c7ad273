package storage

import (
	"context"
	"sync"
	"time"
)

type memEntry struct {
	value   string
	expires time.Time // 零值表示永不过期
}

// Memory 内存实现，供测试与无盘场景使用
type Memory struct {
	mu    sync.RWMutex
	items map[string]memEntry
}

// NewMemory 创建内存存储
func NewMemory() *Memory {
	return &Memory{items: make(map[string]memEntry)}
}

// Get 读取条目
func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	e, ok := m.items[key]
	m.mu.RUnlock()
	if !ok {
		return "", false, nil
	}
	if !e.expires.IsZero() && !time.Now().Before(e.expires) {
		m.mu.Lock()
		delete(m.items, key)
		m.mu.Unlock()
		return "", false, nil
	}
	return e.value, true, nil
}

// Set 写入条目
func (m *Memory) Set(_ context.Context, key, value string, ttl time.Duration) error {
	e := memEntry{value: value}
	if ttl > 0 {
		e.expires = time.Now().Add(ttl)
	}
	m.mu.Lock()
	m.items[key] = e
	m.mu.Unlock()
	return nil
}

// Delete 删除条目
func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.items, key)
	m.mu.Unlock()
	return nil
}

// Has 判断条目是否存在，供测试断言
func (m *Memory) Has(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.items[key]
	return ok
}
