package storage

import (
	"context"
	"errors"
	"time"

	"dramaboxcore/internal/logger"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// kvEntry 键值表结构
type kvEntry struct {
	Key       string `gorm:"primaryKey;column:key"`
	Value     string `gorm:"column:value"`
	ExpiresAt int64  `gorm:"column:expires_at;index"` // 毫秒时间戳，0 表示永不过期
	UpdatedAt time.Time
}

// GormStore 基于 sqlite 的持久化 TTL 存储
type GormStore struct {
	db    *gorm.DB
	table string
}

// OpenSqlite 打开 sqlite 存储并完成建表
func OpenSqlite(dsn, prefix string, l logger.Logger) (*GormStore, error) {
	if l == nil {
		l = logger.NewNop()
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: NewGormLogger(l),
	})
	if err != nil {
		return nil, err
	}
	s := &GormStore{db: db, table: prefix + "cache"}
	if err := db.Table(s.table).AutoMigrate(&kvEntry{}); err != nil {
		return nil, err
	}
	return s, nil
}

// Get 读取条目，过期条目惰性删除并按未命中处理
func (s *GormStore) Get(ctx context.Context, key string) (string, bool, error) {
	var e kvEntry
	err := s.db.WithContext(ctx).Table(s.table).Where("`key` = ?", key).Take(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	if e.ExpiresAt > 0 && time.Now().UnixMilli() >= e.ExpiresAt {
		_ = s.db.WithContext(ctx).Table(s.table).Where("`key` = ?", key).Delete(&kvEntry{}).Error
		return "", false, nil
	}
	return e.Value, true, nil
}

// Set 写入或覆盖条目
func (s *GormStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	var exp int64
	if ttl > 0 {
		exp = time.Now().Add(ttl).UnixMilli()
	}
	e := kvEntry{Key: key, Value: value, ExpiresAt: exp, UpdatedAt: time.Now()}
	return s.db.WithContext(ctx).Table(s.table).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "expires_at", "updated_at"}),
		}).
		Create(&e).Error
}

// Delete 删除条目
func (s *GormStore) Delete(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).Table(s.table).Where("`key` = ?", key).Delete(&kvEntry{}).Error
}
