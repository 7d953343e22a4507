package persist

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Skotchmaster/farmconnect/internal/db"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Storage is a named-record key/value store. GetItem returns (nil, nil)
// when no record exists under name.
type Storage interface {
	GetItem(ctx context.Context, name string) ([]byte, error)
	SetItem(ctx context.Context, name string, value []byte) error
	RemoveItem(ctx context.Context, name string) error
	Close() error
}

// Open builds the Storage selected by dsn: memory://, redis://...,
// sqlite://<path> or postgres://...
func Open(ctx context.Context, dsn string) (Storage, error) {
	switch {
	case dsn == "memory://":
		return NewMemoryStorage(), nil
	case strings.HasPrefix(dsn, "redis://"), strings.HasPrefix(dsn, "rediss://"):
		opts, err := redis.ParseURL(dsn)
		if err != nil {
			return nil, fmt.Errorf("parse redis dsn: %w", err)
		}
		return NewRedisStorage(redis.NewClient(opts), ""), nil
	default:
		gdb, err := db.Open(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return NewGormStorage(gdb)
	}
}

type MemoryStorage struct {
	mu    sync.RWMutex
	items map[string][]byte
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{items: make(map[string][]byte)}
}

func (m *MemoryStorage) GetItem(_ context.Context, name string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.items[name]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), v...), nil
}

func (m *MemoryStorage) SetItem(_ context.Context, name string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[name] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryStorage) RemoveItem(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, name)
	return nil
}

func (m *MemoryStorage) Close() error { return nil }

type Record struct {
	Name      string    `gorm:"primaryKey"`
	Value     string    `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (Record) TableName() string {
	return "persisted_records"
}

type GormStorage struct {
	DB *gorm.DB
}

func NewGormStorage(gdb *gorm.DB) (*GormStorage, error) {
	if err := gdb.AutoMigrate(&Record{}); err != nil {
		return nil, fmt.Errorf("migrate persisted_records: %w", err)
	}
	return &GormStorage{DB: gdb}, nil
}

func (g *GormStorage) GetItem(ctx context.Context, name string) ([]byte, error) {
	var rec Record
	if err := g.DB.WithContext(ctx).Where("name = ?", name).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return []byte(rec.Value), nil
}

func (g *GormStorage) SetItem(ctx context.Context, name string, value []byte) error {
	rec := Record{Name: name, Value: string(value)}
	return g.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&rec).Error
}

func (g *GormStorage) RemoveItem(ctx context.Context, name string) error {
	return g.DB.WithContext(ctx).Where("name = ?", name).Delete(&Record{}).Error
}

func (g *GormStorage) Close() error {
	sqlDB, err := g.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

const defaultRedisPrefix = "farmconnect:"

type RedisStorage struct {
	client *redis.Client
	prefix string
}

func NewRedisStorage(client *redis.Client, prefix string) *RedisStorage {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &RedisStorage{client: client, prefix: prefix}
}

func (r *RedisStorage) GetItem(ctx context.Context, name string) ([]byte, error) {
	b, err := r.client.Get(ctx, r.prefix+name).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return b, err
}

func (r *RedisStorage) SetItem(ctx context.Context, name string, value []byte) error {
	return r.client.Set(ctx, r.prefix+name, value, 0).Err()
}

func (r *RedisStorage) RemoveItem(ctx context.Context, name string) error {
	return r.client.Del(ctx, r.prefix+name).Err()
}

func (r *RedisStorage) Close() error {
	return r.client.Close()
}
