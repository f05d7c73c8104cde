package repository

import (
	"context"
	"sync"
)

// ==================== 内存实现 ====================

// memoryKVStore 并发安全的内存键值存储
// 测试与无持久化场景使用
type memoryKVStore struct {
	data sync.Map
}

var _ KeyValueStore = (*memoryKVStore)(nil)

// NewMemoryKVStore 创建内存键值存储
func NewMemoryKVStore() KeyValueStore {
	return &memoryKVStore{}
}

func (s *memoryKVStore) Get(_ context.Context, key string) (string, bool, error) {
	val, ok := s.data.Load(key)
	if !ok {
		return "", false, nil
	}
	return val.(string), true, nil
}

func (s *memoryKVStore) Set(_ context.Context, key, value string) error {
	s.data.Store(key, value)
	return nil
}

func (s *memoryKVStore) Delete(_ context.Context, key string) error {
	s.data.Delete(key)
	return nil
}
