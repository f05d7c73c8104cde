package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"storefront_sync_v1_202608/internal/model"
)

// ==================== 键值存储接口 ====================

// 键格式约定（与既有会话数据保持兼容）
//
//	{platformId}_credentials   平台凭证
//	{platformId}_oauth_state   授权 state 随机数
//	{platformId}_sync_config   同步配置
//	inventory_{productId}      本地库存数量
//	sku_{productId}            产品 SKU
//	inventory_updates          库存更新日志 (JSON 数组)
const (
	KeyCredentials  = "%s_credentials"
	KeyOAuthState   = "%s_oauth_state"
	KeyPKCEVerifier = "%s_pkce_verifier"
	KeySyncConfig   = "%s_sync_config"
	KeyInventory    = "inventory_%s"
	KeySKU          = "sku_%s"
	KeyInventoryLog = "inventory_updates"
)

// CredentialsKey 平台凭证键
func CredentialsKey(platformID string) string { return fmt.Sprintf(KeyCredentials, platformID) }

// OAuthStateKey 授权 state 键
func OAuthStateKey(platformID string) string { return fmt.Sprintf(KeyOAuthState, platformID) }

// PKCEVerifierKey PKCE code_verifier 键
func PKCEVerifierKey(platformID string) string { return fmt.Sprintf(KeyPKCEVerifier, platformID) }

// SyncConfigKey 同步配置键
func SyncConfigKey(platformID string) string { return fmt.Sprintf(KeySyncConfig, platformID) }

// InventoryKey 本地库存键
func InventoryKey(productID string) string { return fmt.Sprintf(KeyInventory, productID) }

// SKUKey 产品 SKU 键
func SKUKey(productID string) string { return fmt.Sprintf(KeySKU, productID) }

// KeyValueStore 字符串键值存储
// 核心组件只依赖这个接口，可替换为 sqlite/postgres/redis/内存实现
type KeyValueStore interface {
	// Get 读取键值；键不存在时 ok 为 false，不算错误
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	// Delete 删除键；键不存在时静默成功
	Delete(ctx context.Context, key string) error
}

// ==================== GORM 实现 ====================

// gormKVStore 基于 kv_entries 表的实现
type gormKVStore struct {
	db *gorm.DB
}

var _ KeyValueStore = (*gormKVStore)(nil)

// NewKVStore 创建数据库键值存储
func NewKVStore(db *gorm.DB) KeyValueStore {
	return &gormKVStore{db: db}
}

func (s *gormKVStore) Get(ctx context.Context, key string) (string, bool, error) {
	var entry model.KVEntry
	err := s.db.WithContext(ctx).Where("key = ?", key).First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return entry.Value, true, nil
}

func (s *gormKVStore) Set(ctx context.Context, key, value string) error {
	entry := model.KVEntry{Key: key, Value: value}
	// 键冲突时覆盖 value
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
}

func (s *gormKVStore) Delete(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).Where("key = ?", key).Delete(&model.KVEntry{}).Error
}
