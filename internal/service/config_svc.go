package service

import (
	"context"
	"encoding/json"
	"log"

	"storefront_sync_v1_202608/internal/model"
	"storefront_sync_v1_202608/internal/repository"
)

// ==================== 同步配置服务 ====================

// ConfigService 平台同步配置的读写
// 每个平台一份配置，首次访问返回默认值
type ConfigService struct {
	kv repository.KeyValueStore
}

// NewConfigService 工厂方法
func NewConfigService(kv repository.KeyValueStore) *ConfigService {
	return &ConfigService{kv: kv}
}

// Config 读取平台同步配置
// 不存在或解析失败均退回默认配置
func (s *ConfigService) Config(ctx context.Context, platformID string) *model.PlatformSyncConfig {
	raw, ok, err := s.kv.Get(ctx, repository.SyncConfigKey(platformID))
	if err != nil || !ok {
		if err != nil {
			log.Printf("[SyncConfig] 平台 [%s] 配置读取失败: %v", platformID, err)
		}
		return model.DefaultSyncConfig()
	}

	var cfg model.PlatformSyncConfig
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		log.Printf("[SyncConfig] 平台 [%s] 配置解析失败: %v", platformID, err)
		return model.DefaultSyncConfig()
	}
	return &cfg
}

// Save 保存平台同步配置
func (s *ConfigService) Save(ctx context.Context, platformID string, cfg *model.PlatformSyncConfig) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, repository.SyncConfigKey(platformID), string(data)); err != nil {
		log.Printf("[SyncConfig] 平台 [%s] 配置保存失败: %v", platformID, err)
		return err
	}
	return nil
}

// InventoryConfigUpdate 仅更新库存相关的配置项
type InventoryConfigUpdate struct {
	SyncInventoryOnly *bool
	InventoryPriority *model.InventoryStrategy
}

// UpdateInventoryConfig 合并库存同步设置到现有配置
func (s *ConfigService) UpdateInventoryConfig(ctx context.Context, platformID string, update InventoryConfigUpdate) error {
	cfg := s.Config(ctx, platformID)
	if update.SyncInventoryOnly != nil {
		cfg.SyncInventoryOnly = *update.SyncInventoryOnly
	}
	if update.InventoryPriority != nil {
		cfg.InventoryPriority = *update.InventoryPriority
	}
	return s.Save(ctx, platformID, cfg)
}
