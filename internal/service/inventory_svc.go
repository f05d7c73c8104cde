package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"storefront_sync_v1_202608/internal/adapter"
	"storefront_sync_v1_202608/internal/model"
	"storefront_sync_v1_202608/internal/repository"
)

// ==================== 产品目录协作方 ====================

// ProductCatalog 本地产品清单提供方
// 产品 CRUD 不在本系统内，这里只消费 id 集合
type ProductCatalog interface {
	LocalProductIDs(ctx context.Context) []string
}

// StaticProductCatalog 固定产品清单
type StaticProductCatalog struct {
	IDs []string
}

func (c *StaticProductCatalog) LocalProductIDs(_ context.Context) []string {
	return c.IDs
}

// DefaultProductCatalog 演示产品集合
func DefaultProductCatalog() ProductCatalog {
	return &StaticProductCatalog{
		IDs: []string{"product1", "product2", "product3", "product4", "product5"},
	}
}

// ==================== 库存对账服务 ====================

// InventoryService 库存对账引擎
// 内存里维护每个 (productId, platformId) 的最新读数，
// 同时镜像到持久层的 inventory_updates 日志（新读数覆盖同对的旧记录）
type InventoryService struct {
	kv        repository.KeyValueStore
	config    *ConfigService
	creds     *CredentialService
	connector adapter.InventoryConnector
	products  ProductCatalog

	mu     sync.RWMutex
	latest map[string]model.InventoryUpdate
}

// NewInventoryService 工厂方法
// 启动时从持久日志恢复内存索引
func NewInventoryService(kv repository.KeyValueStore, config *ConfigService, creds *CredentialService,
	connector adapter.InventoryConnector, products ProductCatalog) *InventoryService {
	s := &InventoryService{
		kv:        kv,
		config:    config,
		creds:     creds,
		connector: connector,
		products:  products,
		latest:    make(map[string]model.InventoryUpdate),
	}
	s.restore(context.Background())
	return s
}

func pairKey(productID, platformID string) string {
	return productID + "_" + platformID
}

// restore 从持久日志恢复内存索引
func (s *InventoryService) restore(ctx context.Context) {
	for _, u := range s.readLog(ctx) {
		s.latest[pairKey(u.ProductID, u.PlatformID)] = u
	}
}

// ==================== 本地库存 ====================

// LocalInventory 读取本地库存数量
func (s *InventoryService) LocalInventory(ctx context.Context, productID string) (int, bool) {
	raw, ok, err := s.kv.Get(ctx, repository.InventoryKey(productID))
	if err != nil || !ok {
		if err != nil {
			log.Printf("[Inventory] 产品 [%s] 本地库存读取失败: %v", productID, err)
		}
		return 0, false
	}
	qty, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("[Inventory] 产品 [%s] 本地库存数据损坏: %v", productID, err)
		return 0, false
	}
	return qty, true
}

// SaveLocalInventory 写本地库存并记录一条 local 来源的读数
func (s *InventoryService) SaveLocalInventory(ctx context.Context, productID string, quantity int) error {
	if err := s.kv.Set(ctx, repository.InventoryKey(productID), strconv.Itoa(quantity)); err != nil {
		log.Printf("[Inventory] 产品 [%s] 本地库存写入失败: %v", productID, err)
		return err
	}

	s.RecordUpdate(ctx, model.InventoryUpdate{
		ProductID:  productID,
		SKU:        s.skuOf(ctx, productID),
		Quantity:   quantity,
		PlatformID: model.LocalSource,
		Timestamp:  time.Now().UnixMilli(),
	})
	return nil
}

// skuOf 产品 SKU，缺省退回产品 id
func (s *InventoryService) skuOf(ctx context.Context, productID string) string {
	sku, ok, err := s.kv.Get(ctx, repository.SKUKey(productID))
	if err != nil || !ok {
		return productID
	}
	return sku
}

// ==================== 读数记录与冲突解决 ====================

// RecordUpdate 记录一条库存读数
// 仅当比同对已有记录新才生效，旧数据重放是幂等的
func (s *InventoryService) RecordUpdate(ctx context.Context, update model.InventoryUpdate) {
	key := pairKey(update.ProductID, update.PlatformID)

	s.mu.Lock()
	existing, ok := s.latest[key]
	if ok && update.Timestamp <= existing.Timestamp {
		s.mu.Unlock()
		return
	}
	s.latest[key] = update
	s.mu.Unlock()

	s.persistLog(ctx, update)
}

// LatestLocal 产品的最新 local 读数
func (s *InventoryService) LatestLocal(productID string) *model.InventoryUpdate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.latest[pairKey(productID, model.LocalSource)]; ok {
		cp := u
		return &cp
	}
	return nil
}

// ResolveConflict 按策略在本地读数与平台读数间裁决
// newest 策略时间戳相等取本地，保证裁决确定性
func (s *InventoryService) ResolveConflict(localUpdate, platformUpdate *model.InventoryUpdate, strategy model.InventoryStrategy) *model.InventoryUpdate {
	if localUpdate == nil {
		return platformUpdate
	}
	if platformUpdate == nil {
		return localUpdate
	}

	switch strategy {
	case model.StrategyPlatform:
		return platformUpdate
	case model.StrategyLocal:
		return localUpdate
	default: // newest
		if platformUpdate.Timestamp > localUpdate.Timestamp {
			return platformUpdate
		}
		return localUpdate
	}
}

// PendingUpdates 待同步的读数：local 来源加上指定平台来源
func (s *InventoryService) PendingUpdates(ctx context.Context, platformID string) []model.InventoryUpdate {
	var out []model.InventoryUpdate
	for _, u := range s.readLog(ctx) {
		if u.PlatformID == model.LocalSource || u.PlatformID == platformID {
			out = append(out, u)
		}
	}
	return out
}

// ==================== 库存同步 ====================

// SyncInventory 与平台对账库存
// 导入方向：拉平台读数 -> 记录 -> 按策略裁决 -> 平台胜出则覆盖本地
// 导出方向：收集本地读数推送平台（有值才推）
func (s *InventoryService) SyncInventory(ctx context.Context, platform *model.Platform) (result *model.SyncResult) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Inventory] 平台 [%s] 库存同步 panic: %v", platform.ID, r)
			result = failureResult(fmt.Sprintf("Failed to sync inventory with %s: %v", platform.Name, r))
		}
	}()

	if !platform.InventorySync {
		return failureResult(fmt.Sprintf("Inventory sync is not supported for %s", platform.Name))
	}
	if !s.creds.IsValid(ctx, platform.ID) {
		return failureResult(fmt.Sprintf("Authentication required for %s", platform.Name))
	}

	cfg := s.config.Config(ctx, platform.ID)
	direction := cfg.SyncDirection
	strategy := cfg.InventoryPriority
	if strategy == "" {
		strategy = model.StrategyNewest
	}

	productIDs := s.products.LocalProductIDs(ctx)
	applied := 0
	pushed := 0

	// Step 1: 导入平台库存
	if direction == model.DirectionImport || direction == model.DirectionBidirectional {
		platformUpdates, err := s.connector.FetchInventory(ctx, platform, productIDs)
		if err != nil {
			return failureResult(fmt.Sprintf("Failed to sync inventory with %s: %v", platform.Name, err))
		}

		for i := range platformUpdates {
			platformUpdate := platformUpdates[i]
			s.RecordUpdate(ctx, platformUpdate)

			localUpdate := s.LatestLocal(platformUpdate.ProductID)
			resolved := s.ResolveConflict(localUpdate, &platformUpdate, strategy)

			// 平台读数胜出，覆盖本地库存
			if resolved != nil && resolved.PlatformID == platform.ID {
				if err := s.SaveLocalInventory(ctx, resolved.ProductID, resolved.Quantity); err == nil {
					applied++
				}
			}
		}
	}

	// Step 2: 导出本地库存
	if direction == model.DirectionExport || direction == model.DirectionBidirectional {
		var localUpdates []model.InventoryUpdate
		now := time.Now().UnixMilli()
		for _, productID := range productIDs {
			if qty, ok := s.LocalInventory(ctx, productID); ok {
				localUpdates = append(localUpdates, model.InventoryUpdate{
					ProductID:  productID,
					SKU:        s.skuOf(ctx, productID),
					Quantity:   qty,
					PlatformID: model.LocalSource,
					Timestamp:  now,
				})
			}
		}

		if len(localUpdates) > 0 {
			pushResult, err := s.connector.PushInventory(ctx, platform, localUpdates)
			if err != nil {
				return failureResult(fmt.Sprintf("Failed to sync inventory with %s: %v", platform.Name, err))
			}
			if !pushResult.Success {
				log.Printf("[Inventory] 平台 [%s] 库存推送未完全成功: %s", platform.ID, pushResult.Message)
			}
			pushed = len(localUpdates)
		}
	}

	return &model.SyncResult{
		Success:   true,
		Message:   fmt.Sprintf("Inventory sync with %s completed successfully", platform.Name),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Details: &model.SyncDetails{
			InventoryUpdated: applied + pushed,
		},
	}
}

// ==================== 持久日志 ====================

// readLog 读取持久化的读数日志
// 读不到或损坏一律当空日志
func (s *InventoryService) readLog(ctx context.Context) []model.InventoryUpdate {
	raw, ok, err := s.kv.Get(ctx, repository.KeyInventoryLog)
	if err != nil || !ok {
		if err != nil {
			log.Printf("[Inventory] 库存日志读取失败: %v", err)
		}
		return nil
	}
	var updates []model.InventoryUpdate
	if err := json.Unmarshal([]byte(raw), &updates); err != nil {
		log.Printf("[Inventory] 库存日志解析失败: %v", err)
		return nil
	}
	return updates
}

// persistLog 追加读数到日志，同对旧记录去重
func (s *InventoryService) persistLog(ctx context.Context, update model.InventoryUpdate) {
	updates := s.readLog(ctx)
	filtered := make([]model.InventoryUpdate, 0, len(updates)+1)
	for _, u := range updates {
		if u.ProductID == update.ProductID && u.PlatformID == update.PlatformID {
			continue
		}
		filtered = append(filtered, u)
	}
	filtered = append(filtered, update)

	data, err := json.Marshal(filtered)
	if err != nil {
		log.Printf("[Inventory] 库存日志序列化失败: %v", err)
		return
	}
	if err := s.kv.Set(ctx, repository.KeyInventoryLog, string(data)); err != nil {
		log.Printf("[Inventory] 库存日志写入失败: %v", err)
	}
}
