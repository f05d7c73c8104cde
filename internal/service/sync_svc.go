package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"storefront_sync_v1_202608/internal/adapter"
	"storefront_sync_v1_202608/internal/model"
)

// ==================== 同步服务 ====================

// SyncService 单平台同步编排
// 流程：校验凭证 -> 必要时刷新 -> 调适配器 import/export -> 聚合结果
// 对外永远返回结果对象，任何内部错误都不向调用方抛出
type SyncService struct {
	creds    *CredentialService
	auth     *AuthService
	registry *adapter.Registry
	config   *ConfigService
	catalog  *CatalogService
}

// NewSyncService 工厂方法
func NewSyncService(creds *CredentialService, auth *AuthService, registry *adapter.Registry,
	config *ConfigService, catalog *CatalogService) *SyncService {
	return &SyncService{
		creds:    creds,
		auth:     auth,
		registry: registry,
		config:   config,
		catalog:  catalog,
	}
}

// SyncWithPlatform 执行一次平台同步
// direction 为空时取平台配置的方向
func (s *SyncService) SyncWithPlatform(ctx context.Context, platform *model.Platform, direction model.SyncDirection) (result *model.SyncResult) {
	// 任何意外 panic 都转成失败结果
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Sync] 平台 [%s] 同步 panic: %v", platform.ID, r)
			result = failureResult(fmt.Sprintf("Failed to sync with %s: %v", platform.Name, r))
		}
	}()

	if direction == "" {
		direction = s.config.Config(ctx, platform.ID).SyncDirection
	}

	// 1. 凭证校验，支持刷新的平台先尝试续期
	if !s.creds.IsValid(ctx, platform.ID) {
		refreshed := false
		if platform.RefreshCredentials {
			refreshed = s.auth.RefreshAccessToken(ctx, platform) != nil
		}
		if !refreshed {
			return failureResult(fmt.Sprintf("Authentication expired for %s. Please reconnect.", platform.Name))
		}
	}

	// 2. 适配器解析
	apiHandler, ok := s.registry.Get(platform.ID)
	if !ok {
		return failureResult(fmt.Sprintf("No API handler configured for %s", platform.Name))
	}

	var importResult, exportResult *model.SyncResult

	// 3. 导入
	if direction == model.DirectionImport || direction == model.DirectionBidirectional {
		res, err := apiHandler.ImportProducts(ctx)
		if err != nil {
			return failureResult(fmt.Sprintf("Failed to sync with %s: %v", platform.Name, err))
		}
		if !res.Success {
			// 导入失败直接短路，不再导出
			return res
		}
		importResult = res
	}

	// 4. 导出
	if direction == model.DirectionExport || direction == model.DirectionBidirectional {
		res, err := apiHandler.ExportProducts(ctx)
		if err != nil {
			return failureResult(fmt.Sprintf("Failed to sync with %s: %v", platform.Name, err))
		}
		if !res.Success {
			return res
		}
		exportResult = res
	}

	s.catalog.MarkSynced(platform.ID)

	// 5. 双向同步合并结果
	if importResult != nil && exportResult != nil {
		return &model.SyncResult{
			Success:   true,
			Message:   "Two-way synchronization completed successfully",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Details: &model.SyncDetails{
				ItemsSynced: syncDetail(importResult).ItemsSynced + syncDetail(exportResult).ItemsSynced,
				ItemsFailed: syncDetail(importResult).ItemsFailed + syncDetail(exportResult).ItemsFailed,
				Errors:      append(append([]string{}, syncDetail(importResult).Errors...), syncDetail(exportResult).Errors...),
			},
		}
	}
	if importResult != nil {
		return importResult
	}
	if exportResult != nil {
		return exportResult
	}

	return &model.SyncResult{
		Success:   true,
		Message:   "Synchronization completed",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// SetupPlatformWebhook 为支持实时推送的平台注册 webhook
func (s *SyncService) SetupPlatformWebhook(ctx context.Context, platform *model.Platform) bool {
	if !platform.WebhookSupport {
		return false
	}

	apiHandler, ok := s.registry.Get(platform.ID)
	if !ok {
		return false
	}
	supporter, ok := apiHandler.(adapter.WebhookSupporter)
	if !ok {
		return false
	}

	done, err := supporter.SetupWebhook(ctx)
	if err != nil {
		log.Printf("[Sync] 平台 [%s] webhook 注册失败: %v", platform.ID, err)
		return false
	}
	return done
}

// failureResult 统一的失败结果
func failureResult(message string) *model.SyncResult {
	return &model.SyncResult{
		Success:   false,
		Message:   message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// syncDetail 取明细，nil 安全
func syncDetail(r *model.SyncResult) *model.SyncDetails {
	if r.Details == nil {
		return &model.SyncDetails{}
	}
	return r.Details
}
