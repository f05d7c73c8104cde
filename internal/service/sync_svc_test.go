package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"storefront_sync_v1_202608/internal/adapter"
	"storefront_sync_v1_202608/internal/model"
	"storefront_sync_v1_202608/internal/repository"
)

// ==================== 测试辅助 ====================

// fakeAdapter 可编程的平台适配器，记录调用轨迹
type fakeAdapter struct {
	importResult *model.SyncResult
	importErr    error
	exportResult *model.SyncResult
	exportErr    error
	importCalls  int
	exportCalls  int
	webhookDone  bool
	webhookErr   error
}

func (f *fakeAdapter) ImportProducts(ctx context.Context) (*model.SyncResult, error) {
	f.importCalls++
	return f.importResult, f.importErr
}

func (f *fakeAdapter) ExportProducts(ctx context.Context) (*model.SyncResult, error) {
	f.exportCalls++
	return f.exportResult, f.exportErr
}

func (f *fakeAdapter) SetupWebhook(ctx context.Context) (bool, error) {
	return f.webhookDone, f.webhookErr
}

func okResult(synced, failed int, errs ...string) *model.SyncResult {
	return &model.SyncResult{
		Success:   true,
		Message:   "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Details:   &model.SyncDetails{ItemsSynced: synced, ItemsFailed: failed, Errors: errs},
	}
}

type syncFixture struct {
	kv       repository.KeyValueStore
	creds    *CredentialService
	config   *ConfigService
	catalog  *CatalogService
	registry *adapter.Registry
	sync     *SyncService
}

func setupSyncTest(t *testing.T) *syncFixture {
	t.Helper()
	kv := repository.NewMemoryKVStore()
	creds := NewCredentialService(kv)
	config := NewConfigService(kv)
	catalog := NewCatalogService(model.SeedPlatforms("http://localhost:8080/api/oauth/callback"), creds)
	auth := NewAuthService(&AuthConfig{ClientID: "DEMO_CLIENT_ID"}, kv, creds, catalog, NewMockExchanger())
	registry := adapter.NewRegistry()
	return &syncFixture{
		kv:       kv,
		creds:    creds,
		config:   config,
		catalog:  catalog,
		registry: registry,
		sync:     NewSyncService(creds, auth, registry, config, catalog),
	}
}

func (f *syncFixture) connect(t *testing.T, platformID string) {
	t.Helper()
	err := f.creds.Store(context.Background(), platformID, &model.PlatformCredentials{
		AccessToken: "token-" + platformID,
		ExpiresAt:   time.Now().Add(time.Hour).UnixMilli(),
	})
	if err != nil {
		t.Fatalf("写入测试凭证失败: %v", err)
	}
}

// ==================== 单元测试 ====================

func TestSyncWithPlatform_ImportOnlyNeverExports(t *testing.T) {
	f := setupSyncTest(t)
	fake := &fakeAdapter{importResult: okResult(3, 0)}
	f.registry.Register("etsy", fake)
	f.connect(t, "etsy")

	platform, _ := f.catalog.Get("etsy")
	result := f.sync.SyncWithPlatform(context.Background(), platform, model.DirectionImport)

	if !result.Success {
		t.Fatalf("导入同步应成功: %s", result.Message)
	}
	if fake.importCalls != 1 {
		t.Fatalf("ImportProducts 调用次数不符: %d", fake.importCalls)
	}
	if fake.exportCalls != 0 {
		t.Fatalf("导入方向不得触发导出, 调用了 %d 次", fake.exportCalls)
	}
}

func TestSyncWithPlatform_MissingAdapter(t *testing.T) {
	f := setupSyncTest(t)
	f.connect(t, "amazon")

	platform, _ := f.catalog.Get("amazon")
	result := f.sync.SyncWithPlatform(context.Background(), platform, model.DirectionImport)

	if result.Success {
		t.Fatal("无适配器时应返回失败结果")
	}
	if !strings.Contains(result.Message, "No API handler configured for Amazon") {
		t.Fatalf("错误信息不符: %s", result.Message)
	}
}

func TestSyncWithPlatform_ExpiredCredentials(t *testing.T) {
	f := setupSyncTest(t)
	fake := &fakeAdapter{importResult: okResult(1, 0)}
	f.registry.Register("instagram", fake)

	// instagram 不支持刷新，过期即要求重连
	err := f.creds.Store(context.Background(), "instagram", &model.PlatformCredentials{
		AccessToken: "stale",
		ExpiresAt:   time.Now().Add(-time.Hour).UnixMilli(),
	})
	if err != nil {
		t.Fatalf("写入测试凭证失败: %v", err)
	}

	platform, _ := f.catalog.Get("instagram")
	result := f.sync.SyncWithPlatform(context.Background(), platform, model.DirectionImport)

	if result.Success {
		t.Fatal("过期凭证应同步失败")
	}
	if !strings.Contains(result.Message, "Authentication expired for Instagram") {
		t.Fatalf("错误信息不符: %s", result.Message)
	}
	if fake.importCalls != 0 {
		t.Fatal("凭证无效时不得调用适配器")
	}
}

func TestSyncWithPlatform_RefreshRescue(t *testing.T) {
	f := setupSyncTest(t)
	fake := &fakeAdapter{importResult: okResult(2, 0)}
	f.registry.Register("etsy", fake)

	// 过期但带 refreshToken，etsy 支持续期，同步应自救成功
	err := f.creds.Store(context.Background(), "etsy", &model.PlatformCredentials{
		AccessToken:  "stale",
		RefreshToken: "refresh-me",
		ExpiresAt:    time.Now().Add(-time.Hour).UnixMilli(),
	})
	if err != nil {
		t.Fatalf("写入测试凭证失败: %v", err)
	}

	platform, _ := f.catalog.Get("etsy")
	result := f.sync.SyncWithPlatform(context.Background(), platform, model.DirectionImport)

	if !result.Success {
		t.Fatalf("刷新续期后同步应成功: %s", result.Message)
	}
	if !f.creds.IsValid(context.Background(), "etsy") {
		t.Fatal("续期后的凭证应有效")
	}
}

func TestSyncWithPlatform_BidirectionalMerge(t *testing.T) {
	f := setupSyncTest(t)
	fake := &fakeAdapter{
		importResult: okResult(5, 1, "item-3 rejected"),
		exportResult: okResult(4, 2, "item-7 rejected", "item-9 rejected"),
	}
	f.registry.Register("etsy", fake)
	f.connect(t, "etsy")

	platform, _ := f.catalog.Get("etsy")
	result := f.sync.SyncWithPlatform(context.Background(), platform, model.DirectionBidirectional)

	if !result.Success {
		t.Fatalf("双向同步应成功: %s", result.Message)
	}
	if result.Message != "Two-way synchronization completed successfully" {
		t.Fatalf("合并结果消息不符: %s", result.Message)
	}
	if result.Details == nil {
		t.Fatal("合并结果应带明细")
	}
	if result.Details.ItemsSynced != 9 || result.Details.ItemsFailed != 3 {
		t.Fatalf("明细应为两段之和: synced=%d failed=%d", result.Details.ItemsSynced, result.Details.ItemsFailed)
	}
	if len(result.Details.Errors) != 3 {
		t.Fatalf("错误列表应拼接: %v", result.Details.Errors)
	}

	// 成功同步要刷新平台的最近同步时间
	refreshed, _ := f.catalog.Get("etsy")
	if refreshed.LastSync == "" {
		t.Fatal("同步成功后应记录 lastSync")
	}
}

func TestSyncWithPlatform_ImportFailureShortCircuits(t *testing.T) {
	f := setupSyncTest(t)
	fake := &fakeAdapter{
		importResult: &model.SyncResult{
			Success:   false,
			Message:   "Failed to import products from Etsy. Please check your connection.",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
		exportResult: okResult(4, 0),
	}
	f.registry.Register("etsy", fake)
	f.connect(t, "etsy")

	platform, _ := f.catalog.Get("etsy")
	result := f.sync.SyncWithPlatform(context.Background(), platform, model.DirectionBidirectional)

	if result.Success {
		t.Fatal("导入失败时整体应失败")
	}
	if fake.exportCalls != 0 {
		t.Fatal("导入失败后不得继续导出")
	}
}

func TestSyncWithPlatform_AdapterErrorBecomesResult(t *testing.T) {
	f := setupSyncTest(t)
	fake := &fakeAdapter{importErr: errors.New("connection reset")}
	f.registry.Register("etsy", fake)
	f.connect(t, "etsy")

	platform, _ := f.catalog.Get("etsy")
	result := f.sync.SyncWithPlatform(context.Background(), platform, model.DirectionImport)

	if result.Success {
		t.Fatal("适配器报错应转成失败结果")
	}
	if !strings.Contains(result.Message, "connection reset") {
		t.Fatalf("错误信息应保留底层原因: %s", result.Message)
	}
}

func TestSyncWithPlatform_DefaultDirectionFromConfig(t *testing.T) {
	f := setupSyncTest(t)
	fake := &fakeAdapter{importResult: okResult(1, 0)}
	f.registry.Register("etsy", fake)
	f.connect(t, "etsy")

	cfg := model.DefaultSyncConfig()
	cfg.SyncDirection = model.DirectionImport
	if err := f.config.Save(context.Background(), "etsy", cfg); err != nil {
		t.Fatalf("保存同步配置失败: %v", err)
	}

	platform, _ := f.catalog.Get("etsy")
	result := f.sync.SyncWithPlatform(context.Background(), platform, "")

	if !result.Success {
		t.Fatalf("按配置方向同步应成功: %s", result.Message)
	}
	if fake.importCalls != 1 || fake.exportCalls != 0 {
		t.Fatalf("空方向应回退到配置的 import: import=%d export=%d", fake.importCalls, fake.exportCalls)
	}
}

func TestSetupPlatformWebhook(t *testing.T) {
	f := setupSyncTest(t)

	// tiktok 声明支持 webhook
	fake := &fakeAdapter{webhookDone: true}
	f.registry.Register("tiktok", fake)
	platform, _ := f.catalog.Get("tiktok")
	if !f.sync.SetupPlatformWebhook(context.Background(), platform) {
		t.Fatal("webhook 注册应成功")
	}

	// etsy 未声明支持，直接返回 false
	f.registry.Register("etsy", &fakeAdapter{webhookDone: true})
	etsy, _ := f.catalog.Get("etsy")
	if f.sync.SetupPlatformWebhook(context.Background(), etsy) {
		t.Fatal("不支持 webhook 的平台应返回 false")
	}

	// 注册出错按失败处理
	f.registry.Register("square", &fakeAdapter{webhookErr: errors.New("endpoint unreachable")})
	square, _ := f.catalog.Get("square")
	if f.sync.SetupPlatformWebhook(context.Background(), square) {
		t.Fatal("注册出错应返回 false")
	}
}
