package task

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"storefront_sync_v1_202608/internal/model"
	"storefront_sync_v1_202608/internal/service"
)

// ==================== 通知接口 ====================

// Notifier 同步结果的用户可见通知
type Notifier interface {
	Notify(title, message string, failed bool)
}

// LogNotifier 默认通知实现，仅打日志
type LogNotifier struct{}

func (LogNotifier) Notify(title, message string, failed bool) {
	if failed {
		log.Printf("[Notify] %s: %s (failed)", title, message)
		return
	}
	log.Printf("[Notify] %s: %s", title, message)
}

// ==================== 自动同步任务 ====================

// AutoSyncTask 按平台配置执行周期性同步
// 每个平台至多一个活动计划；重复 Start 是替换而不是叠加
// 注册表由任务实例自持，测试可各自实例化互不影响
type AutoSyncTask struct {
	cron      *cron.Cron
	syncSvc   *service.SyncService
	configSvc *service.ConfigService
	notifier  Notifier

	mu      sync.Mutex
	entries map[string]cron.EntryID
}

// NewAutoSyncTask 创建自动同步任务
func NewAutoSyncTask(syncSvc *service.SyncService, configSvc *service.ConfigService, notifier Notifier) *AutoSyncTask {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &AutoSyncTask{
		cron:      cron.New(),
		syncSvc:   syncSvc,
		configSvc: configSvc,
		notifier:  notifier,
		entries:   make(map[string]cron.EntryID),
	}
}

// Run 启动调度器
func (t *AutoSyncTask) Run() {
	t.cron.Start()
	log.Println("[AutoSync] 自动同步调度器已启动")
}

// Shutdown 停止调度器，等待在跑的任务结束
func (t *AutoSyncTask) Shutdown() {
	ctx := t.cron.Stop()
	<-ctx.Done()
	log.Println("[AutoSync] 自动同步调度器已停止")
}

// StartPlatform 为平台安排周期同步
// autoSync 关闭时不做任何事；已有计划先取消再重建
func (t *AutoSyncTask) StartPlatform(platform *model.Platform) {
	cfg := t.configSvc.Config(context.Background(), platform.ID)
	if !cfg.AutoSync {
		return
	}

	t.StopPlatform(platform.ID)

	p := *platform
	direction := cfg.SyncDirection
	spec := fmt.Sprintf("@every %dm", cfg.SyncInterval)

	entryID, err := t.cron.AddFunc(spec, func() {
		t.runOnce(&p, direction)
	})
	if err != nil {
		log.Printf("[AutoSync] 平台 [%s] 计划创建失败: %v", platform.ID, err)
		return
	}

	t.mu.Lock()
	t.entries[platform.ID] = entryID
	t.mu.Unlock()

	log.Printf("[AutoSync] 平台 [%s] 自动同步已安排 (每 %d 分钟)", platform.ID, cfg.SyncInterval)
}

// StopPlatform 取消平台的周期同步，幂等
func (t *AutoSyncTask) StopPlatform(platformID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if entryID, ok := t.entries[platformID]; ok {
		t.cron.Remove(entryID)
		delete(t.entries, platformID)
	}
}

// Running 平台是否有活动计划
func (t *AutoSyncTask) Running(platformID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.entries[platformID]
	return ok
}

// ActiveCount 活动计划数量
func (t *AutoSyncTask) ActiveCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// runOnce 执行一轮同步并持久化结果
func (t *AutoSyncTask) runOnce(platform *model.Platform, direction model.SyncDirection) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	result := t.syncSvc.SyncWithPlatform(ctx, platform, direction)

	// 结果写回配置的 lastSyncStatus
	cfg := t.configSvc.Config(ctx, platform.ID)
	cfg.LastSyncStatus = result
	if err := t.configSvc.Save(ctx, platform.ID, cfg); err != nil {
		log.Printf("[AutoSync] 平台 [%s] 同步结果保存失败: %v", platform.ID, err)
	}

	if result.Success {
		t.notifier.Notify("Auto-Sync Completed", result.Message, false)
	} else {
		t.notifier.Notify("Auto-Sync Failed", result.Message, true)
	}
}
