package adapter

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"storefront_sync_v1_202608/internal/model"
)

// ==================== 平台适配器 ====================

// PlatformAdapter 平台 API 处理器
// 每个平台一个实现，按 id 注册到 Registry
type PlatformAdapter interface {
	// ImportProducts 拉取平台商品数据
	ImportProducts(ctx context.Context) (*model.SyncResult, error)
	// ExportProducts 推送本地商品数据到平台
	ExportProducts(ctx context.Context) (*model.SyncResult, error)
}

// WebhookSupporter 支持实时推送的平台额外实现此接口
type WebhookSupporter interface {
	SetupWebhook(ctx context.Context) (bool, error)
}

// InventoryConnector 平台库存通道
type InventoryConnector interface {
	// FetchInventory 按本地产品集合拉取平台库存读数
	FetchInventory(ctx context.Context, platform *model.Platform, productIDs []string) ([]model.InventoryUpdate, error)
	// PushInventory 推送本地库存到平台
	PushInventory(ctx context.Context, platform *model.Platform, updates []model.InventoryUpdate) (*model.SyncResult, error)
}

// ==================== 注册表 ====================

// Registry 平台 id -> 适配器
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]PlatformAdapter
}

// NewRegistry 创建空注册表
func NewRegistry() *Registry {
	return &Registry{adapters: make(map[string]PlatformAdapter)}
}

// NewSimulatedRegistry 注册全部模拟适配器
func NewSimulatedRegistry(policy Policy) *Registry {
	r := NewRegistry()
	r.Register("etsy", &etsyAdapter{policy: policy})
	r.Register("tiktok", &tiktokAdapter{policy: policy})
	r.Register("square", &squareAdapter{policy: policy})
	r.Register("instagram", &instagramAdapter{policy: policy})
	return r
}

// Register 注册/覆盖适配器
func (r *Registry) Register(id string, a PlatformAdapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[id] = a
}

// Get 按平台 id 查适配器
// 查不到不算错误，由同步层转成失败结果
func (r *Registry) Get(id string) (PlatformAdapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.adapters[id]
	return a, ok
}

// ==================== 故障策略 ====================

// Policy 延迟与故障注入策略
// 模拟适配器的延迟、条目数和失败概率全部走这里，测试注入固定种子即可复现
type Policy interface {
	// Sleep 模拟平台延迟，关闭延迟时立即返回
	Sleep(ctx context.Context, d time.Duration)
	// Chance 按概率命中
	Chance(p float64) bool
	// Count 返回 base + [0, spread) 的随机条目数
	Count(base, spread int) int
	// NowOffset 返回最近 span 内的随机毫秒时间戳
	NowOffset(span time.Duration) int64
}

// seededPolicy 可复现的随机策略
type seededPolicy struct {
	mu      sync.Mutex
	r       *rand.Rand
	latency bool
}

var _ Policy = (*seededPolicy)(nil)

// NewSeededPolicy 创建策略
// latency=false 时跳过模拟延迟，测试用
func NewSeededPolicy(seed int64, latency bool) Policy {
	return &seededPolicy{
		r:       rand.New(rand.NewSource(seed)),
		latency: latency,
	}
}

func (p *seededPolicy) Sleep(ctx context.Context, d time.Duration) {
	if !p.latency {
		return
	}
	select {
	case <-time.After(d):
	case <-ctx.Done():
	}
}

func (p *seededPolicy) Chance(prob float64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.r.Float64() < prob
}

func (p *seededPolicy) Count(base, spread int) int {
	if spread <= 0 {
		return base
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return base + p.r.Intn(spread)
}

func (p *seededPolicy) NowOffset(span time.Duration) int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	offset := int64(0)
	if span > 0 {
		offset = p.r.Int63n(span.Milliseconds())
	}
	return time.Now().UnixMilli() - offset
}

// nowISO SyncResult 时间戳格式
func nowISO() string {
	return time.Now().UTC().Format(time.RFC3339)
}
