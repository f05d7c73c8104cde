package adapter

import (
	"context"
	"time"

	"storefront_sync_v1_202608/internal/model"
)

// 各平台模拟适配器
// 延迟、条目数、失败率对齐各平台的真实表现形状：
// 不同平台延迟不同，部分平台导出偶发部分失败并带逐条错误

// ==================== Etsy ====================

type etsyAdapter struct {
	policy Policy
}

func (a *etsyAdapter) ImportProducts(ctx context.Context) (*model.SyncResult, error) {
	a.policy.Sleep(ctx, 1500*time.Millisecond)
	return &model.SyncResult{
		Success:   true,
		Message:   "Successfully imported products from Etsy",
		Timestamp: nowISO(),
		Details: &model.SyncDetails{
			ItemsSynced: a.policy.Count(10, 20),
			ItemsFailed: a.policy.Count(0, 3),
		},
	}, nil
}

func (a *etsyAdapter) ExportProducts(ctx context.Context) (*model.SyncResult, error) {
	a.policy.Sleep(ctx, 2000*time.Millisecond)
	return &model.SyncResult{
		Success:   true,
		Message:   "Successfully exported products to Etsy",
		Timestamp: nowISO(),
		Details: &model.SyncDetails{
			ItemsSynced: a.policy.Count(5, 15),
		},
	}, nil
}

// ==================== TikTok Shop ====================

type tiktokAdapter struct {
	policy Policy
}

func (a *tiktokAdapter) ImportProducts(ctx context.Context) (*model.SyncResult, error) {
	a.policy.Sleep(ctx, 1200*time.Millisecond)
	return &model.SyncResult{
		Success:   true,
		Message:   "Successfully imported products from TikTok Shop",
		Timestamp: nowISO(),
		Details: &model.SyncDetails{
			ItemsSynced: a.policy.Count(5, 10),
		},
	}, nil
}

func (a *tiktokAdapter) ExportProducts(ctx context.Context) (*model.SyncResult, error) {
	a.policy.Sleep(ctx, 1800*time.Millisecond)

	// 导出偶发部分失败，演练错误处理路径
	if a.policy.Chance(0.2) {
		return &model.SyncResult{
			Success:   false,
			Message:   "Some products failed to export to TikTok Shop",
			Timestamp: nowISO(),
			Details: &model.SyncDetails{
				ItemsSynced: a.policy.Count(3, 12),
				ItemsFailed: a.policy.Count(1, 5),
				Errors:      []string{"API rate limit exceeded", "Invalid product data format"},
			},
		}, nil
	}
	return &model.SyncResult{
		Success:   true,
		Message:   "Successfully exported products to TikTok Shop",
		Timestamp: nowISO(),
		Details: &model.SyncDetails{
			ItemsSynced: a.policy.Count(3, 12),
		},
	}, nil
}

func (a *tiktokAdapter) SetupWebhook(ctx context.Context) (bool, error) {
	a.policy.Sleep(ctx, 1000*time.Millisecond)
	return true, nil
}

// ==================== Square ====================

type squareAdapter struct {
	policy Policy
}

func (a *squareAdapter) ImportProducts(ctx context.Context) (*model.SyncResult, error) {
	a.policy.Sleep(ctx, 1300*time.Millisecond)
	return &model.SyncResult{
		Success:   true,
		Message:   "Successfully imported products from Square",
		Timestamp: nowISO(),
		Details: &model.SyncDetails{
			ItemsSynced: a.policy.Count(15, 25),
		},
	}, nil
}

func (a *squareAdapter) ExportProducts(ctx context.Context) (*model.SyncResult, error) {
	a.policy.Sleep(ctx, 1700*time.Millisecond)
	return &model.SyncResult{
		Success:   true,
		Message:   "Successfully exported products to Square",
		Timestamp: nowISO(),
		Details: &model.SyncDetails{
			ItemsSynced: a.policy.Count(10, 20),
		},
	}, nil
}

func (a *squareAdapter) SetupWebhook(ctx context.Context) (bool, error) {
	a.policy.Sleep(ctx, 800*time.Millisecond)
	return true, nil
}

// ==================== Instagram Shop ====================

type instagramAdapter struct {
	policy Policy
}

func (a *instagramAdapter) ImportProducts(ctx context.Context) (*model.SyncResult, error) {
	a.policy.Sleep(ctx, 1600*time.Millisecond)
	return &model.SyncResult{
		Success:   true,
		Message:   "Successfully imported products from Instagram Shop",
		Timestamp: nowISO(),
		Details: &model.SyncDetails{
			ItemsSynced: a.policy.Count(5, 15),
		},
	}, nil
}

func (a *instagramAdapter) ExportProducts(ctx context.Context) (*model.SyncResult, error) {
	a.policy.Sleep(ctx, 2200*time.Millisecond)

	if a.policy.Chance(0.1) {
		return &model.SyncResult{
			Success:   false,
			Message:   "Some products failed to export to Instagram Shop",
			Timestamp: nowISO(),
			Details: &model.SyncDetails{
				ItemsSynced: a.policy.Count(2, 10),
				ItemsFailed: a.policy.Count(1, 3),
				Errors:      []string{"Media upload failed", "Product catalog not configured"},
			},
		}, nil
	}
	return &model.SyncResult{
		Success:   true,
		Message:   "Successfully exported products to Instagram Shop",
		Timestamp: nowISO(),
		Details: &model.SyncDetails{
			ItemsSynced: a.policy.Count(2, 10),
		},
	}, nil
}
