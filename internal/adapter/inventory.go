package adapter

import (
	"context"
	"fmt"
	"time"

	"storefront_sync_v1_202608/internal/model"
)

// ==================== 模拟库存通道 ====================

// simulatedInventoryConnector 模拟平台库存读写
// 拉取返回随机库存水平，推送偶发限流失败
type simulatedInventoryConnector struct {
	policy Policy
}

var _ InventoryConnector = (*simulatedInventoryConnector)(nil)

// NewSimulatedInventoryConnector 创建模拟库存通道
func NewSimulatedInventoryConnector(policy Policy) InventoryConnector {
	return &simulatedInventoryConnector{policy: policy}
}

func (c *simulatedInventoryConnector) FetchInventory(ctx context.Context, platform *model.Platform, productIDs []string) ([]model.InventoryUpdate, error) {
	c.policy.Sleep(ctx, time.Duration(c.policy.Count(1000, 1000))*time.Millisecond)

	updates := make([]model.InventoryUpdate, 0, len(productIDs))
	for _, id := range productIDs {
		updates = append(updates, model.InventoryUpdate{
			ProductID:  id,
			SKU:        "SKU-" + id,
			Quantity:   c.policy.Count(1, 50),
			PlatformID: platform.ID,
			// 读数可能是平台最近一天内的任一时刻
			Timestamp: c.policy.NowOffset(24 * time.Hour),
		})
	}
	return updates, nil
}

func (c *simulatedInventoryConnector) PushInventory(ctx context.Context, platform *model.Platform, updates []model.InventoryUpdate) (*model.SyncResult, error) {
	c.policy.Sleep(ctx, time.Duration(c.policy.Count(1500, 1500))*time.Millisecond)

	if c.policy.Chance(0.1) {
		return &model.SyncResult{
			Success:   false,
			Message:   fmt.Sprintf("Failed to update inventory on %s. Please try again.", platform.Name),
			Timestamp: nowISO(),
			Details: &model.SyncDetails{
				Errors: []string{"API rate limit exceeded"},
			},
		}, nil
	}

	return &model.SyncResult{
		Success:   true,
		Message:   fmt.Sprintf("Successfully updated inventory on %s", platform.Name),
		Timestamp: nowISO(),
		Details: &model.SyncDetails{
			InventoryUpdated: len(updates),
		},
	}, nil
}
