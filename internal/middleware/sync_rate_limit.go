package middleware

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// ==================== 同步限流中间件 ====================

// 手动同步按平台维度做冷却，防止前端连点把适配器打爆

// syncLimiter 平台 id -> 上次触发时间
type syncLimiter struct {
	mu   sync.Mutex
	last map[string]time.Time
}

var limiter = &syncLimiter{last: make(map[string]time.Time)}

// check 检查并占用冷却窗口
func (l *syncLimiter) check(key string, interval time.Duration) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if lastAt, ok := l.last[key]; ok {
		if elapsed := now.Sub(lastAt); elapsed < interval {
			return false, interval - elapsed
		}
	}
	l.last[key] = now
	return true, 0
}

// ResetSyncLimit 重置平台冷却（测试与管理员使用）
func ResetSyncLimit(platformID string) {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	delete(limiter.last, platformID)
}

// SyncRateLimit 同步限流中间件
// 按 :id 路径参数（平台 id）维度冷却
func SyncRateLimit(interval time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		platformID := c.Param("id")
		if platformID == "" {
			c.Next()
			return
		}

		allowed, retryAfter := limiter.check(platformID, interval)
		if !allowed {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"code":    429,
				"message": formatRetryMessage(retryAfter),
				"data": gin.H{
					"retry_after": int(retryAfter.Seconds()),
					"platform":    platformID,
				},
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// formatRetryMessage 格式化重试提示信息
func formatRetryMessage(d time.Duration) string {
	seconds := int(d.Seconds())
	if seconds < 60 {
		return fmt.Sprintf("同步冷却中，请 %d 秒后重试", seconds)
	}
	minutes := seconds / 60
	remaining := seconds % 60
	if remaining == 0 {
		return fmt.Sprintf("同步冷却中，请 %d 分钟后重试", minutes)
	}
	return fmt.Sprintf("同步冷却中，请 %d 分 %d 秒后重试", minutes, remaining)
}
