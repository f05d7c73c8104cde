package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront_sync_v1_202608/internal/model"
	"storefront_sync_v1_202608/internal/service"
)

// SyncController 同步控制器
type SyncController struct {
	catalog     *service.CatalogService
	syncService *service.SyncService
	invService  *service.InventoryService
	cfgService  *service.ConfigService
}

// NewSyncController 创建同步控制器
func NewSyncController(catalog *service.CatalogService, syncService *service.SyncService,
	invService *service.InventoryService, cfgService *service.ConfigService) *SyncController {
	return &SyncController{
		catalog:     catalog,
		syncService: syncService,
		invService:  invService,
		cfgService:  cfgService,
	}
}

// Sync 手动触发平台同步
// @Summary 手动同步单个平台
// @Tags Sync (同步模块)
// @Produce json
// @Param id path string true "平台 id"
// @Param direction query string false "import | export | bidirectional，缺省取平台配置"
// @Success 200 {object} map[string]interface{}
// @Failure 429 {object} map[string]interface{} "限流中"
// @Router /api/platforms/{id}/sync [post]
func (c *SyncController) Sync(ctx *gin.Context) {
	platform, err := c.catalog.Get(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"code": 404, "message": err.Error()})
		return
	}

	direction := model.SyncDirection(ctx.Query("direction"))
	result := c.syncService.SyncWithPlatform(ctx.Request.Context(), platform, direction)

	// 结果写回 lastSyncStatus，前端下次加载可见
	cfg := c.cfgService.Config(ctx.Request.Context(), platform.ID)
	cfg.LastSyncStatus = result
	_ = c.cfgService.Save(ctx.Request.Context(), platform.ID, cfg)

	status := http.StatusOK
	if !result.Success {
		status = http.StatusBadGateway
	}
	ctx.JSON(status, gin.H{
		"code": status,
		"data": result,
	})
}

// SyncInventory 手动触发库存对账
// @Summary 手动同步单个平台库存
// @Tags Sync (同步模块)
// @Produce json
// @Param id path string true "平台 id"
// @Success 200 {object} map[string]interface{}
// @Router /api/platforms/{id}/inventory/sync [post]
func (c *SyncController) SyncInventory(ctx *gin.Context) {
	platform, err := c.catalog.Get(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"code": 404, "message": err.Error()})
		return
	}

	result := c.invService.SyncInventory(ctx.Request.Context(), platform)

	status := http.StatusOK
	if !result.Success {
		status = http.StatusBadGateway
	}
	ctx.JSON(status, gin.H{
		"code": status,
		"data": result,
	})
}

// SetupWebhook 为平台注册实时推送
// @Summary 注册平台 webhook
// @Tags Sync (同步模块)
// @Produce json
// @Param id path string true "平台 id"
// @Success 200 {object} map[string]interface{}
// @Router /api/platforms/{id}/webhook [post]
func (c *SyncController) SetupWebhook(ctx *gin.Context) {
	platform, err := c.catalog.Get(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"code": 404, "message": err.Error()})
		return
	}

	ok := c.syncService.SetupPlatformWebhook(ctx.Request.Context(), platform)
	if !ok {
		ctx.JSON(http.StatusOK, gin.H{
			"code":    200,
			"message": platform.Name + " 不支持或未能注册 webhook",
			"data":    gin.H{"registered": false},
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": "webhook 注册成功",
		"data":    gin.H{"registered": true},
	})
}
