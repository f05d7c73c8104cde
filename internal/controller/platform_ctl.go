package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront_sync_v1_202608/internal/model"
	"storefront_sync_v1_202608/internal/service"
	"storefront_sync_v1_202608/internal/task"
)

// PlatformController 平台目录与连接管理
type PlatformController struct {
	catalog     *service.CatalogService
	authService *service.AuthService
	credService *service.CredentialService
	cfgService  *service.ConfigService
	autoSync    *task.AutoSyncTask
}

// NewPlatformController 创建平台控制器
func NewPlatformController(catalog *service.CatalogService, authService *service.AuthService,
	credService *service.CredentialService, cfgService *service.ConfigService, autoSync *task.AutoSyncTask) *PlatformController {
	return &PlatformController{
		catalog:     catalog,
		authService: authService,
		credService: credService,
		cfgService:  cfgService,
		autoSync:    autoSync,
	}
}

// List 平台列表
// @Summary 已注册平台列表及连接状态
// @Tags Platform (平台模块)
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/platforms [get]
func (ctrl *PlatformController) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"code": 200,
		"data": ctrl.catalog.List(),
	})
}

// Connect 发起平台连接
// @Summary 生成平台授权链接，由前端打开新窗口跳转
// @Tags Platform (平台模块)
// @Produce json
// @Param id path string true "平台 id"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /api/platforms/{id}/connect [post]
func (ctrl *PlatformController) Connect(c *gin.Context) {
	platform, err := ctrl.catalog.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"code": 404, "message": err.Error()})
		return
	}

	authURL, err := ctrl.authService.GenerateAuthURL(c.Request.Context(), platform)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "授权链接生成失败",
			"detail":  err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code": 200,
		"data": gin.H{"authUrl": authURL},
	})
}

// Disconnect 断开平台连接
// @Summary 清除平台凭证并停掉自动同步
// @Tags Platform (平台模块)
// @Produce json
// @Param id path string true "平台 id"
// @Success 200 {object} map[string]interface{}
// @Router /api/platforms/{id}/connection [delete]
func (ctrl *PlatformController) Disconnect(c *gin.Context) {
	platform, err := ctrl.catalog.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"code": 404, "message": err.Error()})
		return
	}

	ctrl.credService.Clear(c.Request.Context(), platform.ID)
	ctrl.autoSync.StopPlatform(platform.ID)
	ctrl.catalog.MarkDisconnected(platform.ID)

	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": "已断开 " + platform.Name,
	})
}

// GetConfig 读取同步配置
// @Summary 平台同步配置
// @Tags Platform (平台模块)
// @Produce json
// @Param id path string true "平台 id"
// @Success 200 {object} map[string]interface{}
// @Router /api/platforms/{id}/config [get]
func (ctrl *PlatformController) GetConfig(c *gin.Context) {
	platform, err := ctrl.catalog.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"code": 404, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code": 200,
		"data": ctrl.cfgService.Config(c.Request.Context(), platform.ID),
	})
}

// SaveConfig 保存同步配置
// @Summary 保存平台同步配置并重排自动同步计划
// @Tags Platform (平台模块)
// @Accept json
// @Produce json
// @Param id path string true "平台 id"
// @Param body body model.PlatformSyncConfig true "同步配置"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /api/platforms/{id}/config [put]
func (ctrl *PlatformController) SaveConfig(c *gin.Context) {
	platform, err := ctrl.catalog.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"code": 404, "message": err.Error()})
		return
	}

	var cfg model.PlatformSyncConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "配置格式错误", "detail": err.Error()})
		return
	}
	// 前端滑块下限 15 分钟，后端兜底
	if cfg.SyncInterval < 15 {
		cfg.SyncInterval = 15
	}
	if cfg.SyncDirection == "" {
		cfg.SyncDirection = model.DirectionBidirectional
	}

	if err := ctrl.cfgService.Save(c.Request.Context(), platform.ID, &cfg); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": "配置保存失败", "detail": err.Error()})
		return
	}

	// 配置变更后重排计划；autoSync 关闭时 StartPlatform 不会建新计划
	ctrl.autoSync.StopPlatform(platform.ID)
	ctrl.autoSync.StartPlatform(platform)

	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": "配置已保存",
		"data":    cfg,
	})
}
