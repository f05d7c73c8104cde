package router

import (
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"storefront_sync_v1_202608/internal/controller"
	"storefront_sync_v1_202608/internal/middleware"
)

// Controllers 控制器集合
type Controllers struct {
	Auth     *controller.AuthController
	Platform *controller.PlatformController
	Sync     *controller.SyncController
}

// SetupRouter 创建引擎并注册所有路由
func SetupRouter(ctrls *Controllers) *gin.Engine {
	r := gin.Default()
	InitRoutes(r, ctrls)
	return r
}

// InitRoutes 注册所有路由
func InitRoutes(r *gin.Engine, ctrls *Controllers) {
	// 1. Swagger 文档路由
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 2. API 路由组
	api := r.Group("/api")
	{
		// auth 鉴权组
		auth := api.Group("/auth")
		{
			// POST /api/auth/login
			auth.POST("/login", ctrls.Auth.Login)
		}

		// OAuth 回调由外部授权方跳转，不能挂 JWT
		// GET /api/oauth/callback
		api.GET("/oauth/callback", ctrls.Auth.Callback)

		// platforms 平台管理，登录后才能操作
		platforms := api.Group("/platforms", middleware.JWTAuth())
		{
			// GET /api/platforms
			platforms.GET("", ctrls.Platform.List)
			platforms.POST("/:id/connect", ctrls.Platform.Connect)
			platforms.DELETE("/:id/connection", ctrls.Platform.Disconnect)
			platforms.GET("/:id/config", ctrls.Platform.GetConfig)
			platforms.PUT("/:id/config", ctrls.Platform.SaveConfig)

			// 手动同步带冷却，防止连点
			platforms.POST("/:id/sync", middleware.SyncRateLimit(10*time.Second), ctrls.Sync.Sync)
			platforms.POST("/:id/inventory/sync", middleware.SyncRateLimit(10*time.Second), ctrls.Sync.SyncInventory)
			platforms.POST("/:id/webhook", ctrls.Sync.SetupWebhook)
		}
	}
}
