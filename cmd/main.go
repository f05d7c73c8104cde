package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"storefront_sync_v1_202608/internal/adapter"
	"storefront_sync_v1_202608/internal/controller"
	"storefront_sync_v1_202608/internal/middleware"
	"storefront_sync_v1_202608/internal/model"
	"storefront_sync_v1_202608/internal/repository"
	"storefront_sync_v1_202608/internal/router"
	"storefront_sync_v1_202608/internal/service"
	"storefront_sync_v1_202608/internal/task"
	"storefront_sync_v1_202608/pkg/config"
	"storefront_sync_v1_202608/pkg/database"
)

func main() {
	// .env 可选，本地开发用
	_ = godotenv.Load()

	// 1. 读配置
	cfg := config.Load()

	// 2. 初始化依赖
	deps := initDependencies(cfg)

	// 3. 启动定时任务
	initTasks(cfg, deps)

	// 4. 初始化路由
	r := router.SetupRouter(deps.Controllers)

	// 5. 启动服务
	startServer(cfg, r, deps)
}

// ==================== 依赖容器 ====================

// Dependencies 依赖容器
type Dependencies struct {
	KV          repository.KeyValueStore
	Services    *Services
	Controllers *router.Controllers
	AutoSync    *task.AutoSyncTask
}

// Services 服务集合
type Services struct {
	Credential *service.CredentialService
	Config     *service.ConfigService
	Catalog    *service.CatalogService
	Auth       *service.AuthService
	Sync       *service.SyncService
	Inventory  *service.InventoryService
}

// ==================== 初始化函数 ====================

// initKVStore 按配置选择键值存储后端
func initKVStore(cfg *config.Config) repository.KeyValueStore {
	switch cfg.Storage.Driver {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr: cfg.Storage.RedisAddr,
			DB:   cfg.Storage.RedisDB,
		})
		log.Printf("键值存储使用 Redis: %s", cfg.Storage.RedisAddr)
		return repository.NewRedisKVStore(client)
	case "memory":
		log.Println("键值存储使用内存实现（重启丢数据）")
		return repository.NewMemoryKVStore()
	default:
		db := database.InitDB(cfg.Storage.Driver, cfg.Storage.DSN, &model.KVEntry{})
		return repository.NewKVStore(db)
	}
}

// initDependencies 初始化所有依赖
func initDependencies(cfg *config.Config) *Dependencies {
	// -------- 存储层 --------
	kv := initKVStore(cfg)

	// -------- JWT --------
	middleware.SetJWTConfig(&middleware.JWTConfig{
		SecretKey:      cfg.Auth.JWTSecret,
		AccessTokenTTL: 12 * time.Hour,
		Issuer:         "storefront-sync",
	})

	// -------- 基础服务 --------
	callbackURL := cfg.Server.BaseURL + "/api/oauth/callback"
	credSvc := service.NewCredentialService(kv)
	cfgSvc := service.NewConfigService(kv)
	catalog := service.NewCatalogService(model.SeedPlatforms(callbackURL), credSvc)
	catalog.RestoreStatus(context.Background())

	// Token 交换器：默认模拟，接真实平台时切 live
	var exchanger service.TokenExchanger
	if cfg.OAuth.Exchange == "live" {
		exchanger = service.NewLiveExchanger(cfg.OAuth.ClientID, callbackURL)
	} else {
		exchanger = service.NewMockExchanger()
	}

	authSvc := service.NewAuthService(&service.AuthConfig{
		ClientID:    cfg.OAuth.ClientID,
		CallbackURL: callbackURL,
	}, kv, credSvc, catalog, exchanger)

	// -------- 适配器 --------
	policy := adapter.NewSeededPolicy(time.Now().UnixNano(), true)
	registry := adapter.NewSimulatedRegistry(policy)
	connector := adapter.NewSimulatedInventoryConnector(policy)

	// -------- 业务服务 --------
	syncSvc := service.NewSyncService(credSvc, authSvc, registry, cfgSvc, catalog)
	invSvc := service.NewInventoryService(kv, cfgSvc, credSvc, connector, service.DefaultProductCatalog())

	services := &Services{
		Credential: credSvc,
		Config:     cfgSvc,
		Catalog:    catalog,
		Auth:       authSvc,
		Sync:       syncSvc,
		Inventory:  invSvc,
	}

	// -------- 任务 --------
	autoSync := task.NewAutoSyncTask(syncSvc, cfgSvc, nil)

	// -------- Controller 层 --------
	controllers := &router.Controllers{
		Auth:     controller.NewAuthController(authSvc, catalog, cfg.Auth.Username, cfg.Auth.Password),
		Platform: controller.NewPlatformController(catalog, authSvc, credSvc, cfgSvc, autoSync),
		Sync:     controller.NewSyncController(catalog, syncSvc, invSvc, cfgSvc),
	}

	return &Dependencies{
		KV:          kv,
		Services:    services,
		Controllers: controllers,
		AutoSync:    autoSync,
	}
}

// ==================== 定时任务 ====================

// initTasks 启动自动同步调度
func initTasks(cfg *config.Config, deps *Dependencies) {
	if !cfg.Scheduler.Enabled {
		log.Println("自动同步调度已禁用")
		return
	}

	deps.AutoSync.Run()

	// 启动时恢复各平台的自动同步计划
	for _, p := range deps.Services.Catalog.List() {
		platform := p
		deps.AutoSync.StartPlatform(&platform)
	}

	log.Println("定时任务已启动")
}

// ==================== 服务启动 ====================

// startServer 启动服务
func startServer(cfg *config.Config, r *gin.Engine, deps *Dependencies) {
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}

	// 异步启动服务
	go func() {
		log.Printf("服务启动在 :%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("服务启动失败: %v", err)
		}
	}()

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("正在关闭服务...")

	// 停掉调度器，等在跑的同步收尾
	deps.AutoSync.Shutdown()

	// 优雅关闭，最多等待 30 秒
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("服务强制关闭: %v", err)
	}

	log.Println("服务已退出")
}
