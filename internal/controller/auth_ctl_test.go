package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"

	"storefront_sync_v1_202608/internal/adapter"
	"storefront_sync_v1_202608/internal/model"
	"storefront_sync_v1_202608/internal/repository"
	"storefront_sync_v1_202608/internal/service"
	"storefront_sync_v1_202608/internal/task"
)

// ==================== 测试辅助 ====================

type ctlFixture struct {
	kv      repository.KeyValueStore
	creds   *service.CredentialService
	catalog *service.CatalogService
	auth    *service.AuthService
	router  *gin.Engine
}

// setupCtlTest 真实依赖 + 内存存储，路由不挂 JWT 方便直测控制器
func setupCtlTest(t *testing.T) *ctlFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	kv := repository.NewMemoryKVStore()
	creds := service.NewCredentialService(kv)
	cfgSvc := service.NewConfigService(kv)
	catalog := service.NewCatalogService(model.SeedPlatforms("http://localhost:8080/api/oauth/callback"), creds)
	auth := service.NewAuthService(&service.AuthConfig{
		ClientID:    "DEMO_CLIENT_ID",
		CallbackURL: "http://localhost:8080/api/oauth/callback",
	}, kv, creds, catalog, service.NewMockExchanger())
	syncSvc := service.NewSyncService(creds, auth, adapter.NewRegistry(), cfgSvc, catalog)
	autoSync := task.NewAutoSyncTask(syncSvc, cfgSvc, nil)

	authCtl := NewAuthController(auth, catalog, "admin", "admin123")
	platformCtl := NewPlatformController(catalog, auth, creds, cfgSvc, autoSync)

	r := gin.New()
	r.Use(gin.Recovery())
	api := r.Group("/api")
	{
		api.POST("/auth/login", authCtl.Login)
		api.GET("/oauth/callback", authCtl.Callback)
		api.GET("/platforms", platformCtl.List)
		api.POST("/platforms/:id/connect", platformCtl.Connect)
		api.DELETE("/platforms/:id/connection", platformCtl.Disconnect)
		api.GET("/platforms/:id/config", platformCtl.GetConfig)
		api.PUT("/platforms/:id/config", platformCtl.SaveConfig)
	}

	return &ctlFixture{kv: kv, creds: creds, catalog: catalog, auth: auth, router: r}
}

func (f *ctlFixture) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

// ==================== 测试用例 ====================

func TestLogin(t *testing.T) {
	f := setupCtlTest(t)

	w := f.do(http.MethodPost, "/api/auth/login", `{"username":"admin","password":"admin123"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp struct {
		Code int `json:"code"`
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Data.Token == "" {
		t.Error("登录成功应返回 token")
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	f := setupCtlTest(t)

	w := f.do(http.MethodPost, "/api/auth/login", `{"username":"admin","password":"nope"}`)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestLogin_MissingFields(t *testing.T) {
	f := setupCtlTest(t)

	w := f.do(http.MethodPost, "/api/auth/login", `{"username":"admin"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestListPlatforms(t *testing.T) {
	f := setupCtlTest(t)

	w := f.do(http.MethodGet, "/api/platforms", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp struct {
		Code int              `json:"code"`
		Data []model.Platform `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Data) != 8 {
		t.Fatalf("平台数量不符: %d", len(resp.Data))
	}
	for _, p := range resp.Data {
		if p.Status != model.StatusNotConnected {
			t.Fatalf("初始状态应为 disconnected: %s=%s", p.ID, p.Status)
		}
	}
}

func TestConnectAndCallbackFlow(t *testing.T) {
	f := setupCtlTest(t)

	// Step 1: 生成授权链接
	w := f.do(http.MethodPost, "/api/platforms/etsy/connect", "")
	if w.Code != http.StatusOK {
		t.Fatalf("connect status = %d, body = %s", w.Code, w.Body.String())
	}

	var connectResp struct {
		Data struct {
			AuthURL string `json:"authUrl"`
		} `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &connectResp)
	parsed, err := url.Parse(connectResp.Data.AuthURL)
	if err != nil {
		t.Fatalf("authUrl 不是合法 URL: %v", err)
	}
	state := parsed.Query().Get("state")
	if state == "" {
		t.Fatal("authUrl 应带 state")
	}

	// Step 2: 携带 code + state 回调
	w = f.do(http.MethodGet, "/api/oauth/callback?code=auth-code&state="+state, "")
	if w.Code != http.StatusOK {
		t.Fatalf("callback status = %d, body = %s", w.Code, w.Body.String())
	}

	var callbackResp struct {
		Message string `json:"message"`
	}
	json.Unmarshal(w.Body.Bytes(), &callbackResp)
	if callbackResp.Message != "Successfully connected to Etsy" {
		t.Fatalf("回调消息不符: %s", callbackResp.Message)
	}

	// 连接后状态与凭证都要就位
	platform, _ := f.catalog.Get("etsy")
	if platform.Status != model.StatusConnected {
		t.Fatalf("回调后状态应为 connected: %s", platform.Status)
	}
	if !f.creds.IsValid(context.Background(), "etsy") {
		t.Fatal("回调后凭证应有效")
	}
}

func TestCallback_ProviderDenied(t *testing.T) {
	f := setupCtlTest(t)

	w := f.do(http.MethodGet, "/api/oauth/callback?error=access_denied&platform=etsy", "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}

	var resp struct {
		Message string `json:"message"`
		Detail  string `json:"detail"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Message != "Failed to connect to Etsy" {
		t.Fatalf("失败消息不符: %s", resp.Message)
	}
}

func TestCallback_ForgedState(t *testing.T) {
	f := setupCtlTest(t)

	w := f.do(http.MethodGet, "/api/oauth/callback?code=auth-code&state=etsy_forged", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	if f.creds.IsValid(context.Background(), "etsy") {
		t.Fatal("伪造 state 不得产生凭证")
	}
}

func TestDisconnect(t *testing.T) {
	f := setupCtlTest(t)

	// 先连上
	_ = f.creds.Store(context.Background(), "etsy", &model.PlatformCredentials{AccessToken: "token"})
	f.catalog.MarkConnected("etsy")

	w := f.do(http.MethodDelete, "/api/platforms/etsy/connection", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	platform, _ := f.catalog.Get("etsy")
	if platform.Status != model.StatusNotConnected {
		t.Fatalf("断开后状态应为 disconnected: %s", platform.Status)
	}
	if f.creds.IsValid(context.Background(), "etsy") {
		t.Fatal("断开后凭证应被清除")
	}
}

func TestPlatformNotFound(t *testing.T) {
	f := setupCtlTest(t)

	for _, probe := range []struct{ method, path string }{
		{http.MethodPost, "/api/platforms/unknown/connect"},
		{http.MethodDelete, "/api/platforms/unknown/connection"},
		{http.MethodGet, "/api/platforms/unknown/config"},
	} {
		w := f.do(probe.method, probe.path, "")
		if w.Code != http.StatusNotFound {
			t.Fatalf("%s %s status = %d, want 404", probe.method, probe.path, w.Code)
		}
	}
}

func TestSaveConfig_ClampsInterval(t *testing.T) {
	f := setupCtlTest(t)

	w := f.do(http.MethodPut, "/api/platforms/etsy/config",
		`{"autoSync":false,"syncInterval":5,"syncDirection":"import"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Data model.PlatformSyncConfig `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Data.SyncInterval != 15 {
		t.Fatalf("同步间隔应被钳到 15: %d", resp.Data.SyncInterval)
	}

	// 保存结果要能读回
	w = f.do(http.MethodGet, "/api/platforms/etsy/config", "")
	var readBack struct {
		Data model.PlatformSyncConfig `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &readBack)
	if readBack.Data.SyncInterval != 15 || readBack.Data.SyncDirection != model.DirectionImport {
		t.Fatalf("读回的配置不符: %+v", readBack.Data)
	}
}

func TestGetConfig_DefaultsWhenUnset(t *testing.T) {
	f := setupCtlTest(t)

	w := f.do(http.MethodGet, "/api/platforms/etsy/config", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var resp struct {
		Data model.PlatformSyncConfig `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Data.AutoSync {
		t.Fatal("默认配置 autoSync 应关闭")
	}
	if resp.Data.SyncInterval != 60 || resp.Data.SyncDirection != model.DirectionBidirectional {
		t.Fatalf("默认配置不符: %+v", resp.Data)
	}
}
