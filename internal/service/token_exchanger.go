package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"storefront_sync_v1_202608/internal/model"
)

// ==================== Token 交换器 ====================

// tokenTTL 交换/刷新出的 accessToken 有效期
const tokenTTL = time.Hour

// TokenExchanger 授权码/刷新令牌 -> 凭证
// 默认挂模拟实现；接入真实平台时切换为 live 实现
type TokenExchanger interface {
	// Exchange 授权码换凭证；verifier 仅 PKCE 平台非空
	Exchange(ctx context.Context, platform *model.Platform, code, verifier string) (*model.PlatformCredentials, error)
	Refresh(ctx context.Context, platform *model.Platform, current *model.PlatformCredentials) (*model.PlatformCredentials, error)
}

// ==================== 模拟实现 ====================

// mockExchanger 模拟换 Token
// 不外发请求，按约定格式造出凭证，保留流程形状
type mockExchanger struct{}

var _ TokenExchanger = (*mockExchanger)(nil)

// NewMockExchanger 创建模拟交换器
func NewMockExchanger() TokenExchanger {
	return &mockExchanger{}
}

func (e *mockExchanger) Exchange(_ context.Context, platform *model.Platform, _, _ string) (*model.PlatformCredentials, error) {
	return &model.PlatformCredentials{
		AccessToken:  fmt.Sprintf("mock_access_token_%s_%s", platform.ID, uuid.NewString()),
		RefreshToken: fmt.Sprintf("mock_refresh_token_%s_%s", platform.ID, uuid.NewString()),
		ExpiresAt:    time.Now().Add(tokenTTL).UnixMilli(),
	}, nil
}

func (e *mockExchanger) Refresh(_ context.Context, platform *model.Platform, current *model.PlatformCredentials) (*model.PlatformCredentials, error) {
	refreshed := *current
	refreshed.AccessToken = fmt.Sprintf("refreshed_access_token_%s_%s", platform.ID, uuid.NewString())
	refreshed.ExpiresAt = time.Now().Add(tokenTTL).UnixMilli()
	return &refreshed, nil
}

// ==================== 真实实现 ====================

// liveExchanger 对平台 tokenUrl 发起真实换 Token 请求
type liveExchanger struct {
	clientID    string
	redirectURI string
	client      *resty.Client
}

var _ TokenExchanger = (*liveExchanger)(nil)

// tokenResponse 平台 Token 端点响应
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

// NewLiveExchanger 创建真实交换器
func NewLiveExchanger(clientID, redirectURI string) TokenExchanger {
	client := resty.New().
		SetTimeout(20 * time.Second).
		SetRetryCount(2).
		SetHeader("User-Agent", "Storefront-Sync-App/1.0")
	return &liveExchanger{
		clientID:    clientID,
		redirectURI: redirectURI,
		client:      client,
	}
}

func (e *liveExchanger) Exchange(ctx context.Context, platform *model.Platform, code, verifier string) (*model.PlatformCredentials, error) {
	form := map[string]string{
		"grant_type":   "authorization_code",
		"client_id":    e.clientID,
		"redirect_uri": e.redirectURI,
		"code":         code,
	}
	if verifier != "" {
		form["code_verifier"] = verifier
	}
	return e.request(ctx, platform, form)
}

func (e *liveExchanger) Refresh(ctx context.Context, platform *model.Platform, current *model.PlatformCredentials) (*model.PlatformCredentials, error) {
	creds, err := e.request(ctx, platform, map[string]string{
		"grant_type":    "refresh_token",
		"client_id":     e.clientID,
		"refresh_token": current.RefreshToken,
	})
	if err != nil {
		return nil, err
	}
	// 平台没回新 refreshToken 时保留旧的
	if creds.RefreshToken == "" {
		creds.RefreshToken = current.RefreshToken
	}
	return creds, nil
}

func (e *liveExchanger) request(ctx context.Context, platform *model.Platform, form map[string]string) (*model.PlatformCredentials, error) {
	var tokenResp tokenResponse
	resp, err := e.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/x-www-form-urlencoded").
		SetFormData(form).
		SetResult(&tokenResp).
		Post(platform.TokenURL)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("token endpoint refused exchange: status %d", resp.StatusCode())
	}
	if tokenResp.AccessToken == "" {
		return nil, fmt.Errorf("token endpoint returned no access_token")
	}

	expiresIn := tokenResp.ExpiresIn
	if expiresIn == 0 {
		expiresIn = int64(tokenTTL.Seconds())
	}
	return &model.PlatformCredentials{
		AccessToken:  tokenResp.AccessToken,
		RefreshToken: tokenResp.RefreshToken,
		ExpiresAt:    time.Now().Add(time.Duration(expiresIn) * time.Second).UnixMilli(),
	}, nil
}
