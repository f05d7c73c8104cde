package service

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"

	"storefront_sync_v1_202608/internal/model"
	"storefront_sync_v1_202608/internal/repository"
	"storefront_sync_v1_202608/pkg/utils"
)

// ==================== 授权服务 ====================

// AuthConfig 授权服务配置
type AuthConfig struct {
	ClientID    string // 各平台共用的演示 client_id
	CallbackURL string // 平台未指定 redirectUri 时的默认回调地址
}

// AuthService 平台授权流程管理
// 状态机：idle -> authorizing -> (回调) -> exchanging -> connected/failed
type AuthService struct {
	cfg       *AuthConfig
	kv        repository.KeyValueStore
	creds     *CredentialService
	catalog   *CatalogService
	exchanger TokenExchanger
}

// NewAuthService 工厂方法
func NewAuthService(cfg *AuthConfig, kv repository.KeyValueStore, creds *CredentialService,
	catalog *CatalogService, exchanger TokenExchanger) *AuthService {
	return &AuthService{
		cfg:       cfg,
		kv:        kv,
		creds:     creds,
		catalog:   catalog,
		exchanger: exchanger,
	}
}

// GenerateAuthURL 生成授权链接
// 生成随机 state 并持久化，回调时强制校验（防 CSRF）
func (s *AuthService) GenerateAuthURL(ctx context.Context, platform *model.Platform) (string, error) {
	if platform.AuthURL == "" {
		return "", fmt.Errorf("%w: OAuth URLs for %s are not configured", ErrConfiguration, platform.Name)
	}

	// state 前缀带平台 id，回调缺 platform 参数时可以据此反查
	nonce, err := utils.GenerateRandomString(16)
	if err != nil {
		return "", err
	}
	state := platform.ID + "_" + nonce
	if err := s.kv.Set(ctx, repository.OAuthStateKey(platform.ID), state); err != nil {
		return "", fmt.Errorf("failed to persist oauth state: %v", err)
	}

	redirectURI := platform.RedirectURI
	if redirectURI == "" {
		redirectURI = s.cfg.CallbackURL
	}

	authURL, err := url.Parse(platform.AuthURL)
	if err != nil {
		return "", fmt.Errorf("%w: invalid authUrl for %s", ErrConfiguration, platform.Name)
	}
	q := authURL.Query()
	q.Set("client_id", s.cfg.ClientID)
	q.Set("redirect_uri", redirectURI)
	q.Set("response_type", "code")
	q.Set("state", state)
	q.Set("platform", platform.ID)
	if len(platform.Scopes) > 0 {
		q.Set("scope", strings.Join(platform.Scopes, " "))
	}

	// PKCE 平台附带 S256 challenge，verifier 留到换 Token 时用
	if platform.PKCE {
		verifier, err := utils.GenerateRandomString(64)
		if err != nil {
			return "", err
		}
		if err := s.kv.Set(ctx, repository.PKCEVerifierKey(platform.ID), verifier); err != nil {
			return "", fmt.Errorf("failed to persist pkce verifier: %v", err)
		}
		q.Set("code_challenge", utils.GenerateCodeChallenge(verifier))
		q.Set("code_challenge_method", "S256")
	}
	authURL.RawQuery = q.Encode()

	return authURL.String(), nil
}

// CallbackParams OAuth 回调参数
type CallbackParams struct {
	Code     string
	State    string
	Error    string
	Platform string
}

// CallbackResult 回调处理结果
type CallbackResult struct {
	PlatformID   string                     `json:"platformId"`
	PlatformName string                     `json:"platformName"`
	Credentials  *model.PlatformCredentials `json:"-"`
}

// HandleCallback 处理授权回调 -> 换 Token
// 平台 id 优先取显式的 platform 参数，否则解析 state 前缀
func (s *AuthService) HandleCallback(ctx context.Context, params CallbackParams) (*CallbackResult, error) {
	platformID := params.Platform
	if platformID == "" {
		if idx := strings.Index(params.State, "_"); idx > 0 {
			platformID = params.State[:idx]
		}
	}
	result := &CallbackResult{
		PlatformID:   platformID,
		PlatformName: model.PlatformDisplayName(platformID),
	}

	if params.Error != "" {
		return result, fmt.Errorf("%w: %s", ErrAuthorization, params.Error)
	}
	if params.Code == "" {
		return result, ErrMissingCode
	}

	// state 必须和本地记录一致，用完即焚
	stored, ok, err := s.kv.Get(ctx, repository.OAuthStateKey(platformID))
	if err != nil || !ok || stored != params.State {
		return result, ErrStateMismatch
	}
	if err := s.kv.Delete(ctx, repository.OAuthStateKey(platformID)); err != nil {
		log.Printf("[Auth] 平台 [%s] state 清除失败: %v", platformID, err)
	}

	platform, err := s.catalog.Get(platformID)
	if err != nil {
		return result, err
	}

	creds, err := s.ExchangeCodeForToken(ctx, platform, params.Code)
	if err != nil {
		return result, err
	}
	result.Credentials = creds
	return result, nil
}

// ExchangeCodeForToken 授权码换 Token 并持久化
func (s *AuthService) ExchangeCodeForToken(ctx context.Context, platform *model.Platform, code string) (*model.PlatformCredentials, error) {
	if platform.TokenURL == "" {
		return nil, fmt.Errorf("%w: Token URL for %s is not configured", ErrConfiguration, platform.Name)
	}

	// PKCE verifier 一次性使用
	verifier := ""
	if platform.PKCE {
		if v, ok, err := s.kv.Get(ctx, repository.PKCEVerifierKey(platform.ID)); err == nil && ok {
			verifier = v
			if err := s.kv.Delete(ctx, repository.PKCEVerifierKey(platform.ID)); err != nil {
				log.Printf("[Auth] 平台 [%s] pkce verifier 清除失败: %v", platform.ID, err)
			}
		}
	}

	creds, err := s.exchanger.Exchange(ctx, platform, code, verifier)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenExchange, err)
	}

	if err := s.creds.Store(ctx, platform.ID, creds); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenExchange, err)
	}
	return creds, nil
}

// RefreshAccessToken 刷新过期凭证
// 无凭证或无 refreshToken 时返回 nil；刷新失败同样返回 nil，调用方自行降级
func (s *AuthService) RefreshAccessToken(ctx context.Context, platform *model.Platform) *model.PlatformCredentials {
	current := s.creds.Get(ctx, platform.ID)
	if current == nil || current.RefreshToken == "" {
		return nil
	}

	refreshed, err := s.exchanger.Refresh(ctx, platform, current)
	if err != nil {
		log.Printf("[Auth] 平台 [%s] Token 刷新失败: %v", platform.ID, err)
		return nil
	}

	if err := s.creds.Store(ctx, platform.ID, refreshed); err != nil {
		log.Printf("[Auth] 平台 [%s] 刷新后凭证写入失败: %v", platform.ID, err)
		return nil
	}
	return refreshed
}
