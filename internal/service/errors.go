package service

import "errors"

// ==================== 错误定义 ====================

var (
	// ErrConfiguration 平台缺少 authUrl / tokenUrl 配置
	ErrConfiguration = errors.New("oauth endpoints are not configured")

	// ErrMissingCode 回调缺少授权码
	ErrMissingCode = errors.New("no authorization code was received from the provider")

	// ErrAuthorization 授权方返回错误
	ErrAuthorization = errors.New("authorization failed")

	// ErrStateMismatch 回调 state 与本地记录不一致（CSRF 防护）
	ErrStateMismatch = errors.New("oauth state is missing or does not match")

	// ErrTokenExchange 授权码换 Token 失败
	ErrTokenExchange = errors.New("failed to exchange code for token")

	// ErrUnknownPlatform 平台 id 未注册
	ErrUnknownPlatform = errors.New("unknown platform")
)
