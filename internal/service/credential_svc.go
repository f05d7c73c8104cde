package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"storefront_sync_v1_202608/internal/model"
	"storefront_sync_v1_202608/internal/repository"
)

// ==================== 凭证服务 ====================

// CredentialService 平台凭证的唯一持有者
// 其他组件调用平台 API 前必须先问 IsValid
type CredentialService struct {
	kv repository.KeyValueStore
}

// NewCredentialService 工厂方法
func NewCredentialService(kv repository.KeyValueStore) *CredentialService {
	return &CredentialService{kv: kv}
}

// Store 持久化平台凭证，覆盖旧值
// 内容不做校验，仅接受
func (s *CredentialService) Store(ctx context.Context, platformID string, creds *model.PlatformCredentials) error {
	data, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("failed to store credentials: %v", err)
	}
	if err := s.kv.Set(ctx, repository.CredentialsKey(platformID), string(data)); err != nil {
		log.Printf("[Credential] 平台 [%s] 凭证写入失败: %v", platformID, err)
		return fmt.Errorf("failed to store credentials: %v", err)
	}
	return nil
}

// Get 读取平台凭证；未连接或数据损坏返回 nil
func (s *CredentialService) Get(ctx context.Context, platformID string) *model.PlatformCredentials {
	raw, ok, err := s.kv.Get(ctx, repository.CredentialsKey(platformID))
	if err != nil {
		log.Printf("[Credential] 平台 [%s] 凭证读取失败: %v", platformID, err)
		return nil
	}
	if !ok {
		return nil
	}

	var creds model.PlatformCredentials
	if err := json.Unmarshal([]byte(raw), &creds); err != nil {
		// 存储数据损坏按未连接处理，不向上抛
		log.Printf("[Credential] 平台 [%s] 凭证解析失败: %v", platformID, err)
		return nil
	}
	return &creds
}

// Clear 删除平台凭证，幂等
func (s *CredentialService) Clear(ctx context.Context, platformID string) {
	if err := s.kv.Delete(ctx, repository.CredentialsKey(platformID)); err != nil {
		log.Printf("[Credential] 平台 [%s] 凭证清除失败: %v", platformID, err)
	}
}

// IsValid 凭证有效性判定
// accessToken 存在且 expiresAt 缺省或在未来才算有效
func (s *CredentialService) IsValid(ctx context.Context, platformID string) bool {
	creds := s.Get(ctx, platformID)
	if creds == nil || creds.AccessToken == "" {
		return false
	}
	if creds.ExpiresAt != 0 && creds.ExpiresAt < time.Now().UnixMilli() {
		return false
	}
	return true
}
