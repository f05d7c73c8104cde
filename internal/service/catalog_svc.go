package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"storefront_sync_v1_202608/internal/model"
)

// ==================== 平台目录服务 ====================

// CatalogService 已注册平台的目录
// 平台清单启动时静态注册，只切换状态，从不删除
type CatalogService struct {
	mu        sync.RWMutex
	platforms map[string]*model.Platform
	order     []string

	creds *CredentialService
}

// NewCatalogService 工厂方法
// 启动时根据已存凭证恢复连接状态
func NewCatalogService(seed []model.Platform, creds *CredentialService) *CatalogService {
	s := &CatalogService{
		platforms: make(map[string]*model.Platform, len(seed)),
		creds:     creds,
	}
	for i := range seed {
		p := seed[i]
		s.platforms[p.ID] = &p
		s.order = append(s.order, p.ID)
	}
	return s
}

// RestoreStatus 按存储中的凭证恢复各平台连接状态
func (s *CatalogService) RestoreStatus(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.platforms {
		if s.creds.IsValid(ctx, p.ID) {
			p.Status = model.StatusConnected
		}
	}
}

// Get 按 id 查平台
func (s *CatalogService) Get(id string) (*model.Platform, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.platforms[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPlatform, id)
	}
	cp := *p
	return &cp, nil
}

// List 平台列表，保持注册顺序
func (s *CatalogService) List() []model.Platform {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Platform, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.platforms[id])
	}
	return out
}

// MarkConnected 连接成功后切换状态
func (s *CatalogService) MarkConnected(id string) {
	s.setStatus(id, model.StatusConnected)
}

// MarkDisconnected 断开后切换状态并清掉同步时间
func (s *CatalogService) MarkDisconnected(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.platforms[id]; ok {
		p.Status = model.StatusNotConnected
		p.LastSync = ""
	}
}

// MarkSynced 记录最近一次同步时间
func (s *CatalogService) MarkSynced(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.platforms[id]; ok {
		p.LastSync = time.Now().Format("2006-01-02 15:04")
	}
}

func (s *CatalogService) setStatus(id string, status model.PlatformStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.platforms[id]; ok {
		p.Status = status
	}
}
