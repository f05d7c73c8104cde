package model

// ==================== 平台接入模型 ====================

// PlatformStatus 平台连接状态
type PlatformStatus string

const (
	StatusConnected    PlatformStatus = "connected"
	StatusNotConnected PlatformStatus = "not_connected"
)

// SyncDirection 同步方向
type SyncDirection string

const (
	DirectionImport        SyncDirection = "import"
	DirectionExport        SyncDirection = "export"
	DirectionBidirectional SyncDirection = "bidirectional"
)

// InventoryStrategy 库存冲突解决策略
type InventoryStrategy string

const (
	StrategyPlatform InventoryStrategy = "platform"
	StrategyLocal    InventoryStrategy = "local"
	StrategyNewest   InventoryStrategy = "newest"
)

// LocalSource 本地库存读数的来源标识（与真实平台 id 区分）
const LocalSource = "local"

// Platform 第三方销售平台的接入元数据
// 启动时静态注册，status/lastSync 随连接与同步事件变化
type Platform struct {
	ID                  string         `json:"id"`
	Name                string         `json:"name"`
	Description         string         `json:"description"`
	Icon                string         `json:"icon"`
	Status              PlatformStatus `json:"status"`
	LastSync            string         `json:"lastSync,omitempty"`
	RequiredCredentials []string       `json:"requiredCredentials"`
	AuthURL             string         `json:"authUrl,omitempty"`
	TokenURL            string         `json:"tokenUrl,omitempty"`
	Scopes              []string       `json:"scopes,omitempty"`
	RedirectURI         string         `json:"redirectUri,omitempty"`
	RefreshCredentials  bool           `json:"refreshCredentials,omitempty"`
	PKCE                bool           `json:"pkce,omitempty"`
	WebhookSupport      bool           `json:"webhookSupport,omitempty"`
	InventorySync       bool           `json:"inventorySync,omitempty"`
}

// PlatformCredentials 某平台的授权凭证
// ExpiresAt 为毫秒时间戳；accessToken 存在且未过期即视为已认证
type PlatformCredentials struct {
	APIKey       string `json:"apiKey,omitempty"`
	APISecret    string `json:"apiSecret,omitempty"`
	ClientID     string `json:"clientId,omitempty"`
	ClientSecret string `json:"clientSecret,omitempty"`
	AccessToken  string `json:"accessToken,omitempty"`
	RefreshToken string `json:"refreshToken,omitempty"`
	ExpiresAt    int64  `json:"expiresAt,omitempty"`
}

// SyncDetails 同步明细
type SyncDetails struct {
	ItemsSynced      int      `json:"itemsSynced,omitempty"`
	ItemsFailed      int      `json:"itemsFailed,omitempty"`
	InventoryUpdated int      `json:"inventoryUpdated,omitempty"`
	Errors           []string `json:"errors,omitempty"`
}

// SyncResult 一次同步操作的结果
// Timestamp 为 ISO-8601 字符串，直接用于前端展示
type SyncResult struct {
	Success   bool         `json:"success"`
	Message   string       `json:"message"`
	Timestamp string       `json:"timestamp"`
	Details   *SyncDetails `json:"details,omitempty"`
}

// PlatformSyncConfig 平台同步配置，每个平台一份
type PlatformSyncConfig struct {
	AutoSync          bool              `json:"autoSync"`
	SyncInterval      int               `json:"syncInterval"` // 分钟
	SyncDirection     SyncDirection     `json:"syncDirection"`
	SyncInventoryOnly bool              `json:"syncInventoryOnly,omitempty"`
	InventoryPriority InventoryStrategy `json:"inventoryPriority,omitempty"`
	LastSyncStatus    *SyncResult       `json:"lastSyncStatus,omitempty"`
}

// DefaultSyncConfig 首次访问时的默认配置
func DefaultSyncConfig() *PlatformSyncConfig {
	return &PlatformSyncConfig{
		AutoSync:      false,
		SyncInterval:  60, // 默认每小时
		SyncDirection: DirectionBidirectional,
	}
}

// InventoryUpdate 某产品在某来源的一次库存读数
// 同一 (productId, platformId) 仅最新 timestamp 的记录有效
type InventoryUpdate struct {
	ProductID  string `json:"productId"`
	SKU        string `json:"sku"`
	Quantity   int    `json:"quantity"`
	PlatformID string `json:"platformId"`
	Timestamp  int64  `json:"timestamp"` // 毫秒
}
