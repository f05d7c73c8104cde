package model

// ==================== 平台目录 ====================

// platformNames 平台 id -> 展示名映射
var platformNames = map[string]string{
	"etsy":      "Etsy",
	"tiktok":    "TikTok Shop",
	"facebook":  "Facebook Marketplace",
	"square":    "Square",
	"instagram": "Instagram Shop",
	"amazon":    "Amazon",
	"shopify":   "Shopify",
	"ebay":      "eBay",
}

// PlatformDisplayName 未知 id 返回通用标签
func PlatformDisplayName(id string) string {
	if name, ok := platformNames[id]; ok {
		return name
	}
	return "Platform"
}

// SeedPlatforms 启动时注册的平台清单
// authUrl/tokenUrl 为各平台官方 OAuth 端点
func SeedPlatforms(callbackURL string) []Platform {
	return []Platform{
		{
			ID:                  "etsy",
			Name:                "Etsy",
			Description:         "Sell handmade and vintage goods on the Etsy marketplace.",
			Icon:                "🏪",
			Status:              StatusNotConnected,
			RequiredCredentials: []string{"accessToken", "refreshToken"},
			AuthURL:             "https://www.etsy.com/oauth/connect",
			TokenURL:            "https://api.etsy.com/v3/public/oauth/token",
			Scopes:              []string{"listings_r", "listings_w", "transactions_r"},
			RedirectURI:         callbackURL,
			RefreshCredentials:  true,
			PKCE:                true,
			InventorySync:       true,
		},
		{
			ID:                  "tiktok",
			Name:                "TikTok Shop",
			Description:         "Sell directly to TikTok users through the integrated shopping feature.",
			Icon:                "📱",
			Status:              StatusNotConnected,
			RequiredCredentials: []string{"accessToken", "refreshToken"},
			AuthURL:             "https://auth.tiktok-shops.com/oauth/authorize",
			TokenURL:            "https://auth.tiktok-shops.com/api/v2/token",
			Scopes:              []string{"product.read", "product.write", "order.read"},
			RedirectURI:         callbackURL,
			RefreshCredentials:  true,
			WebhookSupport:      true,
		},
		{
			ID:                  "facebook",
			Name:                "Facebook Marketplace",
			Description:         "List products on Facebook's marketplace for local and shipping sales.",
			Icon:                "👥",
			Status:              StatusNotConnected,
			RequiredCredentials: []string{"accessToken", "refreshToken"},
			AuthURL:             "https://www.facebook.com/v18.0/dialog/oauth",
			TokenURL:            "https://graph.facebook.com/v18.0/oauth/access_token",
			Scopes:              []string{"catalog_management", "business_management"},
			RedirectURI:         callbackURL,
			RefreshCredentials:  true,
		},
		{
			ID:                  "square",
			Name:                "Square",
			Description:         "Sync inventory with your Square point-of-sale system and online store.",
			Icon:                "🔲",
			Status:              StatusNotConnected,
			RequiredCredentials: []string{"accessToken", "refreshToken"},
			AuthURL:             "https://connect.squareupsandbox.com/oauth2/authorize",
			TokenURL:            "https://connect.squareupsandbox.com/oauth2/token",
			Scopes:              []string{"ITEMS_READ", "ITEMS_WRITE", "INVENTORY_READ", "INVENTORY_WRITE"},
			RedirectURI:         callbackURL,
			RefreshCredentials:  true,
			WebhookSupport:      true,
			InventorySync:       true,
		},
		{
			ID:                  "instagram",
			Name:                "Instagram Shop",
			Description:         "Enable shopping features on your Instagram business profile.",
			Icon:                "📸",
			Status:              StatusNotConnected,
			RequiredCredentials: []string{"accessToken", "refreshToken"},
			AuthURL:             "https://api.instagram.com/oauth/authorize",
			TokenURL:            "https://api.instagram.com/oauth/access_token",
			Scopes:              []string{"user_profile", "user_media"},
			RedirectURI:         callbackURL,
		},
		{
			ID:                  "amazon",
			Name:                "Amazon",
			Description:         "List products on Amazon's marketplace for global reach.",
			Icon:                "📦",
			Status:              StatusNotConnected,
			RequiredCredentials: []string{"accessToken", "refreshToken"},
			AuthURL:             "https://sellercentral.amazon.com/apps/authorize/consent",
			TokenURL:            "https://api.amazon.com/auth/o2/token",
			Scopes:              []string{"product_listing", "order_read"},
			RedirectURI:         callbackURL,
			RefreshCredentials:  true,
		},
		{
			ID:                  "shopify",
			Name:                "Shopify",
			Description:         "Sync with your Shopify store to manage inventory across channels.",
			Icon:                "🛒",
			Status:              StatusNotConnected,
			RequiredCredentials: []string{"accessToken", "refreshToken"},
			AuthURL:             "https://accounts.shopify.com/oauth/authorize",
			TokenURL:            "https://accounts.shopify.com/oauth/token",
			Scopes:              []string{"read_products", "write_products", "read_orders"},
			RedirectURI:         callbackURL,
			RefreshCredentials:  true,
			InventorySync:       true,
		},
		{
			ID:                  "ebay",
			Name:                "eBay",
			Description:         "List products on eBay's auction and fixed-price marketplace.",
			Icon:                "🏷️",
			Status:              StatusNotConnected,
			RequiredCredentials: []string{"accessToken", "refreshToken"},
			AuthURL:             "https://auth.ebay.com/oauth2/authorize",
			TokenURL:            "https://api.ebay.com/identity/v1/oauth2/token",
			Scopes: []string{
				"https://api.ebay.com/oauth/api_scope/sell.inventory",
				"https://api.ebay.com/oauth/api_scope/sell.account",
			},
			RedirectURI:        callbackURL,
			RefreshCredentials: true,
		},
	}
}
