package repository

import (
	"context"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"storefront_sync_v1_202608/internal/model"
)

// ==================== 测试辅助 ====================

func setupKVTestDB(t *testing.T) KeyValueStore {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	if err := db.AutoMigrate(&model.KVEntry{}); err != nil {
		t.Fatalf("数据库迁移失败: %v", err)
	}
	return NewKVStore(db)
}

// ==================== 单元测试 ====================

func TestKVStore_SetGetDelete(t *testing.T) {
	stores := map[string]KeyValueStore{
		"gorm":   setupKVTestDB(t),
		"memory": NewMemoryKVStore(),
	}

	for name, kv := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			// 不存在的键
			_, ok, err := kv.Get(ctx, "missing")
			if err != nil {
				t.Fatalf("读取失败: %v", err)
			}
			if ok {
				t.Fatal("不存在的键不应命中")
			}

			// 写入与读取
			if err := kv.Set(ctx, "etsy_credentials", `{"accessToken":"abc"}`); err != nil {
				t.Fatalf("写入失败: %v", err)
			}
			val, ok, err := kv.Get(ctx, "etsy_credentials")
			if err != nil || !ok {
				t.Fatalf("读取失败: ok=%v err=%v", ok, err)
			}
			if val != `{"accessToken":"abc"}` {
				t.Fatalf("读取值不符: %s", val)
			}

			// 覆盖写
			if err := kv.Set(ctx, "etsy_credentials", `{"accessToken":"def"}`); err != nil {
				t.Fatalf("覆盖写失败: %v", err)
			}
			val, _, _ = kv.Get(ctx, "etsy_credentials")
			if val != `{"accessToken":"def"}` {
				t.Fatalf("覆盖后读取值不符: %s", val)
			}

			// 删除幂等
			if err := kv.Delete(ctx, "etsy_credentials"); err != nil {
				t.Fatalf("删除失败: %v", err)
			}
			if err := kv.Delete(ctx, "etsy_credentials"); err != nil {
				t.Fatalf("重复删除应静默成功: %v", err)
			}
			_, ok, _ = kv.Get(ctx, "etsy_credentials")
			if ok {
				t.Fatal("删除后不应命中")
			}
		})
	}
}

func TestKVStore_KeyHelpers(t *testing.T) {
	if CredentialsKey("etsy") != "etsy_credentials" {
		t.Fatalf("凭证键格式不符: %s", CredentialsKey("etsy"))
	}
	if OAuthStateKey("square") != "square_oauth_state" {
		t.Fatalf("state 键格式不符: %s", OAuthStateKey("square"))
	}
	if PKCEVerifierKey("etsy") != "etsy_pkce_verifier" {
		t.Fatalf("verifier 键格式不符: %s", PKCEVerifierKey("etsy"))
	}
	if SyncConfigKey("ebay") != "ebay_sync_config" {
		t.Fatalf("配置键格式不符: %s", SyncConfigKey("ebay"))
	}
	if InventoryKey("product1") != "inventory_product1" {
		t.Fatalf("库存键格式不符: %s", InventoryKey("product1"))
	}
	if SKUKey("product1") != "sku_product1" {
		t.Fatalf("SKU 键格式不符: %s", SKUKey("product1"))
	}
}
