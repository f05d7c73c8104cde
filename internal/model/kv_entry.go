package model

import "time"

// KVEntry 键值存储行
// 凭证、OAuth state、同步配置、库存日志统一落在这张表
// 键格式见 repository 层常量
type KVEntry struct {
	Key       string    `gorm:"primaryKey;size:255" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (KVEntry) TableName() string { return "kv_entries" }
