package db

import "gorm.io/gorm"

// TimestampLayout 定义记录时间戳的序列化格式（秒级精度，本地时区）。
const TimestampLayout = "2006-01-02 15:04:05"

// DateLayout 定义日界判断所用的日期格式。
const DateLayout = "2006-01-02"

// WaterEntry 表示一次饮水记录
// UserID 为调用方提供的不透明标识，不做存在性校验
// AmountML 在入口层校验为正整数，存储层不再重复校验
// Timestamp 由存储层在写入时以本地时间赋值，精确到秒
// 记录一经写入不可修改，只会被按用户或全量删除
type WaterEntry struct {
	gorm.Model
	UserID    string `gorm:"index;not null"`
	AmountML  int    `gorm:"not null"`
	Timestamp string `gorm:"not null"`
}

// TableName 保持与历史数据文件一致的表名。
func (WaterEntry) TableName() string {
	return "water_entries"
}

// Metadata 存储全局键值元数据，目前仅有 last_date 一条。
type Metadata struct {
	gorm.Model
	Key   string `gorm:"size:100;uniqueIndex;not null"`
	Value string `gorm:"type:text"`
}

// TableName 自定义表名以保持命名一致。
func (Metadata) TableName() string {
	return "metadata"
}

// MetadataKeyLastDate 记录最近一次重置检查所对应的日历日期。
// 该标记是全局唯一的一行：即使记录本身按用户隔离，每日重置也是
// 所有用户共享一个日期、一次性清空全部记录。这是有意沿用历史语义，
// 如需按用户的重置粒度应把该标记改为按 user_id 建键。
const MetadataKeyLastDate = "last_date"
