package db

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CheckDailyReset 执行每日重置策略：当 last_date 标记缺失或不等于今天时，
// 清空全部饮水记录并把标记更新为今天；标记已是今天则不做任何事。
// 策略只有 current-day / stale 两个状态，且仅在 Init 时同步评估，
// 没有后台定时器——进程某天未启动时，日界在下一次初始化时才会补偿执行。
// 重置范围是全局的（所有用户），与单行全局标记保持一致。
func CheckDailyReset(gdb *gorm.DB) error {
	today := time.Now().Format(DateLayout)

	var marker Metadata
	err := gdb.Where("key = ?", MetadataKeyLastDate).First(&marker).Error
	if err == nil && marker.Value == today {
		return nil
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("load reset marker: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"last_date": marker.Value,
		"today":     today,
	}).Info("new day detected, clearing all water entries")

	if err := gdb.Where("1 = 1").Unscoped().Delete(&WaterEntry{}).Error; err != nil {
		return fmt.Errorf("clear water entries: %w", err)
	}

	return UpsertLastDate(gdb, today)
}

// UpsertLastDate 以幂等方式写入 last_date 标记，保证该键至多存在一行。
func UpsertLastDate(gdb *gorm.DB, date string) error {
	record := Metadata{Key: MetadataKeyLastDate, Value: date}
	if err := gdb.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&record).Error; err != nil {
		return fmt.Errorf("upsert reset marker: %w", err)
	}
	return nil
}

// LastDate 返回当前标记的日期字符串，标记不存在时返回空串。
func LastDate(gdb *gorm.DB) (string, error) {
	var marker Metadata
	if err := gdb.Where("key = ?", MetadataKeyLastDate).First(&marker).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("load reset marker: %w", err)
	}
	return marker.Value, nil
}
