package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/droplog/internal/db"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ErrInvalidAmount 在饮水量不是正整数时返回
var ErrInvalidAmount = errors.New("amount_ml must be a positive integer")

// WaterLogService 负责饮水记录的写入、查询与清空
// 记录不可修改，只支持追加与按范围删除，保持与存量数据语义一致
// 并发访问依赖 sqlite 自身的语句级串行化，不做跨语句事务

type WaterLogService struct {
	db *gorm.DB
}

// NewWaterLogService 构造 WaterLogService
func NewWaterLogService(gdb *gorm.DB) *WaterLogService {
	return &WaterLogService{db: gdb}
}

// Append 写入一条饮水记录并返回含时间戳的完整记录。
// 时间戳由服务在写入时以本地时间赋值，调用方不能指定。
func (s *WaterLogService) Append(userID string, amountML int) (*db.WaterEntry, error) {
	if amountML <= 0 {
		return nil, ErrInvalidAmount
	}

	entry := db.WaterEntry{
		UserID:    strings.TrimSpace(userID),
		AmountML:  amountML,
		Timestamp: time.Now().Format(db.TimestampLayout),
	}

	if err := s.db.Create(&entry).Error; err != nil {
		return nil, fmt.Errorf("append water entry: %w", err)
	}

	return &entry, nil
}

// History 返回指定用户的全部饮水记录，按时间升序。
// 没有记录时返回空切片而不是错误。
func (s *WaterLogService) History(userID string) ([]db.WaterEntry, error) {
	var entries []db.WaterEntry

	if err := s.db.Where("user_id = ?", userID).
		Order("timestamp ASC, id ASC").
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list water entries: %w", err)
	}

	return entries, nil
}

// TodayTotal 汇总指定用户当天的饮水量，没有记录时返回 0。
func (s *WaterLogService) TodayTotal(userID string) (int, error) {
	today := time.Now().Format(db.DateLayout)

	var total int64
	if err := s.db.Model(&db.WaterEntry{}).
		Where("user_id = ? AND timestamp LIKE ?", userID, today+"%").
		Select("COALESCE(SUM(amount_ml), 0)").
		Scan(&total).Error; err != nil {
		return 0, fmt.Errorf("sum today total: %w", err)
	}

	return int(total), nil
}

// Clear 删除指定用户的全部记录；userID 为空时删除所有用户的记录。
// 无论删除了多少行（包括零行）都会把 last_date 标记更新为今天。
func (s *WaterLogService) Clear(userID string) error {
	query := s.db.Unscoped().Where("1 = 1")
	if strings.TrimSpace(userID) != "" {
		query = s.db.Unscoped().Where("user_id = ?", userID)
	}

	result := query.Delete(&db.WaterEntry{})
	if result.Error != nil {
		return fmt.Errorf("clear water entries: %w", result.Error)
	}

	if err := db.UpsertLastDate(s.db, time.Now().Format(db.DateLayout)); err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"user_id": userID,
		"deleted": result.RowsAffected,
	}).Info("hydration log cleared")

	return nil
}
