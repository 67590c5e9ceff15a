package service

import (
	"time"

	"github.com/sirupsen/logrus"
)

// ReminderService 在每次写入后安排一条"该喝水了"的延迟提醒
// 提醒是尽力而为的旁路副作用：独立 goroutine 中休眠后输出，
// 不重试、不上报失败，任何情况下都不影响触发它的写入请求

type ReminderService struct {
	delay  time.Duration
	notify func(userID string)
}

// NewReminderService 构造 ReminderService，delay 非正时回退为 60 分钟。
func NewReminderService(delay time.Duration) *ReminderService {
	if delay <= 0 {
		delay = 60 * time.Minute
	}
	return &ReminderService{delay: delay}
}

// SetNotifier 覆盖默认提醒动作，主要用于测试。
func (s *ReminderService) SetNotifier(notify func(userID string)) {
	s.notify = notify
}

// Schedule 为指定用户安排一次提醒后立即返回，绝不阻塞调用方。
func (s *ReminderService) Schedule(userID string) {
	go func() {
		time.Sleep(s.delay)
		if s.notify != nil {
			s.notify(userID)
			return
		}
		logrus.WithFields(logrus.Fields{
			"user_id": userID,
			"at":      time.Now().Format("15:04:05"),
		}).Info("reminder: time to hydrate")
	}()
}
