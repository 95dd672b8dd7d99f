package sms

import (
	"context"

	"go.uber.org/zap"
)

// LogSender 不接入网关，只记录日志并视为送达；sms.enabled=false 时使用
type LogSender struct {
	Logger *zap.Logger
}

// Send 记录一条发送日志
func (s LogSender) Send(_ context.Context, phone, message string) Result {
	s.Logger.Info("短信网关未启用，仅记录日志",
		zap.String("phone", phone),
		zap.Int("length", len([]rune(message))),
	)
	return Result{Delivered: true}
}
