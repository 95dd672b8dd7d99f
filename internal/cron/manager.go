// Package cron 定时任务：短信队列出队发送、过期验证码清理
package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/rajib3777/academia-sub001/internal/service"
)

// jobTimeout 单次任务执行上限
const jobTimeout = 2 * time.Minute

// Job 定时任务
type Job struct {
	Name string
	Spec string // cron 表达式（含秒）
	Run  func(ctx context.Context) error
}

// Manager 定时任务管理器
type Manager struct {
	cron   *cron.Cron
	logger *zap.Logger
}

// NewManager 创建 Manager，任务重叠时跳过本次执行
func NewManager(logger *zap.Logger) *Manager {
	cl := zapCronLogger{logger: logger.Named("cron").Sugar()}
	c := cron.New(
		cron.WithSeconds(),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	return &Manager{cron: c, logger: logger}
}

// zapCronLogger 将 cron 内部日志接入 zap；调度细节记为 Debug
type zapCronLogger struct {
	logger *zap.SugaredLogger
}

func (l zapCronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debugw(msg, keysAndValues...)
}

func (l zapCronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Errorw(msg, append(keysAndValues, "error", err)...)
}

// Register 注册任务；Spec 为空的任务视为关闭
func (m *Manager) Register(jobs ...Job) error {
	for _, job := range jobs {
		if job.Spec == "" {
			m.logger.Info("定时任务未启用", zap.String("job", job.Name))
			continue
		}
		job := job
		if _, err := m.cron.AddFunc(job.Spec, func() { m.run(job) }); err != nil {
			return fmt.Errorf("注册定时任务 %s 失败: %w", job.Name, err)
		}
		m.logger.Info("定时任务已注册", zap.String("job", job.Name), zap.String("spec", job.Spec))
	}
	return nil
}

// Start 启动调度
func (m *Manager) Start() {
	m.cron.Start()
}

// Stop 停止调度并等待执行中的任务结束
func (m *Manager) Stop() {
	ctx := m.cron.Stop()
	<-ctx.Done()
	m.logger.Info("定时任务已停止")
}

func (m *Manager) run(job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	start := time.Now()
	if err := job.Run(ctx); err != nil {
		m.logger.Error("定时任务执行失败", zap.String("job", job.Name), zap.Error(err))
		return
	}
	m.logger.Debug("定时任务完成", zap.String("job", job.Name), zap.Duration("latency", time.Since(start)))
}

// SMSDrainJob 短信队列出队发送
func SMSDrainJob(spec string, smsSvc service.SMSService, logger *zap.Logger) Job {
	return Job{
		Name: "sms_drain",
		Spec: spec,
		Run: func(ctx context.Context) error {
			stats, err := smsSvc.DrainQueue(ctx)
			if err != nil {
				return err
			}
			if stats.Picked > 0 {
				logger.Info("短信队列处理完成",
					zap.Int("picked", stats.Picked),
					zap.Int("sent", stats.Sent),
					zap.Int("failed", stats.Failed),
				)
			}
			return nil
		},
	}
}

// OTPPurgeJob 清理过期未验证的验证码
func OTPPurgeJob(spec string, otpSvc service.OTPService, logger *zap.Logger) Job {
	return Job{
		Name: "otp_purge",
		Spec: spec,
		Run: func(ctx context.Context) error {
			n, err := otpSvc.Purge(ctx)
			if err != nil {
				return err
			}
			if n > 0 {
				logger.Info("已清理过期验证码", zap.Int64("count", n))
			}
			return nil
		},
	}
}
