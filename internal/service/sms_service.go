package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/rajib3777/academia-sub001/internal/dto"
	"github.com/rajib3777/academia-sub001/internal/model"
	"github.com/rajib3777/academia-sub001/internal/repository"
	"github.com/rajib3777/academia-sub001/pkg/pagination"
	"github.com/rajib3777/academia-sub001/pkg/sms"
)

// ── 短信模块业务错误 ──

var (
	ErrSMSNotFound      = errors.New("短信记录不存在")
	ErrSMSNotCancelable = errors.New("仅待发送的短信可以取消")
	ErrSMSNotQueued     = errors.New("短信不在待发送状态或正在发送")
)

// QueueInput 入队参数
type QueueInput struct {
	Phone      string
	Message    string
	SMSType    string
	CreatedBy  *string
	CreatedFor *string
}

// DrainStats 一次出队处理的统计
type DrainStats struct {
	Picked int
	Sent   int
	Failed int
}

// SMSService 短信业务接口
//
// 记录与发送结果均显式传递，不依赖包级状态：
//   - Queue 使用调用方传入的 repo，可加入调用方事务
//   - Send 在同一事务内入队并发送，提交前记录对出队任务不可见
//   - Deliver 对传入记录只发起一次网关调用，发送期间持有行锁，进入终态时写 response_at
//   - DrainQueue 逐条认领 id 最小的待发送记录，最多 batch_size 条，不重试
type SMSService interface {
	Queue(ctx context.Context, repo *repository.Repository, in QueueInput) (*model.SMSHistory, error)
	// Send 返回写入终态后的记录及是否送达；repo 为空时自开事务
	Send(ctx context.Context, repo *repository.Repository, in QueueInput) (*model.SMSHistory, bool, error)
	// Deliver 返回是否送达；error 仅表示持久化失败
	Deliver(ctx context.Context, record *model.SMSHistory) (bool, error)
	DrainQueue(ctx context.Context) (DrainStats, error)
	// SendNow 立即发送一条待发送记录
	SendNow(ctx context.Context, id uint64) (*dto.SMSResponse, error)
	Cancel(ctx context.Context, id uint64) (*dto.SMSResponse, error)
	List(ctx context.Context, req *dto.SMSListRequest) ([]dto.SMSResponse, pagination.Meta, error)
}

type smsService struct {
	repo      *repository.Repository
	sender    sms.Sender
	batchSize int
	now       func() time.Time
	logger    *zap.Logger
}

// NewSMSService 创建 SMSService 实例
func NewSMSService(repo *repository.Repository, sender sms.Sender, batchSize int, logger *zap.Logger) SMSService {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &smsService{
		repo:      repo,
		sender:    sender,
		batchSize: batchSize,
		now:       time.Now,
		logger:    logger,
	}
}

func (s *smsService) Queue(ctx context.Context, repo *repository.Repository, in QueueInput) (*model.SMSHistory, error) {
	if repo == nil {
		repo = s.repo
	}
	smsType := in.SMSType
	if smsType == "" {
		smsType = model.SMSTypeOther
	}
	record := &model.SMSHistory{
		CreatedBy:   in.CreatedBy,
		CreatedFor:  in.CreatedFor,
		PhoneNumber: in.Phone,
		Message:     in.Message,
		SMSType:     smsType,
		Status:      model.SMSStatusQueue,
	}
	if err := repo.SMS.Create(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

func (s *smsService) Send(ctx context.Context, repo *repository.Repository, in QueueInput) (*model.SMSHistory, bool, error) {
	var (
		record    *model.SMSHistory
		delivered bool
	)
	send := func(tx *repository.Repository) error {
		queued, err := s.Queue(ctx, tx, in)
		if err != nil {
			return err
		}
		locked, err := tx.SMS.LockQueued(ctx, queued.ID)
		if err != nil {
			return err
		}
		delivered, err = s.deliverLocked(ctx, tx, locked)
		record = locked
		return err
	}

	var err error
	if repo != nil {
		err = send(repo)
	} else {
		err = s.repo.InTx(ctx, send)
	}
	if err != nil {
		s.logger.Error("短信发送事务失败", zap.String("phone", in.Phone), zap.Error(err))
		return nil, false, err
	}
	return record, delivered, nil
}

func (s *smsService) Deliver(ctx context.Context, record *model.SMSHistory) (bool, error) {
	if record.IsTerminal() {
		return record.Status == model.SMSStatusSent, nil
	}

	var delivered bool
	err := s.repo.InTx(ctx, func(tx *repository.Repository) error {
		locked, err := tx.SMS.LockQueued(ctx, record.ID)
		if err != nil {
			if isNotFound(err) {
				s.logger.Info("短信已被其他任务认领或已处理", zap.Uint64("sms_id", record.ID))
				return nil
			}
			return err
		}
		delivered, err = s.deliverLocked(ctx, tx, locked)
		*record = *locked
		return err
	})
	return delivered, err
}

// deliverLocked 调用网关并写回结果，调用方须在同一事务内持有该记录的行锁
func (s *smsService) deliverLocked(ctx context.Context, tx *repository.Repository, record *model.SMSHistory) (bool, error) {
	result := s.sender.Send(ctx, record.PhoneNumber, record.Message)
	now := s.now()
	if result.Delivered {
		record.Status = model.SMSStatusSent
		record.SentAt = &now
		record.FailedReason = nil
		record.FailedStatusCode = nil
	} else {
		reason := result.Reason
		record.Status = model.SMSStatusFailed
		record.FailedReason = &reason
		record.FailedStatusCode = result.StatusCode
	}
	record.ResponseAt = &now

	saved, err := tx.SMS.SaveResult(ctx, record)
	if err != nil {
		s.logger.Error("保存短信发送结果失败", zap.Uint64("sms_id", record.ID), zap.Error(err))
		return result.Delivered, err
	}
	if !saved {
		s.logger.Warn("短信已不在待发送状态，忽略本次结果", zap.Uint64("sms_id", record.ID))
	}
	if !result.Delivered {
		s.logger.Warn("短信发送失败",
			zap.Uint64("sms_id", record.ID),
			zap.String("reason", result.Reason),
		)
	}
	return result.Delivered, nil
}

func (s *smsService) DrainQueue(ctx context.Context) (DrainStats, error) {
	var stats DrainStats
	for stats.Picked < s.batchSize {
		if ctx.Err() != nil {
			return stats, ctx.Err()
		}

		var claimed, delivered bool
		err := s.repo.InTx(ctx, func(tx *repository.Repository) error {
			record, err := tx.SMS.ClaimNextQueued(ctx)
			if err != nil {
				if isNotFound(err) {
					return nil
				}
				return err
			}
			claimed = true
			delivered, err = s.deliverLocked(ctx, tx, record)
			return err
		})
		if err != nil {
			s.logger.Error("处理短信队列失败", zap.Error(err))
			return stats, err
		}
		if !claimed {
			break
		}

		stats.Picked++
		if delivered {
			stats.Sent++
		} else {
			stats.Failed++
		}
	}
	return stats, nil
}

func (s *smsService) SendNow(ctx context.Context, id uint64) (*dto.SMSResponse, error) {
	record, err := s.repo.SMS.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, ErrSMSNotFound)
	}
	if record.Status != model.SMSStatusQueue {
		return nil, ErrSMSNotQueued
	}
	if _, err := s.Deliver(ctx, record); err != nil {
		return nil, err
	}
	if record.Status == model.SMSStatusQueue {
		return nil, ErrSMSNotQueued
	}
	resp := toSMSResponse(record)
	return &resp, nil
}

func (s *smsService) Cancel(ctx context.Context, id uint64) (*dto.SMSResponse, error) {
	var record *model.SMSHistory
	err := s.repo.InTx(ctx, func(tx *repository.Repository) error {
		existing, err := tx.SMS.GetByID(ctx, id)
		if err != nil {
			return mapNotFound(err, ErrSMSNotFound)
		}
		if existing.Status != model.SMSStatusQueue {
			return ErrSMSNotCancelable
		}
		// 正在发送的记录被其他事务锁住，视为不可取消
		locked, err := tx.SMS.LockQueued(ctx, id)
		if err != nil {
			return mapNotFound(err, ErrSMSNotCancelable)
		}

		now := s.now()
		locked.Status = model.SMSStatusCanceled
		locked.ResponseAt = &now
		saved, err := tx.SMS.SaveResult(ctx, locked)
		if err != nil {
			return err
		}
		if !saved {
			return ErrSMSNotCancelable
		}
		record = locked
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrSMSNotFound) && !errors.Is(err, ErrSMSNotCancelable) {
			s.logger.Error("取消短信失败", zap.Uint64("sms_id", id), zap.Error(err))
		}
		return nil, err
	}
	resp := toSMSResponse(record)
	return &resp, nil
}

func (s *smsService) List(ctx context.Context, req *dto.SMSListRequest) ([]dto.SMSResponse, pagination.Meta, error) {
	page := req.ToRequest(pagination.ManageLimits)
	filter := repository.SMSFilter{Status: req.Status, SMSType: req.SMSType, Phone: req.Phone}
	list, total, err := s.repo.SMS.List(ctx, filter, page)
	if err != nil {
		s.logger.Error("查询短信记录失败", zap.Error(err))
		return nil, pagination.Meta{}, err
	}
	out := make([]dto.SMSResponse, len(list))
	for i := range list {
		out[i] = toSMSResponse(&list[i])
	}
	return out, pagination.BuildMeta(total, page), nil
}

func toSMSResponse(m *model.SMSHistory) dto.SMSResponse {
	return dto.SMSResponse{
		ID:               m.ID,
		PhoneNumber:      m.PhoneNumber,
		Message:          m.Message,
		SMSType:          m.SMSType,
		Status:           m.Status,
		FailedReason:     m.FailedReason,
		FailedStatusCode: m.FailedStatusCode,
		SentAt:           formatTimePtr(m.SentAt),
		ResponseAt:       formatTimePtr(m.ResponseAt),
		CreatedAt:        formatTime(m.CreatedAt),
	}
}
