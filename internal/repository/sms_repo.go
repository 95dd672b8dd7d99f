package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rajib3777/academia-sub001/internal/model"
	"github.com/rajib3777/academia-sub001/pkg/pagination"
)

// SMSFilter 短信记录过滤条件
type SMSFilter struct {
	Status  string
	SMSType string
	Phone   string
}

// SMSRepository 短信记录数据访问接口
type SMSRepository interface {
	Create(ctx context.Context, sms *model.SMSHistory) error
	GetByID(ctx context.Context, id uint64) (*model.SMSHistory, error)
	// ClaimNextQueued 锁定 id 最小且未被其他事务锁住的待发送记录，须在事务内调用
	ClaimNextQueued(ctx context.Context) (*model.SMSHistory, error)
	// LockQueued 锁定指定的待发送记录；已被锁或已离开 Queue 时返回 ErrRecordNotFound
	LockQueued(ctx context.Context, id uint64) (*model.SMSHistory, error)
	// SaveResult 仅当记录仍处于 Queue 时写入终态；返回是否写入
	SaveResult(ctx context.Context, sms *model.SMSHistory) (bool, error)
	List(ctx context.Context, filter SMSFilter, page pagination.Request) ([]model.SMSHistory, int64, error)
}

// OTPRepository 验证码数据访问接口
type OTPRepository interface {
	// Upsert 按手机号覆盖写入验证码并重置验证状态
	Upsert(ctx context.Context, otp *model.OTPVerification) error
	GetByPhone(ctx context.Context, phone string) (*model.OTPVerification, error)
	// LockByPhone 以 FOR UPDATE 读取验证码，须在事务内调用
	LockByPhone(ctx context.Context, phone string) (*model.OTPVerification, error)
	MarkVerified(ctx context.Context, id uint64) error
	// PurgeExpired 删除 before 之前过期且未验证的记录
	PurgeExpired(ctx context.Context, before time.Time) (int64, error)
}

// ContactRepository 联系表单数据访问接口
type ContactRepository interface {
	Create(ctx context.Context, msg *model.ContactMessage) error
}

// ── 短信 ──

type smsRepo struct {
	db *gorm.DB
}

// NewSMSRepo 创建 SMSRepository 实例
func NewSMSRepo(db *gorm.DB) SMSRepository {
	return &smsRepo{db: db}
}

func (r *smsRepo) Create(ctx context.Context, sms *model.SMSHistory) error {
	return r.db.WithContext(ctx).Create(sms).Error
}

func (r *smsRepo) GetByID(ctx context.Context, id uint64) (*model.SMSHistory, error) {
	var s model.SMSHistory
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *smsRepo) ClaimNextQueued(ctx context.Context) (*model.SMSHistory, error) {
	var s model.SMSHistory
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Where("status = ?", model.SMSStatusQueue).
		Order("id ASC").
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *smsRepo) LockQueued(ctx context.Context, id uint64) (*model.SMSHistory, error) {
	var s model.SMSHistory
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Where("id = ? AND status = ?", id, model.SMSStatusQueue).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *smsRepo) SaveResult(ctx context.Context, sms *model.SMSHistory) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&model.SMSHistory{}).
		Where("id = ? AND status = ?", sms.ID, model.SMSStatusQueue).
		Updates(map[string]interface{}{
			"status":             sms.Status,
			"failed_reason":      sms.FailedReason,
			"failed_status_code": sms.FailedStatusCode,
			"sent_at":            sms.SentAt,
			"response_at":        sms.ResponseAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *smsRepo) List(ctx context.Context, f SMSFilter, page pagination.Request) ([]model.SMSHistory, int64, error) {
	q := func() *gorm.DB {
		db := r.db.WithContext(ctx).Model(&model.SMSHistory{})
		if f.Status != "" {
			db = db.Where("status = ?", f.Status)
		}
		if f.SMSType != "" {
			db = db.Where("sms_type = ?", f.SMSType)
		}
		if f.Phone != "" {
			db = db.Where("phone_number ILIKE ?", likePattern(f.Phone))
		}
		return db
	}

	var total int64
	if err := q().Count(&total).Error; err != nil {
		return nil, 0, err
	}
	page = page.Resolve(total)

	var list []model.SMSHistory
	err := q().
		Order("id DESC").
		Offset(page.Offset()).
		Limit(page.PageSize).
		Find(&list).Error
	return list, total, err
}

// ── 验证码 ──

type otpRepo struct {
	db *gorm.DB
}

// NewOTPRepo 创建 OTPRepository 实例
func NewOTPRepo(db *gorm.DB) OTPRepository {
	return &otpRepo{db: db}
}

func (r *otpRepo) Upsert(ctx context.Context, otp *model.OTPVerification) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "phone_number"}},
			DoUpdates: clause.AssignmentColumns([]string{"otp", "expires_at", "is_verified", "updated_at"}),
		}).
		Create(otp).Error
}

func (r *otpRepo) GetByPhone(ctx context.Context, phone string) (*model.OTPVerification, error) {
	var o model.OTPVerification
	if err := r.db.WithContext(ctx).Where("phone_number = ?", phone).First(&o).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *otpRepo) LockByPhone(ctx context.Context, phone string) (*model.OTPVerification, error) {
	var o model.OTPVerification
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("phone_number = ?", phone).
		First(&o).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *otpRepo) MarkVerified(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).
		Model(&model.OTPVerification{}).
		Where("id = ?", id).
		Update("is_verified", true).Error
}

func (r *otpRepo) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("is_verified = ? AND expires_at < ?", false, before).
		Delete(&model.OTPVerification{})
	return result.RowsAffected, result.Error
}

// ── 联系表单 ──

type contactRepo struct {
	db *gorm.DB
}

// NewContactRepo 创建 ContactRepository 实例
func NewContactRepo(db *gorm.DB) ContactRepository {
	return &contactRepo{db: db}
}

func (r *contactRepo) Create(ctx context.Context, msg *model.ContactMessage) error {
	return r.db.WithContext(ctx).Create(msg).Error
}
