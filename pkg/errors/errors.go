package errors

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrOptimisticLock 乐观锁冲突：记录已被其他操作修改
var ErrOptimisticLock = errors.New("数据已被其他操作修改，请刷新后重试")

// PostgreSQL 错误码
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// IsUniqueViolation 是否为唯一约束冲突；constraint 非空时同时匹配约束名
func IsUniqueViolation(err error, constraint ...string) bool {
	return matchPgError(err, pgUniqueViolation, constraint)
}

// IsForeignKeyViolation 是否为外键约束冲突
func IsForeignKeyViolation(err error) bool {
	return matchPgError(err, pgForeignKeyViolation, nil)
}

// IsCheckViolation 是否为 CHECK 约束冲突
func IsCheckViolation(err error, constraint ...string) bool {
	return matchPgError(err, pgCheckViolation, constraint)
}

func matchPgError(err error, code string, constraint []string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != code {
		return false
	}
	if len(constraint) == 0 {
		return true
	}
	for _, c := range constraint {
		if pgErr.ConstraintName == c {
			return true
		}
	}
	return false
}
