// Package repository 定义数据访问层接口和聚合结构
// 采用 Repository 模式将数据访问逻辑与业务逻辑分离
// 所有 Repository 接口在 interfaces.go 定义，具体实现在各自的文件中
package repository

import (
	"errors"

	"chatroom_server/pkg/errorx"

	mysqlerr "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// MySQL 唯一键冲突错误号
const mysqlDuplicateEntry = 1062

// ==================== 错误包装辅助函数 ====================

// IsDuplicateKey 判断是否为唯一索引冲突
// 开启 TranslateError 后 gorm 返回 ErrDuplicatedKey，未开启时直接检查驱动错误号
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var myErr *mysqlerr.MySQLError
	return errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry
}

// wrapDBError 包装数据库错误
// 根据错误类型返回不同的错误码：
//   - ErrRecordNotFound -> CodeNotFound
//   - 唯一键冲突 -> CodeConflict
//   - 其他错误 -> CodeDBError
func wrapDBError(err error, msg string) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return errorx.Wrap(err, errorx.CodeNotFound, msg)
	case IsDuplicateKey(err):
		return errorx.Wrap(err, errorx.CodeConflict, msg)
	}
	return errorx.Wrap(err, errorx.CodeDBError, msg)
}

// wrapDBErrorf 同 wrapDBError，支持格式化消息
func wrapDBErrorf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return errorx.Wrapf(err, errorx.CodeNotFound, format, args...)
	case IsDuplicateKey(err):
		return errorx.Wrapf(err, errorx.CodeConflict, format, args...)
	}
	return errorx.Wrapf(err, errorx.CodeDBError, format, args...)
}
