package errors

import "errors"

// 错误分类：所有业务错误都归属以下某一类，便于边界层统一映射状态码
var (
	ErrValidation = errors.New("参数校验失败")
	ErrNotFound   = errors.New("资源不存在")
	ErrConflict   = errors.New("资源冲突")
	ErrForbidden  = errors.New("无权限执行该操作")
)

// bizError 带分类的业务错误
type bizError struct {
	kind error
	msg  string
}

func (e *bizError) Error() string { return e.msg }

func (e *bizError) Unwrap() error { return e.kind }

// New 创建归属于 kind 分类的业务错误
// errors.Is(err, kind) 与 errors.Is(err, err) 均成立
func New(kind error, msg string) error {
	return &bizError{kind: kind, msg: msg}
}

// KindOf 返回错误所属分类，未分类时返回 nil
func KindOf(err error) error {
	for _, kind := range []error{ErrValidation, ErrNotFound, ErrConflict, ErrForbidden} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
