package domain

import "errors"

var (
	// ErrInvalidID ID 格式错误或记录不存在，对外统一按 invalid id 处理
	ErrInvalidID = errors.New("invalid id")
	// ErrMissingCredentials 注册/登录缺少用户名或密码
	ErrMissingCredentials = errors.New("username and password are required")
	// ErrBadCredentials 用户不存在或密码不匹配
	ErrBadCredentials = errors.New("invalid username or password")
	// ErrUsernameTaken 用户名已被占用
	ErrUsernameTaken = errors.New("username already taken")
)

// ValidationError 字段级校验失败（422）
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string { return e.Field + " is required" }
