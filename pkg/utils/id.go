package utils

import "github.com/google/uuid"

// NewID 生成 uuid v4 字符串主键
func NewID() string { return uuid.NewString() }
