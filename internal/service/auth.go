package service

import (
	"context"
	"strings"

	"go-gin-article-cms/internal/domain"
	"go-gin-article-cms/pkg/utils"
)

type AuthService struct {
	users domain.UserRepository
}

func NewAuthService(users domain.UserRepository) *AuthService {
	return &AuthService{users: users}
}

// Signup 注册新用户，角色固定为 user（不存在角色管理接口）
func (s *AuthService) Signup(ctx context.Context, username, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || strings.TrimSpace(password) == "" {
		return nil, domain.ErrMissingCredentials
	}

	existing, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrUsernameTaken
	}

	u := &domain.User{
		ID:           utils.NewID(),
		Username:     username,
		PasswordHash: utils.HashPassword(password),
		Role:         domain.RoleUser,
	}
	if err := s.users.Create(ctx, u); err != nil {
		// 并发兜底：唯一索引冲突按已占用处理
		if isDupKey(err) {
			return nil, domain.ErrUsernameTaken
		}
		return nil, err
	}
	return u, nil
}

// Login 校验用户名密码。用户不存在与密码错误对外不作区分。
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || strings.TrimSpace(password) == "" {
		return nil, domain.ErrBadCredentials
	}
	u, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if u == nil || !utils.CheckPassword(password, u.PasswordHash) {
		return nil, domain.ErrBadCredentials
	}
	return u, nil
}

func isDupKey(err error) bool {
	// 不依赖 gorm.ErrDuplicatedKey，避免驱动差异
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation")
}
