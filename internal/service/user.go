package service

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"msgapi/backend/internal/auth"
	"msgapi/backend/internal/domain"
	"msgapi/backend/internal/policy"
	"msgapi/backend/internal/storage"
)

var (
	// ErrInvalidRole 角色取值不合法
	ErrInvalidRole = errors.New("invalid role")
	// ErrInvalidEmail 邮箱格式不合法
	ErrInvalidEmail = errors.New("invalid email format")
)

// UserService 用户资源服务
//
// 所有操作先做授权判定再触碰存储；单资源操作先查存在性，
// 404 优先于 403，避免非管理员通过状态码探测资源是否存在。
type UserService struct {
	store storage.Store
	log   *zap.Logger
}

// NewUserService 创建用户服务
func NewUserService(store storage.Store, log *zap.Logger) *UserService {
	if log == nil {
		log = zap.NewNop()
	}
	return &UserService{store: store, log: log}
}

// List 返回全部用户，仅管理员可用
func (s *UserService) List(identity *domain.Identity) ([]domain.User, error) {
	if err := policy.Decide(identity, policy.MinRole(domain.RoleAdmin)); err != nil {
		return nil, err
	}
	return s.store.ListUsers()
}

// Get 返回单个用户，任何已认证身份可用
func (s *UserService) Get(identity *domain.Identity, id string) (*domain.User, error) {
	if err := policy.Decide(identity, policy.MinRole(domain.RoleMember)); err != nil {
		return nil, err
	}
	return s.store.GetUserByID(id)
}

// UpdateUserInput 用户更新输入，nil 字段保持原值
type UpdateUserInput struct {
	Name     *string
	Email    *string
	Password *string
	Role     *domain.Role
}

// Update 更新用户记录
//
// 管理员或本人可更新；角色字段只有管理员的请求才会生效，
// 其他调用者提交的角色变更被静默忽略。
func (s *UserService) Update(identity *domain.Identity, id string, input UpdateUserInput) (*domain.User, error) {
	user, err := s.store.GetUserByID(id)
	if err != nil {
		return nil, err
	}

	if err := policy.Decide(identity, policy.Any(
		policy.MinRole(domain.RoleAdmin),
		policy.Owner(user.ID),
	)); err != nil {
		return nil, err
	}

	if input.Name != nil {
		user.Name = *input.Name
	}

	if input.Email != nil {
		email := strings.ToLower(*input.Email)
		if !auth.ValidateEmail(email) {
			return nil, ErrInvalidEmail
		}
		user.Email = email
	}

	if input.Password != nil {
		if err := auth.ValidatePassword(*input.Password); err != nil {
			return nil, err
		}
		hash, err := auth.HashPassword(*input.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = hash
	}

	if input.Role != nil && identity.Role.AtLeast(domain.RoleAdmin) {
		if !input.Role.Valid() {
			return nil, ErrInvalidRole
		}
		user.Role = *input.Role
	}

	if err := s.store.UpdateUser(user); err != nil {
		return nil, err
	}

	s.log.Info("user updated",
		zap.String("user_id", user.ID),
		zap.String("updated_by", identity.UserID),
	)
	return user, nil
}

// Delete 删除用户，仅管理员可用
func (s *UserService) Delete(identity *domain.Identity, id string) error {
	if _, err := s.store.GetUserByID(id); err != nil {
		return err
	}

	if err := policy.Decide(identity, policy.MinRole(domain.RoleAdmin)); err != nil {
		return err
	}

	if err := s.store.DeleteUser(id); err != nil {
		return err
	}

	s.log.Info("user deleted",
		zap.String("user_id", id),
		zap.String("deleted_by", identity.UserID),
	)
	return nil
}
