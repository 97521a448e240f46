package policy

import (
	"errors"

	"msgapi/backend/internal/domain"
)

var (
	// ErrUnauthenticated 请求未携带有效身份
	ErrUnauthenticated = errors.New("authentication required")
	// ErrForbidden 身份有效但权限不足
	ErrForbidden = errors.New("insufficient permissions")
)

// Predicate 授权谓词，判断给定身份是否满足某条访问规则。
// 谓词只在身份已存在时被求值，未认证的判定由 Decide 统一处理。
type Predicate func(identity *domain.Identity) bool

// MinRole 要求身份角色不低于 min
func MinRole(min domain.Role) Predicate {
	return func(identity *domain.Identity) bool {
		return identity.Role.AtLeast(min)
	}
}

// Owner 要求身份即为资源属主
func Owner(ownerID string) Predicate {
	return func(identity *domain.Identity) bool {
		return ownerID != "" && identity.UserID == ownerID
	}
}

// Participant 要求身份出现在参与者集合中（发送者或收件人）
func Participant(userIDs ...string) Predicate {
	return func(identity *domain.Identity) bool {
		for _, id := range userIDs {
			if id != "" && identity.UserID == id {
				return true
			}
		}
		return false
	}
}

// Any 任一谓词满足即通过
func Any(predicates ...Predicate) Predicate {
	return func(identity *domain.Identity) bool {
		for _, p := range predicates {
			if p(identity) {
				return true
			}
		}
		return false
	}
}

// Decide 对身份求值授权谓词
//
// 身份缺失返回 ErrUnauthenticated，谓词不满足返回
// ErrForbidden；认证判定始终先于权限判定。
func Decide(identity *domain.Identity, predicate Predicate) error {
	if identity == nil {
		return ErrUnauthenticated
	}
	if !predicate(identity) {
		return ErrForbidden
	}
	return nil
}
