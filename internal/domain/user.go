package domain

import "time"

// Role 用户角色，按权限从低到高排序
type Role string

const (
	RoleMember  Role = "member"  // 普通成员
	RoleTrusted Role = "trusted" // 受信任用户，可发送消息
	RoleAdmin   Role = "admin"   // 管理员
)

// roleRank 角色权限等级映射
var roleRank = map[Role]int{
	RoleMember:  0,
	RoleTrusted: 1,
	RoleAdmin:   2,
}

// Valid 判断角色是否为合法枚举值
func (r Role) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// AtLeast 判断角色权限是否不低于 min
//
// 角色构成全序：member < trusted < admin，所有分层权限
// 检查都通过该方法完成，避免散落的字符串比较。
func (r Role) AtLeast(min Role) bool {
	return roleRank[r] >= roleRank[min]
}

// User 表示注册用户的业务实体
type User struct {
	ID           string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name         string    `json:"name" gorm:"type:varchar(100);not null"`
	Email        string    `json:"email" gorm:"uniqueIndex;type:varchar(255);not null"`
	PasswordHash string    `json:"-" gorm:"type:varchar(255)"` // 不返回给前端
	Role         Role      `json:"role" gorm:"type:varchar(20);default:'member';index"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// IsAdmin 判断用户是否为管理员
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Identity 已认证请求的身份快照
//
// 由令牌解码得到，仅在令牌有效期内代表用户；令牌签发后
// 数据库中的角色变更不会反映到已存在的 Identity 上。
type Identity struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
}
