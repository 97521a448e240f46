package storage

import (
	"errors"
	"time"

	"msgapi/backend/internal/domain"
)

var (
	// ErrUserNotFound 用户不存在
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailExists 邮箱已被占用
	ErrEmailExists = errors.New("email already exists")
	// ErrMessageNotFound 消息不存在
	ErrMessageNotFound = errors.New("message not found")
	// ErrAttachmentNotFound 附件不存在
	ErrAttachmentNotFound = errors.New("attachment not found")
)

// UserRepository 定义用户数据存取操作。
type UserRepository interface {
	CreateUser(user *domain.User) error
	GetUserByID(id string) (*domain.User, error)
	GetUserByEmail(email string) (*domain.User, error)
	ListUsers() ([]domain.User, error)
	// FindUsersByIDs 按 ID 集合查找用户，静默忽略不存在的 ID。
	FindUsersByIDs(ids []string) ([]domain.User, error)
	UpdateUser(user *domain.User) error
	DeleteUser(id string) error
}

// MessageRepository 定义消息数据存取操作。
type MessageRepository interface {
	// SaveMessage 保存消息及其收件人关联。
	SaveMessage(message *domain.Message) error
	GetMessage(id string) (*domain.Message, error)
	ListMessages() ([]domain.Message, error)
	// ListReceivedMessages 返回指定用户作为收件人的全部消息。
	ListReceivedMessages(userID string) ([]domain.Message, error)
	UpdateMessage(message *domain.Message) error
	DeleteMessage(id string) error
}

// AttachmentRepository 定义附件数据存取操作。
type AttachmentRepository interface {
	SaveAttachment(attachment *domain.Attachment) error
	GetAttachment(id string) (*domain.Attachment, error)
	ListAttachments() ([]domain.Attachment, error)
	UpdateAttachment(attachment *domain.Attachment) error
	DeleteAttachment(id string) error
}

// RateLimitRepository 定义限流计数操作。
type RateLimitRepository interface {
	IncrementRateLimit(key string, window time.Duration) (int64, error)
	GetRateLimit(key string) (int64, error)
}

// Store 定义完整的存储接口。
type Store interface {
	UserRepository
	MessageRepository
	AttachmentRepository

	Close() error
	Health() error
}
