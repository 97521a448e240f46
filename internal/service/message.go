package service

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"msgapi/backend/internal/domain"
	"msgapi/backend/internal/policy"
	"msgapi/backend/internal/storage"
)

// ErrNoRecipients 收件人为空或全部无法解析
var ErrNoRecipients = errors.New("message requires at least one valid recipient")

// MessageService 消息资源服务
type MessageService struct {
	store storage.Store
	log   *zap.Logger
}

// NewMessageService 创建消息服务
func NewMessageService(store storage.Store, log *zap.Logger) *MessageService {
	if log == nil {
		log = zap.NewNop()
	}
	return &MessageService{store: store, log: log}
}

// List 返回全部消息，仅管理员可用
func (s *MessageService) List(identity *domain.Identity) ([]domain.Message, error) {
	if err := policy.Decide(identity, policy.MinRole(domain.RoleAdmin)); err != nil {
		return nil, err
	}
	return s.store.ListMessages()
}

// ListReceived 返回当前身份作为收件人的全部消息
func (s *MessageService) ListReceived(identity *domain.Identity) ([]domain.Message, error) {
	if err := policy.Decide(identity, policy.MinRole(domain.RoleMember)); err != nil {
		return nil, err
	}
	return s.store.ListReceivedMessages(identity.UserID)
}

// Get 返回单条消息，管理员或发送者可用
func (s *MessageService) Get(identity *domain.Identity, id string) (*domain.Message, error) {
	if err := policy.Decide(identity, policy.MinRole(domain.RoleMember)); err != nil {
		return nil, err
	}

	message, err := s.store.GetMessage(id)
	if err != nil {
		return nil, err
	}

	if err := policy.Decide(identity, policy.Any(
		policy.MinRole(domain.RoleAdmin),
		policy.Owner(message.SenderID),
	)); err != nil {
		return nil, err
	}

	return message, nil
}

// CreateMessageInput 消息创建输入
type CreateMessageInput struct {
	Subject      string
	Body         string
	RecipientIDs []string
}

// Create 创建消息
//
// 仅 trusted 及以上角色可发送；角色判定先于收件人校验，
// 收件人解析后为空集时返回校验错误而非授权错误。
func (s *MessageService) Create(identity *domain.Identity, input CreateMessageInput) (*domain.Message, error) {
	if err := policy.Decide(identity, policy.MinRole(domain.RoleTrusted)); err != nil {
		return nil, err
	}

	if len(input.RecipientIDs) == 0 {
		return nil, ErrNoRecipients
	}

	recipients, err := s.store.FindUsersByIDs(input.RecipientIDs)
	if err != nil {
		return nil, err
	}
	if len(recipients) == 0 {
		return nil, ErrNoRecipients
	}

	now := time.Now()
	message := &domain.Message{
		ID:         uuid.New().String(),
		Subject:    input.Subject,
		Body:       input.Body,
		SenderID:   identity.UserID,
		Recipients: recipients,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.store.SaveMessage(message); err != nil {
		return nil, err
	}

	s.log.Info("message created",
		zap.String("message_id", message.ID),
		zap.String("sender_id", identity.UserID),
		zap.Int("recipients", len(recipients)),
	)
	return message, nil
}

// UpdateMessageInput 消息更新输入，nil 字段保持原值
type UpdateMessageInput struct {
	Subject *string
	Body    *string
}

// Update 更新消息，管理员或发送者可用
func (s *MessageService) Update(identity *domain.Identity, id string, input UpdateMessageInput) (*domain.Message, error) {
	message, err := s.store.GetMessage(id)
	if err != nil {
		return nil, err
	}

	if err := policy.Decide(identity, policy.Any(
		policy.MinRole(domain.RoleAdmin),
		policy.Owner(message.SenderID),
	)); err != nil {
		return nil, err
	}

	if input.Subject != nil {
		message.Subject = *input.Subject
	}
	if input.Body != nil {
		message.Body = *input.Body
	}
	message.UpdatedAt = time.Now()

	if err := s.store.UpdateMessage(message); err != nil {
		return nil, err
	}
	return message, nil
}

// Delete 删除消息，管理员、发送者或任一收件人可用
func (s *MessageService) Delete(identity *domain.Identity, id string) error {
	message, err := s.store.GetMessage(id)
	if err != nil {
		return err
	}

	if err := policy.Decide(identity, policy.Any(
		policy.MinRole(domain.RoleAdmin),
		policy.Owner(message.SenderID),
		policy.Participant(message.RecipientIDs()...),
	)); err != nil {
		return err
	}

	if err := s.store.DeleteMessage(id); err != nil {
		return err
	}

	s.log.Info("message deleted",
		zap.String("message_id", id),
		zap.String("deleted_by", identity.UserID),
	)
	return nil
}
