package service

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"msgapi/backend/internal/domain"
	"msgapi/backend/internal/policy"
	"msgapi/backend/internal/storage"
)

// AttachmentService 附件资源服务
type AttachmentService struct {
	store storage.Store
	log   *zap.Logger
}

// NewAttachmentService 创建附件服务
func NewAttachmentService(store storage.Store, log *zap.Logger) *AttachmentService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AttachmentService{store: store, log: log}
}

// List 返回全部附件，仅管理员可用
func (s *AttachmentService) List(identity *domain.Identity) ([]domain.Attachment, error) {
	if err := policy.Decide(identity, policy.MinRole(domain.RoleAdmin)); err != nil {
		return nil, err
	}
	return s.store.ListAttachments()
}

// Get 返回单个附件，任何已认证身份可用
func (s *AttachmentService) Get(identity *domain.Identity, id string) (*domain.Attachment, error) {
	if err := policy.Decide(identity, policy.MinRole(domain.RoleMember)); err != nil {
		return nil, err
	}
	return s.store.GetAttachment(id)
}

// CreateAttachmentInput 附件创建输入
type CreateAttachmentInput struct {
	Alt       string
	Data      string
	MessageID string
}

// Create 创建附件
//
// 仅 trusted 及以上角色可上传；目标消息的存在性先于
// 属主比较检查，上传者必须是目标消息的发送者。
func (s *AttachmentService) Create(identity *domain.Identity, input CreateAttachmentInput) (*domain.Attachment, error) {
	if err := policy.Decide(identity, policy.MinRole(domain.RoleTrusted)); err != nil {
		return nil, err
	}

	message, err := s.store.GetMessage(input.MessageID)
	if err != nil {
		return nil, err
	}

	if err := policy.Decide(identity, policy.Owner(message.SenderID)); err != nil {
		return nil, err
	}

	now := time.Now()
	attachment := &domain.Attachment{
		ID:         uuid.New().String(),
		Alt:        input.Alt,
		Data:       input.Data,
		MessageID:  message.ID,
		UploaderID: identity.UserID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.store.SaveAttachment(attachment); err != nil {
		return nil, err
	}

	s.log.Info("attachment created",
		zap.String("attachment_id", attachment.ID),
		zap.String("message_id", message.ID),
		zap.String("uploader_id", identity.UserID),
	)
	return attachment, nil
}

// UpdateAttachmentInput 附件更新输入，nil 字段保持原值
type UpdateAttachmentInput struct {
	Alt  *string
	Data *string
}

// Update 更新附件，管理员或上传者可用
func (s *AttachmentService) Update(identity *domain.Identity, id string, input UpdateAttachmentInput) (*domain.Attachment, error) {
	attachment, err := s.store.GetAttachment(id)
	if err != nil {
		return nil, err
	}

	if err := policy.Decide(identity, policy.Any(
		policy.MinRole(domain.RoleAdmin),
		policy.Owner(attachment.UploaderID),
	)); err != nil {
		return nil, err
	}

	if input.Alt != nil {
		attachment.Alt = *input.Alt
	}
	if input.Data != nil {
		attachment.Data = *input.Data
	}
	attachment.UpdatedAt = time.Now()

	if err := s.store.UpdateAttachment(attachment); err != nil {
		return nil, err
	}
	return attachment, nil
}

// Delete 删除附件，管理员或上传者可用
func (s *AttachmentService) Delete(identity *domain.Identity, id string) error {
	attachment, err := s.store.GetAttachment(id)
	if err != nil {
		return err
	}

	if err := policy.Decide(identity, policy.Any(
		policy.MinRole(domain.RoleAdmin),
		policy.Owner(attachment.UploaderID),
	)); err != nil {
		return err
	}

	if err := s.store.DeleteAttachment(id); err != nil {
		return err
	}

	s.log.Info("attachment deleted",
		zap.String("attachment_id", id),
		zap.String("deleted_by", identity.UserID),
	)
	return nil
}
