package memory

import (
	"strings"
	"sync"
	"time"

	"msgapi/backend/internal/domain"
	"msgapi/backend/internal/storage"
)

// Store 使用内存保存用户、消息与附件数据，主要用于开发验证。
type Store struct {
	mu          sync.RWMutex
	users       map[string]*domain.User
	byEmail     map[string]string              // email -> userID
	messages    map[string]*domain.Message     // messageID -> message（不含收件人）
	recipients  map[string][]string            // messageID -> 收件人 userID 列表
	attachments map[string]*domain.Attachment  // attachmentID -> attachment

	// 速率限制相关
	rateLimits map[string]*rateLimitEntry
}

// rateLimitEntry 速率限制条目
type rateLimitEntry struct {
	Count     int64
	ExpiresAt time.Time
}

// NewStore 创建一个内存存储实例。
func NewStore() *Store {
	return &Store{
		users:       make(map[string]*domain.User),
		byEmail:     make(map[string]string),
		messages:    make(map[string]*domain.Message),
		recipients:  make(map[string][]string),
		attachments: make(map[string]*domain.Attachment),
		rateLimits:  make(map[string]*rateLimitEntry),
	}
}

// CreateUser 保存新用户，邮箱重复时返回 ErrEmailExists。
func (s *Store) CreateUser(user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(user.Email)
	if _, ok := s.byEmail[email]; ok {
		return storage.ErrEmailExists
	}

	clone := *user
	s.users[user.ID] = &clone
	s.byEmail[email] = user.ID
	return nil
}

// GetUserByID 根据 ID 获取用户。
func (s *Store) GetUserByID(id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	clone := *user
	return &clone, nil
}

// GetUserByEmail 根据邮箱获取用户。
func (s *Store) GetUserByEmail(email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	clone := *s.users[id]
	return &clone, nil
}

// ListUsers 返回全部用户的快照。
func (s *Store) ListUsers() ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.User, 0, len(s.users))
	for _, u := range s.users {
		result = append(result, *u)
	}
	return result, nil
}

// FindUsersByIDs 按 ID 集合查找用户，不存在的 ID 被忽略。
func (s *Store) FindUsersByIDs(ids []string) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.User, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if u, ok := s.users[id]; ok {
			result = append(result, *u)
		}
	}
	return result, nil
}

// UpdateUser 更新已存在的用户，同时维护邮箱索引。
func (s *Store) UpdateUser(user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.users[user.ID]
	if !ok {
		return storage.ErrUserNotFound
	}

	newEmail := strings.ToLower(user.Email)
	oldEmail := strings.ToLower(existing.Email)
	if newEmail != oldEmail {
		if _, taken := s.byEmail[newEmail]; taken {
			return storage.ErrEmailExists
		}
		delete(s.byEmail, oldEmail)
		s.byEmail[newEmail] = user.ID
	}

	clone := *user
	s.users[user.ID] = &clone
	return nil
}

// DeleteUser 删除指定用户。
func (s *Store) DeleteUser(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return storage.ErrUserNotFound
	}
	delete(s.byEmail, strings.ToLower(user.Email))
	delete(s.users, id)
	return nil
}

// SaveMessage 保存消息及其收件人关联。
func (s *Store) SaveMessage(message *domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(message.Recipients))
	for i := range message.Recipients {
		ids = append(ids, message.Recipients[i].ID)
	}

	clone := *message
	clone.Recipients = nil // 收件人关联单独维护
	s.messages[message.ID] = &clone
	s.recipients[message.ID] = ids
	return nil
}

// GetMessage 根据 ID 获取消息，收件人从当前用户表解析。
func (s *Store) GetMessage(id string) (*domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	message, ok := s.messages[id]
	if !ok {
		return nil, storage.ErrMessageNotFound
	}
	return s.cloneMessageLocked(message), nil
}

// ListMessages 返回全部消息的快照。
func (s *Store) ListMessages() ([]domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Message, 0, len(s.messages))
	for _, m := range s.messages {
		result = append(result, *s.cloneMessageLocked(m))
	}
	return result, nil
}

// ListReceivedMessages 返回指定用户作为收件人的全部消息。
func (s *Store) ListReceivedMessages(userID string) ([]domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Message, 0)
	for id, recipientIDs := range s.recipients {
		for _, rid := range recipientIDs {
			if rid == userID {
				result = append(result, *s.cloneMessageLocked(s.messages[id]))
				break
			}
		}
	}
	return result, nil
}

// UpdateMessage 更新已存在的消息，收件人集合不变。
func (s *Store) UpdateMessage(message *domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.messages[message.ID]; !ok {
		return storage.ErrMessageNotFound
	}
	clone := *message
	clone.Recipients = nil
	s.messages[message.ID] = &clone
	return nil
}

// DeleteMessage 删除消息及其附件与收件人关联。
func (s *Store) DeleteMessage(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.messages[id]; !ok {
		return storage.ErrMessageNotFound
	}
	delete(s.messages, id)
	delete(s.recipients, id)
	for attID, att := range s.attachments {
		if att.MessageID == id {
			delete(s.attachments, attID)
		}
	}
	return nil
}

// SaveAttachment 保存附件。
func (s *Store) SaveAttachment(attachment *domain.Attachment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *attachment
	s.attachments[attachment.ID] = &clone
	return nil
}

// GetAttachment 根据 ID 获取附件。
func (s *Store) GetAttachment(id string) (*domain.Attachment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	attachment, ok := s.attachments[id]
	if !ok {
		return nil, storage.ErrAttachmentNotFound
	}
	clone := *attachment
	return &clone, nil
}

// ListAttachments 返回全部附件的快照。
func (s *Store) ListAttachments() ([]domain.Attachment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Attachment, 0, len(s.attachments))
	for _, a := range s.attachments {
		result = append(result, *a)
	}
	return result, nil
}

// UpdateAttachment 更新已存在的附件。
func (s *Store) UpdateAttachment(attachment *domain.Attachment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.attachments[attachment.ID]; !ok {
		return storage.ErrAttachmentNotFound
	}
	clone := *attachment
	s.attachments[attachment.ID] = &clone
	return nil
}

// DeleteAttachment 删除指定附件。
func (s *Store) DeleteAttachment(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.attachments[id]; !ok {
		return storage.ErrAttachmentNotFound
	}
	delete(s.attachments, id)
	return nil
}

// IncrementRateLimit 递增限流计数，窗口过期后重新计数。
func (s *Store) IncrementRateLimit(key string, window time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	entry, ok := s.rateLimits[key]
	if !ok || now.After(entry.ExpiresAt) {
		entry = &rateLimitEntry{ExpiresAt: now.Add(window)}
		s.rateLimits[key] = entry
	}
	entry.Count++
	return entry.Count, nil
}

// GetRateLimit 读取当前限流计数。
func (s *Store) GetRateLimit(key string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.rateLimits[key]
	if !ok || time.Now().After(entry.ExpiresAt) {
		return 0, nil
	}
	return entry.Count, nil
}

// Close 关闭存储（内存实现为空操作）。
func (s *Store) Close() error { return nil }

// Health 检查存储健康状态（内存实现始终健康）。
func (s *Store) Health() error { return nil }

// cloneMessageLocked 复制消息并填充收件人快照，调用方需持有读锁。
func (s *Store) cloneMessageLocked(message *domain.Message) *domain.Message {
	clone := *message
	ids := s.recipients[message.ID]
	clone.Recipients = make([]domain.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			clone.Recipients = append(clone.Recipients, *u)
		}
	}
	return &clone
}
