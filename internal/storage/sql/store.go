package sql

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"msgapi/backend/internal/domain"
	"msgapi/backend/internal/storage"
)

// Store SQL 数据库存储实现（支持 MySQL 5.7+ 和 PostgreSQL）
type Store struct {
	db *gorm.DB
}

// NewStore 创建SQL数据库存储
func NewStore(
	driverName string,
	dsn string,
	maxOpenConns int,
	maxIdleConns int,
	connMaxLifetime time.Duration,
) (*Store, error) {
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	var (
		db  *gorm.DB
		err error
	)
	switch driverName {
	case "mysql":
		db, err = gorm.Open(mysql.Open(dsn), gormConfig)
	case "postgres":
		db, err = gorm.Open(postgres.Open(dsn), gormConfig)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s (supported: mysql, postgres)", driverName)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// 设置连接池参数
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access database pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &Store{db: db}

	// 自动执行数据库迁移
	if err := store.Migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Migrate 执行数据库迁移（使用GORM AutoMigrate）
func (s *Store) Migrate() error {
	return s.db.AutoMigrate(
		&domain.User{},
		&domain.Message{},
		&domain.Attachment{},
	)
}

// Close 关闭数据库连接
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Health 检查数据库健康状态
func (s *Store) Health() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// CreateUser 保存新用户，邮箱重复时返回 ErrEmailExists
func (s *Store) CreateUser(user *domain.User) error {
	var count int64
	if err := s.db.Model(&domain.User{}).
		Where("email = ?", strings.ToLower(user.Email)).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return storage.ErrEmailExists
	}
	return s.db.Create(user).Error
}

// GetUserByID 根据 ID 获取用户
func (s *Store) GetUserByID(id string) (*domain.User, error) {
	var user domain.User
	if err := s.db.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, storage.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail 根据邮箱获取用户
func (s *Store) GetUserByEmail(email string) (*domain.User, error) {
	var user domain.User
	if err := s.db.First(&user, "email = ?", strings.ToLower(email)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, storage.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// ListUsers 返回全部用户
func (s *Store) ListUsers() ([]domain.User, error) {
	var users []domain.User
	if err := s.db.Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// FindUsersByIDs 按 ID 集合查找用户，不存在的 ID 被忽略
func (s *Store) FindUsersByIDs(ids []string) ([]domain.User, error) {
	if len(ids) == 0 {
		return []domain.User{}, nil
	}
	var users []domain.User
	if err := s.db.Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateUser 更新已存在的用户
func (s *Store) UpdateUser(user *domain.User) error {
	var existing domain.User
	if err := s.db.First(&existing, "id = ?", user.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return storage.ErrUserNotFound
		}
		return err
	}

	newEmail := strings.ToLower(user.Email)
	if newEmail != strings.ToLower(existing.Email) {
		var count int64
		if err := s.db.Model(&domain.User{}).
			Where("email = ? AND id <> ?", newEmail, user.ID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return storage.ErrEmailExists
		}
	}

	return s.db.Save(user).Error
}

// DeleteUser 删除指定用户
func (s *Store) DeleteUser(id string) error {
	result := s.db.Delete(&domain.User{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return storage.ErrUserNotFound
	}
	return nil
}

// SaveMessage 保存消息及其收件人关联
func (s *Store) SaveMessage(message *domain.Message) error {
	return s.db.Create(message).Error
}

// GetMessage 根据 ID 获取消息（预加载收件人）
func (s *Store) GetMessage(id string) (*domain.Message, error) {
	var message domain.Message
	if err := s.db.Preload("Recipients").First(&message, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, storage.ErrMessageNotFound
		}
		return nil, err
	}
	return &message, nil
}

// ListMessages 返回全部消息（预加载收件人）
func (s *Store) ListMessages() ([]domain.Message, error) {
	var messages []domain.Message
	if err := s.db.Preload("Recipients").Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

// ListReceivedMessages 返回指定用户作为收件人的全部消息
func (s *Store) ListReceivedMessages(userID string) ([]domain.Message, error) {
	var messages []domain.Message
	err := s.db.Preload("Recipients").
		Joins("JOIN message_recipients mr ON mr.message_id = messages.id").
		Where("mr.user_id = ?", userID).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// UpdateMessage 更新已存在的消息，不触碰收件人关联
func (s *Store) UpdateMessage(message *domain.Message) error {
	var existing domain.Message
	if err := s.db.First(&existing, "id = ?", message.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return storage.ErrMessageNotFound
		}
		return err
	}
	return s.db.Omit("Recipients").Save(message).Error
}

// DeleteMessage 删除消息及其附件与收件人关联
func (s *Store) DeleteMessage(id string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var message domain.Message
		if err := tx.First(&message, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return storage.ErrMessageNotFound
			}
			return err
		}

		if err := tx.Model(&message).Association("Recipients").Clear(); err != nil {
			return err
		}
		if err := tx.Delete(&domain.Attachment{}, "message_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&message).Error
	})
}

// SaveAttachment 保存附件
func (s *Store) SaveAttachment(attachment *domain.Attachment) error {
	return s.db.Create(attachment).Error
}

// GetAttachment 根据 ID 获取附件
func (s *Store) GetAttachment(id string) (*domain.Attachment, error) {
	var attachment domain.Attachment
	if err := s.db.First(&attachment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, storage.ErrAttachmentNotFound
		}
		return nil, err
	}
	return &attachment, nil
}

// ListAttachments 返回全部附件
func (s *Store) ListAttachments() ([]domain.Attachment, error) {
	var attachments []domain.Attachment
	if err := s.db.Find(&attachments).Error; err != nil {
		return nil, err
	}
	return attachments, nil
}

// UpdateAttachment 更新已存在的附件
func (s *Store) UpdateAttachment(attachment *domain.Attachment) error {
	var existing domain.Attachment
	if err := s.db.First(&existing, "id = ?", attachment.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return storage.ErrAttachmentNotFound
		}
		return err
	}
	return s.db.Save(attachment).Error
}

// DeleteAttachment 删除指定附件
func (s *Store) DeleteAttachment(id string) error {
	result := s.db.Delete(&domain.Attachment{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return storage.ErrAttachmentNotFound
	}
	return nil
}
