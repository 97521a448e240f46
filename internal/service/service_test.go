package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"msgapi/backend/internal/domain"
	"msgapi/backend/internal/storage/memory"
)

// seedUser 写入一个用户并返回其身份
func seedUser(t *testing.T, store *memory.Store, name string, role domain.Role) *domain.Identity {
	t.Helper()

	user := &domain.User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        name + "@example.com",
		PasswordHash: "hash",
		Role:         role,
	}
	require.NoError(t, store.CreateUser(user))

	return &domain.Identity{
		UserID: user.ID,
		Name:   user.Name,
		Email:  user.Email,
		Role:   user.Role,
	}
}

// seedMessage 以 sender 身份写入一条消息
func seedMessage(t *testing.T, store *memory.Store, sender *domain.Identity, recipientIDs ...string) *domain.Message {
	t.Helper()

	svc := NewMessageService(store, nil)
	message, err := svc.Create(sender, CreateMessageInput{
		Subject:      "subject",
		Body:         "body",
		RecipientIDs: recipientIDs,
	})
	require.NoError(t, err)
	return message
}
