package memory

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"msgapi/backend/internal/domain"
	"msgapi/backend/internal/storage"
)

func newUser(name, email string, role domain.Role) *domain.User {
	return &domain.User{
		ID:    uuid.New().String(),
		Name:  name,
		Email: email,
		Role:  role,
	}
}

func TestCreateUser(t *testing.T) {
	store := NewStore()

	user := newUser("alice", "alice@example.com", domain.RoleMember)
	require.NoError(t, store.CreateUser(user))

	t.Run("duplicate email", func(t *testing.T) {
		dup := newUser("other", "alice@example.com", domain.RoleMember)
		err := store.CreateUser(dup)
		assert.ErrorIs(t, err, storage.ErrEmailExists)
	})

	t.Run("duplicate email case insensitive", func(t *testing.T) {
		dup := newUser("other", "ALICE@example.com", domain.RoleMember)
		err := store.CreateUser(dup)
		assert.ErrorIs(t, err, storage.ErrEmailExists)
	})

	t.Run("lookup by id and email", func(t *testing.T) {
		got, err := store.GetUserByID(user.ID)
		require.NoError(t, err)
		assert.Equal(t, "alice", got.Name)

		got, err = store.GetUserByEmail("alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := store.GetUserByID("missing")
		assert.ErrorIs(t, err, storage.ErrUserNotFound)

		_, err = store.GetUserByEmail("missing@example.com")
		assert.ErrorIs(t, err, storage.ErrUserNotFound)
	})
}

func TestUpdateUser(t *testing.T) {
	store := NewStore()

	alice := newUser("alice", "alice@example.com", domain.RoleMember)
	bob := newUser("bob", "bob@example.com", domain.RoleTrusted)
	require.NoError(t, store.CreateUser(alice))
	require.NoError(t, store.CreateUser(bob))

	t.Run("email change keeps index", func(t *testing.T) {
		alice.Email = "alice2@example.com"
		require.NoError(t, store.UpdateUser(alice))

		_, err := store.GetUserByEmail("alice@example.com")
		assert.ErrorIs(t, err, storage.ErrUserNotFound)

		got, err := store.GetUserByEmail("alice2@example.com")
		require.NoError(t, err)
		assert.Equal(t, alice.ID, got.ID)
	})

	t.Run("email change to taken address", func(t *testing.T) {
		alice.Email = "bob@example.com"
		err := store.UpdateUser(alice)
		assert.ErrorIs(t, err, storage.ErrEmailExists)
	})

	t.Run("unknown user", func(t *testing.T) {
		ghost := newUser("ghost", "ghost@example.com", domain.RoleMember)
		err := store.UpdateUser(ghost)
		assert.ErrorIs(t, err, storage.ErrUserNotFound)
	})
}

func TestDeleteUser(t *testing.T) {
	store := NewStore()

	user := newUser("alice", "alice@example.com", domain.RoleMember)
	require.NoError(t, store.CreateUser(user))
	require.NoError(t, store.DeleteUser(user.ID))

	_, err := store.GetUserByID(user.ID)
	assert.ErrorIs(t, err, storage.ErrUserNotFound)

	// 删除后邮箱可以复用
	again := newUser("alice", "alice@example.com", domain.RoleMember)
	assert.NoError(t, store.CreateUser(again))

	assert.ErrorIs(t, store.DeleteUser("missing"), storage.ErrUserNotFound)
}

func TestFindUsersByIDs(t *testing.T) {
	store := NewStore()

	alice := newUser("alice", "alice@example.com", domain.RoleMember)
	bob := newUser("bob", "bob@example.com", domain.RoleTrusted)
	require.NoError(t, store.CreateUser(alice))
	require.NoError(t, store.CreateUser(bob))

	users, err := store.FindUsersByIDs([]string{alice.ID, "missing", bob.ID, alice.ID})
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestMessageLifecycle(t *testing.T) {
	store := NewStore()

	sender := newUser("sender", "sender@example.com", domain.RoleTrusted)
	recipient := newUser("recipient", "recipient@example.com", domain.RoleMember)
	require.NoError(t, store.CreateUser(sender))
	require.NoError(t, store.CreateUser(recipient))

	message := &domain.Message{
		ID:         uuid.New().String(),
		Subject:    "hello",
		Body:       "body",
		SenderID:   sender.ID,
		Recipients: []domain.User{*recipient},
	}
	require.NoError(t, store.SaveMessage(message))

	t.Run("get resolves recipients", func(t *testing.T) {
		got, err := store.GetMessage(message.ID)
		require.NoError(t, err)
		assert.Equal(t, "hello", got.Subject)
		require.Len(t, got.Recipients, 1)
		assert.Equal(t, recipient.ID, got.Recipients[0].ID)
	})

	t.Run("received messages", func(t *testing.T) {
		received, err := store.ListReceivedMessages(recipient.ID)
		require.NoError(t, err)
		assert.Len(t, received, 1)

		received, err = store.ListReceivedMessages(sender.ID)
		require.NoError(t, err)
		assert.Empty(t, received)
	})

	t.Run("update keeps recipients", func(t *testing.T) {
		message.Subject = "updated"
		require.NoError(t, store.UpdateMessage(message))

		got, err := store.GetMessage(message.ID)
		require.NoError(t, err)
		assert.Equal(t, "updated", got.Subject)
		assert.Len(t, got.Recipients, 1)
	})

	t.Run("delete cascades attachments", func(t *testing.T) {
		att := &domain.Attachment{
			ID:         uuid.New().String(),
			Alt:        "pic",
			Data:       "payload",
			MessageID:  message.ID,
			UploaderID: sender.ID,
		}
		require.NoError(t, store.SaveAttachment(att))

		require.NoError(t, store.DeleteMessage(message.ID))

		_, err := store.GetMessage(message.ID)
		assert.ErrorIs(t, err, storage.ErrMessageNotFound)

		_, err = store.GetAttachment(att.ID)
		assert.ErrorIs(t, err, storage.ErrAttachmentNotFound)
	})

	t.Run("missing message", func(t *testing.T) {
		_, err := store.GetMessage("missing")
		assert.ErrorIs(t, err, storage.ErrMessageNotFound)

		assert.ErrorIs(t, store.UpdateMessage(&domain.Message{ID: "missing"}), storage.ErrMessageNotFound)
		assert.ErrorIs(t, store.DeleteMessage("missing"), storage.ErrMessageNotFound)
	})
}

func TestAttachmentLifecycle(t *testing.T) {
	store := NewStore()

	att := &domain.Attachment{
		ID:         uuid.New().String(),
		Alt:        "logo",
		Data:       "base64data",
		MessageID:  uuid.New().String(),
		UploaderID: uuid.New().String(),
	}
	require.NoError(t, store.SaveAttachment(att))

	got, err := store.GetAttachment(att.ID)
	require.NoError(t, err)
	assert.Equal(t, "logo", got.Alt)

	att.Alt = "updated"
	require.NoError(t, store.UpdateAttachment(att))

	list, err := store.ListAttachments()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "updated", list[0].Alt)

	require.NoError(t, store.DeleteAttachment(att.ID))
	_, err = store.GetAttachment(att.ID)
	assert.ErrorIs(t, err, storage.ErrAttachmentNotFound)

	assert.ErrorIs(t, store.UpdateAttachment(att), storage.ErrAttachmentNotFound)
	assert.ErrorIs(t, store.DeleteAttachment(att.ID), storage.ErrAttachmentNotFound)
}

func TestRateLimit(t *testing.T) {
	store := NewStore()

	count, err := store.IncrementRateLimit("ip:1.2.3.4", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	count, err = store.IncrementRateLimit("ip:1.2.3.4", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	current, err := store.GetRateLimit("ip:1.2.3.4")
	require.NoError(t, err)
	assert.Equal(t, int64(2), current)

	// 窗口过期后重新计数
	count, err = store.IncrementRateLimit("ip:expired", -time.Second)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	current, err = store.GetRateLimit("ip:expired")
	require.NoError(t, err)
	assert.Equal(t, int64(0), current)
}
