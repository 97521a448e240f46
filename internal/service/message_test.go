package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"msgapi/backend/internal/domain"
	"msgapi/backend/internal/policy"
	"msgapi/backend/internal/storage"
	"msgapi/backend/internal/storage/memory"
)

func TestMessageCreate(t *testing.T) {
	store := memory.NewStore()
	svc := NewMessageService(store, nil)

	admin := seedUser(t, store, "admin", domain.RoleAdmin)
	trusted := seedUser(t, store, "trusted", domain.RoleTrusted)
	member := seedUser(t, store, "member", domain.RoleMember)

	t.Run("trusted sends", func(t *testing.T) {
		message, err := svc.Create(trusted, CreateMessageInput{
			Subject:      "hello",
			Body:         "body",
			RecipientIDs: []string{member.UserID},
		})
		require.NoError(t, err)
		assert.Equal(t, trusted.UserID, message.SenderID)
		require.Len(t, message.Recipients, 1)
		assert.Equal(t, member.UserID, message.Recipients[0].ID)
	})

	t.Run("admin sends", func(t *testing.T) {
		_, err := svc.Create(admin, CreateMessageInput{
			Subject:      "hello",
			Body:         "body",
			RecipientIDs: []string{member.UserID, trusted.UserID},
		})
		assert.NoError(t, err)
	})

	t.Run("member always forbidden", func(t *testing.T) {
		// 角色判定先于载荷校验，合法载荷也会被拒绝
		_, err := svc.Create(member, CreateMessageInput{
			Subject:      "hello",
			Body:         "body",
			RecipientIDs: []string{admin.UserID},
		})
		assert.ErrorIs(t, err, policy.ErrForbidden)
	})

	t.Run("empty recipients", func(t *testing.T) {
		_, err := svc.Create(trusted, CreateMessageInput{Subject: "s", Body: "b"})
		assert.ErrorIs(t, err, ErrNoRecipients)
	})

	t.Run("unresolvable recipients", func(t *testing.T) {
		_, err := svc.Create(trusted, CreateMessageInput{
			Subject:      "s",
			Body:         "b",
			RecipientIDs: []string{"ghost-1", "ghost-2"},
		})
		assert.ErrorIs(t, err, ErrNoRecipients)
	})

	t.Run("partially resolvable recipients succeed", func(t *testing.T) {
		message, err := svc.Create(trusted, CreateMessageInput{
			Subject:      "s",
			Body:         "b",
			RecipientIDs: []string{"ghost", member.UserID},
		})
		require.NoError(t, err)
		assert.Len(t, message.Recipients, 1)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		_, err := svc.Create(nil, CreateMessageInput{
			Subject:      "s",
			Body:         "b",
			RecipientIDs: []string{member.UserID},
		})
		assert.ErrorIs(t, err, policy.ErrUnauthenticated)
	})
}

func TestMessageList(t *testing.T) {
	store := memory.NewStore()
	svc := NewMessageService(store, nil)

	admin := seedUser(t, store, "admin", domain.RoleAdmin)
	trusted := seedUser(t, store, "trusted", domain.RoleTrusted)
	member := seedUser(t, store, "member", domain.RoleMember)

	seedMessage(t, store, trusted, member.UserID)
	seedMessage(t, store, admin, trusted.UserID)

	t.Run("admin lists all", func(t *testing.T) {
		messages, err := svc.List(admin)
		require.NoError(t, err)
		assert.Len(t, messages, 2)
	})

	t.Run("non-admin forbidden", func(t *testing.T) {
		_, err := svc.List(trusted)
		assert.ErrorIs(t, err, policy.ErrForbidden)

		_, err = svc.List(member)
		assert.ErrorIs(t, err, policy.ErrForbidden)
	})

	t.Run("received scoped to caller", func(t *testing.T) {
		received, err := svc.ListReceived(member)
		require.NoError(t, err)
		assert.Len(t, received, 1)

		received, err = svc.ListReceived(trusted)
		require.NoError(t, err)
		assert.Len(t, received, 1)

		received, err = svc.ListReceived(admin)
		require.NoError(t, err)
		assert.Empty(t, received)
	})
}

func TestMessageGet(t *testing.T) {
	store := memory.NewStore()
	svc := NewMessageService(store, nil)

	admin := seedUser(t, store, "admin", domain.RoleAdmin)
	sender := seedUser(t, store, "sender", domain.RoleTrusted)
	recipient := seedUser(t, store, "recipient", domain.RoleMember)
	outsider := seedUser(t, store, "outsider", domain.RoleMember)

	message := seedMessage(t, store, sender, recipient.UserID)

	t.Run("sender reads", func(t *testing.T) {
		got, err := svc.Get(sender, message.ID)
		require.NoError(t, err)
		assert.Equal(t, message.ID, got.ID)
	})

	t.Run("admin reads", func(t *testing.T) {
		_, err := svc.Get(admin, message.ID)
		assert.NoError(t, err)
	})

	t.Run("recipient cannot read single message", func(t *testing.T) {
		_, err := svc.Get(recipient, message.ID)
		assert.ErrorIs(t, err, policy.ErrForbidden)
	})

	t.Run("outsider forbidden", func(t *testing.T) {
		_, err := svc.Get(outsider, message.ID)
		assert.ErrorIs(t, err, policy.ErrForbidden)
	})

	t.Run("not found before forbidden", func(t *testing.T) {
		_, err := svc.Get(outsider, "missing")
		assert.ErrorIs(t, err, storage.ErrMessageNotFound)
	})
}

func TestMessageUpdate(t *testing.T) {
	store := memory.NewStore()
	svc := NewMessageService(store, nil)

	admin := seedUser(t, store, "admin", domain.RoleAdmin)
	sender := seedUser(t, store, "sender", domain.RoleTrusted)
	recipient := seedUser(t, store, "recipient", domain.RoleMember)

	message := seedMessage(t, store, sender, recipient.UserID)

	strPtr := func(s string) *string { return &s }

	t.Run("sender updates", func(t *testing.T) {
		updated, err := svc.Update(sender, message.ID, UpdateMessageInput{Subject: strPtr("edited")})
		require.NoError(t, err)
		assert.Equal(t, "edited", updated.Subject)
		// 未提交的字段保持原值
		assert.Equal(t, "body", updated.Body)
	})

	t.Run("recipient cannot update", func(t *testing.T) {
		_, err := svc.Update(recipient, message.ID, UpdateMessageInput{Subject: strPtr("nope")})
		assert.ErrorIs(t, err, policy.ErrForbidden)
	})

	t.Run("admin updates", func(t *testing.T) {
		updated, err := svc.Update(admin, message.ID, UpdateMessageInput{Body: strPtr("moderated")})
		require.NoError(t, err)
		assert.Equal(t, "moderated", updated.Body)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := svc.Update(sender, "missing", UpdateMessageInput{Subject: strPtr("x")})
		assert.ErrorIs(t, err, storage.ErrMessageNotFound)
	})
}

func TestMessageDelete(t *testing.T) {
	store := memory.NewStore()
	svc := NewMessageService(store, nil)

	admin := seedUser(t, store, "admin", domain.RoleAdmin)
	sender := seedUser(t, store, "sender", domain.RoleTrusted)
	recipient := seedUser(t, store, "recipient", domain.RoleMember)
	outsider := seedUser(t, store, "outsider", domain.RoleMember)

	t.Run("outsider forbidden and state unchanged", func(t *testing.T) {
		message := seedMessage(t, store, sender, recipient.UserID)

		err := svc.Delete(outsider, message.ID)
		assert.ErrorIs(t, err, policy.ErrForbidden)

		_, getErr := store.GetMessage(message.ID)
		assert.NoError(t, getErr)
	})

	t.Run("sender deletes", func(t *testing.T) {
		message := seedMessage(t, store, sender, recipient.UserID)
		require.NoError(t, svc.Delete(sender, message.ID))
	})

	t.Run("recipient deletes", func(t *testing.T) {
		message := seedMessage(t, store, sender, recipient.UserID)
		require.NoError(t, svc.Delete(recipient, message.ID))
	})

	t.Run("admin deletes", func(t *testing.T) {
		message := seedMessage(t, store, sender, recipient.UserID)
		require.NoError(t, svc.Delete(admin, message.ID))
	})

	t.Run("not found", func(t *testing.T) {
		err := svc.Delete(admin, "missing")
		assert.ErrorIs(t, err, storage.ErrMessageNotFound)
	})
}
