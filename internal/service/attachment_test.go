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

func TestAttachmentCreate(t *testing.T) {
	store := memory.NewStore()
	svc := NewAttachmentService(store, nil)

	admin := seedUser(t, store, "admin", domain.RoleAdmin)
	sender := seedUser(t, store, "sender", domain.RoleTrusted)
	trusted := seedUser(t, store, "trusted2", domain.RoleTrusted)
	member := seedUser(t, store, "member", domain.RoleMember)

	message := seedMessage(t, store, sender, member.UserID)

	t.Run("sender attaches", func(t *testing.T) {
		attachment, err := svc.Create(sender, CreateAttachmentInput{
			Alt:       "diagram",
			Data:      "payload",
			MessageID: message.ID,
		})
		require.NoError(t, err)
		assert.Equal(t, sender.UserID, attachment.UploaderID)
		assert.Equal(t, message.ID, attachment.MessageID)
	})

	t.Run("member always forbidden", func(t *testing.T) {
		_, err := svc.Create(member, CreateAttachmentInput{
			Alt:       "diagram",
			Data:      "payload",
			MessageID: message.ID,
		})
		assert.ErrorIs(t, err, policy.ErrForbidden)
	})

	t.Run("missing message checked before ownership", func(t *testing.T) {
		// 非发送者引用不存在的消息时得到 404 而不是 403
		_, err := svc.Create(trusted, CreateAttachmentInput{
			Alt:       "diagram",
			Data:      "payload",
			MessageID: "missing",
		})
		assert.ErrorIs(t, err, storage.ErrMessageNotFound)
	})

	t.Run("trusted non-sender forbidden", func(t *testing.T) {
		_, err := svc.Create(trusted, CreateAttachmentInput{
			Alt:       "diagram",
			Data:      "payload",
			MessageID: message.ID,
		})
		assert.ErrorIs(t, err, policy.ErrForbidden)
	})

	t.Run("admin non-sender forbidden", func(t *testing.T) {
		// 创建要求上传者即为消息发送者，管理员也不例外
		_, err := svc.Create(admin, CreateAttachmentInput{
			Alt:       "diagram",
			Data:      "payload",
			MessageID: message.ID,
		})
		assert.ErrorIs(t, err, policy.ErrForbidden)
	})
}

func TestAttachmentRead(t *testing.T) {
	store := memory.NewStore()
	svc := NewAttachmentService(store, nil)

	admin := seedUser(t, store, "admin", domain.RoleAdmin)
	sender := seedUser(t, store, "sender", domain.RoleTrusted)
	member := seedUser(t, store, "member", domain.RoleMember)

	message := seedMessage(t, store, sender, member.UserID)
	attachment, err := svc.Create(sender, CreateAttachmentInput{
		Alt:       "logo",
		Data:      "payload",
		MessageID: message.ID,
	})
	require.NoError(t, err)

	t.Run("any authenticated identity reads single", func(t *testing.T) {
		got, err := svc.Get(member, attachment.ID)
		require.NoError(t, err)
		assert.Equal(t, "logo", got.Alt)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		_, err := svc.Get(nil, attachment.ID)
		assert.ErrorIs(t, err, policy.ErrUnauthenticated)
	})

	t.Run("list admin only", func(t *testing.T) {
		attachments, err := svc.List(admin)
		require.NoError(t, err)
		assert.Len(t, attachments, 1)

		_, err = svc.List(member)
		assert.ErrorIs(t, err, policy.ErrForbidden)

		_, err = svc.List(sender)
		assert.ErrorIs(t, err, policy.ErrForbidden)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := svc.Get(member, "missing")
		assert.ErrorIs(t, err, storage.ErrAttachmentNotFound)
	})
}

func TestAttachmentUpdateDelete(t *testing.T) {
	store := memory.NewStore()
	svc := NewAttachmentService(store, nil)

	admin := seedUser(t, store, "admin", domain.RoleAdmin)
	sender := seedUser(t, store, "sender", domain.RoleTrusted)
	member := seedUser(t, store, "member", domain.RoleMember)

	message := seedMessage(t, store, sender, member.UserID)

	newAttachment := func(t *testing.T) *domain.Attachment {
		attachment, err := svc.Create(sender, CreateAttachmentInput{
			Alt:       "original",
			Data:      "payload",
			MessageID: message.ID,
		})
		require.NoError(t, err)
		return attachment
	}

	strPtr := func(s string) *string { return &s }

	t.Run("uploader updates", func(t *testing.T) {
		attachment := newAttachment(t)
		updated, err := svc.Update(sender, attachment.ID, UpdateAttachmentInput{Alt: strPtr("edited")})
		require.NoError(t, err)
		assert.Equal(t, "edited", updated.Alt)
		assert.Equal(t, "payload", updated.Data)
	})

	t.Run("admin updates", func(t *testing.T) {
		attachment := newAttachment(t)
		_, err := svc.Update(admin, attachment.ID, UpdateAttachmentInput{Data: strPtr("replaced")})
		assert.NoError(t, err)
	})

	t.Run("non-uploader forbidden", func(t *testing.T) {
		attachment := newAttachment(t)
		_, err := svc.Update(member, attachment.ID, UpdateAttachmentInput{Alt: strPtr("nope")})
		assert.ErrorIs(t, err, policy.ErrForbidden)

		err = svc.Delete(member, attachment.ID)
		assert.ErrorIs(t, err, policy.ErrForbidden)
	})

	t.Run("uploader deletes", func(t *testing.T) {
		attachment := newAttachment(t)
		require.NoError(t, svc.Delete(sender, attachment.ID))
		_, err := store.GetAttachment(attachment.ID)
		assert.ErrorIs(t, err, storage.ErrAttachmentNotFound)
	})

	t.Run("admin deletes", func(t *testing.T) {
		attachment := newAttachment(t)
		assert.NoError(t, svc.Delete(admin, attachment.ID))
	})

	t.Run("not found", func(t *testing.T) {
		_, err := svc.Update(admin, "missing", UpdateAttachmentInput{Alt: strPtr("x")})
		assert.ErrorIs(t, err, storage.ErrAttachmentNotFound)

		err = svc.Delete(admin, "missing")
		assert.ErrorIs(t, err, storage.ErrAttachmentNotFound)
	})
}
