package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"msgapi/backend/internal/domain"
	"msgapi/backend/internal/storage/memory"
)

func TestRegister(t *testing.T) {
	service := NewService(memory.NewStore())

	t.Run("success", func(t *testing.T) {
		user, err := service.Register(RegisterInput{
			Name:     "alice",
			Email:    "Alice@Example.com",
			Password: "password123",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, user.ID)
		assert.Equal(t, "alice", user.Name)
		// 邮箱统一小写存储
		assert.Equal(t, "alice@example.com", user.Email)
		// 公开注册只能得到 member 角色
		assert.Equal(t, domain.RoleMember, user.Role)
		assert.NotEqual(t, "password123", user.PasswordHash)
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, err := service.Register(RegisterInput{
			Name:     "other",
			Email:    "alice@example.com",
			Password: "password123",
		})
		assert.ErrorIs(t, err, ErrEmailExists)
	})

	t.Run("missing fields", func(t *testing.T) {
		_, err := service.Register(RegisterInput{Email: "x@example.com", Password: "password123"})
		assert.ErrorIs(t, err, ErrMissingFields)

		_, err = service.Register(RegisterInput{Name: "x", Password: "password123"})
		assert.ErrorIs(t, err, ErrMissingFields)

		_, err = service.Register(RegisterInput{Name: "x", Email: "x@example.com"})
		assert.ErrorIs(t, err, ErrMissingFields)
	})

	t.Run("invalid email", func(t *testing.T) {
		_, err := service.Register(RegisterInput{
			Name:     "bob",
			Email:    "not-an-email",
			Password: "password123",
		})
		assert.ErrorIs(t, err, ErrInvalidEmail)
	})

	t.Run("weak password", func(t *testing.T) {
		_, err := service.Register(RegisterInput{
			Name:     "bob",
			Email:    "bob@example.com",
			Password: "short",
		})
		assert.Error(t, err)
	})
}

func TestLogin(t *testing.T) {
	service := NewService(memory.NewStore())

	_, err := service.Register(RegisterInput{
		Name:     "alice",
		Email:    "alice@example.com",
		Password: "password123",
	})
	require.NoError(t, err)

	t.Run("success", func(t *testing.T) {
		user, err := service.Login(LoginInput{Email: "alice@example.com", Password: "password123"})
		require.NoError(t, err)
		assert.Equal(t, "alice", user.Name)
	})

	t.Run("email case insensitive", func(t *testing.T) {
		user, err := service.Login(LoginInput{Email: "ALICE@example.com", Password: "password123"})
		require.NoError(t, err)
		assert.Equal(t, "alice", user.Name)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := service.Login(LoginInput{Email: "alice@example.com", Password: "wrong-pass"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := service.Login(LoginInput{Email: "ghost@example.com", Password: "password123"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("missing fields", func(t *testing.T) {
		_, err := service.Login(LoginInput{Email: "alice@example.com"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)

		_, err = service.Login(LoginInput{Password: "password123"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestPasswordHelpers(t *testing.T) {
	hash, err := HashPassword("password123")
	require.NoError(t, err)
	assert.True(t, CheckPassword("password123", hash))
	assert.False(t, CheckPassword("other", hash))

	assert.Error(t, ValidatePassword("short"))
	assert.NoError(t, ValidatePassword("password123"))
}

func TestValidateEmail(t *testing.T) {
	assert.True(t, ValidateEmail("user@example.com"))
	assert.True(t, ValidateEmail("user.name+tag@sub.example.co"))
	assert.False(t, ValidateEmail("no-at-sign"))
	assert.False(t, ValidateEmail("user@nodot"))
	assert.False(t, ValidateEmail(""))
}
