package identity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	t.Run("creates active customer with hashed secrets", func(t *testing.T) {
		user, err := NewUser("Jane Doe", "Jane@Example.COM", "secret1", "blue")
		require.NoError(t, err)

		assert.Equal(t, "Jane Doe", user.Name)
		assert.Equal(t, "jane@example.com", user.Email)
		assert.Equal(t, RoleCustomer, user.Role)
		assert.Equal(t, UserStatusActive, user.Status)
		assert.NotEqual(t, "secret1", user.PasswordHash)
		assert.NotEqual(t, "blue", user.AnswerHash)
		assert.True(t, user.VerifyPassword("secret1"))
		assert.True(t, user.VerifyAnswer("blue"))
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := NewUser("", "a@b.com", "secret1", "blue")
		assert.Error(t, err)
	})

	t.Run("rejects malformed email", func(t *testing.T) {
		_, err := NewUser("Jane", "not-an-email", "secret1", "blue")
		assert.Error(t, err)
	})

	t.Run("rejects short password", func(t *testing.T) {
		_, err := NewUser("Jane", "a@b.com", "a1", "blue")
		assert.Error(t, err)
	})

	t.Run("rejects password without digits", func(t *testing.T) {
		_, err := NewUser("Jane", "a@b.com", "letters", "blue")
		assert.Error(t, err)
	})

	t.Run("rejects empty security answer", func(t *testing.T) {
		_, err := NewUser("Jane", "a@b.com", "secret1", "  ")
		assert.Error(t, err)
	})
}

func TestNewAdminUser(t *testing.T) {
	admin, err := NewAdminUser("Admin", "admin@example.com", "secret1", "red")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, admin.Role)
	assert.True(t, admin.IsAdmin())
}

func TestUserVerifyAnswer(t *testing.T) {
	user, err := NewUser("Jane", "a@b.com", "secret1", "Charlie ")
	require.NoError(t, err)

	assert.True(t, user.VerifyAnswer("charlie"))
	assert.True(t, user.VerifyAnswer("  CHARLIE"))
	assert.False(t, user.VerifyAnswer("delta"))
}

func TestUserChangePassword(t *testing.T) {
	user, err := NewUser("Jane", "a@b.com", "secret1", "blue")
	require.NoError(t, err)

	t.Run("rejects wrong current password", func(t *testing.T) {
		err := user.ChangePassword("wrong", "newpass2")
		assert.Error(t, err)
		assert.True(t, user.VerifyPassword("secret1"))
	})

	t.Run("changes with correct current password", func(t *testing.T) {
		require.NoError(t, user.ChangePassword("secret1", "newpass2"))
		assert.True(t, user.VerifyPassword("newpass2"))
		assert.False(t, user.VerifyPassword("secret1"))
	})
}

func TestUserProfileSetters(t *testing.T) {
	user, err := NewUser("Jane", "a@b.com", "secret1", "blue")
	require.NoError(t, err)
	initial := user.GetVersion()

	require.NoError(t, user.SetName("Jane Smith"))
	require.NoError(t, user.SetPhone("+65 9123 4567"))
	require.NoError(t, user.SetAddress("1 Market Street"))

	assert.Equal(t, "Jane Smith", user.Name)
	assert.Equal(t, initial+3, user.GetVersion())

	assert.Error(t, user.SetPhone("abc"))
}

func TestUserLockout(t *testing.T) {
	t.Run("locks after max failures", func(t *testing.T) {
		user, err := NewUser("Jane", "a@b.com", "secret1", "blue")
		require.NoError(t, err)

		for i := 0; i < 4; i++ {
			assert.False(t, user.RecordLoginFailure(5, time.Minute))
		}
		assert.True(t, user.RecordLoginFailure(5, time.Minute))
		assert.True(t, user.IsLocked())
		assert.False(t, user.CanLogin())
	})

	t.Run("lock expires", func(t *testing.T) {
		user, err := NewUser("Jane", "a@b.com", "secret1", "blue")
		require.NoError(t, err)

		user.RecordLoginFailure(1, -time.Minute)
		assert.False(t, user.IsLocked())
		assert.True(t, user.CanLogin())
	})

	t.Run("success resets counter and clears lock", func(t *testing.T) {
		user, err := NewUser("Jane", "a@b.com", "secret1", "blue")
		require.NoError(t, err)

		user.RecordLoginFailure(1, -time.Minute)
		user.RecordLoginSuccess("10.0.0.1")
		assert.Equal(t, 0, user.FailedAttempts)
		assert.Equal(t, UserStatusActive, user.Status)
		assert.Equal(t, "10.0.0.1", user.LastLoginIP)
		require.NotNil(t, user.LastLoginAt)
	})
}

func TestUserDeactivate(t *testing.T) {
	user, err := NewUser("Jane", "a@b.com", "secret1", "blue")
	require.NoError(t, err)

	require.NoError(t, user.Deactivate())
	assert.False(t, user.CanLogin())
	assert.Error(t, user.Deactivate())
	assert.Error(t, user.Lock(time.Minute))
}

func TestUserPromoteToAdmin(t *testing.T) {
	user, err := NewUser("Jane", "a@b.com", "secret1", "blue")
	require.NoError(t, err)

	require.NoError(t, user.PromoteToAdmin())
	assert.True(t, user.IsAdmin())
	assert.Error(t, user.PromoteToAdmin())
}
