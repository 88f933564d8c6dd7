package session_test

import (
	"errors"
	"testing"
	"time"

	"github.com/counterdesk/counterdesk/internal/session"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sessionKey = "counterdesk:session:token"

func setupRedis(t *testing.T) (*session.RedisStore, redismock.ClientMock) {
	t.Helper()

	client, mock := redismock.NewClientMock()
	store := session.NewRedisStore(client, sessionKey, time.Hour)

	return store, mock
}

func TestRedisStore(t *testing.T) {
	t.Run("Success - Token Found", func(t *testing.T) {
		// Arrange
		store, mock := setupRedis(t)
		mock.ExpectGet(sessionKey).SetVal("tok-redis")

		// Act
		token, ok := store.Token()

		// Assert
		assert.True(t, ok)
		assert.Equal(t, "tok-redis", token)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Success - Missing Key Reads As Logged Out", func(t *testing.T) {
		// Arrange
		store, mock := setupRedis(t)
		mock.ExpectGet(sessionKey).RedisNil()

		// Act
		_, ok := store.Token()

		// Assert
		assert.False(t, ok)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Success - SetToken Uses TTL", func(t *testing.T) {
		// Arrange
		store, mock := setupRedis(t)
		mock.ExpectSet(sessionKey, "tok-new", time.Hour).SetVal("OK")

		// Act
		err := store.SetToken("tok-new")

		// Assert
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Failure - SetToken Surfaces Redis Error", func(t *testing.T) {
		// Arrange
		store, mock := setupRedis(t)
		mock.ExpectSet(sessionKey, "tok", time.Hour).SetErr(errors.New("connection refused"))

		// Act
		err := store.SetToken("tok")

		// Assert
		require.Error(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Success - Clear Notifies Only When A Token Existed", func(t *testing.T) {
		// Arrange
		store, mock := setupRedis(t)

		var events []session.Event

		store.Subscribe(func(e session.Event) {
			events = append(events, e)
		})

		mock.ExpectDel(sessionKey).SetVal(1)
		mock.ExpectDel(sessionKey).SetVal(0)

		// Act
		require.NoError(t, store.Clear())
		require.NoError(t, store.Clear())

		// Assert
		assert.Equal(t, []session.Event{session.EventLogout}, events)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
