package auth

import (
	"context"
	"testing"

	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginChecker_UserID(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	defer rdb.Close()

	checker := NewLoginChecker(rdb)
	require.NotNil(t, checker)

	token := "known_token"
	mock.ExpectGet(sessionKeyPrefix + token).SetVal("42")
	userID, err := checker.UserID(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, 42, userID)

	mock.ExpectGet(sessionKeyPrefix + "unknown_token").RedisNil()
	userID, err = checker.UserID(context.Background(), "unknown_token")
	assert.ErrorIs(t, err, ErrNotLoggedIn)
	assert.Zero(t, userID)

	mock.ExpectGet(sessionKeyPrefix + "garbage_token").SetVal("not-an-int")
	_, err = checker.UserID(context.Background(), "garbage_token")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotLoggedIn)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLoginTestChecker(t *testing.T) {
	checker := NewLoginTestChecker()
	checker.LoggedSessions["tok"] = 7

	userID, err := checker.UserID(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, 7, userID)

	_, err = checker.UserID(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}
