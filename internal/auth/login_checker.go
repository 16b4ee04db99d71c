package auth

import (
	"context"

	"github.com/go-redis/redis/v8"
)

type LoginChecker struct {
	redisClient *redis.Client
}

func NewLoginChecker(redisClient *redis.Client) *LoginChecker {
	return &LoginChecker{
		redisClient: redisClient,
	}
}

// UserID returns the id of the user holding the session token,
// or ErrNotLoggedIn when the session is unknown or expired.
func (lc *LoginChecker) UserID(ctx context.Context, token string) (int, error) {
	return sessionUserID(ctx, lc.redisClient, token)
}
