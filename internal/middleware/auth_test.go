package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fitrackhq/fitrack/internal/auth"
	"github.com/fitrackhq/fitrack/internal/middleware"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthMiddlewareHandler_AuthCheck(t *testing.T) {
	loginChecker := auth.NewLoginTestChecker()
	loginChecker.LoggedSessions["valid-token"] = 42

	authMiddleware := middleware.NewAuthMiddlewareHandler(loginChecker)

	testCases := []struct {
		name               string
		path               string
		method             string
		cookieToken        string
		bearerToken        string
		expectedStatusCode int
		expectedUserID     int
	}{
		{
			name:               "AllowedPathWithoutToken",
			path:               "/api/login",
			method:             "POST",
			expectedStatusCode: http.StatusOK,
		},
		{
			name:               "RootWithoutToken",
			path:               "/",
			method:             "GET",
			expectedStatusCode: http.StatusOK,
		},
		{
			name:               "ProtectedPathWithoutToken",
			path:               "/api/workouts",
			method:             "GET",
			expectedStatusCode: http.StatusUnauthorized,
		},
		{
			name:               "ValidCookieToken",
			path:               "/api/workouts",
			method:             "GET",
			cookieToken:        "valid-token",
			expectedStatusCode: http.StatusOK,
			expectedUserID:     42,
		},
		{
			name:               "ValidBearerToken",
			path:               "/api/runs/week",
			method:             "GET",
			bearerToken:        "valid-token",
			expectedStatusCode: http.StatusOK,
			expectedUserID:     42,
		},
		{
			name:               "InvalidToken",
			path:               "/api/workouts",
			method:             "GET",
			cookieToken:        "invalid-token",
			expectedStatusCode: http.StatusUnauthorized,
		},
		{
			name:               "Options",
			path:               "/api/workouts",
			method:             "OPTIONS",
			expectedStatusCode: http.StatusOK,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req, err := http.NewRequest(tc.method, tc.path, nil)
			require.NoError(t, err)
			if tc.cookieToken != "" {
				req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: tc.cookieToken})
			}
			if tc.bearerToken != "" {
				req.Header.Set("Authorization", "Bearer "+tc.bearerToken)
			}

			var gotUserID int
			var handlerCalled bool
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				handlerCalled = true
				gotUserID, _ = auth.UserIDFromContext(r.Context())
			})

			rr := httptest.NewRecorder()
			authMiddleware.AuthCheck()(handler).ServeHTTP(rr, req)

			assert.Equal(t, tc.expectedStatusCode, rr.Code)
			if tc.expectedUserID > 0 {
				assert.True(t, handlerCalled)
				assert.Equal(t, tc.expectedUserID, gotUserID)
			}
		})
	}
}
