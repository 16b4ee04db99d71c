package users

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fitrackhq/fitrack/internal/auth"
	"github.com/fitrackhq/fitrack/internal/middleware"
	"github.com/fitrackhq/fitrack/internal/telemetry/metrics"
	"github.com/fitrackhq/fitrack/pkg"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testSessions struct {
	logged    map[string]int
	nextToken int
	loginErr  error
}

func newTestSessions() *testSessions {
	return &testSessions{logged: map[string]int{}}
}

func (s *testSessions) Login(_ context.Context, userID int) (string, error) {
	if s.loginErr != nil {
		return "", s.loginErr
	}
	s.nextToken++
	token := fmt.Sprintf("test-token-%d", s.nextToken)
	s.logged[token] = userID
	return token, nil
}

func (s *testSessions) Logout(_ context.Context, token string) error {
	if _, ok := s.logged[token]; !ok {
		return auth.ErrNotLoggedIn
	}
	delete(s.logged, token)
	return nil
}

func newTestHandler(t *testing.T) (*Handler, *MemRepo, *testSessions, *metrics.Manager) {
	t.Helper()
	repo := NewMemRepo()
	sessions := newTestSessions()
	metricsManager := metrics.NewTestManager()
	return NewHandler(repo, sessions, metricsManager), repo, sessions, metricsManager
}

func registerJSON(username string) string {
	return fmt.Sprintf(`{
		"username": %q,
		"password": "sup3r-secret",
		"fullName": "Mile Kitic",
		"dateOfBirth": "1977-04-01",
		"targetDistance": 150
	}`, username)
}

func TestHandleRegister(t *testing.T) {
	handler, _, sessions, metricsManager := newTestHandler(t)

	req := httptest.NewRequest("POST", "/api/register", strings.NewReader(registerJSON("milko")))
	rr := httptest.NewRecorder()
	handler.HandleRegister(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)

	var resp authResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "test-token-1", resp.Token)
	require.NotNil(t, resp.User)
	assert.Equal(t, 1, resp.User.ID)
	assert.Equal(t, "milko", resp.User.Username)
	assert.Equal(t, 150, resp.User.TargetDistanceKm)
	assert.Equal(t, 1977, resp.User.DateOfBirth.Year())

	// registering logs the new user in
	assert.Equal(t, 1, sessions.logged[resp.Token])
	assert.Equal(t, float64(1), testutil.ToFloat64(metricsManager.CounterRegistrations))

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, middleware.SessionCookieName, cookies[0].Name)
	assert.Equal(t, resp.Token, cookies[0].Value)

	// password hash never leaves the service
	assert.NotContains(t, rr.Body.String(), "sup3r-secret")
	assert.NotContains(t, rr.Body.String(), "passwordHash")
}

func TestHandleRegister_invalidPayload(t *testing.T) {
	handler, _, _, _ := newTestHandler(t)

	testCases := []struct {
		name          string
		body          string
		expectedField string
	}{
		{
			name:          "MissingUsername",
			body:          `{"password": "x", "fullName": "A B", "dateOfBirth": "2000-01-01", "targetDistance": 10}`,
			expectedField: "username",
		},
		{
			name:          "MissingPassword",
			body:          `{"username": "a", "fullName": "A B", "dateOfBirth": "2000-01-01", "targetDistance": 10}`,
			expectedField: "password",
		},
		{
			name:          "BadDateOfBirth",
			body:          `{"username": "a", "password": "x", "fullName": "A B", "dateOfBirth": "yesterday", "targetDistance": 10}`,
			expectedField: "dateOfBirth",
		},
		{
			name:          "NegativeTargetDistance",
			body:          `{"username": "a", "password": "x", "fullName": "A B", "dateOfBirth": "2000-01-01", "targetDistance": -5}`,
			expectedField: "targetDistance",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/register", strings.NewReader(tc.body))
			rr := httptest.NewRecorder()
			handler.HandleRegister(rr, req)

			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Contains(t, rr.Body.String(), "validation failed")
			assert.Contains(t, rr.Body.String(), tc.expectedField)
		})
	}
}

func TestHandleRegister_usernameTaken(t *testing.T) {
	handler, _, _, _ := newTestHandler(t)

	req := httptest.NewRequest("POST", "/api/register", strings.NewReader(registerJSON("milko")))
	rr := httptest.NewRecorder()
	handler.HandleRegister(rr, req)
	require.Equal(t, http.StatusCreated, rr.Code)

	req = httptest.NewRequest("POST", "/api/register", strings.NewReader(registerJSON("milko")))
	rr = httptest.NewRecorder()
	handler.HandleRegister(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "already taken")
}

func addTestUser(t *testing.T, repo *MemRepo, username, password string) *User {
	t.Helper()
	hash, err := pkg.HashPassword(password)
	require.NoError(t, err)
	user, err := repo.Create(context.Background(), User{
		Username:         username,
		PasswordHash:     hash,
		FullName:         "Toma Zdravkovic",
		DateOfBirth:      time.Date(1938, 11, 2, 0, 0, 0, 0, time.UTC),
		TargetDistanceKm: 100,
		CreatedAt:        time.Now(),
	})
	require.NoError(t, err)
	return user
}

func TestHandleLogin(t *testing.T) {
	handler, repo, _, metricsManager := newTestHandler(t)
	addTestUser(t, repo, "toma", "white-swan")

	req := httptest.NewRequest("POST", "/api/login",
		strings.NewReader(`{"username": "toma", "password": "white-swan"}`))
	rr := httptest.NewRecorder()
	handler.HandleLogin(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp authResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	require.NotNil(t, resp.User)
	assert.Equal(t, "toma", resp.User.Username)
	assert.Equal(t, float64(1), testutil.ToFloat64(metricsManager.CounterLogins))
}

func TestHandleLogin_wrongCredentials(t *testing.T) {
	handler, repo, _, metricsManager := newTestHandler(t)
	addTestUser(t, repo, "toma", "white-swan")

	testCases := []struct {
		name string
		body string
	}{
		{
			name: "WrongPassword",
			body: `{"username": "toma", "password": "black-swan"}`,
		},
		{
			name: "UnknownUser",
			body: `{"username": "nobody", "password": "white-swan"}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/login", strings.NewReader(tc.body))
			rr := httptest.NewRecorder()
			handler.HandleLogin(rr, req)

			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Contains(t, rr.Body.String(), "wrong credentials")
		})
	}

	assert.Equal(t, float64(0), testutil.ToFloat64(metricsManager.CounterLogins))
}

func TestHandleLogin_missingFields(t *testing.T) {
	handler, _, _, _ := newTestHandler(t)

	req := httptest.NewRequest("POST", "/api/login", strings.NewReader(`{"username": "toma"}`))
	rr := httptest.NewRecorder()
	handler.HandleLogin(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "password")
}

func TestHandleLogout(t *testing.T) {
	handler, _, sessions, _ := newTestHandler(t)
	sessions.logged["session-to-kill"] = 7

	req := httptest.NewRequest("POST", "/api/logout", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: "session-to-kill"})
	rr := httptest.NewRecorder()
	handler.HandleLogout(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "logged-out", rr.Body.String())
	assert.NotContains(t, sessions.logged, "session-to-kill")
}

func TestHandleLogout_noToken(t *testing.T) {
	handler, _, _, _ := newTestHandler(t)

	req := httptest.NewRequest("POST", "/api/logout", nil)
	rr := httptest.NewRecorder()
	handler.HandleLogout(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestHandleLogout_unknownToken(t *testing.T) {
	handler, _, _, _ := newTestHandler(t)

	req := httptest.NewRequest("POST", "/api/logout", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: "never-issued"})
	rr := httptest.NewRecorder()
	handler.HandleLogout(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestHandleMe(t *testing.T) {
	handler, repo, _, _ := newTestHandler(t)
	user := addTestUser(t, repo, "toma", "white-swan")

	req := httptest.NewRequest("GET", "/api/user", nil)
	req = req.WithContext(auth.ContextWithUserID(req.Context(), user.ID))
	rr := httptest.NewRecorder()
	handler.HandleMe(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var gotUser User
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &gotUser))
	assert.Equal(t, user.ID, gotUser.ID)
	assert.Equal(t, "toma", gotUser.Username)
	assert.Empty(t, gotUser.PasswordHash)
}

func TestHandleMe_noUserInContext(t *testing.T) {
	handler, _, _, _ := newTestHandler(t)

	req := httptest.NewRequest("GET", "/api/user", nil)
	rr := httptest.NewRecorder()
	handler.HandleMe(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
