package users

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/fitrackhq/fitrack/internal/auth"
	"github.com/fitrackhq/fitrack/internal/middleware"
	"github.com/fitrackhq/fitrack/internal/telemetry/metrics"
	"github.com/fitrackhq/fitrack/internal/telemetry/tracing"
	"github.com/fitrackhq/fitrack/internal/validation"
	"github.com/fitrackhq/fitrack/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type usersRepo interface {
	Create(ctx context.Context, user User) (*User, error)
	Get(ctx context.Context, id int) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
}

type sessionService interface {
	Login(ctx context.Context, userID int) (string, error)
	Logout(ctx context.Context, token string) error
}

type Handler struct {
	repo     usersRepo
	sessions sessionService
	metrics  *metrics.Manager
}

func NewHandler(
	repo usersRepo,
	sessions sessionService,
	metricsManager *metrics.Manager,
) *Handler {
	return &Handler{
		repo:     repo,
		sessions: sessions,
		metrics:  metricsManager,
	}
}

func (handler *Handler) SetupRoutes(
	router *mux.Router,
	rateLimiter middleware.RequestRateLimiter,
	loginAllowedPerMin int,
) {
	// register and login are reachable without a session, so they get
	// their own rate-limited subrouter
	credsRouter := router.PathPrefix("/api").Subrouter()
	credsRouter.HandleFunc("/register", handler.HandleRegister).Methods("POST", "OPTIONS").Name("register")
	credsRouter.HandleFunc("/login", handler.HandleLogin).Methods("POST", "OPTIONS").Name("login")
	credsRouter.Use(middleware.RateLimit(rateLimiter, "credentials", loginAllowedPerMin, handler.metrics))

	router.HandleFunc("/api/logout", handler.HandleLogout).Methods("POST", "GET", "OPTIONS").Name("logout")
	router.HandleFunc("/api/user", handler.HandleMe).Methods("GET", "OPTIONS").Name("current-user")
}

type authResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

func (handler *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "usersHandler.register")
	defer span.End()

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Errorf("register user, decode request: %s", err)
		http.Error(w, "error, request payload invalid", http.StatusBadRequest)
		return
	}

	user, err := req.Validate()
	if err != nil {
		writeValidationError(w, err)
		return
	}

	hashedPassword, err := pkg.HashPassword(req.Password)
	if err != nil {
		log.Errorf("register user, hash password: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	user.PasswordHash = hashedPassword

	addedUser, err := handler.repo.Create(ctx, *user)
	if err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			verr := validation.NewError()
			verr.Add("username", "already taken")
			writeValidationError(w, verr.OrNil())
			return
		}
		log.Errorf("register user: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	// new users get logged in right away
	token, err := handler.sessions.Login(ctx, addedUser.ID)
	if err != nil {
		log.Errorf("register user, create session: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	handler.metrics.CounterRegistrations.Inc()
	log.Tracef("new user registered: %s [id %d]", addedUser.Username, addedUser.ID)

	setSessionCookie(w, token)
	pkg.WriteJSON(w, http.StatusCreated, authResponse{
		Token: token,
		User:  addedUser,
	})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (handler *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "usersHandler.login")
	defer span.End()

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Errorf("login, decode request: %s", err)
		http.Error(w, "error, request payload invalid", http.StatusBadRequest)
		return
	}

	verr := validation.NewError()
	validation.RequiredString(verr, "username", req.Username)
	validation.RequiredString(verr, "password", req.Password)
	if err := verr.OrNil(); err != nil {
		writeValidationError(w, err)
		return
	}

	user, err := handler.repo.GetByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			http.Error(w, "error, wrong credentials", http.StatusBadRequest)
			return
		}
		log.Errorf("login, get user: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if !pkg.CheckPasswordHash(req.Password, user.PasswordHash) {
		http.Error(w, "error, wrong credentials", http.StatusBadRequest)
		return
	}

	token, err := handler.sessions.Login(ctx, user.ID)
	if err != nil {
		log.Errorf("login, create session: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	handler.metrics.CounterLogins.Inc()
	log.Tracef("user logged in: %s [id %d]", user.Username, user.ID)

	setSessionCookie(w, token)
	pkg.WriteJSON(w, http.StatusOK, authResponse{
		Token: token,
		User:  user,
	})
}

func (handler *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "usersHandler.logout")
	defer span.End()

	token := middleware.SessionToken(r)
	if token == "" {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	if err := handler.sessions.Logout(ctx, token); err != nil {
		if errors.Is(err, auth.ErrNotLoggedIn) {
			http.Error(w, "no can do", http.StatusUnauthorized)
			return
		}
		log.Errorf("logout: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	clearSessionCookie(w)
	pkg.WriteTextResponseOK(w, "logged-out")
}

func (handler *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "usersHandler.me")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	user, err := handler.repo.Get(ctx, userID)
	if err != nil {
		log.Errorf("get current user %d: %s", userID, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, http.StatusOK, user)
}

func setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

func writeValidationError(w http.ResponseWriter, err error) {
	var verr *validation.Error
	if errors.As(err, &verr) {
		pkg.WriteJSON(w, http.StatusBadRequest, verr)
		return
	}
	http.Error(w, "error, request payload invalid", http.StatusBadRequest)
}
