package handlers

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	authmw "mathmotion/internal/middleware"
	"mathmotion/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const adminSessionTTL = 24 * time.Hour

type sessionCache interface {
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	Delete(ctx context.Context, key string) error
}

type adminStore interface {
	GetByUsername(username string) (*models.AdminUser, error)
	GetByID(id int64) (*models.AdminUser, error)
	Create(username, email, password string) (*models.AdminUser, error)
	Count() (int, error)
	LinkAuthUser(id, authUserID int64) error
	UpdateLastLogin(id int64) error
}

type serviceAccountStore interface {
	GetByEmail(email string) (*models.User, error)
	Create(email, password, fullName, phone, company string) (*models.User, error)
}

// AdminSessions caches established admin sessions in Redis, keyed by token
// id. The cache is a convenience only: middleware re-verifies it on every
// request instead of trusting the JWT alone.
type AdminSessions struct {
	cache  sessionCache
	admins adminStore
}

func NewAdminSessions(c sessionCache, admins adminStore) *AdminSessions {
	return &AdminSessions{cache: c, admins: admins}
}

func (s *AdminSessions) Put(ctx context.Context, jti string, adminID int64) error {
	return s.cache.SetJSON(ctx, "admin:session:"+jti, adminID, adminSessionTTL)
}

// Check verifies both the cached session and the current admin row.
// Deactivating a team member revokes their live sessions on the next
// request, not just at the next login.
func (s *AdminSessions) Check(ctx context.Context, jti string, adminID int64) bool {
	var cached int64
	ok, err := s.cache.GetJSON(ctx, "admin:session:"+jti, &cached)
	if err != nil || !ok || cached != adminID {
		return false
	}

	admin, err := s.admins.GetByID(adminID)
	return err == nil && admin.Active
}

func (s *AdminSessions) Drop(ctx context.Context, jti string) {
	_ = s.cache.Delete(ctx, "admin:session:"+jti)
}

// AdminAuthHandler bridges the dedicated admin credential table into a
// regular user session so per-user data access can key off it. Login runs
// three phases: credential check, ensure-session (get or create the linked
// service account), verify-mapping. Any phase failure reverts fully to
// unauthenticated with a single surfaced error.
type AdminAuthHandler struct {
	adminRepo adminStore
	userRepo  serviceAccountStore
	sessions  *AdminSessions
	jwtSecret string
	logger    *slog.Logger
}

func NewAdminAuthHandler(adminRepo adminStore, userRepo serviceAccountStore, sessions *AdminSessions, jwtSecret string, logger *slog.Logger) *AdminAuthHandler {
	return &AdminAuthHandler{
		adminRepo: adminRepo,
		userRepo:  userRepo,
		sessions:  sessions,
		jwtSecret: jwtSecret,
		logger:    logger.With("component", "admin_auth"),
	}
}

type adminLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *AdminAuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req adminLoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Phase 1: credential check against the admin table.
	admin, err := h.adminRepo.GetByUsername(strings.TrimSpace(req.Username))
	if err != nil || !admin.Active {
		writeError(w, http.StatusUnauthorized, "invalid username or password")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)); err != nil {
		writeError(w, http.StatusUnauthorized, "invalid username or password")
		return
	}

	// Phase 2: ensure the linked service account exists.
	account, err := h.ensureServiceAccount(admin)
	if err != nil {
		h.logger.Error("admin session establishment failed", "username", admin.Username, "error", err)
		writeError(w, http.StatusBadGateway, "could not establish session")
		return
	}

	// Phase 3: verify the identity mapping. First bridge links; after that
	// a mismatch is a hard failure, never silently re-linked.
	if admin.AuthUserID == nil {
		if err := h.adminRepo.LinkAuthUser(admin.ID, account.ID); err != nil {
			h.logger.Error("admin identity link failed", "username", admin.Username, "error", err)
			writeError(w, http.StatusBadGateway, "could not establish session")
			return
		}
	} else if *admin.AuthUserID != account.ID {
		h.logger.Error("admin identity mapping mismatch", "username", admin.Username,
			"linked", *admin.AuthUserID, "resolved", account.ID)
		writeError(w, http.StatusUnauthorized, "identity mapping mismatch")
		return
	}

	// Authenticated: cache the session, then issue the cookie. On cache
	// failure nothing is issued and the attempt reverts fully.
	jti := uuid.NewString()
	if err := h.sessions.Put(r.Context(), jti, admin.ID); err != nil {
		h.logger.Error("admin session cache failed", "username", admin.Username, "error", err)
		writeError(w, http.StatusBadGateway, "could not establish session")
		return
	}

	if err := h.setAdminCookie(w, admin, jti); err != nil {
		h.sessions.Drop(r.Context(), jti)
		writeError(w, http.StatusInternalServerError, "could not establish session")
		return
	}

	if err := h.adminRepo.UpdateLastLogin(admin.ID); err != nil {
		h.logger.Warn("could not record admin login", "username", admin.Username, "error", err)
	}

	writeJSON(w, http.StatusOK, admin)
}

// ensureServiceAccount returns the user row backing this admin, creating it
// on first login. The account carries a random password: it is only ever
// entered through the bridge, never by password sign-in.
func (h *AdminAuthHandler) ensureServiceAccount(admin *models.AdminUser) (*models.User, error) {
	email := serviceAccountEmail(admin.Username)

	account, err := h.userRepo.GetByEmail(email)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	return h.userRepo.Create(email, uuid.NewString(), admin.Username, "", "")
}

func serviceAccountEmail(username string) string {
	return "admin+" + strings.ToLower(username) + "@accounts.internal"
}

func (h *AdminAuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(authmw.AdminSessionCookie); err == nil {
		if token, _ := jwt.Parse(c.Value, func(t *jwt.Token) (interface{}, error) {
			return []byte(h.jwtSecret), nil
		}); token != nil {
			if claims, ok := token.Claims.(jwt.MapClaims); ok {
				if jti, _ := claims["jti"].(string); jti != "" {
					h.sessions.Drop(r.Context(), jti)
				}
			}
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     authmw.AdminSessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	writeJSON(w, http.StatusOK, map[string]string{"status": "signed_out"})
}

// Session returns the verified admin for the console shell.
func (h *AdminAuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	admin, err := h.adminRepo.GetByID(authmw.GetAdminID(r.Context()))
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, admin)
}

type adminSetupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Setup creates the first admin account. Once any admin exists the endpoint
// is closed; further team members are added from the console.
func (h *AdminAuthHandler) Setup(w http.ResponseWriter, r *http.Request) {
	count, err := h.adminRepo.Count()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not check setup state")
		return
	}
	if count > 0 {
		writeError(w, http.StatusForbidden, "setup already completed")
		return
	}

	var req adminSetupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Username == "" || req.Email == "" {
		writeError(w, http.StatusBadRequest, "username and email are required")
		return
	}
	if len(req.Password) < 6 {
		writeError(w, http.StatusBadRequest, "password must be at least 6 characters")
		return
	}

	admin, err := h.adminRepo.Create(req.Username, req.Email, req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not create admin")
		return
	}
	writeJSON(w, http.StatusCreated, admin)
}

func (h *AdminAuthHandler) setAdminCookie(w http.ResponseWriter, admin *models.AdminUser, jti string) error {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      admin.ID,
		"username": admin.Username,
		"adm":      true,
		"jti":      jti,
		"exp":      time.Now().Add(adminSessionTTL).Unix(),
	})

	tokenStr, err := token.SignedString([]byte(h.jwtSecret))
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     authmw.AdminSessionCookie,
		Value:    tokenStr,
		Path:     "/",
		MaxAge:   int(adminSessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	return nil
}
