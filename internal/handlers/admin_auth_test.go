package handlers

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	authmw "mathmotion/internal/middleware"
	"mathmotion/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type memSessionCache struct {
	m      map[string][]byte
	setErr error
}

func newMemSessionCache() *memSessionCache {
	return &memSessionCache{m: map[string][]byte{}}
}

func (c *memSessionCache) SetJSON(_ context.Context, key string, value any, _ time.Duration) error {
	if c.setErr != nil {
		return c.setErr
	}
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.m[key] = b
	return nil
}

func (c *memSessionCache) GetJSON(_ context.Context, key string, dest any) (bool, error) {
	b, ok := c.m[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dest)
}

func (c *memSessionCache) Delete(_ context.Context, key string) error {
	delete(c.m, key)
	return nil
}

type fakeAdminStore struct {
	admins map[string]*models.AdminUser
}

func (f *fakeAdminStore) GetByUsername(username string) (*models.AdminUser, error) {
	if a, ok := f.admins[username]; ok {
		return a, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeAdminStore) GetByID(id int64) (*models.AdminUser, error) {
	for _, a := range f.admins {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeAdminStore) Create(username, email, _ string) (*models.AdminUser, error) {
	a := &models.AdminUser{ID: int64(len(f.admins) + 1), Username: username, Email: email, Active: true}
	f.admins[username] = a
	return a, nil
}

func (f *fakeAdminStore) Count() (int, error) { return len(f.admins), nil }

func (f *fakeAdminStore) LinkAuthUser(id, authUserID int64) error {
	for _, a := range f.admins {
		if a.ID == id {
			a.AuthUserID = &authUserID
			return nil
		}
	}
	return sql.ErrNoRows
}

func (f *fakeAdminStore) UpdateLastLogin(int64) error { return nil }

type fakeAccountStore struct {
	users  map[string]*models.User
	nextID int64
}

func (f *fakeAccountStore) GetByEmail(email string) (*models.User, error) {
	if u, ok := f.users[email]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeAccountStore) Create(email, _, fullName, _, _ string) (*models.User, error) {
	f.nextID++
	u := &models.User{ID: f.nextID, Email: email, FullName: fullName}
	f.users[email] = u
	return u, nil
}

func activeAdmin(t *testing.T, id int64, username, password string) *models.AdminUser {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &models.AdminUser{ID: id, Username: username, PasswordHash: string(hash), Active: true}
}

func newBridge(admins *fakeAdminStore, accounts *fakeAccountStore, c *memSessionCache) *AdminAuthHandler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sessions := NewAdminSessions(c, admins)
	return NewAdminAuthHandler(admins, accounts, sessions, "test-secret", logger)
}

func loginRequest(t *testing.T, username, password string) *http.Request {
	t.Helper()
	body, err := json.Marshal(adminLoginRequest{Username: username, Password: password})
	require.NoError(t, err)
	return httptest.NewRequest(http.MethodPost, "/admin/api/login", bytes.NewReader(body))
}

// assertUnauthenticated checks the full-revert contract: no session cookie
// issued and nothing cached.
func assertUnauthenticated(t *testing.T, rec *httptest.ResponseRecorder, c *memSessionCache) {
	t.Helper()
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == authmw.AdminSessionCookie {
			assert.Empty(t, cookie.Value, "no session cookie may be issued")
		}
	}
	assert.Empty(t, c.m, "no session may be cached")
}

func TestAdminLoginSuccessBridgesAndLinks(t *testing.T) {
	admins := &fakeAdminStore{admins: map[string]*models.AdminUser{
		"ops": activeAdmin(t, 3, "ops", "open-sesame"),
	}}
	accounts := &fakeAccountStore{users: map[string]*models.User{}}
	c := newMemSessionCache()
	h := newBridge(admins, accounts, c)

	rec := httptest.NewRecorder()
	h.Login(rec, loginRequest(t, "ops", "open-sesame"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, c.m, 1)

	issued := false
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == authmw.AdminSessionCookie && cookie.Value != "" {
			issued = true
		}
	}
	assert.True(t, issued, "session cookie should be issued")

	// First bridge creates the service account and links it.
	account, ok := accounts.users[serviceAccountEmail("ops")]
	require.True(t, ok, "service account should be created")
	require.NotNil(t, admins.admins["ops"].AuthUserID)
	assert.Equal(t, account.ID, *admins.admins["ops"].AuthUserID)
}

func TestAdminLoginBadPasswordRevertsClean(t *testing.T) {
	admins := &fakeAdminStore{admins: map[string]*models.AdminUser{
		"ops": activeAdmin(t, 3, "ops", "open-sesame"),
	}}
	c := newMemSessionCache()
	h := newBridge(admins, &fakeAccountStore{users: map[string]*models.User{}}, c)

	rec := httptest.NewRecorder()
	h.Login(rec, loginRequest(t, "ops", "wrong"))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assertUnauthenticated(t, rec, c)
}

func TestAdminLoginInactiveRejected(t *testing.T) {
	admin := activeAdmin(t, 3, "ops", "open-sesame")
	admin.Active = false
	admins := &fakeAdminStore{admins: map[string]*models.AdminUser{"ops": admin}}
	c := newMemSessionCache()
	h := newBridge(admins, &fakeAccountStore{users: map[string]*models.User{}}, c)

	rec := httptest.NewRecorder()
	h.Login(rec, loginRequest(t, "ops", "open-sesame"))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assertUnauthenticated(t, rec, c)
}

// A linked admin whose service account resolves to a different user is a
// hard failure, never silently re-linked.
func TestAdminLoginMappingMismatchRevertsClean(t *testing.T) {
	admin := activeAdmin(t, 3, "ops", "open-sesame")
	linked := int64(999)
	admin.AuthUserID = &linked
	admins := &fakeAdminStore{admins: map[string]*models.AdminUser{"ops": admin}}
	accounts := &fakeAccountStore{users: map[string]*models.User{
		serviceAccountEmail("ops"): {ID: 5, Email: serviceAccountEmail("ops")},
	}}
	c := newMemSessionCache()
	h := newBridge(admins, accounts, c)

	rec := httptest.NewRecorder()
	h.Login(rec, loginRequest(t, "ops", "open-sesame"))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assertUnauthenticated(t, rec, c)
	// The bogus link is left for operators to inspect, not overwritten.
	assert.Equal(t, linked, *admins.admins["ops"].AuthUserID)
}

func TestAdminLoginCacheFailureRevertsClean(t *testing.T) {
	admins := &fakeAdminStore{admins: map[string]*models.AdminUser{
		"ops": activeAdmin(t, 3, "ops", "open-sesame"),
	}}
	c := newMemSessionCache()
	c.setErr = errors.New("redis down")
	h := newBridge(admins, &fakeAccountStore{users: map[string]*models.User{}}, c)

	rec := httptest.NewRecorder()
	h.Login(rec, loginRequest(t, "ops", "open-sesame"))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assertUnauthenticated(t, rec, c)
}

// Deactivating a team member revokes live sessions on the next check, not
// just at the next login.
func TestAdminSessionCheckRevokedOnDeactivation(t *testing.T) {
	admin := activeAdmin(t, 3, "ops", "open-sesame")
	admins := &fakeAdminStore{admins: map[string]*models.AdminUser{"ops": admin}}
	c := newMemSessionCache()
	sessions := NewAdminSessions(c, admins)

	ctx := context.Background()
	require.NoError(t, sessions.Put(ctx, "jti-1", 3))
	assert.True(t, sessions.Check(ctx, "jti-1", 3))

	admin.Active = false
	assert.False(t, sessions.Check(ctx, "jti-1", 3))

	// Wrong admin id or unknown jti never pass, active or not.
	admin.Active = true
	assert.False(t, sessions.Check(ctx, "jti-1", 4))
	assert.False(t, sessions.Check(ctx, "jti-2", 3))
}
