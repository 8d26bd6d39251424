package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func userClaims(id int64) jwt.MapClaims {
	return jwt.MapClaims{
		"sub":   float64(id),
		"email": "client@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
}

type allowSessions struct{ allow bool }

func (s allowSessions) Check(_ context.Context, _ string, _ int64) bool { return s.allow }

func TestRequireAuthAcceptsValidCookie(t *testing.T) {
	var gotID int64
	var gotEmail string
	handler := RequireAuth(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = GetUserID(r.Context())
		gotEmail = GetEmail(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: signToken(t, userClaims(42))})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(42), gotID)
	assert.Equal(t, "client@example.com", gotEmail)
}

func TestRequireAuthAcceptsBearerHeader(t *testing.T) {
	handler := RequireAuth(testSecret)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, userClaims(7)))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAuthRejectsMissingToken(t *testing.T) {
	handler := RequireAuth(testSecret)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler should not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "unauthorized")
}

func TestRequireAuthRejectsWrongSecret(t *testing.T) {
	handler := RequireAuth(testSecret)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler should not run")
	}))

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, userClaims(1))
	forged, err := token.SignedString([]byte("other-secret"))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: forged})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuthRejectsExpiredToken(t *testing.T) {
	handler := RequireAuth(testSecret)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler should not run")
	}))

	claims := userClaims(1)
	claims["exp"] = time.Now().Add(-time.Hour).Unix()

	req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: signToken(t, claims)})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// An admin token must never open a client session.
func TestRequireAuthRejectsAdminToken(t *testing.T) {
	handler := RequireAuth(testSecret)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler should not run")
	}))

	claims := userClaims(1)
	claims["adm"] = true

	req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: signToken(t, claims)})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuthRedirectsBrowsers(t *testing.T) {
	handler := RequireAuth(testSecret)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/auth", rec.Header().Get("Location"))
}

func adminClaims(id int64, jti string) jwt.MapClaims {
	return jwt.MapClaims{
		"sub":      float64(id),
		"username": "ops",
		"adm":      true,
		"jti":      jti,
		"exp":      time.Now().Add(time.Hour).Unix(),
	}
}

func TestRequireAdminAcceptsCheckedSession(t *testing.T) {
	var gotID int64
	var gotName string
	handler := RequireAdmin(testSecret, allowSessions{allow: true})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = GetAdminID(r.Context())
		gotName = GetAdminUsername(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/admin/api/projects", nil)
	req.AddCookie(&http.Cookie{Name: AdminSessionCookie, Value: signToken(t, adminClaims(3, "session-id"))})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(3), gotID)
	assert.Equal(t, "ops", gotName)
}

// A valid JWT whose backing session is gone is rejected and the cookie is
// cleared, so the console falls back to the login screen.
func TestRequireAdminRejectsDroppedSession(t *testing.T) {
	handler := RequireAdmin(testSecret, allowSessions{allow: false})(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler should not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/admin/api/projects", nil)
	req.AddCookie(&http.Cookie{Name: AdminSessionCookie, Value: signToken(t, adminClaims(3, "session-id"))})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	cleared := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == AdminSessionCookie && c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared, "session cookie should be cleared")
}

func TestRequireAdminRejectsClientToken(t *testing.T) {
	handler := RequireAdmin(testSecret, allowSessions{allow: true})(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler should not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/admin/api/projects", nil)
	req.AddCookie(&http.Cookie{Name: AdminSessionCookie, Value: signToken(t, userClaims(3))})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAdminRejectsMissingJTI(t *testing.T) {
	handler := RequireAdmin(testSecret, allowSessions{allow: true})(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler should not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/admin/api/projects", nil)
	req.AddCookie(&http.Cookie{Name: AdminSessionCookie, Value: signToken(t, adminClaims(3, ""))})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
