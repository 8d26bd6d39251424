package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const (
	userIDKey    contextKey = "userID"
	emailKey     contextKey = "email"
	adminIDKey   contextKey = "adminID"
	adminNameKey contextKey = "adminName"
)

const (
	SessionCookie      = "session"
	AdminSessionCookie = "admin_session"
)

// AdminSessionChecker re-validates a cached admin session; the JWT alone is
// never trusted for the admin surface.
type AdminSessionChecker interface {
	Check(ctx context.Context, jti string, adminID int64) bool
}

func RequireAuth(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := parseToken(w, r, jwtSecret, SessionCookie)
			if !ok {
				unauthorized(w, r)
				return
			}
			if isAdmin, _ := claims["adm"].(bool); isAdmin {
				unauthorized(w, r)
				return
			}

			userID := subjectID(claims)
			if userID == 0 {
				unauthorized(w, r)
				return
			}
			email, _ := claims["email"].(string)

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			ctx = context.WithValue(ctx, emailKey, email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func RequireAdmin(jwtSecret string, sessions AdminSessionChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := parseToken(w, r, jwtSecret, AdminSessionCookie)
			if !ok {
				unauthorized(w, r)
				return
			}
			if isAdmin, _ := claims["adm"].(bool); !isAdmin {
				unauthorized(w, r)
				return
			}

			adminID := subjectID(claims)
			jti, _ := claims["jti"].(string)
			if adminID == 0 || jti == "" {
				unauthorized(w, r)
				return
			}

			// The cached session is re-verified, never trusted.
			if !sessions.Check(r.Context(), jti, adminID) {
				clearCookie(w, AdminSessionCookie)
				unauthorized(w, r)
				return
			}

			username, _ := claims["username"].(string)
			ctx := context.WithValue(r.Context(), adminIDKey, adminID)
			ctx = context.WithValue(ctx, adminNameKey, username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func parseToken(w http.ResponseWriter, r *http.Request, jwtSecret, cookieName string) (jwt.MapClaims, bool) {
	tokenStr := ""

	// Check Authorization header first
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		tokenStr = strings.TrimPrefix(auth, "Bearer ")
	}

	// Fall back to cookie
	if tokenStr == "" {
		if c, err := r.Cookie(cookieName); err == nil {
			tokenStr = c.Value
		}
	}

	if tokenStr == "" {
		return nil, false
	}

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(jwtSecret), nil
	})
	if err != nil || !token.Valid {
		clearCookie(w, cookieName)
		return nil, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, false
	}
	return claims, true
}

func subjectID(claims jwt.MapClaims) int64 {
	if v, ok := claims["sub"].(float64); ok {
		return int64(v)
	}
	return 0
}

func GetUserID(ctx context.Context) int64 {
	if id, ok := ctx.Value(userIDKey).(int64); ok {
		return id
	}
	return 0
}

func GetEmail(ctx context.Context) string {
	if email, ok := ctx.Value(emailKey).(string); ok {
		return email
	}
	return ""
}

func GetAdminID(ctx context.Context) int64 {
	if id, ok := ctx.Value(adminIDKey).(int64); ok {
		return id
	}
	return 0
}

func GetAdminUsername(ctx context.Context) string {
	if name, ok := ctx.Value(adminNameKey).(string); ok {
		return name
	}
	return ""
}

func clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

func unauthorized(w http.ResponseWriter, r *http.Request) {
	accept := r.Header.Get("Accept")
	if strings.Contains(accept, "text/html") && !strings.Contains(accept, "application/json") {
		http.Redirect(w, r, "/auth", http.StatusSeeOther)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"unauthorized"}`))
}
