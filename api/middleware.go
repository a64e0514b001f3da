package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/stylenest/stylenest-backend/models"
	"github.com/stylenest/stylenest-backend/utils"
)

type contextKey string

const (
	userIDKey    contextKey = "user_id"
	userRoleKey  contextKey = "user_role"
	sessionIDKey contextKey = "session_id"
)

const sessionCookieName = "sn_session"

// CORSMiddleware sets the CORS headers and short-circuits preflight requests.
func CORSMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS, PUT, DELETE")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next(w, r)
	}
}

// AuthMiddleware requires a valid Bearer token and stores the user identity
// on the request context.
func AuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, role, ok := bearerIdentity(r)
		if !ok {
			utils.RespondError(w, nil, "Unauthorized", http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), userIDKey, userID)
		ctx = context.WithValue(ctx, userRoleKey, role)
		next(w, r.WithContext(ctx))
	}
}

// AdminMiddleware requires a valid token whose role claim is admin.
func AdminMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return AuthMiddleware(func(w http.ResponseWriter, r *http.Request) {
		if role, _ := r.Context().Value(userRoleKey).(string); role != "admin" {
			utils.RespondError(w, nil, "Forbidden", statusForError(models.ErrForbidden))
			return
		}
		next(w, r)
	})
}

// OptionalAuthMiddleware attaches the user identity when a valid token is
// present, and ensures every anonymous request carries a session cookie so
// guest carts have a stable key. Never rejects.
func OptionalAuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if userID, role, ok := bearerIdentity(r); ok {
			ctx = context.WithValue(ctx, userIDKey, userID)
			ctx = context.WithValue(ctx, userRoleKey, role)
		} else {
			ctx = context.WithValue(ctx, sessionIDKey, ensureSessionCookie(w, r))
		}
		next(w, r.WithContext(ctx))
	}
}

func bearerIdentity(r *http.Request) (userID, role string, ok bool) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return "", "", false
	}
	userID, role, err := utils.ValidateToken(strings.TrimPrefix(header, "Bearer "))
	if err != nil {
		return "", "", false
	}
	return userID, role, true
}

// ensureSessionCookie returns the request's session id, issuing a fresh one
// when the visitor has none yet.
func ensureSessionCookie(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(sessionCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

// GetUserIDFromContext returns the authenticated user's id from the request
// context, or models.ErrUnauthorized when the request is anonymous.
func GetUserIDFromContext(ctx context.Context) (string, error) {
	userID, _ := ctx.Value(userIDKey).(string)
	if userID == "" {
		return "", models.ErrUnauthorized
	}
	return userID, nil
}

// GetSessionIDFromContext returns the guest session id, if any.
func GetSessionIDFromContext(ctx context.Context) string {
	sessionID, _ := ctx.Value(sessionIDKey).(string)
	return sessionID
}
