package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/m04kA/SMC-SpaceBookingService/internal/api/handlers"
)

type contextKey string

const userIDKey contextKey = "userID"

// UserIDHeader заголовок с идентификатором пользователя,
// проставляется API gateway после аутентификации
const UserIDHeader = "X-User-ID"

const msgMissingUserID = "отсутствует или некорректен заголовок X-User-ID"

// Auth требует валидный X-User-ID и кладет его в контекст запроса
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := parseUserID(r)
		if !ok {
			handlers.RespondUnauthorized(w, msgMissingUserID)
			return
		}
		next.ServeHTTP(w, r.WithContext(withUserID(r.Context(), userID)))
	})
}

// OptionalAuth кладет X-User-ID в контекст, если заголовок есть и валиден.
// Запросы без заголовка проходят как гостевые.
func OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if userID, ok := parseUserID(r); ok {
			r = r.WithContext(withUserID(r.Context(), userID))
		}
		next.ServeHTTP(w, r)
	})
}

// GetUserID извлекает ID пользователя из контекста запроса
func GetUserID(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(userIDKey).(int64)
	return userID, ok
}

func withUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

func parseUserID(r *http.Request) (int64, bool) {
	raw := r.Header.Get(UserIDHeader)
	if raw == "" {
		return 0, false
	}
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || userID <= 0 {
		return 0, false
	}
	return userID, true
}
