package middleware

import (
	"context"
	"net/http"
	"strings"

	apierrors "campaign-service/internal/errors"
	"campaign-service/internal/models"
)

type userCtxKey struct{}

// UserAuthenticator резолвит пользователя по access-токену.
// Реализуется сервисным слоем (service.Service.AuthenticateAccess).
type UserAuthenticator interface {
	AuthenticateAccess(ctx context.Context, accessToken string) (*models.User, error)
}

// RequireUser — защитный мидлвар для приватных маршрутов.
// Извлекает Bearer-токен из Authorization, валидирует его и кладёт
// пользователя в контекст. Любой сбой — отсутствие заголовка, битый или
// просроченный токен, неизвестный subject — отклоняется одинаковым
// 401 "Could not validate credentials", без уточнения причины.
func RequireUser(auth UserAuthenticator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				apierrors.WriteCredentialsError(w, r)
				return
			}

			user, err := auth.AuthenticateAccess(r.Context(), token)
			if err != nil {
				apierrors.WriteCredentialsError(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), userCtxKey{}, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFrom достаёт аутентифицированного пользователя из контекста.
func UserFrom(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userCtxKey{}).(*models.User)
	return user, ok && user != nil
}

// bearerToken извлекает токен из заголовка Authorization.
func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}

	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		return ""
	}

	return strings.TrimSpace(auth[len(prefix):])
}
