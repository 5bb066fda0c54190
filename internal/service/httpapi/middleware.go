package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/vladislavdragonenkov/houseit/internal/domain"
)

type contextKey string

const identityContextKey = contextKey("identity-state")

// authMiddleware разрешает Bearer-токен в IdentityState и кладёт его в
// контекст запроса. Отсутствующий или невалидный токен не отклоняется
// здесь: решение принимает операция через RequireIdentity, чтобы
// таксономия ошибок была одна на все слои.
func (s *Service) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var credential string
		if header := r.Header.Get("Authorization"); header != "" {
			parts := strings.SplitN(header, " ", 2)
			if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
				credential = strings.TrimSpace(parts[1])
			}
		}

		state := s.resolver.Resolve(credential)
		ctx := context.WithValue(r.Context(), identityContextKey, state)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func identityStateFrom(ctx context.Context) domain.IdentityState {
	if state, ok := ctx.Value(identityContextKey).(domain.IdentityState); ok {
		return state
	}
	return domain.IdentityState{}
}
