// Package identity разрешает учётные данные запроса в личность пользователя.
package identity

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/houseit/internal/domain"
)

// Claims — полезная нагрузка токена доступа.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.StandardClaims
}

// JWTResolver проверяет HS256-токены и извлекает из них личность.
type JWTResolver struct {
	secret []byte
	logger *log.Entry
}

var _ domain.IdentityResolver = (*JWTResolver)(nil)

// NewJWTResolver создаёт резолвер с ключом подписи secret.
func NewJWTResolver(secret []byte, logger *log.Entry) *JWTResolver {
	if logger == nil {
		logger = log.New().WithField("component", "identity")
	}
	return &JWTResolver{secret: secret, logger: logger}
}

// Resolve валидирует credential как JWT. Невалидный или истёкший токен
// даёт состояние без пользователя с заполненным LastError, а не панику:
// решение об отказе принимает вызывающая операция.
func (r *JWTResolver) Resolve(credential string) domain.IdentityState {
	if credential == "" {
		return domain.IdentityState{}
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(credential, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return r.secret, nil
	})
	if err != nil || !token.Valid {
		if err == nil {
			err = jwt.NewValidationError("token is not valid", jwt.ValidationErrorClaimsInvalid)
		}
		r.logger.WithError(err).Debug("token validation failed")
		return domain.IdentityState{LastError: err}
	}

	return domain.IdentityState{
		User: &domain.Identity{UserID: claims.UserID, Email: claims.Email},
	}
}

// IssueToken выписывает HS256-токен для пользователя; используется
// тестами и утилитами, настоящая выдача токенов живёт в сервисе аутентификации.
func (r *JWTResolver) IssueToken(userID, email string, ttl time.Duration) (string, error) {
	claims := &Claims{
		UserID: userID,
		Email:  email,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(ttl).Unix(),
			IssuedAt:  time.Now().Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(r.secret)
}

// StaticResolver всегда возвращает одно и то же состояние; нужен тестам
// и локальному запуску без сервиса аутентификации.
type StaticResolver struct {
	State domain.IdentityState
}

var _ domain.IdentityResolver = (*StaticResolver)(nil)

// Resolve игнорирует credential и возвращает заранее заданное состояние.
func (r *StaticResolver) Resolve(string) domain.IdentityState {
	return r.State
}
