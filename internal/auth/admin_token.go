package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const RoleAdmin = "admin"

var (
	ErrInvalidToken = errors.New("токен невалиден")
	ErrNotAdmin     = errors.New("требуется роль администратора")
)

// AdminTokens проверяет токены администраторов консоли. Токены подписаны
// общим HS256-секретом; выпускает их сервис логина или kycctl token.
type AdminTokens struct {
	secret []byte
}

func NewAdminTokens(secret string) *AdminTokens {
	return &AdminTokens{secret: []byte(secret)}
}

// Issue выпускает токен администратора.
func (t *AdminTokens) Issue(username string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  username,
		"role": RoleAdmin,
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Parse возвращает имя администратора из токена.
func (t *AdminTokens) Parse(token string) (string, error) {
	parsed, err := jwt.Parse(token, func(tok *jwt.Token) (interface{}, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", ErrInvalidToken
	}

	if role, _ := claims["role"].(string); role != RoleAdmin {
		return "", ErrNotAdmin
	}

	return sub, nil
}
