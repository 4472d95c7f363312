package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ucardlabs/ucard-admin/internal/auth"
	"github.com/ucardlabs/ucard-admin/internal/interface/http/response"
	"github.com/ucardlabs/ucard-admin/internal/logger"
)

// ContextAdminKey хранит в gin.Context имя администратора.
const ContextAdminKey = "admin_username"

// AdminAuth пропускает только запросы с валидным токеном администратора.
// tokens == nil отключает проверку (локальная разработка без секрета).
func AdminAuth(tokens *auth.AdminTokens) gin.HandlerFunc {
	if tokens == nil {
		logger.Log.Warn("auth: проверка токенов отключена, все запросы выполняются от имени admin")
		return func(c *gin.Context) {
			c.Set(ContextAdminKey, auth.RoleAdmin)
			c.Next()
		}
	}

	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			response.Unauthorized(c, "требуется авторизация")
			return
		}

		username, err := tokens.Parse(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			if errors.Is(err, auth.ErrNotAdmin) {
				response.Forbidden(c, "недостаточно прав")
				return
			}
			response.Unauthorized(c, "токен невалиден")
			return
		}

		c.Set(ContextAdminKey, username)
		c.Next()
	}
}
