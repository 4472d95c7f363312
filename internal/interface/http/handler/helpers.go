package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ucardlabs/ucard-admin/internal/http/middleware"
)

// adminUsername возвращает имя администратора из токена или пустую строку.
func adminUsername(c *gin.Context) string {
	if v, ok := c.Get(middleware.ContextAdminKey); ok {
		if name, ok := v.(string); ok {
			return name
		}
	}
	return ""
}

func parseIntQuery(c *gin.Context, key string, defaultValue int) int {
	valueStr := c.Query(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}
