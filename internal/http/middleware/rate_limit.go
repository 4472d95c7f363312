package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"

	"github.com/ucardlabs/ucard-admin/internal/interface/http/response"
	"github.com/ucardlabs/ucard-admin/internal/logger"
)

const limiterPrefix = "ucard_admin:limiter"

// NewRateLimitStore хранит счётчики в Redis, чтобы лимит был общим для
// всех реплик. Без Redis используется память процесса.
func NewRateLimitStore(client *redis.Client) limiter.Store {
	if client != nil {
		store, err := sredis.NewStoreWithOptions(client, limiter.StoreOptions{Prefix: limiterPrefix})
		if err == nil {
			return store
		}
		logger.Log.WithError(err).Warn("rate limit: не удалось создать Redis store, используем память")
	}
	return memory.NewStoreWithOptions(limiter.StoreOptions{Prefix: limiterPrefix})
}

// RateLimitMiddleware ограничивает число запросов с одного администратора
// (или IP, если запрос пришёл без авторизации).
func RateLimitMiddleware(store limiter.Store, limit int64, period time.Duration) gin.HandlerFunc {
	if limit <= 0 {
		limit = 30
	}
	if period <= 0 {
		period = time.Minute
	}

	instance := limiter.New(store, limiter.Rate{Period: period, Limit: limit})

	return func(c *gin.Context) {
		key := c.ClientIP()
		if admin := c.GetString(ContextAdminKey); admin != "" {
			key = "admin:" + admin
		}

		ctx, err := instance.Get(c.Request.Context(), key)
		if err != nil {
			// Недоступность хранилища лимитов не должна блокировать аудит.
			logger.Log.WithError(err).Warn("rate limit: ошибка хранилища, запрос пропущен")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", ctx.Limit))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", ctx.Remaining))
		c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", ctx.Reset))

		if ctx.Reached {
			response.TooManyRequests(c, "слишком много запросов, попробуйте позже")
			return
		}

		c.Next()
	}
}
