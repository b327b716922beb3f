package middleware

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// DefaultRateLimit bounds how fast a single terminal client can hit the
// API when no explicit limit is configured.
const DefaultRateLimit = "30-M"

func RateLimit(format string) gin.HandlerFunc {
	if format == "" {
		format = DefaultRateLimit
	}

	rate, err := limiter.NewRateFromFormatted(format)
	if err != nil {
		log.Fatalf("Invalid terminal rate limit %q: %v", format, err)
	}

	store := memory.NewStore()
	instance := limiter.New(store, rate)

	limiterMiddleware := stdlib.NewMiddleware(instance)

	return func(c *gin.Context) {
		limiterMiddleware.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c.Next()
		})).ServeHTTP(c.Writer, c.Request)

		if c.Writer.Status() == http.StatusTooManyRequests {
			c.Abort()
			return
		}
	}
}
