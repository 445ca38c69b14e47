package middleware

import (
	"net"
	"net/http"
	"strconv"

	"parkspot/shared/constant"
	"parkspot/shared/limiter"
	"parkspot/transport/http/response"

	"github.com/rs/zerolog/log"
)

// RateLimit counts requests per method, route and client in a fixed window.
// A failing store lets the request through.
func (a *appMiddleware) RateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.config.App.RateLimiter.Enable {
			next.ServeHTTP(w, r)

			return
		}

		key := limiter.Key(r.Method, routePattern(r), clientIP(r))

		res, err := a.limiter.Allow(r.Context(), key)
		if err != nil {
			log.Error().Err(err).Str("key", key).Msg("rate limiter unavailable")
			next.ServeHTTP(w, r)

			return
		}

		w.Header().Set(constant.RequestHeaderRateLimit, strconv.Itoa(res.Limit))
		w.Header().Set(constant.RequestHeaderRateLimitRemaining, strconv.Itoa(res.Remaining))
		w.Header().Set(constant.RequestHeaderRateLimitWindow, strconv.Itoa(int(res.Window.Seconds())))

		if !res.Allowed {
			response.WithRequestLimitExceeded(w)

			return
		}

		next.ServeHTTP(w, r)
	})
}

// clientIP reads the peer address only. Proxy headers are honoured through RealIP when
// APP_TRUST_PROXY is set, which rewrites RemoteAddr before this runs.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}

	return r.RemoteAddr
}
