package http

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/strogmv/blogadmin/internal/pkg/errors"
)

func decodeJSONRequest(r *http.Request, out any) error {
	if r.Body == nil {
		return errors.Validation("request body is required")
	}
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(out); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case stderrors.As(err, &tooLarge):
			return errors.New(http.StatusRequestEntityTooLarge, "Payload Too Large",
				fmt.Sprintf("Request body too large (max %d bytes)", tooLarge.Limit))
		case stderrors.Is(err, io.EOF):
			return errors.Validation("request body is required")
		default:
			return errors.Wrap(err, http.StatusBadRequest, "Validation Error", "malformed JSON body")
		}
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func pathID(r *http.Request) (uint, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseUint(raw, 10, strconv.IntSize)
	if err != nil {
		return 0, errors.Validation(fmt.Sprintf("invalid post id %q", raw))
	}
	return uint(id), nil
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RateLimitMiddleware counts requests per client IP in one-second windows
// shared through Redis. Without Redis, or while Redis errors, each process
// falls back to its own token bucket per IP.
func RateLimitMiddleware(client redis.UniversalClient, rps float64, burst int) func(http.Handler) http.Handler {
	if rps <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	limit := int64(burst)
	if limit < int64(rps) {
		limit = int64(rps)
	}
	local := newLocalLimiter(rate.Limit(rps), burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			if client != nil {
				over, err := redisWindowExceeded(r.Context(), client, ip, limit)
				if err == nil {
					if over {
						rateLimited.WithLabelValues("redis").Inc()
						tooManyRequests(w, r)
						return
					}
					next.ServeHTTP(w, r)
					return
				}
			}
			if !local.allow(ip) {
				rateLimited.WithLabelValues("local").Inc()
				tooManyRequests(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func tooManyRequests(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Retry-After", "1")
	errors.WriteError(w, r, errors.New(http.StatusTooManyRequests, "Too Many Requests", "Rate limit exceeded"))
}

func redisWindowExceeded(ctx context.Context, client redis.UniversalClient, ip string, limit int64) (bool, error) {
	key := fmt.Sprintf("blogadmin:rate:%s:%d", ip, time.Now().Unix())
	pipe := client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, 2*time.Second)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	return incr.Val() > limit, nil
}

type localLimiter struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	buckets map[string]*rate.Limiter
}

func newLocalLimiter(limit rate.Limit, burst int) *localLimiter {
	if burst < 1 {
		burst = 1
	}
	return &localLimiter{limit: limit, burst: burst, buckets: make(map[string]*rate.Limiter)}
}

func (l *localLimiter) allow(ip string) bool {
	l.mu.Lock()
	lim, ok := l.buckets[ip]
	if !ok {
		lim = rate.NewLimiter(l.limit, l.burst)
		l.buckets[ip] = lim
	}
	l.mu.Unlock()
	return lim.Allow()
}

// TimeoutMiddleware bounds handler time. http.TimeoutHandler answers 503
// with a problem document.
func TimeoutMiddleware(d time.Duration) func(http.Handler) http.Handler {
	if d <= 0 {
		d = 30 * time.Second
	}
	return func(next http.Handler) http.Handler {
		th := http.TimeoutHandler(next, d, `{"type":"about:blank","title":"Service Unavailable","status":503,"detail":"Request timed out"}`)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			th.ServeHTTP(problemTimeoutWriter{w}, r)
		})
	}
}

// problemTimeoutWriter labels a bare 503 as application/problem+json. The
// timeout body is written without any Content-Type of its own.
type problemTimeoutWriter struct {
	http.ResponseWriter
}

func (w problemTimeoutWriter) WriteHeader(code int) {
	if code == http.StatusServiceUnavailable && w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "application/problem+json")
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w problemTimeoutWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }

func MaxBodySizeMiddleware(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				errors.WriteError(w, r, errors.New(http.StatusRequestEntityTooLarge, "Payload Too Large", fmt.Sprintf("Request body too large (max %d bytes)", limit)))
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}
