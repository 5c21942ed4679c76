package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dorcasbeulah27/PowerOil-Backend/utils"

	"go.uber.org/zap"
)

// In-memory rate limiters with trusted-proxy support, progressive penalties and
// periodic cleanup. Admin login lockout prefers Redis when it is configured.

type timestamps []int64 // unix nanos

func nowUnix() int64 { return time.Now().UnixNano() }

const cleanupInterval = time.Minute

// within keeps the timestamps newer than cutoff
func within(arr timestamps, cutoff int64) timestamps {
	var filtered timestamps
	for _, ts := range arr {
		if ts >= cutoff {
			filtered = append(filtered, ts)
		}
	}
	return filtered
}

func writeTooMany(w http.ResponseWriter, retryAfter int) {
	if retryAfter < 1 {
		retryAfter = 1
	}
	w.Header().Set("Retry-After", fmt.Sprintf("%d", retryAfter))
	utils.WriteJSON(w, http.StatusTooManyRequests, utils.APIResponse{
		Success: false,
		Message: "Too many requests, please try again later",
		Code:    "rate_limited",
		Data:    map[string]interface{}{"retry_after_seconds": retryAfter},
	})
}

// IPRateLimiter implements per-IP sliding-window counters
type IPRateLimiter struct {
	max         int
	window      time.Duration
	mu          sync.Mutex
	state       map[string]timestamps
	trustedCIDR []string
}

// NewIPRateLimiter allows maxReq requests per window for each client IP.
// X-Forwarded-For is only honored when the peer is one of trusted.
func NewIPRateLimiter(maxReq int, window time.Duration, trusted []string) *IPRateLimiter {
	l := &IPRateLimiter{
		max:         maxReq,
		window:      window,
		state:       make(map[string]timestamps),
		trustedCIDR: trusted,
	}
	go l.cleanupLoop()
	return l
}

// clientIPGeneric returns the client IP string. If trustedCIDR is provided,
// X-Forwarded-For / X-Real-IP headers are honored when remote addr is inside
// one of the trusted CIDRs or IPs.
func clientIPGeneric(r *http.Request, trustedCIDR []string) string {
	remoteHost, _, _ := net.SplitHostPort(r.RemoteAddr)
	remoteIP := net.ParseIP(remoteHost)
	trusted := false
	for _, cidr := range trustedCIDR {
		cidr = strings.TrimSpace(cidr)
		if cidr == "" {
			continue
		}
		if strings.Contains(cidr, "/") {
			if _, ipnet, err := net.ParseCIDR(cidr); err == nil {
				if remoteIP != nil && ipnet.Contains(remoteIP) {
					trusted = true
					break
				}
			}
			continue
		}
		if ip := net.ParseIP(cidr); ip != nil && remoteIP != nil && ip.Equal(remoteIP) {
			trusted = true
			break
		}
	}
	if trusted {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			parts := strings.Split(xff, ",")
			if len(parts) > 0 {
				return strings.TrimSpace(parts[0])
			}
		}
		if xr := r.Header.Get("X-Real-IP"); xr != "" {
			return strings.TrimSpace(xr)
		}
	}
	if remoteHost == "" {
		return r.RemoteAddr
	}
	return remoteHost
}

// ClientIP resolves the caller address, honoring forwarding headers only from trusted proxies
func ClientIP(r *http.Request, trusted []string) string {
	return clientIPGeneric(r, trusted)
}

func (l *IPRateLimiter) ClientIP(r *http.Request) string {
	return clientIPGeneric(r, l.trustedCIDR)
}

// allow records a hit for key and reports whether it is within the limit,
// plus the remaining budget and the seconds until the oldest hit expires.
func (l *IPRateLimiter) allow(key string) (bool, int, int) {
	now := nowUnix()
	windowNs := int64(l.window)

	l.mu.Lock()
	filtered := append(within(l.state[key], now-windowNs), now)
	l.state[key] = filtered
	l.mu.Unlock()

	count := len(filtered)
	remaining := l.max - count
	if remaining < 0 {
		remaining = 0
	}
	if count <= l.max {
		return true, remaining, 0
	}
	// filtered is in arrival order so the first entry is the oldest
	retryAfter := int((filtered[0] + windowNs - now) / int64(time.Second))
	return false, remaining, retryAfter
}

// Middleware applies per-IP limits and sets rate-limit headers.
func (l *IPRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ok, remaining, retryAfter := l.allow(l.ClientIP(r))
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", l.max))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))
		if !ok {
			writeTooMany(w, retryAfter)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (l *IPRateLimiter) cleanupLoop() {
	tick := time.NewTicker(cleanupInterval)
	defer tick.Stop()
	for range tick.C {
		l.mu.Lock()
		cutoff := nowUnix() - int64(l.window)
		for k, arr := range l.state {
			filtered := within(arr, cutoff)
			if len(filtered) == 0 {
				delete(l.state, k)
			} else {
				l.state[k] = filtered
			}
		}
		l.mu.Unlock()
	}
}

// UserRateLimiter implements a sliding window per authenticated subject with penalties
type UserRateLimiter struct {
	mu      sync.Mutex
	state   map[string]timestamps
	penalty map[string]penaltyInfo
	max     int
	window  time.Duration
}

type penaltyInfo struct {
	Level int
	Until int64 // unix nanos
}

// NewUserRateLimiter allows maxReq requests per window for each authenticated subject
func NewUserRateLimiter(maxReq int, window time.Duration) *UserRateLimiter {
	l := &UserRateLimiter{
		state:   make(map[string]timestamps),
		penalty: make(map[string]penaltyInfo),
		max:     maxReq,
		window:  window,
	}
	go l.cleanupLoop()
	return l
}

// penaltyFor returns how long a subject is blocked after its level-th breach
func penaltyFor(level int) time.Duration {
	switch level {
	case 1:
		return time.Minute
	case 2:
		return 5 * time.Minute
	case 3:
		return 15 * time.Minute
	default:
		return 30 * time.Minute
	}
}

func (l *UserRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid, ok := utils.GetUserID(r)
		if !ok {
			// unauthenticated requests are covered by the IP limiter
			next.ServeHTTP(w, r)
			return
		}
		key := utils.GetUserRole(r) + ":" + uid
		now := nowUnix()

		l.mu.Lock()
		pi := l.penalty[key]
		if pi.Until > now {
			l.mu.Unlock()
			writeTooMany(w, int(time.Duration(pi.Until-now).Seconds()))
			return
		}

		filtered := append(within(l.state[key], now-int64(l.window)), now)
		l.state[key] = filtered
		count := len(filtered)

		remaining := l.max - count
		if remaining < 0 {
			remaining = 0
		}
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", l.max))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))

		if count > l.max {
			level := pi.Level + 1
			d := penaltyFor(level)
			l.penalty[key] = penaltyInfo{Level: level, Until: now + int64(d)}
			l.mu.Unlock()
			zap.L().Warn("user rate limit exceeded", zap.String("subject", key), zap.Int("level", level))
			writeTooMany(w, int(d.Seconds()))
			return
		}
		l.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (l *UserRateLimiter) cleanupLoop() {
	tick := time.NewTicker(cleanupInterval)
	defer tick.Stop()
	for range tick.C {
		l.mu.Lock()
		now := nowUnix()
		cutoff := now - int64(l.window)
		for k, arr := range l.state {
			filtered := within(arr, cutoff)
			if len(filtered) == 0 {
				delete(l.state, k)
			} else {
				l.state[k] = filtered
			}
		}
		for k, p := range l.penalty {
			if p.Until < now {
				delete(l.penalty, k)
			}
		}
		l.mu.Unlock()
	}
}

// Admin account lockout after repeated failed logins

// freeLoginAttempts is how many failures are tolerated before the first lock
const freeLoginAttempts = 3

var (
	loginMu   sync.Mutex
	failedMap = make(map[string]int)   // key -> failures
	lockMap   = make(map[string]int64) // key -> lockUntil unix nanos
)

// lockoutFor returns the lock duration after the given number of failures (0 = no lock)
func lockoutFor(failures int) time.Duration {
	if failures < freeLoginAttempts {
		return 0
	}
	return penaltyFor(failures - freeLoginAttempts + 1)
}

// IsAccountLocked reports whether logins for account are blocked and for how long
func IsAccountLocked(ctx context.Context, account string) (bool, time.Duration) {
	if utils.RedisClient != nil {
		ttl, err := utils.RedisClient.TTL(ctx, "login:lock:"+account).Result()
		if err == nil {
			if ttl > 0 {
				return true, ttl
			}
			return false, 0
		}
		zap.L().Warn("redis lockout check failed, using memory", zap.Error(err))
	}
	loginMu.Lock()
	defer loginMu.Unlock()
	until := lockMap[account]
	if until == 0 {
		return false, 0
	}
	now := nowUnix()
	if until > now {
		return true, time.Duration(until - now)
	}
	delete(lockMap, account)
	return false, 0
}

// RecordFailedLogin counts a failure and locks the account progressively
func RecordFailedLogin(ctx context.Context, account string) {
	if utils.RedisClient != nil {
		failures, err := utils.RedisClient.Incr(ctx, "login:fail:"+account).Result()
		if err == nil {
			_ = utils.RedisClient.Expire(ctx, "login:fail:"+account, 30*time.Minute).Err()
			if d := lockoutFor(int(failures)); d > 0 {
				_ = utils.RedisClient.Set(ctx, "login:lock:"+account, "1", d).Err()
			}
			return
		}
		zap.L().Warn("redis lockout update failed, using memory", zap.Error(err))
	}

	loginMu.Lock()
	defer loginMu.Unlock()
	failedMap[account]++
	if d := lockoutFor(failedMap[account]); d > 0 {
		lockMap[account] = nowUnix() + int64(d)
	}
}

// ResetFailedLogin clears the failure counter after a successful login
func ResetFailedLogin(ctx context.Context, account string) {
	if utils.RedisClient != nil {
		_ = utils.RedisClient.Del(ctx, "login:fail:"+account, "login:lock:"+account).Err()
	}
	loginMu.Lock()
	defer loginMu.Unlock()
	delete(lockMap, account)
	delete(failedMap, account)
}
