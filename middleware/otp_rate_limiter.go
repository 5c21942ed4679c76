package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"
)

// OTP request throttling. A phone may ask for a code again after 1, 5 and 10
// minutes from its first request; the fifth request inside that run locks the
// phone for an hour. Each IP gets 5 requests per 30 minutes.

var phoneSteps = []time.Duration{0, time.Minute, 5 * time.Minute, 10 * time.Minute}

const (
	phoneLockDuration = time.Hour
	ipOTPWindow       = 30 * time.Minute
	ipOTPMax          = 5
)

type phoneRecord struct {
	Count       int
	FirstReqAt  time.Time
	LastReqAt   time.Time
	LockedUntil time.Time
}

type ipRecord struct {
	Count      int
	FirstReqAt time.Time
	LastReqAt  time.Time
}

// OTPRateLimiter manages rate limiting for OTP requests
type OTPRateLimiter struct {
	mu           sync.Mutex
	phoneRecords map[string]*phoneRecord
	ipRecords    map[string]*ipRecord
	trusted      []string
	now          func() time.Time
}

// NewOTPRateLimiter creates a limiter. trusted lists proxies whose forwarding headers are honored.
func NewOTPRateLimiter(trusted []string) *OTPRateLimiter {
	l := &OTPRateLimiter{
		phoneRecords: make(map[string]*phoneRecord),
		ipRecords:    make(map[string]*ipRecord),
		trusted:      trusted,
		now:          time.Now,
	}
	go l.cleanupLoop()
	return l
}

func (l *OTPRateLimiter) cleanupLoop() {
	tick := time.NewTicker(5 * time.Minute)
	defer tick.Stop()
	for range tick.C {
		l.mu.Lock()
		now := l.now()
		for phone, rec := range l.phoneRecords {
			if now.After(rec.LockedUntil) && now.Sub(rec.LastReqAt) > time.Hour {
				delete(l.phoneRecords, phone)
			}
		}
		for ip, rec := range l.ipRecords {
			if now.Sub(rec.LastReqAt) > ipOTPWindow {
				delete(l.ipRecords, ip)
			}
		}
		l.mu.Unlock()
	}
}

// ClientIP resolves the caller address honoring trusted proxies
func (l *OTPRateLimiter) ClientIP(r *http.Request) string {
	return clientIPGeneric(r, l.trusted)
}

// CheckPhoneRateLimit records an OTP request for phone.
// Returns (allowed, waitDuration, message).
func (l *OTPRateLimiter) CheckPhoneRateLimit(phone string) (bool, time.Duration, string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	rec, ok := l.phoneRecords[phone]
	if !ok || (!rec.LockedUntil.IsZero() && !now.Before(rec.LockedUntil)) {
		l.phoneRecords[phone] = &phoneRecord{Count: 1, FirstReqAt: now, LastReqAt: now}
		return true, 0, ""
	}
	if now.Before(rec.LockedUntil) {
		return false, rec.LockedUntil.Sub(now), "You have reached the request limit, please try again in 1 hour"
	}

	if rec.Count >= len(phoneSteps) {
		rec.Count++
		rec.LastReqAt = now
		rec.LockedUntil = now.Add(phoneLockDuration)
		return false, phoneLockDuration, "You have reached the request limit, please try again in 1 hour"
	}

	step := phoneSteps[rec.Count]
	if elapsed := now.Sub(rec.FirstReqAt); elapsed < step {
		return false, step - elapsed, "Please wait " + formatMinutes(step) + " before requesting another OTP"
	}
	rec.Count++
	rec.LastReqAt = now
	return true, 0, ""
}

// CheckIPRateLimit records an OTP request from ip.
// Returns (allowed, waitDuration, message).
func (l *OTPRateLimiter) CheckIPRateLimit(ip string) (bool, time.Duration, string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	rec, ok := l.ipRecords[ip]
	if !ok || now.Sub(rec.FirstReqAt) >= ipOTPWindow {
		l.ipRecords[ip] = &ipRecord{Count: 1, FirstReqAt: now, LastReqAt: now}
		return true, 0, ""
	}
	if rec.Count >= ipOTPMax {
		return false, ipOTPWindow - now.Sub(rec.FirstReqAt), "Too many requests. Please try again later."
	}
	rec.Count++
	rec.LastReqAt = now
	return true, 0, ""
}

// ResetPhoneLimit clears the phone's history after a successful verification
func (l *OTPRateLimiter) ResetPhoneLimit(phone string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.phoneRecords, phone)
}

func formatMinutes(d time.Duration) string {
	m := int(d.Minutes())
	if m == 1 {
		return "1 minute"
	}
	return strconv.Itoa(m) + " minutes"
}
