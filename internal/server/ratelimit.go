package server

import (
	"sync"
	"time"

	"github.com/lawnchairsociety/gameconsole/internal/config"
)

// LoginRateLimiter tracks failed password attempts per IP and enforces
// lockouts that double on every repeat, up to a maximum.
type LoginRateLimiter struct {
	mu              sync.Mutex
	attempts        map[string]*attemptInfo
	maxAttempts     int
	lockout         time.Duration
	maxLockout      time.Duration
	cleanupInterval time.Duration
	now             func() time.Time

	stopOnce    sync.Once
	stopCleanup chan struct{}
	stopped     chan struct{}
}

type attemptInfo struct {
	failedAttempts int
	lockedUntil    time.Time
	lockoutCount   int
}

// NewLoginRateLimiter creates a rate limiter and starts its cleanup
// goroutine. Call Stop to end it.
func NewLoginRateLimiter(cfg config.RateLimitConfig) *LoginRateLimiter {
	rl := &LoginRateLimiter{
		attempts:        make(map[string]*attemptInfo),
		maxAttempts:     cfg.MaxAttempts,
		lockout:         time.Duration(cfg.LockoutSeconds) * time.Second,
		maxLockout:      time.Duration(cfg.MaxLockoutSeconds) * time.Second,
		cleanupInterval: 5 * time.Minute,
		now:             time.Now,
		stopCleanup:     make(chan struct{}),
		stopped:         make(chan struct{}),
	}
	if rl.maxAttempts <= 0 {
		rl.maxAttempts = 5
	}
	if rl.lockout <= 0 {
		rl.lockout = 30 * time.Second
	}
	if rl.maxLockout <= 0 {
		rl.maxLockout = 300 * time.Second
	}

	go rl.cleanupLoop()
	return rl
}

// Stop ends the cleanup goroutine and waits for it. It is idempotent.
func (rl *LoginRateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCleanup) })
	<-rl.stopped
}

// IsLocked reports whether ip is locked out and for how much longer.
func (rl *LoginRateLimiter) IsLocked(ip string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	info, ok := rl.attempts[ip]
	if !ok {
		return false, 0
	}
	if remaining := info.lockedUntil.Sub(rl.now()); remaining > 0 {
		return true, remaining
	}
	return false, 0
}

// RecordFailure records a failed attempt from ip. It reports whether ip is
// now locked out and for how long.
func (rl *LoginRateLimiter) RecordFailure(ip string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	info, ok := rl.attempts[ip]
	if !ok {
		info = &attemptInfo{}
		rl.attempts[ip] = info
	}
	if remaining := info.lockedUntil.Sub(now); remaining > 0 {
		return true, remaining
	}

	info.failedAttempts++
	if info.failedAttempts < rl.maxAttempts {
		return false, 0
	}

	info.lockoutCount++
	d := rl.lockoutFor(info.lockoutCount)
	info.lockedUntil = now.Add(d)
	info.failedAttempts = 0
	return true, d
}

// lockoutFor returns the lockout for the n-th lockout of an IP: the base
// lockout doubled n-1 times, capped at maxLockout.
func (rl *LoginRateLimiter) lockoutFor(n int) time.Duration {
	d := rl.lockout
	for i := 1; i < n; i++ {
		if d >= rl.maxLockout/2 {
			return rl.maxLockout
		}
		d *= 2
	}
	return min(d, rl.maxLockout)
}

// RecordSuccess clears the failure history of ip.
func (rl *LoginRateLimiter) RecordSuccess(ip string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.attempts, ip)
}

// Attempts returns the failed attempts of ip since its last lockout.
func (rl *LoginRateLimiter) Attempts(ip string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if info, ok := rl.attempts[ip]; ok {
		return info.failedAttempts
	}
	return 0
}

func (rl *LoginRateLimiter) cleanupLoop() {
	defer close(rl.stopped)

	ticker := time.NewTicker(rl.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stopCleanup:
			return
		case <-ticker.C:
			rl.cleanup()
		}
	}
}

// cleanup forgets IPs that have been unlocked for a while and have no
// pending failures.
func (rl *LoginRateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-10 * time.Minute)
	for ip, info := range rl.attempts {
		if info.lockedUntil.Before(cutoff) && info.failedAttempts == 0 {
			delete(rl.attempts, ip)
		}
	}
}
