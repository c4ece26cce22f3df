package api

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// loginRateLimiter tracks failed login attempts per account email and per
// source IP and enforces exponential backoff. The account key is the
// lowercased email; no credential material is ever held here.
type loginRateLimiter struct {
	mu       sync.Mutex
	accounts map[string]*attemptRecord
	ips      map[string]*attemptRecord
}

type attemptRecord struct {
	failures    int
	lastFailure time.Time
	lockedUntil time.Time
}

const (
	// accountMaxFailures is the number of consecutive failures per account
	// before lockout begins; ipMaxFailures is the looser per-IP threshold.
	accountMaxFailures = 5
	ipMaxFailures      = 20
	baseLockout        = 1 * time.Minute
	maxLockout         = 15 * time.Minute
	// attemptExpiry is how long after the last failure before a record is
	// garbage-collected.
	attemptExpiry = 1 * time.Hour
)

func newLoginRateLimiter() *loginRateLimiter {
	return &loginRateLimiter{
		accounts: make(map[string]*attemptRecord),
		ips:      make(map[string]*attemptRecord),
	}
}

// check reports whether the account or the source IP is currently locked
// out, along with how long the caller should wait.
func (rl *loginRateLimiter) check(accountKey, ip string) (blocked bool, retryAfter time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if wait := lockRemaining(rl.accounts, accountKey); wait > 0 {
		return true, wait
	}
	if wait := lockRemaining(rl.ips, ip); wait > 0 {
		return true, wait
	}
	return false, 0
}

func lockRemaining(records map[string]*attemptRecord, key string) time.Duration {
	rec, ok := records[key]
	if !ok {
		return 0
	}
	if time.Since(rec.lastFailure) > attemptExpiry {
		delete(records, key)
		return 0
	}
	if time.Now().Before(rec.lockedUntil) {
		return time.Until(rec.lockedUntil)
	}
	return 0
}

// recordFailure increments both counters and applies exponential backoff
// past the thresholds.
func (rl *loginRateLimiter) recordFailure(accountKey, ip string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	bumpFailure(rl.accounts, accountKey, accountMaxFailures)
	bumpFailure(rl.ips, ip, ipMaxFailures)
}

func bumpFailure(records map[string]*attemptRecord, key string, threshold int) {
	rec, ok := records[key]
	if !ok {
		rec = &attemptRecord{}
		records[key] = rec
	}
	rec.failures++
	rec.lastFailure = time.Now()

	if rec.failures >= threshold {
		// baseLockout * 2^(failures - threshold), capped at maxLockout.
		lockout := baseLockout
		for i := 0; i < rec.failures-threshold; i++ {
			lockout *= 2
			if lockout > maxLockout {
				lockout = maxLockout
				break
			}
		}
		rec.lockedUntil = time.Now().Add(lockout)
	}
}

// recordSuccess resets both counters after a successful login.
func (rl *loginRateLimiter) recordSuccess(accountKey, ip string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.accounts, accountKey)
	delete(rl.ips, ip)
}

// writeRateLimited sends a 429 Too Many Requests response.
func writeRateLimited(w http.ResponseWriter, retryAfter time.Duration) {
	secs := int(retryAfter.Seconds())
	if secs < 1 {
		secs = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(secs))
	writeError(w, http.StatusTooManyRequests, "too many failed login attempts; try again later")
}

// extractClientIP returns the peer address for rate limiting. Proxy headers
// are never consulted: a spoofable header must not steer lockout state.
func extractClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
