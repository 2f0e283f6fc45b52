package server

import (
	"errors"
	"net"
	"sync"

	"github.com/lawnchairsociety/gameconsole/internal/config"
)

var (
	// ErrTooManyFromIP is returned when an address already holds its share of sessions.
	ErrTooManyFromIP = errors.New("too many connections from this address")

	// ErrServerFull is returned when the total session limit is reached.
	ErrServerFull = errors.New("too many connections")
)

// ConnLimiter tracks and limits remote console connections per IP and in total.
type ConnLimiter struct {
	mu         sync.Mutex
	ipCounts   map[string]int
	totalCount int
	maxPerIP   int
	maxTotal   int
}

// NewConnLimiter creates a new connection limiter. Zero limits are unlimited.
func NewConnLimiter(cfg config.ConnectionsConfig) *ConnLimiter {
	return &ConnLimiter{
		ipCounts: make(map[string]int),
		maxPerIP: cfg.MaxPerIP,
		maxTotal: cfg.MaxTotal,
	}
}

// Acquire takes a slot for ip. The returned release func gives it back and
// is safe to call more than once.
func (c *ConnLimiter) Acquire(ip string) (release func(), err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.maxTotal > 0 && c.totalCount >= c.maxTotal {
		return nil, ErrServerFull
	}
	if c.maxPerIP > 0 && c.ipCounts[ip] >= c.maxPerIP {
		return nil, ErrTooManyFromIP
	}

	c.ipCounts[ip]++
	c.totalCount++

	var once sync.Once
	return func() { once.Do(func() { c.Release(ip) }) }, nil
}

// Release gives back one slot held by ip.
func (c *ConnLimiter) Release(ip string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ipCounts[ip] > 0 {
		c.ipCounts[ip]--
		if c.ipCounts[ip] == 0 {
			delete(c.ipCounts, ip)
		}
		c.totalCount--
	}
}

// Stats returns the open connection count and the number of distinct IPs.
func (c *ConnLimiter) Stats() (total int, ips int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalCount, len(c.ipCounts)
}

// IPCount returns the open connection count for ip.
func (c *ConnLimiter) IPCount(ip string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ipCounts[ip]
}

// extractIP extracts the IP address from a remote address string (ip:port format).
func extractIP(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}
