package server

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/lawnchairsociety/gameconsole/internal/logger"
)

// HashCost is the bcrypt cost used for new password hashes.
const HashCost = 12

// MaxPasswordAttempts is how many wrong passwords one connection may try
// before it is dropped.
const MaxPasswordAttempts = 3

var (
	errConnClosed      = errors.New("connection closed")
	errRateLimited     = errors.New("rate limited")
	errTooManyAttempts = errors.New("too many password attempts")
)

// HashPassword returns the bcrypt hash stored in remote.password_hash.
func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Authenticator checks the shared remote console password.
type Authenticator struct {
	hash []byte
}

// NewAuthenticator validates hash and returns an Authenticator for it.
func NewAuthenticator(hash string) (*Authenticator, error) {
	if _, err := bcrypt.Cost([]byte(hash)); err != nil {
		return nil, fmt.Errorf("invalid password hash: %w", err)
	}
	return &Authenticator{hash: []byte(hash)}, nil
}

// Verify reports whether password matches.
func (a *Authenticator) Verify(password string) bool {
	return bcrypt.CompareHashAndPassword(a.hash, []byte(password)) == nil
}

// handleAuth runs the password prompt for a new session.
func (s *Server) handleAuth(client Client, ip string) error {
	if locked, remaining := s.loginRateLimiter.IsLocked(ip); locked {
		client.WriteLine(fmt.Sprintf("Too many failed attempts. Please wait %d seconds.",
			int(remaining.Seconds())+1))
		return errRateLimited
	}

	for attempt := 1; attempt <= MaxPasswordAttempts; attempt++ {
		client.Write([]byte("Password: "))
		password, err := client.ReadLine()
		if err != nil {
			return errConnClosed
		}

		if s.auth.Verify(strings.TrimSpace(password)) {
			s.loginRateLimiter.RecordSuccess(ip)
			logger.Info("Remote console login",
				"ip", ip,
				"event", "login_success")
			return nil
		}

		logger.Info("Failed remote console login",
			"ip", ip,
			"attempt", attempt,
			"event", "login_failed")

		if locked, d := s.loginRateLimiter.RecordFailure(ip); locked {
			logger.Warning("IP rate limited after failed logins",
				"ip", ip,
				"lockout_seconds", int(d.Seconds()),
				"event", "login_ratelimit")
			client.WriteLine(fmt.Sprintf("Wrong password. Too many attempts - locked out for %d seconds.",
				int(d.Seconds())))
			return errRateLimited
		}
		client.WriteLine("Wrong password.")
	}

	client.WriteLine("Too many attempts. Disconnecting.")
	return errTooManyAttempts
}
